package title

import "testing"

func TestClean(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"lowercase", "COSMOS", "cosmos"},
		{"accents folded", "Léon", "leon"},
		{"leading article", "The Expanse", "expanse"},
		{"article after subtitle colon", "Léon: The Professional", "leon professional"},
		{"ampersand", "Mulder & Scully", "mulder and scully"},
		{"hyphen and apostrophe", "Spider-Man's Day", "spider mans day"},
		{"whitespace collapsed", "  a   quiet   place ", "quiet place"},
		{"punctuation stripped", "What If...?", "what if"},
		{"empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Clean(tt.input); got != tt.want {
				t.Errorf("Clean(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestMatches(t *testing.T) {
	tests := []struct {
		name      string
		filter    string
		candidate string
		want      bool
	}{
		{"exact", "cosmos", "Cosmos", true},
		{"substring of longer title", "cosmos", "Cosmos: A Personal Voyage", true},
		{"accent-folded filter", "leon", "Léon: The Professional", true},
		{"partial prefix", "expans", "The Expanse", true},
		{"small typo", "cosmso", "Cosmos", true},
		{"unrelated", "breaking bad", "Cosmos", false},
		{"empty filter", "", "Cosmos", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Matches(tt.filter, tt.candidate); got != tt.want {
				t.Errorf("Matches(%q, %q) = %v, want %v", tt.filter, tt.candidate, got, tt.want)
			}
		})
	}
}

func TestScore_SubstringBeatsFuzzy(t *testing.T) {
	if got := Score("cosmos", "Cosmos: A Personal Voyage"); got != 1 {
		t.Errorf("substring score = %v, want 1", got)
	}
	if s := Score("cosmos", "Nova"); s >= MatchThreshold {
		t.Errorf("unrelated titles scored %v, want below threshold", s)
	}
}
