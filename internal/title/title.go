// Package title normalizes display titles and fuzzy-matches user-typed
// filters against them.
package title

import (
	"strings"
	"unicode"

	"github.com/hbollon/go-edlib"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// MatchThreshold is the minimum similarity for a fuzzy filter hit.
const MatchThreshold = 0.75

// Clean normalizes a title for comparison: lowercases, folds accents,
// strips punctuation and leading articles, collapses whitespace.
func Clean(title string) string {
	s := strings.ToLower(title)
	s = removeAccents(s)

	s = strings.ReplaceAll(s, "&", " and ")
	s = strings.ReplaceAll(s, "-", " ")
	s = strings.ReplaceAll(s, "'", "")

	// Subtitled titles ("Léon: The Professional") drop the article of each
	// part, not just the first.
	parts := strings.Split(s, ":")
	for i, part := range parts {
		parts[i] = stripLeadingArticle(strings.TrimSpace(part))
	}
	s = strings.Join(parts, " ")

	var b strings.Builder
	for _, r := range s {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || unicode.IsSpace(r) {
			b.WriteRune(r)
		}
	}

	return strings.Join(strings.Fields(b.String()), " ")
}

func removeAccents(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	result, _, _ := transform.String(t, s)
	return result
}

func stripLeadingArticle(s string) string {
	for _, art := range []string{"the ", "a ", "an "} {
		if strings.HasPrefix(s, art) {
			return strings.TrimPrefix(s, art)
		}
	}
	return s
}

// Score returns the similarity between a user filter and a title, both
// normalized, in [0, 1]. Jaro-Winkler favors shared prefixes, which suits
// partially-typed titles; a cleaned substring hit counts as a full match so
// "cosmos" finds "Cosmos: A Personal Voyage".
func Score(filter, candidate string) float64 {
	f := Clean(filter)
	c := Clean(candidate)
	if f == "" || c == "" {
		return 0
	}
	if strings.Contains(c, f) {
		return 1
	}
	return float64(edlib.JaroWinklerSimilarity(f, c))
}

// Matches reports whether a title passes the fuzzy filter.
func Matches(filter, candidate string) bool {
	return Score(filter, candidate) >= MatchThreshold
}
