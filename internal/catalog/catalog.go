// Package catalog provides unit metadata lookup against the remote media
// catalog, with optional SQLite-backed response caching.
package catalog

import (
	"context"
	"errors"
)

// ErrNotFound is returned when a unit doesn't exist in the catalog.
var ErrNotFound = errors.New("unit not found")

// Unit is the catalog metadata for one playable unit.
type Unit struct {
	ID            string   `json:"slug"`
	GroupID       string   `json:"group_slug"`
	GroupTitle    string   `json:"group_title"`
	Title         string   `json:"title"`
	Sequence      int      `json:"sequence"`
	PredecessorID string   `json:"previous_unit,omitempty"`
	SuccessorID   string   `json:"next_unit,omitempty"`
	Sources       []Source `json:"sources,omitempty"`
	ThumbnailRef  *string  `json:"thumbnail,omitempty"`
}

// Source is one candidate playback URL for a unit.
type Source struct {
	URL  string `json:"url"`
	Type string `json:"type,omitempty"`
}

// FirstPlayableSource returns the first source with a non-empty URL, or ""
// when the unit has nothing playable.
func (u *Unit) FirstPlayableSource() string {
	for _, s := range u.Sources {
		if s.URL != "" {
			return s.URL
		}
	}
	return ""
}

// HasSource reports whether url is one of the unit's candidate sources.
func (u *Unit) HasSource(url string) bool {
	for _, s := range u.Sources {
		if s.URL == url {
			return true
		}
	}
	return false
}

// Getter looks up unit metadata.
//
//go:generate mockgen -destination=mocks/getter.go -package=mocks github.com/vmunix/playhead/internal/catalog Getter
type Getter interface {
	GetUnit(ctx context.Context, unitID string) (*Unit, error)
}
