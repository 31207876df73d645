package resume

import "errors"

// Aggregator is the read side of the engine: the continue-watching rail and
// the per-group continuation lookup consumed by catalog and home surfaces.
type Aggregator struct {
	store *Store
}

// NewAggregator creates an aggregator over the given store.
func NewAggregator(store *Store) *Aggregator {
	return &Aggregator{store: store}
}

// DefaultRailSize bounds the continue-watching rail when the caller passes
// no limit.
const DefaultRailSize = 20

// ContinueWatching returns the most recently updated records, newest first.
func (a *Aggregator) ContinueWatching(limit int) ([]*Record, error) {
	if limit <= 0 {
		limit = DefaultRailSize
	}
	return a.store.List(limit)
}

// LatestForGroup returns the continuation record for a group, or nil when
// the group has none - meaning the UI should offer "play first unit"
// instead of "continue".
func (a *Aggregator) LatestForGroup(groupID string) (*Record, error) {
	r, err := a.store.LatestForGroup(groupID)
	if errors.Is(err, ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return r, nil
}
