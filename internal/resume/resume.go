// Package resume tracks playback continuation state (continue watching).
package resume

// Record is the continuation point for one playable unit.
// At most one record exists per unit, and the engine keeps at most one
// record per group alive at any time.
type Record struct {
	UnitID       string
	GroupID      string
	GroupTitle   string
	UnitTitle    string
	UnitSequence int
	ThumbnailRef *string // nil when the unit has no thumbnail
	PositionMS   int64
	DurationMS   int64 // 0 = unknown, SeededDurationMS = not yet measured
	UpdatedAtMS  int64
}

// SeededDurationMS marks a record created by auto-advance before the
// successor unit has reported a measured duration.
const SeededDurationMS = 1

// Unit identifies a playable unit and carries the display fields that are
// denormalized into its Record. Position and duration come from the player.
type Unit struct {
	ID           string
	GroupID      string
	GroupTitle   string
	Title        string
	Sequence     int
	ThumbnailRef *string
}

// Fraction returns playback progress in [0, 1], or 0 when the duration is
// unknown.
func (r *Record) Fraction() float64 {
	if r.DurationMS <= 0 {
		return 0
	}
	f := float64(r.PositionMS) / float64(r.DurationMS)
	if f > 1 {
		return 1
	}
	return f
}
