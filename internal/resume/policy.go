package resume

// ExitReason describes why a progress evaluation is happening.
type ExitReason int

const (
	// ReasonPeriodic is a timer tick while playback continues.
	ReasonPeriodic ExitReason = iota
	// ReasonPaused is a pause or app-background lifecycle event.
	ReasonPaused
	// ReasonUserExit is deliberate navigation away from the unit.
	ReasonUserExit
	// ReasonSourceSwitch is a source change for the same unit.
	ReasonSourceSwitch
)

func (r ExitReason) String() string {
	switch r {
	case ReasonPeriodic:
		return "periodic"
	case ReasonPaused:
		return "paused"
	case ReasonUserExit:
		return "user_exit"
	case ReasonSourceSwitch:
		return "source_switch"
	default:
		return "unknown"
	}
}

// Decision is the outcome of a policy evaluation.
type Decision int

const (
	// DecisionIgnore means the position is not worth remembering.
	DecisionIgnore Decision = iota
	// DecisionPersist means the record should be written.
	DecisionPersist
	// DecisionDelete means the record should be removed. Evaluate never
	// returns it; it exists for the explicit remove-progress path.
	DecisionDelete
	// DecisionAdvance means the unit is finished and continuity rolls
	// forward to its successor.
	DecisionAdvance
)

func (d Decision) String() string {
	switch d {
	case DecisionIgnore:
		return "ignore"
	case DecisionPersist:
		return "persist"
	case DecisionDelete:
		return "delete"
	case DecisionAdvance:
		return "advance"
	default:
		return "unknown"
	}
}

// Params are the tunable policy thresholds.
type Params struct {
	// MinStartMS is the minimum watched position before progress is
	// persisted on periodic, pause, and source-switch evaluations.
	MinStartMS int64
	// MinStartExitMS is the lower bar tolerated on user exit, so brief
	// but real engagement is still remembered.
	MinStartExitMS int64
	// FinishedRemainingMS marks a unit finished when less than this much
	// playback remains.
	FinishedRemainingMS int64
	// FinishedFraction marks a unit finished past this progress fraction.
	// Needed for short units that never trip the absolute check.
	FinishedFraction float64
}

// DefaultParams returns the stock thresholds.
func DefaultParams() Params {
	return Params{
		MinStartMS:          15_000,
		MinStartExitMS:      5_000,
		FinishedRemainingMS: 45_000,
		FinishedFraction:    0.97,
	}
}

// Policy decides what to do with a playback position sample.
type Policy struct {
	params Params
}

// NewPolicy creates a policy with the given thresholds.
func NewPolicy(params Params) Policy {
	return Policy{params: params}
}

// Evaluate is a pure function of position, duration, and exit reason.
//
// A finished unit advances on periodic and pause signals but not on user
// exit: backing out deliberately near the end must not force-load the next
// unit.
func (p Policy) Evaluate(positionMS, durationMS int64, reason ExitReason) Decision {
	// Duration not yet known: a record without a duration cannot be
	// rendered as a progress fraction.
	if durationMS <= 0 && positionMS > 0 {
		return DecisionIgnore
	}

	minStart := p.params.MinStartMS
	if reason == ReasonUserExit {
		minStart = p.params.MinStartExitMS
	}
	if positionMS < minStart {
		return DecisionIgnore
	}

	if durationMS > 0 && reason != ReasonUserExit {
		remaining := durationMS - positionMS
		fraction := float64(positionMS) / float64(durationMS)
		if remaining < p.params.FinishedRemainingMS || fraction > p.params.FinishedFraction {
			return DecisionAdvance
		}
	}

	return DecisionPersist
}
