package events

// Entity types
const (
	EntityUnit    = "unit"
	EntityGroup   = "group"
	EntitySession = "session"
)

// Event type constants
const (
	EventSessionStateChanged = "session.state.changed"
	EventSessionClosed       = "session.closed"
	EventProgressSaved       = "progress.saved"
	EventProgressRemoved     = "progress.removed"
	EventProgressAdvanced    = "progress.advanced"
)

// SessionStateChanged is emitted on every playback session transition.
type SessionStateChanged struct {
	BaseEvent
	From string `json:"from"`
	To   string `json:"to"`
}

// NewSessionStateChanged creates a state transition event for a unit.
func NewSessionStateChanged(unitID, from, to string) *SessionStateChanged {
	return &SessionStateChanged{
		BaseEvent: NewBaseEvent(EventSessionStateChanged, EntitySession, unitID),
		From:      from,
		To:        to,
	}
}

// SessionClosed is emitted when a session tears down. Err is empty for a
// normal user exit.
type SessionClosed struct {
	BaseEvent
	Err string `json:"error,omitempty"`
}

// NewSessionClosed creates a session teardown event.
func NewSessionClosed(unitID, errMsg string) *SessionClosed {
	return &SessionClosed{
		BaseEvent: NewBaseEvent(EventSessionClosed, EntitySession, unitID),
		Err:       errMsg,
	}
}

// ProgressSaved is emitted when a resume record is written.
type ProgressSaved struct {
	BaseEvent
	GroupID    string `json:"group_id"`
	PositionMS int64  `json:"position_ms"`
	DurationMS int64  `json:"duration_ms"`
	Reason     string `json:"reason"`
}

// NewProgressSaved creates a progress persistence event.
func NewProgressSaved(unitID, groupID string, positionMS, durationMS int64, reason string) *ProgressSaved {
	return &ProgressSaved{
		BaseEvent:  NewBaseEvent(EventProgressSaved, EntityUnit, unitID),
		GroupID:    groupID,
		PositionMS: positionMS,
		DurationMS: durationMS,
		Reason:     reason,
	}
}

// ProgressRemoved is emitted when a resume record is deleted on user request.
type ProgressRemoved struct {
	BaseEvent
}

// NewProgressRemoved creates a progress removal event.
func NewProgressRemoved(unitID string) *ProgressRemoved {
	return &ProgressRemoved{
		BaseEvent: NewBaseEvent(EventProgressRemoved, EntityUnit, unitID),
	}
}

// ProgressAdvanced is emitted when a finished unit rolls continuity forward.
// ToUnitID is empty when no successor was known.
type ProgressAdvanced struct {
	BaseEvent
	GroupID  string `json:"group_id"`
	ToUnitID string `json:"to_unit_id,omitempty"`
}

// NewProgressAdvanced creates an auto-advance event for the finished unit.
func NewProgressAdvanced(fromUnitID, groupID, toUnitID string) *ProgressAdvanced {
	return &ProgressAdvanced{
		BaseEvent: NewBaseEvent(EventProgressAdvanced, EntityUnit, fromUnitID),
		GroupID:   groupID,
		ToUnitID:  toUnitID,
	}
}
