package v1

// resumeResponse is the API representation of a continuation record.
type resumeResponse struct {
	UnitID       string  `json:"unit_id"`
	GroupID      string  `json:"group_id"`
	GroupTitle   string  `json:"group_title"`
	UnitTitle    string  `json:"unit_title"`
	UnitSequence int     `json:"unit_sequence"`
	Thumbnail    *string `json:"thumbnail,omitempty"`
	PositionMS   int64   `json:"position_ms"`
	DurationMS   int64   `json:"duration_ms"`
	Fraction     float64 `json:"fraction"`
	UpdatedAtMS  int64   `json:"updated_at_ms"`
}

// listResumeResponse is the response for GET /resume.
type listResumeResponse struct {
	Items []resumeResponse `json:"items"`
	Limit int              `json:"limit"`
}

// sessionResponse is the response for GET /session and session mutations.
type sessionResponse struct {
	State      string  `json:"state"`
	UnitID     string  `json:"unit_id,omitempty"`
	GroupID    string  `json:"group_id,omitempty"`
	UnitTitle  string  `json:"unit_title,omitempty"`
	SourceURL  string  `json:"source_url,omitempty"`
	PositionMS int64   `json:"position_ms"`
	DurationMS int64   `json:"duration_ms"`
	Sources    []string `json:"sources,omitempty"`
}

// statusResponse is the response for GET /status.
type statusResponse struct {
	Version       string `json:"version"`
	UptimeSeconds int64  `json:"uptime_seconds"`
	SessionState  string `json:"session_state"`
}

// EventResponse is the API representation of a persisted event.
type EventResponse struct {
	ID         int64  `json:"id"`
	EventType  string `json:"event_type"`
	EntityType string `json:"entity_type"`
	EntityID   string `json:"entity_id"`
	OccurredAt string `json:"occurred_at"`
}

// listEventsResponse is the response for GET /events.
type listEventsResponse struct {
	Items  []EventResponse `json:"items"`
	Total  int             `json:"total"`
	Limit  int             `json:"limit"`
	Offset int             `json:"offset"`
}
