package v1

import (
	"context"
	"errors"

	"github.com/vmunix/playhead/internal/events"
	"github.com/vmunix/playhead/internal/resume"
	"github.com/vmunix/playhead/internal/session"
)

// SessionController defines the playback control surface the API exposes.
type SessionController interface {
	Load(ctx context.Context, unitID string) error
	Pause(ctx context.Context) error
	Play(ctx context.Context) error
	RequestNext(ctx context.Context) error
	RequestPrevious(ctx context.Context) error
	SelectSource(ctx context.Context, url string) error
	Exit(ctx context.Context) error
	Snapshot() session.Snapshot
}

// ServerDeps contains all dependencies for the API server.
// Required dependencies must be non-nil; optional dependencies may be nil.
type ServerDeps struct {
	// Required dependencies
	Store      *resume.Store
	Aggregator *resume.Aggregator
	Tracker    *resume.Tracker

	// Optional dependencies (nil if not configured)
	Session  SessionController // nil when no player backend is available
	EventLog *events.EventLog  // nil disables the event audit log
	Bus      *events.Bus       // nil disables live event streaming
	Version  string
}

// Validate checks that all required dependencies are provided.
func (d ServerDeps) Validate() error {
	if d.Store == nil {
		return errors.New("resume store is required")
	}
	if d.Aggregator == nil {
		return errors.New("resume aggregator is required")
	}
	if d.Tracker == nil {
		return errors.New("resume tracker is required")
	}
	return nil
}
