package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/vmunix/playhead/internal/catalog"
	"github.com/vmunix/playhead/internal/events"
	"github.com/vmunix/playhead/internal/resume"
)

// Load fetches a unit from the catalog and starts playing it from its
// stored continuation point. Loading over an active unit first runs a
// user-exit evaluation for it, so its progress survives the switch.
//
// A unit with no playable source closes the session; that is fatal and not
// retried here.
func (s *Session) Load(ctx context.Context, unitID string) error {
	s.mu.Lock()
	active := s.state == StatePlaying || s.state == StatePaused
	s.mu.Unlock()
	if active {
		s.evaluateNow(ctx, resume.ReasonUserExit)
	}

	s.setState(ctx, StateLoading)

	unit, err := s.getter.GetUnit(ctx, unitID)
	if err != nil {
		s.close(ctx, fmt.Sprintf("metadata unavailable for %s", unitID))
		return fmt.Errorf("loading unit %s: %w", unitID, err)
	}

	sourceURL := unit.FirstPlayableSource()
	if sourceURL == "" {
		s.close(ctx, fmt.Sprintf("no playable source for %s", unitID))
		return fmt.Errorf("loading unit %s: %w", unitID, ErrNoPlayableSource)
	}

	// An unresolvable successor just means there is nothing to advance to.
	var successor *resume.Unit
	if unit.SuccessorID != "" {
		next, err := s.getter.GetUnit(ctx, unit.SuccessorID)
		if err != nil {
			s.log.Warn("successor lookup failed, treating as none",
				"unit", unitID, "successor", unit.SuccessorID, "error", err)
		} else {
			u := resumeUnit(next)
			successor = &u
		}
	}

	resumeAtMS := s.storedPosition(unit.ID)

	s.mu.Lock()
	s.unit = unit
	s.successor = successor
	s.sourceURL = sourceURL
	s.durationMS = 0
	s.positionMS = resumeAtMS
	s.pendingSeekMS = resumeAtMS
	s.hasPendingSeek = resumeAtMS > 0
	// A fresh load starts a fresh debounce window; this also keeps the map
	// from accumulating an entry per unit ever played.
	s.lastEval = make(map[string]time.Time)
	s.mu.Unlock()

	if err := s.backend.SetSource(ctx, sourceURL); err != nil {
		s.close(ctx, fmt.Sprintf("source load failed for %s", unitID))
		return fmt.Errorf("loading source for %s: %w", unitID, err)
	}

	s.log.Info("unit loading", "unit", unit.ID, "group", unit.GroupID, "resume_at_ms", resumeAtMS)
	return nil
}

// storedPosition looks up the continuation point for a unit. Absence or a
// storage failure both start playback from the beginning.
func (s *Session) storedPosition(unitID string) int64 {
	rec, err := s.store.Get(unitID)
	if err != nil {
		if !errors.Is(err, resume.ErrNotFound) {
			s.log.Warn("continuation lookup failed, starting from zero", "unit", unitID, "error", err)
		}
		return 0
	}
	return rec.PositionMS
}

// Pause suspends playback and immediately evaluates the sample, so a user
// who walks away mid-unit keeps their spot.
func (s *Session) Pause(ctx context.Context) error {
	s.mu.Lock()
	playing := s.state == StatePlaying
	s.mu.Unlock()
	if !playing {
		return ErrNotLoaded
	}

	if err := s.backend.Pause(ctx); err != nil {
		return fmt.Errorf("pausing playback: %w", err)
	}
	s.setState(ctx, StatePaused)
	s.evaluateNow(ctx, resume.ReasonPaused)
	return nil
}

// Play resumes paused playback.
func (s *Session) Play(ctx context.Context) error {
	s.mu.Lock()
	paused := s.state == StatePaused
	s.mu.Unlock()
	if !paused {
		return ErrNotLoaded
	}

	if err := s.backend.Play(ctx); err != nil {
		return fmt.Errorf("resuming playback: %w", err)
	}
	s.setState(ctx, StatePlaying)
	return nil
}

// RequestNext loads the current unit's successor. Load runs the user-exit
// evaluation for the outgoing unit.
func (s *Session) RequestNext(ctx context.Context) error {
	s.mu.Lock()
	unit := s.unit
	s.mu.Unlock()
	if unit == nil {
		return ErrNotLoaded
	}
	if unit.SuccessorID == "" {
		return ErrNoSuccessor
	}
	return s.Load(ctx, unit.SuccessorID)
}

// RequestPrevious loads the current unit's predecessor.
func (s *Session) RequestPrevious(ctx context.Context) error {
	s.mu.Lock()
	unit := s.unit
	s.mu.Unlock()
	if unit == nil {
		return ErrNotLoaded
	}
	if unit.PredecessorID == "" {
		return ErrNoPredecessor
	}
	return s.Load(ctx, unit.PredecessorID)
}

// SelectSource switches the loaded unit to another of its candidate
// sources, preserving the playback position across the reload. Selecting
// the current source is a no-op.
func (s *Session) SelectSource(ctx context.Context, url string) error {
	s.mu.Lock()
	unit := s.unit
	current := s.sourceURL
	s.mu.Unlock()
	if unit == nil {
		return ErrNotLoaded
	}
	if !unit.HasSource(url) {
		return ErrUnknownSource
	}
	if url == current {
		return nil
	}

	s.evaluateNow(ctx, resume.ReasonSourceSwitch)

	s.mu.Lock()
	carryOver := s.positionMS
	s.sourceURL = url
	s.durationMS = 0
	s.pendingSeekMS = carryOver
	s.hasPendingSeek = carryOver > 0
	s.mu.Unlock()

	s.setState(ctx, StateLoading)
	if err := s.backend.SetSource(ctx, url); err != nil {
		s.close(ctx, fmt.Sprintf("source switch failed for %s", unit.ID))
		return fmt.Errorf("switching source for %s: %w", unit.ID, err)
	}

	s.log.Info("source switched", "unit", unit.ID, "url", url, "carry_over_ms", carryOver)
	return nil
}

// Exit ends playback on user request, landing one final evaluation.
// Idempotent; exiting an idle or closed session does nothing.
func (s *Session) Exit(ctx context.Context) error {
	s.mu.Lock()
	if s.state == StateIdle || s.state == StateClosed {
		s.mu.Unlock()
		return nil
	}
	s.mu.Unlock()

	s.evaluateNow(ctx, resume.ReasonUserExit)
	if err := s.backend.Pause(ctx); err != nil {
		s.log.Warn("pause on exit failed", "error", err)
	}
	s.close(ctx, "")
	return nil
}

// close transitions to Closed and publishes the teardown event. errMsg is
// empty for a normal exit.
func (s *Session) close(ctx context.Context, errMsg string) {
	s.mu.Lock()
	if s.state == StateClosed {
		s.mu.Unlock()
		return
	}
	s.hasPendingSeek = false
	unitID := ""
	if s.unit != nil {
		unitID = s.unit.ID
	}
	s.mu.Unlock()

	s.setState(ctx, StateClosed)
	if s.bus != nil {
		_ = s.bus.Publish(ctx, events.NewSessionClosed(unitID, errMsg))
	}
	if errMsg != "" {
		s.log.Error("session closed", "unit", unitID, "error", errMsg)
	} else {
		s.log.Info("session closed", "unit", unitID)
	}
}

// Snapshot is the current session state as seen by the API.
type Snapshot struct {
	State      State
	Unit       *catalog.Unit
	SourceURL  string
	PositionMS int64
	DurationMS int64
}

// Snapshot returns a point-in-time copy of the session state.
func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Snapshot{
		State:      s.state,
		Unit:       s.unit,
		SourceURL:  s.sourceURL,
		PositionMS: s.positionMS,
		DurationMS: s.durationMS,
	}
}
