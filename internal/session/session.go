// Package session implements the playback session state machine: it loads
// units from the catalog, drives the player backend, samples playback
// position, and feeds position samples through the continuation tracker.
//
// A daemon runs a single Session; loading a new unit reuses it.
package session

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/vmunix/playhead/internal/catalog"
	"github.com/vmunix/playhead/internal/events"
	"github.com/vmunix/playhead/internal/player"
	"github.com/vmunix/playhead/internal/resume"
)

var (
	// ErrNoPlayableSource means the catalog returned a unit with no usable
	// source URL. Fatal to the load; the session closes.
	ErrNoPlayableSource = errors.New("unit has no playable source")

	// ErrNotLoaded is returned by playback controls when no unit is loaded.
	ErrNotLoaded = errors.New("no unit loaded")

	// ErrNoSuccessor is returned by RequestNext at the end of a group.
	ErrNoSuccessor = errors.New("unit has no successor")

	// ErrNoPredecessor is returned by RequestPrevious at the start of a group.
	ErrNoPredecessor = errors.New("unit has no predecessor")

	// ErrUnknownSource is returned by SelectSource for a URL the loaded
	// unit does not list.
	ErrUnknownSource = errors.New("url is not a source of the loaded unit")
)

const (
	// DefaultPollInterval is how often the playing position is sampled.
	// Sampling is cheap (the backend serves the last observed value); the
	// debounce window bounds how often samples reach storage.
	DefaultPollInterval = time.Second

	// DefaultDebounceWindow is the minimum gap between two periodic policy
	// evaluations for the same unit. User-initiated evaluations (pause,
	// exit, source switch) bypass it.
	DefaultDebounceWindow = 15 * time.Second
)

// writeJob is one pending progress write. The pending slot holds at most
// one; a newer sample supersedes an unprocessed older one.
type writeJob struct {
	unit      resume.Unit
	successor *resume.Unit
	position  int64
	duration  int64
	reason    resume.ExitReason
}

// Session is the playback session state machine.
type Session struct {
	getter  catalog.Getter
	store   *resume.Store
	tracker *resume.Tracker
	backend player.Backend
	bus     *events.Bus
	log     *slog.Logger
	now     func() time.Time

	pollInterval   time.Duration
	debounceWindow time.Duration

	mu         sync.Mutex
	state      State
	unit       *catalog.Unit
	successor  *resume.Unit
	sourceURL  string
	durationMS int64
	positionMS int64
	// pendingSeekMS is applied once when the loaded source becomes ready,
	// then consumed.
	pendingSeekMS  int64
	hasPendingSeek bool
	lastEval       map[string]time.Time

	writes chan writeJob
}

// Option configures a Session.
type Option func(*Session)

// WithPollInterval overrides the position sampling interval.
func WithPollInterval(d time.Duration) Option {
	return func(s *Session) { s.pollInterval = d }
}

// WithDebounceWindow overrides the periodic evaluation debounce window.
func WithDebounceWindow(d time.Duration) Option {
	return func(s *Session) { s.debounceWindow = d }
}

// WithClock overrides the session clock.
func WithClock(now func() time.Time) Option {
	return func(s *Session) { s.now = now }
}

// New creates a session over its collaborators. bus may be nil.
func New(getter catalog.Getter, store *resume.Store, tracker *resume.Tracker, backend player.Backend, bus *events.Bus, logger *slog.Logger, opts ...Option) *Session {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Session{
		getter:         getter,
		store:          store,
		tracker:        tracker,
		backend:        backend,
		bus:            bus,
		log:            logger.With("component", "session"),
		now:            time.Now,
		pollInterval:   DefaultPollInterval,
		debounceWindow: DefaultDebounceWindow,
		state:          StateIdle,
		lastEval:       make(map[string]time.Time),
		writes:         make(chan writeJob, 1),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Run owns the session's background loops: position sampling, player ready
// handling, and the progress writer. It returns when ctx is cancelled,
// after one best-effort final save.
func (s *Session) Run(ctx context.Context) error {
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return s.pollLoop(gctx) })
	g.Go(func() error { return s.writeLoop(gctx) })
	err := g.Wait()

	// Teardown: timers are gone, do one synchronous final evaluation so a
	// daemon shutdown mid-playback still lands a resume point.
	s.finalSave(context.Background())
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

// pollLoop samples the player position and reacts to source readiness.
// It never blocks on storage; writes go through the pending slot.
func (s *Session) pollLoop(ctx context.Context) error {
	ticker := time.NewTicker(s.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case info := <-s.backend.Ready():
			s.handleReady(ctx, info)
		case <-ticker.C:
			s.handleTick(ctx)
		}
	}
}

// writeLoop drains the pending write slot. Running on its own goroutine
// keeps storage latency out of the sampling path.
func (s *Session) writeLoop(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case job := <-s.writes:
			s.runWrite(ctx, job)
		}
	}
}

// enqueueWrite places a job in the single pending slot, displacing any
// unprocessed older job. Later wins.
func (s *Session) enqueueWrite(job writeJob) {
	for {
		select {
		case s.writes <- job:
			return
		default:
		}
		select {
		case stale := <-s.writes:
			s.log.Debug("progress write superseded", "unit", stale.unit.ID)
		default:
		}
	}
}

func (s *Session) runWrite(ctx context.Context, job writeJob) {
	_, err := s.tracker.SaveProgress(ctx, job.unit, job.successor, job.position, job.duration, job.reason)
	if err != nil {
		// Non-fatal on the playback path: the next sample writes again.
		s.log.Warn("progress write failed", "unit", job.unit.ID, "error", err)
	}
}

// handleReady fires when the backend has loaded a source and measured its
// duration. The carry-over seek, when armed, is applied exactly once.
func (s *Session) handleReady(ctx context.Context, info player.ReadyInfo) {
	s.mu.Lock()
	if s.state != StateLoading || s.unit == nil {
		s.mu.Unlock()
		return
	}
	s.durationMS = info.DurationMS
	seek := s.hasPendingSeek
	seekMS := s.pendingSeekMS
	s.hasPendingSeek = false
	unitID := s.unit.ID
	s.mu.Unlock()

	if seek && seekMS > 0 {
		if err := s.backend.SeekTo(ctx, seekMS); err != nil {
			s.log.Warn("resume seek failed", "unit", unitID, "position_ms", seekMS, "error", err)
		}
	}
	if err := s.backend.Play(ctx); err != nil {
		s.log.Warn("play command failed", "unit", unitID, "error", err)
	}
	s.setState(ctx, StatePlaying)
	s.log.Info("playback started", "unit", unitID, "duration_ms", info.DurationMS, "resumed_at_ms", seekMS)
}

// handleTick samples the position while playing and, at most once per
// debounce window per unit, hands a periodic evaluation to the writer.
func (s *Session) handleTick(ctx context.Context) {
	s.mu.Lock()
	if s.state != StatePlaying || s.unit == nil {
		s.mu.Unlock()
		return
	}
	unit := s.unit
	successor := s.successor
	duration := s.durationMS
	s.mu.Unlock()

	pos, err := s.backend.Position(ctx)
	if err != nil {
		s.log.Warn("position sample failed", "unit", unit.ID, "error", err)
		return
	}

	s.mu.Lock()
	s.positionMS = pos
	now := s.now()
	if last, ok := s.lastEval[unit.ID]; ok && now.Sub(last) < s.debounceWindow {
		s.mu.Unlock()
		return
	}
	s.lastEval[unit.ID] = now
	s.mu.Unlock()

	s.enqueueWrite(writeJob{
		unit:      resumeUnit(unit),
		successor: successor,
		position:  pos,
		duration:  duration,
		reason:    resume.ReasonPeriodic,
	})
}

// evaluateNow runs a user-initiated policy evaluation synchronously,
// bypassing the debounce window. Storage failures are logged, not returned;
// the caller's control action proceeds regardless.
func (s *Session) evaluateNow(ctx context.Context, reason resume.ExitReason) {
	s.mu.Lock()
	if s.unit == nil {
		s.mu.Unlock()
		return
	}
	unit := resumeUnit(s.unit)
	successor := s.successor
	pos := s.positionMS
	dur := s.durationMS
	s.mu.Unlock()

	if p, err := s.backend.Position(ctx); err == nil && p > 0 {
		pos = p
	}

	if _, err := s.tracker.SaveProgress(ctx, unit, successor, pos, dur, reason); err != nil {
		s.log.Warn("progress write failed", "unit", unit.ID, "reason", reason.String(), "error", err)
	}
}

// finalSave is the teardown evaluation. Best effort.
func (s *Session) finalSave(ctx context.Context) {
	s.mu.Lock()
	active := s.state == StatePlaying || s.state == StatePaused
	s.mu.Unlock()
	if !active {
		return
	}
	s.evaluateNow(ctx, resume.ReasonUserExit)
	s.setState(ctx, StateClosed)
}

// setState transitions the machine and publishes the change.
func (s *Session) setState(ctx context.Context, to State) {
	s.mu.Lock()
	from := s.state
	if from == to {
		s.mu.Unlock()
		return
	}
	s.state = to
	unitID := ""
	if s.unit != nil {
		unitID = s.unit.ID
	}
	s.mu.Unlock()

	s.log.Debug("session state changed", "from", from.String(), "to", to.String(), "unit", unitID)
	if s.bus != nil {
		_ = s.bus.Publish(ctx, events.NewSessionStateChanged(unitID, from.String(), to.String()))
	}
}

// resumeUnit maps catalog metadata to the denormalized record fields.
func resumeUnit(u *catalog.Unit) resume.Unit {
	return resume.Unit{
		ID:           u.ID,
		GroupID:      u.GroupID,
		GroupTitle:   u.GroupTitle,
		Title:        u.Title,
		Sequence:     u.Sequence,
		ThumbnailRef: u.ThumbnailRef,
	}
}
