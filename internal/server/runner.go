// Package server wires the daemon's long-running components together.
package server

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/vmunix/playhead/internal/catalog"
	"github.com/vmunix/playhead/internal/events"
	"github.com/vmunix/playhead/internal/session"
)

// Config for the runner.
type Config struct {
	Addr            string
	EventRetention  time.Duration
	PruneInterval   time.Duration
	ShutdownTimeout time.Duration
}

// Runner manages the daemon's components: the HTTP API, the playback
// session loops, and the storage maintenance loop.
type Runner struct {
	cfg      Config
	handler  http.Handler
	session  *session.Session // nil when no player backend is available
	eventLog *events.EventLog
	cache    *catalog.Cache
	logger   *slog.Logger
}

// NewRunner creates a new runner. session, eventLog, and cache may be nil;
// their loops are skipped.
func NewRunner(cfg Config, handler http.Handler, sess *session.Session, eventLog *events.EventLog, cache *catalog.Cache, logger *slog.Logger) *Runner {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.PruneInterval == 0 {
		cfg.PruneInterval = time.Hour
	}
	if cfg.ShutdownTimeout == 0 {
		cfg.ShutdownTimeout = 10 * time.Second
	}
	return &Runner{
		cfg:      cfg,
		handler:  handler,
		session:  sess,
		eventLog: eventLog,
		cache:    cache,
		logger:   logger.With("component", "runner"),
	}
}

// Run starts all components and blocks until the context is canceled or a
// component fails.
func (r *Runner) Run(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)

	httpServer := &http.Server{
		Addr:              r.cfg.Addr,
		Handler:           r.handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g.Go(func() error {
		r.logger.Info("http server listening", "addr", r.cfg.Addr)
		if err := httpServer.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), r.cfg.ShutdownTimeout)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			r.logger.Warn("http shutdown failed", "error", err)
		}
		return ctx.Err()
	})

	if r.session != nil {
		g.Go(func() error { return r.session.Run(ctx) })
	}

	g.Go(func() error { return r.pruneLoop(ctx) })

	err := g.Wait()
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

// pruneLoop periodically trims expired metadata cache entries and old
// persisted events.
func (r *Runner) pruneLoop(ctx context.Context) error {
	ticker := time.NewTicker(r.cfg.PruneInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			r.pruneOnce(ctx)
		}
	}
}

func (r *Runner) pruneOnce(ctx context.Context) {
	if r.eventLog != nil && r.cfg.EventRetention > 0 {
		n, err := r.eventLog.Prune(r.cfg.EventRetention)
		if err != nil {
			r.logger.Warn("event prune failed", "error", err)
		} else if n > 0 {
			r.logger.Debug("events pruned", "count", n)
		}
	}

	if r.cache != nil {
		n, err := r.cache.Prune(ctx)
		if err != nil {
			r.logger.Warn("cache prune failed", "error", err)
		} else if n > 0 {
			r.logger.Debug("cache entries pruned", "count", n)
		}
	}
}
