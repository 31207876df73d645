package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	_ "modernc.org/sqlite"

	v1 "github.com/vmunix/playhead/internal/api/v1"
	"github.com/vmunix/playhead/internal/catalog"
	"github.com/vmunix/playhead/internal/config"
	"github.com/vmunix/playhead/internal/events"
	"github.com/vmunix/playhead/internal/migrations"
	"github.com/vmunix/playhead/internal/player"
	"github.com/vmunix/playhead/internal/resume"
	"github.com/vmunix/playhead/internal/server"
	"github.com/vmunix/playhead/internal/session"
)

func parseLogLevel(s string) slog.Level {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	if r.status == 200 { // Only capture first WriteHeader call
		r.status = code
	}
	r.ResponseWriter.WriteHeader(code)
}

func logRequests(next http.Handler, log *slog.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		wrapped := &statusRecorder{ResponseWriter: w, status: 200}
		next.ServeHTTP(wrapped, r)
		log.Info("http request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", wrapped.status,
			"duration_ms", time.Since(start).Milliseconds(),
		)
	})
}

func runServer(configPath string) error {
	if configPath == "" {
		discovered, err := config.Discover()
		if err != nil {
			return fmt.Errorf("config: %w", err)
		}
		configPath = discovered
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: parseLogLevel(cfg.Server.LogLevel),
	}))

	dbDir := filepath.Dir(cfg.Database.Path)
	if err := os.MkdirAll(dbDir, 0755); err != nil {
		return fmt.Errorf("create db dir: %w", err)
	}

	db, err := sql.Open("sqlite", cfg.Database.Path)
	if err != nil {
		return fmt.Errorf("open db: %w", err)
	}
	defer func() { _ = db.Close() }()

	if _, err := db.Exec(migrations.InitialSQL); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}

	// === Engine ===
	store := resume.NewStore(db)
	policy := resume.NewPolicy(resume.Params{
		MinStartMS:          cfg.Policy.MinStartMS,
		MinStartExitMS:      cfg.Policy.MinStartExitMS,
		FinishedRemainingMS: cfg.Policy.FinishedRemainingMS,
		FinishedFraction:    cfg.Policy.FinishedFraction,
	})
	tracker := resume.NewTracker(store, policy, logger.With("component", "tracker"))
	aggregator := resume.NewAggregator(store)

	eventLog := events.NewEventLog(db)
	bus := events.NewBus(eventLog, logger.With("component", "bus"))
	defer func() { _ = bus.Close() }()
	tracker.SetBus(bus)

	// === Catalog ===
	cache := catalog.NewCache(db)
	getter := catalog.NewCached(catalog.NewClient(cfg.Catalog.URL), cache,
		logger.With("component", "catalog")).WithTTL(cfg.Catalog.CacheTTL.Duration)

	// === Player + session (optional: the read API works without them) ===
	var sess *session.Session
	if player.Available() {
		backend, err := player.NewMPV()
		if err != nil {
			return fmt.Errorf("start player: %w", err)
		}
		defer func() { _ = backend.Close() }()

		sess = session.New(getter, store, tracker, backend, bus,
			logger, session.WithPollInterval(cfg.Player.PollInterval.Duration))
	} else {
		logger.Warn("mpv not found in PATH, session endpoints disabled")
	}

	// === HTTP ===
	deps := v1.ServerDeps{
		Store:      store,
		Aggregator: aggregator,
		Tracker:    tracker,
		EventLog:   eventLog,
		Bus:        bus,
		Version:    version,
	}
	if sess != nil {
		deps.Session = sess
	}
	apiV1, err := v1.New(deps)
	if err != nil {
		return fmt.Errorf("api: %w", err)
	}

	mux := http.NewServeMux()
	apiV1.RegisterRoutes(mux)

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	logger.Info("server starting",
		"addr", addr,
		"database", cfg.Database.Path,
		"catalog", cfg.Catalog.URL,
		"player", sess != nil,
		"log_level", cfg.Server.LogLevel,
	)

	runner := server.NewRunner(server.Config{
		Addr:           addr,
		EventRetention: cfg.Events.Retention.Duration,
	}, logRequests(mux, logger), sess, eventLog, cache, logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := runner.Run(ctx); err != nil {
		return fmt.Errorf("run: %w", err)
	}

	logger.Info("server stopped")
	return nil
}
