package server

import (
	"context"
	"database/sql"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"

	"github.com/vmunix/playhead/internal/catalog"
	"github.com/vmunix/playhead/internal/events"
	"github.com/vmunix/playhead/internal/migrations"
)

func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	_, err = db.Exec(migrations.InitialSQL)
	require.NoError(t, err)
	return db
}

func TestRunner_StartsAndStops(t *testing.T) {
	db := setupTestDB(t)

	runner := NewRunner(Config{
		Addr:          "127.0.0.1:0",
		PruneInterval: 50 * time.Millisecond,
	}, http.NewServeMux(), nil, events.NewEventLog(db), catalog.NewCache(db), nil)

	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() {
		done <- runner.Run(ctx)
	}()

	time.Sleep(100 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err, "cancellation is a clean shutdown")
	case <-time.After(2 * time.Second):
		t.Fatal("timeout waiting for runner to stop")
	}
}

func TestRunner_PruneOnce(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	eventLog := events.NewEventLog(db)
	cache := catalog.NewCache(db)

	// An event old enough to prune and a cache entry already expired.
	_, err := db.Exec(`
		INSERT INTO events (event_type, entity_type, entity_id, payload, occurred_at)
		VALUES ('progress.saved', 'unit', 'ep-1', '{}', ?)`,
		time.Now().Add(-48*time.Hour))
	require.NoError(t, err)
	require.NoError(t, cache.Set(ctx, "unit:ep-1", []byte(`{}`), -time.Minute))

	runner := NewRunner(Config{
		Addr:           "127.0.0.1:0",
		EventRetention: 24 * time.Hour,
	}, http.NewServeMux(), nil, eventLog, cache, nil)

	runner.pruneOnce(ctx)

	var eventCount int
	require.NoError(t, db.QueryRow("SELECT COUNT(*) FROM events").Scan(&eventCount))
	assert.Equal(t, 0, eventCount)

	_, ok := cache.Get(ctx, "unit:ep-1")
	assert.False(t, ok)
}
