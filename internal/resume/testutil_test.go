package resume

import (
	"database/sql"
	_ "embed"
	"testing"
	"time"

	_ "modernc.org/sqlite"
)

//go:embed testdata/schema.sql
var testSchema string

func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	if _, err := db.Exec(testSchema); err != nil {
		t.Fatalf("apply schema: %v", err)
	}
	return db
}

// ptr is a helper to create pointer to value
func ptr[T any](v T) *T {
	return &v
}

func testRecord(unitID, groupID string, positionMS, durationMS int64) *Record {
	return &Record{
		UnitID:       unitID,
		GroupID:      groupID,
		GroupTitle:   "Cosmos",
		UnitTitle:    "Episode " + unitID,
		UnitSequence: 1,
		ThumbnailRef: ptr("https://img.example/" + unitID + ".jpg"),
		PositionMS:   positionMS,
		DurationMS:   durationMS,
		UpdatedAtMS:  time.Now().UnixMilli(),
	}
}
