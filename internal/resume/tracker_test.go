package resume

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testUnit(id, groupID string, seq int) Unit {
	return Unit{
		ID:         id,
		GroupID:    groupID,
		GroupTitle: "Cosmos",
		Title:      "Episode " + id,
		Sequence:   seq,
	}
}

func newTestTracker(t *testing.T) (*Tracker, *Store) {
	t.Helper()
	store := NewStore(setupTestDB(t))
	tr := NewTracker(store, NewPolicy(DefaultParams()), nil)
	return tr, store
}

func TestTracker_PersistWritesRecord(t *testing.T) {
	tr, store := newTestTracker(t)
	ctx := context.Background()

	d, err := tr.SaveProgress(ctx, testUnit("ep-1", "cosmos", 1), nil, 120_000, 1_500_000, ReasonPeriodic)
	require.NoError(t, err)
	assert.Equal(t, DecisionPersist, d)

	got, err := store.Get("ep-1")
	require.NoError(t, err)
	assert.Equal(t, int64(120_000), got.PositionMS)
	assert.Equal(t, int64(1_500_000), got.DurationMS)
	assert.Equal(t, "Cosmos", got.GroupTitle)
	assert.NotZero(t, got.UpdatedAtMS)
}

func TestTracker_PersistEnforcesGroupExclusivity(t *testing.T) {
	tr, store := newTestTracker(t)
	ctx := context.Background()

	_, err := tr.SaveProgress(ctx, testUnit("ep-1", "cosmos", 1), nil, 120_000, 1_500_000, ReasonPeriodic)
	require.NoError(t, err)
	_, err = tr.SaveProgress(ctx, testUnit("ep-2", "cosmos", 2), nil, 60_000, 1_500_000, ReasonPeriodic)
	require.NoError(t, err)

	_, err = store.Get("ep-1")
	assert.ErrorIs(t, err, ErrNotFound, "earlier unit in the group must be dropped")

	latest, err := store.LatestForGroup("cosmos")
	require.NoError(t, err)
	assert.Equal(t, "ep-2", latest.UnitID)
}

func TestTracker_IgnoreWritesNothing(t *testing.T) {
	tr, store := newTestTracker(t)
	ctx := context.Background()

	// Duration unknown: no record may be written at all.
	d, err := tr.SaveProgress(ctx, testUnit("ep-1", "cosmos", 1), nil, 20_000, 0, ReasonPeriodic)
	require.NoError(t, err)
	assert.Equal(t, DecisionIgnore, d)

	// Barely started: same.
	d, err = tr.SaveProgress(ctx, testUnit("ep-1", "cosmos", 1), nil, 3_000, 1_500_000, ReasonPeriodic)
	require.NoError(t, err)
	assert.Equal(t, DecisionIgnore, d)

	_, err = store.Get("ep-1")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestTracker_AdvanceSeedsSuccessor(t *testing.T) {
	tr, store := newTestTracker(t)
	ctx := context.Background()

	unitA := testUnit("ep-a", "cosmos", 1)
	unitB := testUnit("ep-b", "cosmos", 2)

	// Establish A's record, then finish it on a periodic tick.
	_, err := tr.SaveProgress(ctx, unitA, &unitB, 150_000, 300_000, ReasonPeriodic)
	require.NoError(t, err)

	d, err := tr.SaveProgress(ctx, unitA, &unitB, 290_000, 300_000, ReasonPeriodic)
	require.NoError(t, err)
	assert.Equal(t, DecisionAdvance, d)

	_, err = store.Get("ep-a")
	assert.ErrorIs(t, err, ErrNotFound, "finished unit's record must be absent")

	b, err := store.Get("ep-b")
	require.NoError(t, err)
	assert.Equal(t, int64(0), b.PositionMS)
	assert.Equal(t, int64(SeededDurationMS), b.DurationMS)

	// Opening the group's detail view afterward offers "continue" at B.
	latest, err := NewAggregator(store).LatestForGroup("cosmos")
	require.NoError(t, err)
	require.NotNil(t, latest)
	assert.Equal(t, "ep-b", latest.UnitID)
}

func TestTracker_AdvanceWithoutSuccessor(t *testing.T) {
	tr, store := newTestTracker(t)
	ctx := context.Background()

	unit := testUnit("ep-final", "cosmos", 12)
	_, err := tr.SaveProgress(ctx, unit, nil, 150_000, 300_000, ReasonPeriodic)
	require.NoError(t, err)

	d, err := tr.SaveProgress(ctx, unit, nil, 290_000, 300_000, ReasonPeriodic)
	require.NoError(t, err)
	assert.Equal(t, DecisionAdvance, d)

	// Group has no continuation point left.
	latest, err := NewAggregator(store).LatestForGroup("cosmos")
	require.NoError(t, err)
	assert.Nil(t, latest)
}

func TestTracker_UserExitNearEndPersists(t *testing.T) {
	tr, store := newTestTracker(t)
	ctx := context.Background()

	unitA := testUnit("ep-a", "cosmos", 1)
	unitB := testUnit("ep-b", "cosmos", 2)

	d, err := tr.SaveProgress(ctx, unitA, &unitB, 588_000, 600_000, ReasonUserExit)
	require.NoError(t, err)
	assert.Equal(t, DecisionPersist, d)

	got, err := store.Get("ep-a")
	require.NoError(t, err)
	assert.Equal(t, int64(588_000), got.PositionMS)

	_, err = store.Get("ep-b")
	assert.ErrorIs(t, err, ErrNotFound, "user exit must not seed the successor")
}

func TestTracker_UpdatedAtNonDecreasing(t *testing.T) {
	tr, store := newTestTracker(t)
	ctx := context.Background()

	clock := time.UnixMilli(1_700_000_000_000)
	tr.now = func() time.Time { return clock }

	unit := testUnit("ep-1", "cosmos", 1)
	_, err := tr.SaveProgress(ctx, unit, nil, 60_000, 1_500_000, ReasonPeriodic)
	require.NoError(t, err)
	first, err := store.Get("ep-1")
	require.NoError(t, err)

	clock = clock.Add(15 * time.Second)
	_, err = tr.SaveProgress(ctx, unit, nil, 75_000, 1_500_000, ReasonPeriodic)
	require.NoError(t, err)
	second, err := store.Get("ep-1")
	require.NoError(t, err)

	assert.GreaterOrEqual(t, second.UpdatedAtMS, first.UpdatedAtMS)
}

func TestTracker_Remove(t *testing.T) {
	tr, store := newTestTracker(t)
	ctx := context.Background()

	_, err := tr.SaveProgress(ctx, testUnit("ep-1", "cosmos", 1), nil, 120_000, 1_500_000, ReasonPeriodic)
	require.NoError(t, err)

	require.NoError(t, tr.Remove(ctx, "ep-1"))
	_, err = store.Get("ep-1")
	assert.ErrorIs(t, err, ErrNotFound)

	// Removing again is a no-op.
	require.NoError(t, tr.Remove(ctx, "ep-1"))
}

func TestAggregator_ContinueWatching(t *testing.T) {
	tr, store := newTestTracker(t)
	ctx := context.Background()

	clock := time.UnixMilli(1_700_000_000_000)
	tr.now = func() time.Time { return clock }

	for i, u := range []Unit{
		testUnit("ep-1", "cosmos", 1),
		testUnit("other-1", "voyager", 1),
		testUnit("third-1", "horizon", 1),
	} {
		clock = clock.Add(time.Duration(i+1) * time.Minute)
		_, err := tr.SaveProgress(ctx, u, nil, 120_000, 1_500_000, ReasonPeriodic)
		require.NoError(t, err)
	}

	agg := NewAggregator(store)
	rail, err := agg.ContinueWatching(0)
	require.NoError(t, err)
	require.Len(t, rail, 3)
	assert.Equal(t, "third-1", rail[0].UnitID, "rail is newest first")

	rail, err = agg.ContinueWatching(2)
	require.NoError(t, err)
	assert.Len(t, rail, 2)
}

func TestAggregator_LatestForGroupMissing(t *testing.T) {
	_, store := newTestTracker(t)

	latest, err := NewAggregator(store).LatestForGroup("nope")
	require.NoError(t, err)
	assert.Nil(t, latest)
}

func TestTracker_StorageFailureSurfacesError(t *testing.T) {
	db := setupTestDB(t)
	store := NewStore(db)
	tr := NewTracker(store, NewPolicy(DefaultParams()), nil)

	require.NoError(t, db.Close())

	_, err := tr.SaveProgress(context.Background(), testUnit("ep-1", "cosmos", 1), nil, 120_000, 1_500_000, ReasonPeriodic)
	if err == nil || errors.Is(err, ErrNotFound) {
		t.Fatalf("expected a storage error, got %v", err)
	}
}
