package resume

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/vmunix/playhead/internal/events"
)

// Tracker applies continuation policy decisions to the store.
//
// The store has transactions, so the two multi-statement sequences (persist
// with group exclusivity, advance to successor) each run in one transaction
// and readers never observe an intermediate state.
type Tracker struct {
	store  *Store
	policy Policy
	bus    *events.Bus // optional
	log    *slog.Logger
	now    func() time.Time
}

// NewTracker creates a tracker over the given store.
func NewTracker(store *Store, policy Policy, logger *slog.Logger) *Tracker {
	if logger == nil {
		logger = slog.Default()
	}
	return &Tracker{
		store:  store,
		policy: policy,
		log:    logger,
		now:    time.Now,
	}
}

// SetBus attaches an event bus. Progress mutations are published on it.
func (t *Tracker) SetBus(bus *events.Bus) {
	t.bus = bus
}

// SaveProgress evaluates the policy for a position sample and applies the
// resulting store mutation. successor may be nil when the unit has no known
// next unit; it is only consulted when the decision is to advance.
//
// Returns the decision taken. A non-nil error means the mutation failed;
// callers on the playback path log it and continue, since the next sample
// issues a fresh write anyway.
func (t *Tracker) SaveProgress(ctx context.Context, unit Unit, successor *Unit, positionMS, durationMS int64, reason ExitReason) (Decision, error) {
	decision := t.policy.Evaluate(positionMS, durationMS, reason)

	switch decision {
	case DecisionIgnore:
		return decision, nil

	case DecisionPersist:
		if err := t.persist(unit, positionMS, durationMS); err != nil {
			return decision, err
		}
		t.publish(ctx, events.NewProgressSaved(unit.ID, unit.GroupID, positionMS, durationMS, reason.String()))
		t.log.Debug("progress saved",
			"unit", unit.ID, "position_ms", positionMS, "duration_ms", durationMS, "reason", reason.String())

	case DecisionAdvance:
		if err := t.advance(unit, successor); err != nil {
			return decision, err
		}
		toID := ""
		if successor != nil {
			toID = successor.ID
		}
		t.publish(ctx, events.NewProgressAdvanced(unit.ID, unit.GroupID, toID))
		t.log.Info("unit finished, continuity advanced", "unit", unit.ID, "successor", toID)
	}

	return decision, nil
}

// persist writes the record and removes any other record for the group,
// atomically.
func (t *Tracker) persist(unit Unit, positionMS, durationMS int64) error {
	tx, err := t.store.Begin()
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if err := tx.DeleteOthersInGroup(unit.GroupID, unit.ID); err != nil {
		return err
	}
	if err := tx.Upsert(&Record{
		UnitID:       unit.ID,
		GroupID:      unit.GroupID,
		GroupTitle:   unit.GroupTitle,
		UnitTitle:    unit.Title,
		UnitSequence: unit.Sequence,
		ThumbnailRef: unit.ThumbnailRef,
		PositionMS:   positionMS,
		DurationMS:   durationMS,
		UpdatedAtMS:  t.now().UnixMilli(),
	}); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit progress: %w", err)
	}
	return nil
}

// advance drops the finished unit's record and, when a successor is known,
// seeds a zero-progress record for it so the group's continuation point
// survives the boundary. The seeded duration is SeededDurationMS until the
// successor actually plays and reports a measured one.
func (t *Tracker) advance(unit Unit, successor *Unit) error {
	tx, err := t.store.Begin()
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if successor != nil {
		if err := tx.Upsert(&Record{
			UnitID:       successor.ID,
			GroupID:      successor.GroupID,
			GroupTitle:   successor.GroupTitle,
			UnitTitle:    successor.Title,
			UnitSequence: successor.Sequence,
			ThumbnailRef: successor.ThumbnailRef,
			PositionMS:   0,
			DurationMS:   SeededDurationMS,
			UpdatedAtMS:  t.now().UnixMilli(),
		}); err != nil {
			return err
		}
		if err := tx.DeleteOthersInGroup(successor.GroupID, successor.ID); err != nil {
			return err
		}
	}
	// Covers a successor in a different group, and the no-successor case.
	if err := tx.Delete(unit.ID); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit advance: %w", err)
	}
	return nil
}

// Remove deletes a unit's record on explicit user request (clear history).
// This is the only path that reaches a delete without a policy evaluation.
func (t *Tracker) Remove(ctx context.Context, unitID string) error {
	if err := t.store.Delete(unitID); err != nil {
		return err
	}
	t.publish(ctx, events.NewProgressRemoved(unitID))
	return nil
}

func (t *Tracker) publish(ctx context.Context, e events.Event) {
	if t.bus == nil {
		return
	}
	_ = t.bus.Publish(ctx, e)
}
