package resume

import (
	"fmt"
)

const recordColumns = "unit_id, group_id, group_title, unit_title, unit_sequence, thumbnail_ref, position_ms, duration_ms, updated_at_ms"

func upsertRecord(q querier, r *Record) error {
	_, err := q.Exec(`
		INSERT INTO continue_watching (`+recordColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(unit_id) DO UPDATE SET
			group_id = excluded.group_id,
			group_title = excluded.group_title,
			unit_title = excluded.unit_title,
			unit_sequence = excluded.unit_sequence,
			thumbnail_ref = excluded.thumbnail_ref,
			position_ms = excluded.position_ms,
			duration_ms = excluded.duration_ms,
			updated_at_ms = excluded.updated_at_ms`,
		r.UnitID, r.GroupID, r.GroupTitle, r.UnitTitle, r.UnitSequence,
		r.ThumbnailRef, r.PositionMS, r.DurationMS, r.UpdatedAtMS,
	)
	if err != nil {
		return fmt.Errorf("upsert record %s: %w", r.UnitID, mapSQLiteError(err))
	}
	return nil
}

// Upsert inserts or fully replaces the record for r.UnitID. Idempotent.
func (s *Store) Upsert(r *Record) error { return upsertRecord(s.db, r) }

// Upsert inserts or fully replaces a record within a transaction.
func (t *Tx) Upsert(r *Record) error { return upsertRecord(t.tx, r) }

func scanRecord(row interface{ Scan(...any) error }) (*Record, error) {
	r := &Record{}
	err := row.Scan(&r.UnitID, &r.GroupID, &r.GroupTitle, &r.UnitTitle,
		&r.UnitSequence, &r.ThumbnailRef, &r.PositionMS, &r.DurationMS, &r.UpdatedAtMS)
	if err != nil {
		return nil, err
	}
	return r, nil
}

func getRecord(q querier, unitID string) (*Record, error) {
	r, err := scanRecord(q.QueryRow(`
		SELECT `+recordColumns+` FROM continue_watching WHERE unit_id = ?`, unitID))
	if err != nil {
		return nil, fmt.Errorf("get record %s: %w", unitID, mapSQLiteError(err))
	}
	return r, nil
}

// Get retrieves the record for a unit.
// Returns ErrNotFound if no record exists.
func (s *Store) Get(unitID string) (*Record, error) { return getRecord(s.db, unitID) }

// Get retrieves the record for a unit within a transaction.
func (t *Tx) Get(unitID string) (*Record, error) { return getRecord(t.tx, unitID) }

func latestForGroup(q querier, groupID string) (*Record, error) {
	// At most one record per group exists by invariant; the ordering is a
	// defensive tie-break for readers that race an auto-advance.
	r, err := scanRecord(q.QueryRow(`
		SELECT `+recordColumns+` FROM continue_watching
		WHERE group_id = ?
		ORDER BY updated_at_ms DESC
		LIMIT 1`, groupID))
	if err != nil {
		return nil, fmt.Errorf("latest for group %s: %w", groupID, mapSQLiteError(err))
	}
	return r, nil
}

// LatestForGroup returns the continuation record for a group.
// Returns ErrNotFound if the group has no record.
func (s *Store) LatestForGroup(groupID string) (*Record, error) { return latestForGroup(s.db, groupID) }

// LatestForGroup returns the continuation record for a group within a transaction.
func (t *Tx) LatestForGroup(groupID string) (*Record, error) { return latestForGroup(t.tx, groupID) }

func deleteRecord(q querier, unitID string) error {
	_, err := q.Exec("DELETE FROM continue_watching WHERE unit_id = ?", unitID)
	if err != nil {
		return fmt.Errorf("delete record %s: %w", unitID, mapSQLiteError(err))
	}
	return nil
}

// Delete removes the record for a unit.
// This operation is idempotent - no error is returned if the record does not exist.
func (s *Store) Delete(unitID string) error { return deleteRecord(s.db, unitID) }

// Delete removes the record for a unit within a transaction.
func (t *Tx) Delete(unitID string) error { return deleteRecord(t.tx, unitID) }

func deleteOthersInGroup(q querier, groupID, keepUnitID string) error {
	_, err := q.Exec(`
		DELETE FROM continue_watching
		WHERE group_id = ? AND unit_id != ?`, groupID, keepUnitID)
	if err != nil {
		return fmt.Errorf("delete others in group %s: %w", groupID, mapSQLiteError(err))
	}
	return nil
}

// DeleteOthersInGroup removes every record for the group except keepUnitID.
// Enforces the at-most-one-record-per-group invariant before an upsert.
func (s *Store) DeleteOthersInGroup(groupID, keepUnitID string) error {
	return deleteOthersInGroup(s.db, groupID, keepUnitID)
}

// DeleteOthersInGroup removes other group records within a transaction.
func (t *Tx) DeleteOthersInGroup(groupID, keepUnitID string) error {
	return deleteOthersInGroup(t.tx, groupID, keepUnitID)
}

func listRecords(q querier, limit int) ([]*Record, error) {
	rows, err := q.Query(`
		SELECT `+recordColumns+` FROM continue_watching
		ORDER BY updated_at_ms DESC
		LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("list records: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var results []*Record
	for rows.Next() {
		r, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("scan record: %w", err)
		}
		results = append(results, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate records: %w", err)
	}

	return results, nil
}

// List returns up to limit records ordered by most recently updated.
// Backs the continue-watching rail; no pagination cursor is needed.
func (s *Store) List(limit int) ([]*Record, error) { return listRecords(s.db, limit) }

// List returns recently updated records within a transaction.
func (t *Tx) List(limit int) ([]*Record, error) { return listRecords(t.tx, limit) }
