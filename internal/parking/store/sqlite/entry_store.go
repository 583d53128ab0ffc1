package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	dbpkg "github.com/Kinsa/parking-attendant/internal/db"
	"github.com/Kinsa/parking-attendant/internal/parking/store"
)

// wellFormed holds for entered_at values that are valid calendar times in
// store.TimeLayout. SQLite normalizes out-of-range days such as Feb 31, so
// the round trip must be exact. Other rows bypass the time bounds so the
// caller can report them.
const wellFormed = `(datetime(entered_at) IS NOT NULL AND datetime(entered_at) = entered_at)`

type EntryStore struct {
	db     *sql.DB
	writer *dbpkg.Worker
}

func NewEntryStore(db *sql.DB, writer *dbpkg.Worker) *EntryStore {
	return &EntryStore{db: db, writer: writer}
}

func (s *EntryStore) RecordEntry(ctx context.Context, identifier string, enteredAt time.Time) (store.EntryRecord, error) {
	if enteredAt.IsZero() {
		enteredAt = time.Now()
	}
	rec := store.EntryRecord{
		Identifier: identifier,
		EnteredAt:  enteredAt.Format(store.TimeLayout),
	}
	createdMs := time.Now().UTC().UnixMilli()

	err := s.writer.Do(ctx, func(ctx context.Context, tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, `
INSERT INTO vehicle_entries(vrm, entered_at, created_at_ms)
VALUES (?, ?, ?);
`, rec.Identifier, rec.EnteredAt, createdMs)
		if err != nil {
			return fmt.Errorf("RecordEntry insert: %w", err)
		}
		rec.ID, err = res.LastInsertId()
		if err != nil {
			return fmt.Errorf("RecordEntry last insert id: %w", err)
		}
		return nil
	})
	if err != nil {
		return store.EntryRecord{}, err
	}
	return rec, nil
}

// Entries returns records entered within the filter's bounds, newest first.
// When a hint is present the identifier filter runs inside SQLite through
// the vrm_* functions.
func (s *EntryStore) Entries(ctx context.Context, f store.EntryFilter) ([]store.EntryRecord, error) {
	loc := f.To.Location()

	bounds := []string{"entered_at <= ?"}
	args := []any{f.To.Format(store.TimeLayout)}
	if f.From != nil {
		bounds = append(bounds, "entered_at >= ?")
		args = append(args, f.From.In(loc).Format(store.TimeLayout))
	}

	where := fmt.Sprintf("(NOT %s OR (%s))", wellFormed, strings.Join(bounds, " AND "))
	if f.Hint != nil {
		clause, hintArgs := hintClause(*f.Hint)
		if clause != "" {
			where += " AND " + clause
			args = append(args, hintArgs...)
		}
	}

	q := `
SELECT id, vrm, entered_at
FROM vehicle_entries
WHERE ` + where + `
ORDER BY entered_at DESC, id DESC;`

	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("Entries query: %w", err)
	}
	defer rows.Close()

	var out []store.EntryRecord
	for rows.Next() {
		var rec store.EntryRecord
		if err := rows.Scan(&rec.ID, &rec.Identifier, &rec.EnteredAt); err != nil {
			return nil, fmt.Errorf("Entries scan: %w", err)
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("Entries rows: %w", err)
	}
	return out, nil
}

func hintClause(h store.IdentifierHint) (string, []any) {
	var (
		alts []string
		args []any
	)
	if h.Pattern != "" {
		alts = append(alts, "vrm_match(?, vrm) = 1")
		args = append(args, h.Pattern)
	}
	switch h.Mode {
	case store.HintFuzzy:
		alts = append(alts, "(vrm_distance(?, vrm) <= ? AND length(vrm) < ?)")
		args = append(args, h.Identifier, h.MaxDistance, h.MaxStoredLength)
	case store.HintPrefix:
		if h.Identifier != "" {
			alts = append(alts, "vrm_prefix(?, vrm) = 1")
			args = append(args, h.Identifier)
		}
	}
	if len(alts) == 0 {
		return "", nil
	}
	return "(" + strings.Join(alts, " OR ") + ")", args
}

// PruneOlderThan deletes well-formed entries before cutoff and returns the
// number of rows deleted. Uses idx_vehicle_entries_entered_at.
func (s *EntryStore) PruneOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	c := cutoff.Format(store.TimeLayout)

	var deleted int64
	err := s.writer.Do(ctx, func(ctx context.Context, tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, `
DELETE FROM vehicle_entries
WHERE entered_at < ? AND `+wellFormed+`;
`, c)
		if err != nil {
			return fmt.Errorf("PruneOlderThan: %w", err)
		}
		deleted, _ = res.RowsAffected()
		return nil
	})
	return deleted, err
}
