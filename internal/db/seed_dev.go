package db

import (
	"context"
	"database/sql"
	"fmt"
	"math/rand/v2"
	"time"
)

// EntryTimeLayout is the text form of vehicle_entries.entered_at.
const EntryTimeLayout = "2006-01-02 15:04:05"

type SeedDevOptions struct {
	// Count defaults to 20.
	Count int
	// Now anchors "yesterday". Defaults to time.Now().
	Now time.Time
	// Rand lets tests make the fixture set deterministic.
	Rand *rand.Rand
}

// SeedDev inserts random "MAyy XXX" registrations entered at random minutes
// of the day before opt.Now. It returns the number of rows inserted.
func SeedDev(ctx context.Context, db *sql.DB, opt SeedDevOptions) (int, error) {
	if opt.Count <= 0 {
		opt.Count = 20
	}
	if opt.Now.IsZero() {
		opt.Now = time.Now()
	}
	r := opt.Rand
	if r == nil {
		r = rand.New(rand.NewPCG(uint64(opt.Now.UnixNano()), 0x5eed))
	}

	y, m, d := opt.Now.AddDate(0, 0, -1).Date()
	createdMs := opt.Now.UTC().UnixMilli()

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("seed begin: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx,
		"INSERT INTO vehicle_entries(vrm, entered_at, created_at_ms) VALUES (?, ?, ?);")
	if err != nil {
		return 0, fmt.Errorf("seed prepare: %w", err)
	}
	defer stmt.Close()

	for i := 0; i < opt.Count; i++ {
		at := time.Date(y, m, d, r.IntN(24), r.IntN(60), 0, 0, opt.Now.Location())
		if _, err := stmt.ExecContext(ctx, randomPlate(r), at.Format(EntryTimeLayout), createdMs); err != nil {
			return i, fmt.Errorf("seed vehicle_entries: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("seed commit: %w", err)
	}
	return opt.Count, nil
}

// randomPlate returns a plate in the current-style "MA" + two-digit year +
// three letters form, e.g. "MA07 QRT".
func randomPlate(r *rand.Rand) string {
	year := 1990 + r.IntN(36)
	return fmt.Sprintf("MA%02d %c%c%c", year%100,
		'A'+rune(r.IntN(26)), 'A'+rune(r.IntN(26)), 'A'+rune(r.IntN(26)))
}
