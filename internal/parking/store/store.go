package store

import (
	"context"
	"time"
)

// TimeLayout is the textual form entry times are stored and exchanged in.
const TimeLayout = "2006-01-02 15:04:05"

// EntryRecord is one vehicle entry event. EnteredAt is kept as the raw
// stored text; callers parse it with TimeLayout and must tolerate failures.
type EntryRecord struct {
	ID         int64
	Identifier string
	EnteredAt  string
}

// HintMode selects which identifier filter a store may apply natively.
type HintMode int

const (
	// HintFuzzy: pattern match, or edit distance within MaxDistance for
	// identifiers shorter than MaxStoredLength.
	HintFuzzy HintMode = iota
	// HintPrefix: pattern match, or the stored identifier starts with the
	// query.
	HintPrefix
)

// IdentifierHint describes the identifier filter the caller will apply.
// Stores may use it to narrow results; they must never return fewer records
// than the filter would keep.
type IdentifierHint struct {
	Mode            HintMode
	Identifier      string
	Pattern         string
	MaxDistance     int
	MaxStoredLength int
}

// EntryFilter bounds a query by entry time. From is optional; To is
// inclusive. Bounds are compared in To's location.
type EntryFilter struct {
	From *time.Time
	To   time.Time
	Hint *IdentifierHint
}

// EntryStore is the append-only log of entry events.
type EntryStore interface {
	RecordEntry(ctx context.Context, identifier string, enteredAt time.Time) (EntryRecord, error)
	Entries(ctx context.Context, f EntryFilter) ([]EntryRecord, error)
	PruneOlderThan(ctx context.Context, cutoff time.Time) (int64, error)
}
