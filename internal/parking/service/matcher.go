package service

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"github.com/Kinsa/parking-attendant/internal/parking/store"
	"github.com/Kinsa/parking-attendant/internal/parking/vrm"
)

const (
	// MaxCandidateDistance bounds the edit-distance strategy.
	MaxCandidateDistance = 4
	// MaxTruncatedLength: only stored identifiers shorter than this are
	// considered by the edit-distance strategy.
	MaxTruncatedLength = 8
)

// Candidate is a stored entry that matched a query, with its parsed entry
// time and its edit distance from the query.
type Candidate struct {
	Entry     store.EntryRecord
	EnteredAt time.Time
	Distance  int
}

// CandidateMatcher retrieves time-bounded entries and keeps those that match
// a query identifier, ranked closest and most recent first.
type CandidateMatcher struct {
	store  store.EntryStore
	logger *slog.Logger
}

func NewCandidateMatcher(s store.EntryStore, logger *slog.Logger) *CandidateMatcher {
	if logger == nil {
		logger = slog.Default()
	}
	return &CandidateMatcher{store: s, logger: logger}
}

// Match returns entries within w whose identifier matches pattern, or lies
// within MaxCandidateDistance edits of identifier while being shorter than
// MaxTruncatedLength runes. The second strategy recovers truncated reads.
func (m *CandidateMatcher) Match(ctx context.Context, identifier string, pattern *vrm.Pattern, w QueryWindow) ([]Candidate, error) {
	hint := store.IdentifierHint{
		Mode:            store.HintFuzzy,
		Identifier:      identifier,
		Pattern:         pattern.String(),
		MaxDistance:     MaxCandidateDistance,
		MaxStoredLength: MaxTruncatedLength,
	}
	return m.collect(ctx, hint, identifier, pattern, w, func(stored string, distance int) bool {
		return distance <= MaxCandidateDistance && vrm.Length(stored) < MaxTruncatedLength
	})
}

// MatchPrefix returns entries within w whose identifier matches pattern or
// starts with identifier, ignoring case and spaces.
func (m *CandidateMatcher) MatchPrefix(ctx context.Context, identifier string, pattern *vrm.Pattern, w QueryWindow) ([]Candidate, error) {
	hint := store.IdentifierHint{
		Mode:       store.HintPrefix,
		Identifier: identifier,
		Pattern:    pattern.String(),
	}
	return m.collect(ctx, hint, identifier, pattern, w, func(stored string, _ int) bool {
		return vrm.HasPrefix(stored, identifier)
	})
}

func (m *CandidateMatcher) collect(
	ctx context.Context,
	hint store.IdentifierHint,
	identifier string,
	pattern *vrm.Pattern,
	w QueryWindow,
	fallback func(stored string, distance int) bool,
) (_ []Candidate, err error) {
	ctx, span := startSpan(ctx, "CandidateMatcher.collect",
		attribute.Int("parking.hint_mode", int(hint.Mode)),
	)
	defer func() { finishSpan(span, err) }()

	recs, err := m.store.Entries(ctx, store.EntryFilter{
		From: w.From,
		To:   w.upper(),
		Hint: &hint,
	})
	if err != nil {
		return nil, fmt.Errorf("fetch entries: %w", err)
	}

	loc := w.Reference.Location()
	seen := make(map[int64]struct{}, len(recs))
	out := make([]Candidate, 0, len(recs))

	for _, rec := range recs {
		if _, dup := seen[rec.ID]; dup {
			continue
		}
		seen[rec.ID] = struct{}{}

		distance := vrm.Distance(identifier, rec.Identifier)
		if !pattern.Match(rec.Identifier) && !fallback(rec.Identifier, distance) {
			continue
		}

		at, perr := time.ParseInLocation(store.TimeLayout, rec.EnteredAt, loc)
		if perr != nil {
			m.reportMalformed(ctx, &MalformedTimestampError{EntryID: rec.ID, Raw: rec.EnteredAt, Err: perr})
			continue
		}
		if !w.Contains(at) {
			continue
		}

		out = append(out, Candidate{Entry: rec, EnteredAt: at, Distance: distance})
	}

	sortCandidates(out)
	span.SetAttributes(
		attribute.Int("parking.entries_scanned", len(recs)),
		attribute.Int("parking.candidates", len(out)),
	)
	return out, nil
}

func (m *CandidateMatcher) reportMalformed(ctx context.Context, e *MalformedTimestampError) {
	malformedEntries.Inc()
	m.logger.ErrorContext(ctx, "skipping entry with unparseable entered_at",
		slog.Int64("entry_id", e.EntryID),
		slog.String("entered_at_raw", e.Raw),
		slog.String("error", e.Err.Error()),
	)
}

// sortCandidates orders by distance ascending, then entry time descending,
// then ID descending.
func sortCandidates(cs []Candidate) {
	sort.SliceStable(cs, func(i, j int) bool {
		a, b := cs[i], cs[j]
		if a.Distance != b.Distance {
			return a.Distance < b.Distance
		}
		if !a.EnteredAt.Equal(b.EnteredAt) {
			return a.EnteredAt.After(b.EnteredAt)
		}
		return a.Entry.ID > b.Entry.ID
	})
}
