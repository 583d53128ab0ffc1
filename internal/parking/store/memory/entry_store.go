package memory

import (
	"context"
	"sync"
	"time"

	"github.com/Kinsa/parking-attendant/internal/parking/store"
)

// EntryStore is an in-memory append-only entry log.
// It is intended for use in tests and dev environments.
//
// It does not evaluate identifier hints. Records whose entry time cannot be
// parsed are returned regardless of the time bounds so the caller sees them.
type EntryStore struct {
	mu      sync.RWMutex
	nextID  int64
	entries []store.EntryRecord
}

func NewEntryStore() *EntryStore {
	return &EntryStore{nextID: 1}
}

func (s *EntryStore) RecordEntry(_ context.Context, identifier string, enteredAt time.Time) (store.EntryRecord, error) {
	if enteredAt.IsZero() {
		enteredAt = time.Now()
	}
	return s.Append(identifier, enteredAt.Format(store.TimeLayout)), nil
}

// Append stores a record with a raw entry time, bypassing formatting.
// Tests use it to plant malformed timestamps.
func (s *EntryStore) Append(identifier, enteredAt string) store.EntryRecord {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec := store.EntryRecord{ID: s.nextID, Identifier: identifier, EnteredAt: enteredAt}
	s.nextID++
	s.entries = append(s.entries, rec)
	return rec
}

func (s *EntryStore) Entries(_ context.Context, f store.EntryFilter) ([]store.EntryRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	loc := f.To.Location()
	out := make([]store.EntryRecord, 0, len(s.entries))
	for _, rec := range s.entries {
		t, err := time.ParseInLocation(store.TimeLayout, rec.EnteredAt, loc)
		if err != nil {
			out = append(out, rec)
			continue
		}
		if t.After(f.To) {
			continue
		}
		if f.From != nil && t.Before(*f.From) {
			continue
		}
		out = append(out, rec)
	}
	return out, nil
}

func (s *EntryStore) PruneOlderThan(_ context.Context, cutoff time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	kept := s.entries[:0]
	var deleted int64
	for _, rec := range s.entries {
		t, err := time.ParseInLocation(store.TimeLayout, rec.EnteredAt, cutoff.Location())
		if err == nil && t.Before(cutoff) {
			deleted++
			continue
		}
		kept = append(kept, rec)
	}
	s.entries = kept
	return deleted, nil
}

// Len returns the number of stored entries. Test-only helper.
func (s *EntryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}
