package service

import (
	"math"
	"strconv"
	"time"

	"github.com/Kinsa/parking-attendant/internal/parking/store"
)

// DefaultWindowMinutes is the parking allowance used when a request leaves
// the window empty.
const DefaultWindowMinutes = 120

const maxWindowMinutes = math.MaxInt64 / int64(time.Minute)

// WindowParams are the raw temporal query parameters.
type WindowParams struct {
	QueryTo   string
	QueryFrom string
	Window    string
	// DefaultMinutes replaces an empty Window. Zero means DefaultWindowMinutes.
	DefaultMinutes int
	// ToField names QueryTo in errors. Defaults to "query_to".
	ToField string
}

// QueryWindow is a validated time range plus parking allowance.
//
// Invariants: DurationMinutes > 0; From set implies To set and From <= To;
// with both bounds set, Reference lies within them.
type QueryWindow struct {
	Reference       time.Time
	DurationMinutes int
	From            *time.Time
	To              *time.Time
}

// Duration is the parking allowance.
func (w QueryWindow) Duration() time.Duration {
	return time.Duration(w.DurationMinutes) * time.Minute
}

// SessionEnd is when a session that began at start runs out.
func (w QueryWindow) SessionEnd(start time.Time) time.Time {
	return start.Add(w.Duration())
}

// Contains reports whether an entry at t falls in the window: between From
// and To inclusive when From is set, otherwise at or before To (or the
// reference when To is unset).
func (w QueryWindow) Contains(t time.Time) bool {
	upper := w.Reference
	if w.To != nil {
		upper = *w.To
	}
	if t.After(upper) {
		return false
	}
	return w.From == nil || !t.Before(*w.From)
}

// upper is the inclusive upper time bound for store queries.
func (w QueryWindow) upper() time.Time {
	if w.To != nil {
		return *w.To
	}
	return w.Reference
}

// ParseQueryWindow validates p in a fixed order and returns the first
// failure: query_to, window, query_from, then range order. now is the
// request's single clock reading and is used only when QueryTo is empty.
// Timestamps are interpreted in loc (now's location when nil).
func ParseQueryWindow(p WindowParams, now time.Time, loc *time.Location) (QueryWindow, error) {
	if loc == nil {
		loc = now.Location()
	}

	toField := p.ToField
	if toField == "" {
		toField = "query_to"
	}

	ref := now.In(loc)
	if p.QueryTo != "" {
		t, err := ParseDateTime(toField, p.QueryTo, loc)
		if err != nil {
			return QueryWindow{}, err
		}
		ref = t
	}

	raw := p.Window
	if raw == "" {
		d := p.DefaultMinutes
		if d <= 0 {
			d = DefaultWindowMinutes
		}
		raw = strconv.Itoa(d)
	}
	minutes, err := parseWindow(raw)
	if err != nil {
		return QueryWindow{}, err
	}

	var from *time.Time
	if p.QueryFrom != "" {
		t, err := ParseDateTime("query_from", p.QueryFrom, loc)
		if err != nil {
			return QueryWindow{}, err
		}
		from = &t
	}

	if from != nil && from.After(ref) {
		return QueryWindow{}, rangeOrder()
	}

	to := ref
	return newQueryWindow(ref, minutes, from, &to)
}

// newQueryWindow builds a QueryWindow and enforces its invariants.
func newQueryWindow(ref time.Time, minutes int, from, to *time.Time) (QueryWindow, error) {
	if minutes <= 0 {
		return QueryWindow{}, invalidWindow()
	}
	if from != nil {
		if to == nil || from.After(*to) {
			return QueryWindow{}, rangeOrder()
		}
		if ref.Before(*from) || ref.After(*to) {
			return QueryWindow{}, referenceOutOfRange()
		}
	}
	return QueryWindow{Reference: ref, DurationMinutes: minutes, From: from, To: to}, nil
}

// ParseDateTime parses raw strictly as YYYY-MM-DD HH:MM:SS in loc. The value
// must format back to exactly raw, which rejects padding differences and
// calendar-invalid dates. field names the parameter in the error.
func ParseDateTime(field, raw string, loc *time.Location) (time.Time, error) {
	t, err := time.ParseInLocation(store.TimeLayout, raw, loc)
	if err != nil || t.Format(store.TimeLayout) != raw {
		return time.Time{}, invalidDate(field)
	}
	return t, nil
}

func parseWindow(raw string) (int, error) {
	for i := 0; i < len(raw); i++ {
		if raw[i] < '0' || raw[i] > '9' {
			return 0, invalidWindow()
		}
	}
	n, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || n <= 0 || n > maxWindowMinutes {
		return 0, invalidWindow()
	}
	return int(n), nil
}
