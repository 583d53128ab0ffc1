package service

import (
	"time"

	"github.com/Kinsa/parking-attendant/internal/parking/vrm"
)

// SessionState classifies a parking session relative to the reference time.
type SessionState string

const (
	// SessionNone marks the placeholder returned when nothing matched.
	SessionNone SessionState = "none"
	// SessionPartial: the allowance has not yet run out.
	SessionPartial SessionState = "partial"
	// SessionFull: the reference time is strictly after the session end.
	SessionFull SessionState = "full"
)

// ParkingSession is derived on read from a candidate and never stored.
type ParkingSession struct {
	Identifier string
	Start      time.Time
	End        time.Time
	State      SessionState
	Distance   int
}

// ResolveSessions classifies ranked candidates in order. The first partial
// session whose identifier equals query after normalization is returned on
// its own and the rest are discarded.
func ResolveSessions(query string, candidates []Candidate, w QueryWindow) []ParkingSession {
	sessions := make([]ParkingSession, 0, len(candidates))
	for _, c := range candidates {
		s := classify(c, w)
		if s.State == SessionPartial && vrm.Equal(c.Entry.Identifier, query) {
			return []ParkingSession{s}
		}
		sessions = append(sessions, s)
	}
	return sessions
}

func classify(c Candidate, w QueryWindow) ParkingSession {
	end := w.SessionEnd(c.EnteredAt)
	state := SessionPartial
	if w.Reference.After(end) {
		state = SessionFull
	}
	return ParkingSession{
		Identifier: c.Entry.Identifier,
		Start:      c.EnteredAt,
		End:        end,
		State:      state,
		Distance:   c.Distance,
	}
}
