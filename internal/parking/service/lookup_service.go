package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"github.com/Kinsa/parking-attendant/internal/parking/store"
	"github.com/Kinsa/parking-attendant/internal/parking/types"
	"github.com/Kinsa/parking-attendant/internal/parking/vrm"
)

const (
	msgNoVRMMatch   = "No matches for VRM found."
	msgNoPlateMatch = "No results found."
)

// Options configures the lookup and entry services.
type Options struct {
	Logger *slog.Logger
	// Location interprets and formats wall-clock timestamps. Defaults to
	// time.Local.
	Location *time.Location
	// Now is read once per request. Defaults to time.Now.
	Now func() time.Time
	// DefaultWindowMinutes applies when a request omits the window.
	DefaultWindowMinutes int
}

func (o Options) withDefaults() Options {
	if o.Logger == nil {
		o.Logger = slog.Default()
	}
	if o.Location == nil {
		o.Location = time.Local
	}
	if o.Now == nil {
		o.Now = time.Now
	}
	if o.DefaultWindowMinutes <= 0 {
		o.DefaultWindowMinutes = DefaultWindowMinutes
	}
	return o
}

// LookupService answers "is this vehicle parked, and since when?".
type LookupService struct {
	matcher *CandidateMatcher
	opts    Options
}

func NewLookupService(s store.EntryStore, opts Options) *LookupService {
	opts = opts.withDefaults()
	return &LookupService{
		matcher: NewCandidateMatcher(s, opts.Logger),
		opts:    opts,
	}
}

// Sessions validates req and returns the resolved sessions together with the
// window they were resolved against. An empty slice means no match.
func (s *LookupService) Sessions(ctx context.Context, req types.LookupRequest) ([]ParkingSession, QueryWindow, error) {
	now := s.opts.Now()

	w, err := ParseQueryWindow(WindowParams{
		QueryTo:        req.QueryTo,
		QueryFrom:      req.QueryFrom,
		Window:         req.Window,
		DefaultMinutes: s.opts.DefaultWindowMinutes,
	}, now, s.opts.Location)
	if err != nil {
		return nil, QueryWindow{}, err
	}

	if strings.TrimSpace(req.VRM) == "" {
		return nil, QueryWindow{}, missingIdentifier("vrm", msgMissingVRM)
	}
	if !vrm.ValidFormat(req.VRM) {
		return nil, QueryWindow{}, invalidIdentifier("vrm")
	}
	pattern, err := vrm.Compile(req.VRM)
	if err != nil {
		return nil, QueryWindow{}, invalidIdentifier("vrm")
	}

	candidates, err := s.matcher.Match(ctx, req.VRM, pattern, w)
	if err != nil {
		return nil, QueryWindow{}, err
	}
	return ResolveSessions(req.VRM, candidates, w), w, nil
}

// Lookup runs a fuzzy VRM lookup. No match is a successful response holding
// a single "none" placeholder.
func (s *LookupService) Lookup(ctx context.Context, req types.LookupRequest) (_ types.LookupResponse, err error) {
	ctx, span := startSpan(ctx, "LookupService.Lookup", attribute.String("parking.vrm", req.VRM))
	var n int
	defer func() {
		recordLookup(modeVRM, n, err)
		finishSpan(span, err)
	}()

	sessions, _, err := s.Sessions(ctx, req)
	if err != nil {
		return types.LookupResponse{}, err
	}
	n = len(sessions)

	s.opts.Logger.DebugContext(ctx, "vehicle lookup",
		slog.String("vrm", req.VRM),
		slog.Int("results", n),
	)

	if n == 0 {
		return types.LookupResponse{
			Message: msgNoVRMMatch,
			Results: []types.SessionResult{{VRM: req.VRM, Session: string(SessionNone)}},
		}, nil
	}

	results := make([]types.SessionResult, 0, n)
	for _, ps := range sessions {
		start := ps.Start.Format(store.TimeLayout)
		end := ps.End.Format(store.TimeLayout)
		distance := ps.Distance
		results = append(results, types.SessionResult{
			VRM:          ps.Identifier,
			Session:      string(ps.State),
			SessionStart: &start,
			SessionEnd:   &end,
			Distance:     &distance,
		})
	}
	return types.LookupResponse{Message: countMessage(n), Results: results}, nil
}

// SearchPlate is the exact-or-prefix search behind the legacy /search
// endpoint. It applies the same time bounds and ranking as Lookup without
// the edit-distance strategy or the short-circuit rule.
func (s *LookupService) SearchPlate(ctx context.Context, req types.PlateSearchRequest) (_ types.PlateSearchResponse, err error) {
	ctx, span := startSpan(ctx, "LookupService.SearchPlate", attribute.String("parking.plate", req.Plate))
	var n int
	defer func() {
		recordLookup(modePlate, n, err)
		finishSpan(span, err)
	}()

	now := s.opts.Now()
	w, err := ParseQueryWindow(WindowParams{
		QueryTo:        req.Datetime,
		Window:         req.Window,
		DefaultMinutes: s.opts.DefaultWindowMinutes,
		ToField:        "datetime",
	}, now, s.opts.Location)
	if err != nil {
		return types.PlateSearchResponse{}, err
	}

	if strings.TrimSpace(req.Plate) == "" {
		return types.PlateSearchResponse{}, missingIdentifier("plate", msgMissingPlate)
	}
	pattern, err := vrm.Compile(req.Plate)
	if err != nil {
		return types.PlateSearchResponse{}, invalidIdentifier("plate")
	}

	candidates, err := s.matcher.MatchPrefix(ctx, req.Plate, pattern, w)
	if err != nil {
		return types.PlateSearchResponse{}, err
	}
	n = len(candidates)

	if n == 0 {
		return types.PlateSearchResponse{
			Message: msgNoPlateMatch,
			Results: []types.PlateResult{{LicensePlate: req.Plate, Expired: true}},
		}, nil
	}

	results := make([]types.PlateResult, 0, n)
	for _, c := range candidates {
		ps := classify(c, w)
		timeIn := ps.Start.Format(store.TimeLayout)
		expires := ps.End.Format(store.TimeLayout)
		results = append(results, types.PlateResult{
			LicensePlate:   ps.Identifier,
			TimeIn:         &timeIn,
			Expired:        ps.State == SessionFull,
			ExpirationTime: &expires,
		})
	}
	return types.PlateSearchResponse{Message: countMessage(n), Results: results, Found: true}, nil
}

func countMessage(n int) string {
	if n == 1 {
		return "1 result found."
	}
	return fmt.Sprintf("%d results found.", n)
}
