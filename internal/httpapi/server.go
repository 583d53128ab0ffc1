package httpapi

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/Kinsa/parking-attendant/internal/parking/service"
)

type Dependencies struct {
	Logger        *slog.Logger
	Addr          string
	LookupService *service.LookupService
	EntryService  *service.EntryService
	// Health backs /healthz. Nil means always healthy.
	Health func(ctx context.Context) error
	// Metrics serves /metrics. Defaults to the Prometheus default registry.
	Metrics http.Handler
}

type Server struct {
	httpServer    *http.Server
	logger        *slog.Logger
	mux           *http.ServeMux
	lookupService *service.LookupService
	entryService  *service.EntryService
	health        func(ctx context.Context) error
}

func NewServer(d Dependencies) *Server {
	mux := http.NewServeMux()

	logger := d.Logger
	if logger == nil {
		logger = slog.Default()
	}
	metrics := d.Metrics
	if metrics == nil {
		metrics = promhttp.Handler()
	}

	s := &Server{
		logger:        logger,
		mux:           mux,
		lookupService: d.LookupService,
		entryService:  d.EntryService,
		health:        d.Health,
	}

	mux.HandleFunc("GET /api/v1/vehicle", s.handleLookup)
	mux.HandleFunc("GET /search", s.handleSearch)
	mux.HandleFunc("POST /api/v1/entries", s.handleRecordEntry)
	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.Handle("GET /metrics", metrics)

	handler := loggingMiddleware(logger, mux)

	s.httpServer = &http.Server{
		Addr:              d.Addr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
	}

	return s
}

func (s *Server) Handler() http.Handler { return s.httpServer.Handler }

func (s *Server) Start() error {
	return s.httpServer.ListenAndServe()
}

// Serve accepts connections on l until Shutdown is called.
func (s *Server) Serve(l net.Listener) error {
	return s.httpServer.Serve(l)
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

func (s *Server) handleLookup(w http.ResponseWriter, r *http.Request) {
	resp, err := s.lookupService.Lookup(r.Context(), lookupRequestFromQuery(r))
	if err != nil {
		s.writeServiceError(w, r, "lookup", err)
		return
	}
	writeResponse(w, r, http.StatusOK, resp)
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	resp, err := s.lookupService.SearchPlate(r.Context(), plateSearchRequestFromQuery(r))
	if err != nil {
		s.writeServiceError(w, r, "search", err)
		return
	}
	status := http.StatusOK
	if !resp.Found {
		status = http.StatusNotFound
	}
	writeResponse(w, r, status, resp)
}

func (s *Server) handleRecordEntry(w http.ResponseWriter, r *http.Request) {
	req, err := decodeEntryRequest(r)
	if err != nil {
		writeError(w, r, http.StatusBadRequest, "bad_body", "invalid request body")
		return
	}

	resp, err := s.entryService.Record(r.Context(), req)
	if err != nil {
		s.writeServiceError(w, r, "record_entry", err)
		return
	}
	writeResponse(w, r, http.StatusCreated, resp)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if s.health != nil {
		if err := s.health(r.Context()); err != nil {
			s.logger.ErrorContext(r.Context(), "health check failed", slog.String("error", err.Error()))
			writeError(w, r, http.StatusServiceUnavailable, "unavailable", "storage unavailable")
			return
		}
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// writeServiceError maps validation errors to 400 and everything else to 500.
func (s *Server) writeServiceError(w http.ResponseWriter, r *http.Request, op string, err error) {
	if ve, ok := service.AsValidation(err); ok {
		writeError(w, r, http.StatusBadRequest, ve.Kind, ve.Error())
		return
	}
	if errors.Is(err, context.Canceled) {
		return
	}
	s.logger.ErrorContext(r.Context(), op+" error",
		slog.String("request_id", RequestID(r.Context())),
		slog.String("error", err.Error()),
	)
	writeError(w, r, http.StatusInternalServerError, "internal_error", "unexpected server error")
}
