package httpadapter

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/couchcryptid/crowd-safety-sim/internal/domain"
	sharedobs "github.com/couchcryptid/storm-data-shared/observability"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// SnapshotSource serves the latest snapshot and reports readiness once one exists.
type SnapshotSource interface {
	sharedobs.ReadinessChecker
	Latest() (domain.Snapshot, error)
}

// AlertRaiser drafts and records an alert for a location.
type AlertRaiser interface {
	Raise(ctx context.Context, rec domain.LocationRecord, emergency bool) domain.Alert
}

// AlertLister lists recent alerts, newest first.
type AlertLister interface {
	List(limit int) []domain.Alert
}

// Deps are the collaborators behind the API routes.
type Deps struct {
	Snapshots SnapshotSource
	Alerter   AlertRaiser
	Alerts    AlertLister

	// Defaults for omitted query parameters.
	RiskThreshold       int
	ConfidenceThreshold float64
}

// Server exposes health, readiness, metrics, and the JSON API.
type Server struct {
	httpServer *http.Server
	logger     *slog.Logger
	deps       Deps
}

// NewServer creates an HTTP server with the operational and /api routes.
func NewServer(addr string, deps Deps, logger *slog.Logger) *Server {
	if deps.RiskThreshold == 0 {
		deps.RiskThreshold = domain.DefaultRiskThreshold
	}
	if deps.ConfidenceThreshold == 0 {
		deps.ConfidenceThreshold = domain.DefaultConfidenceThreshold
	}

	mux := http.NewServeMux()

	s := &Server{
		httpServer: &http.Server{
			Addr:         addr,
			Handler:      mux,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 10 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		logger: logger,
		deps:   deps,
	}

	mux.HandleFunc("GET /healthz", sharedobs.LivenessHandler())
	mux.HandleFunc("GET /readyz", sharedobs.ReadinessHandler(deps.Snapshots))
	mux.Handle("GET /metrics", promhttp.Handler())

	mux.HandleFunc("GET /api/snapshot", s.handleSnapshot)
	mux.HandleFunc("GET /api/summary", s.handleSummary)
	mux.HandleFunc("GET /api/high-risk", s.handleHighRisk)
	mux.HandleFunc("GET /api/routes", s.handleRoutes)
	mux.HandleFunc("GET /api/review", s.handleReview)
	mux.HandleFunc("GET /api/congested", s.handleCongested)
	mux.HandleFunc("GET /api/nearby", s.handleNearby)
	mux.HandleFunc("GET /api/alerts", s.handleListAlerts)
	mux.HandleFunc("POST /api/alerts", s.handleRaiseAlert)

	return s
}

// Start begins listening. Returns http.ErrServerClosed on graceful shutdown.
func (s *Server) Start() error {
	s.logger.Info("http server starting", "addr", s.httpServer.Addr)
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully drains connections within the given context deadline.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// ServeHTTP delegates to the underlying handler, useful for testing.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.httpServer.Handler.ServeHTTP(w, r)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v) //nolint:errcheck // client may have gone away
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
