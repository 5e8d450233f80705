package httpadapter

import (
	"encoding/json"
	"fmt"
	"io"
	"math"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/couchcryptid/crowd-safety-sim/internal/domain"
)

// coreSchemaVersion tags snapshots rendered with ?schema=core.
const coreSchemaVersion = 1

const (
	defaultNearbyLimit = 5
	maxListLimit       = 100
	maxAlertBody       = 4 << 10
)

type coreSnapshot struct {
	SchemaVersion int                 `json:"schemaVersion"`
	GeneratedAt   time.Time           `json:"generatedAt"`
	Records       []domain.CoreRecord `json:"records"`
}

type routesResponse struct {
	Safe  []domain.LocationRecord `json:"safe"`
	Avoid []domain.LocationRecord `json:"avoid"`
}

type raiseAlertRequest struct {
	LocationID string `json:"locationId"`
	Emergency  bool   `json:"emergency"`
}

func (s *Server) handleSnapshot(w http.ResponseWriter, r *http.Request) {
	schema := r.URL.Query().Get("schema")
	if schema != "" && schema != "full" && schema != "core" {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("unknown schema %q: want full or core", schema))
		return
	}
	snap, records, ok := s.latest(w, r)
	if !ok {
		return
	}
	if schema == "core" {
		core := make([]domain.CoreRecord, len(records))
		for i := range records {
			core[i] = records[i].Core()
		}
		writeJSON(w, http.StatusOK, coreSnapshot{SchemaVersion: coreSchemaVersion, GeneratedAt: snap.GeneratedAt, Records: core})
		return
	}
	snap.Records = records
	writeJSON(w, http.StatusOK, snap)
}

func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	threshold, err := intParam(r.URL.Query(), "threshold", s.deps.RiskThreshold, 0, 100)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if _, records, ok := s.latest(w, r); ok {
		writeJSON(w, http.StatusOK, domain.Summarize(records, threshold))
	}
}

func (s *Server) handleHighRisk(w http.ResponseWriter, r *http.Request) {
	threshold, err := intParam(r.URL.Query(), "threshold", s.deps.RiskThreshold, 0, 100)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if _, records, ok := s.latest(w, r); ok {
		writeJSON(w, http.StatusOK, domain.HighRisk(records, threshold))
	}
}

func (s *Server) handleRoutes(w http.ResponseWriter, r *http.Request) {
	if _, records, ok := s.latest(w, r); ok {
		writeJSON(w, http.StatusOK, routesResponse{
			Safe:  domain.SafePlaces(records, domain.DefaultSafeLimit),
			Avoid: domain.AvoidPlaces(records, domain.DefaultAvoidLimit),
		})
	}
}

func (s *Server) handleReview(w http.ResponseWriter, r *http.Request) {
	confidence, err := floatParam(r.URL.Query(), "confidence", s.deps.ConfidenceThreshold, 0, 1)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if _, records, ok := s.latest(w, r); ok {
		writeJSON(w, http.StatusOK, domain.NeedsReview(records, confidence))
	}
}

func (s *Server) handleCongested(w http.ResponseWriter, r *http.Request) {
	limit, err := intParam(r.URL.Query(), "limit", domain.DefaultCongestedLimit, 1, maxListLimit)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if _, records, ok := s.latest(w, r); ok {
		writeJSON(w, http.StatusOK, domain.TopCongested(records, limit))
	}
}

func (s *Server) handleNearby(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	if q.Get("lat") == "" || q.Get("lon") == "" {
		writeError(w, http.StatusBadRequest, "lat and lon are required")
		return
	}
	lat, err := floatParam(q, "lat", 0, -90, 90)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	lon, err := floatParam(q, "lon", 0, -180, 180)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	limit, err := intParam(q, "limit", defaultNearbyLimit, 1, maxListLimit)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if _, records, ok := s.latest(w, r); ok {
		writeJSON(w, http.StatusOK, domain.Nearest(records, lat, lon, limit))
	}
}

func (s *Server) handleListAlerts(w http.ResponseWriter, r *http.Request) {
	limit, err := intParam(r.URL.Query(), "limit", 0, 0, math.MaxInt32)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, s.deps.Alerts.List(limit))
}

func (s *Server) handleRaiseAlert(w http.ResponseWriter, r *http.Request) {
	var req raiseAlertRequest
	dec := json.NewDecoder(io.LimitReader(r.Body, maxAlertBody))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	req.LocationID = strings.TrimSpace(req.LocationID)
	if req.LocationID == "" {
		writeError(w, http.StatusBadRequest, "locationId is required")
		return
	}

	snap, err := s.deps.Snapshots.Latest()
	if err != nil {
		writeError(w, http.StatusServiceUnavailable, err.Error())
		return
	}
	for _, rec := range snap.Records {
		if rec.ID == req.LocationID {
			writeJSON(w, http.StatusCreated, s.deps.Alerter.Raise(r.Context(), rec, req.Emergency))
			return
		}
	}
	writeError(w, http.StatusNotFound, fmt.Sprintf("unknown location %q", req.LocationID))
}

// latest loads the current snapshot and applies the ?scenario filter. It
// writes the error response itself and reports false when the handler
// should stop.
func (s *Server) latest(w http.ResponseWriter, r *http.Request) (domain.Snapshot, []domain.LocationRecord, bool) {
	scenario, ok := domain.ParseScenario(r.URL.Query().Get("scenario"))
	if !ok {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("unknown scenario %q", r.URL.Query().Get("scenario")))
		return domain.Snapshot{}, nil, false
	}
	snap, err := s.deps.Snapshots.Latest()
	if err != nil {
		writeError(w, http.StatusServiceUnavailable, err.Error())
		return domain.Snapshot{}, nil, false
	}
	return snap, domain.FilterByScenario(snap.Records, scenario), true
}

func intParam(q url.Values, key string, def, lo, hi int) (int, error) {
	s := q.Get(key)
	if s == "" {
		return def, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < lo || n > hi {
		return 0, fmt.Errorf("%s must be an integer between %d and %d", key, lo, hi)
	}
	return n, nil
}

func floatParam(q url.Values, key string, def, lo, hi float64) (float64, error) {
	s := q.Get(key)
	if s == "" {
		return def, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || !(f >= lo && f <= hi) {
		return 0, fmt.Errorf("%s must be a number between %g and %g", key, lo, hi)
	}
	return f, nil
}
