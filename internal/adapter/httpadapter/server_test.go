package httpadapter_test

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/couchcryptid/crowd-safety-sim/internal/adapter/httpadapter"
	"github.com/couchcryptid/crowd-safety-sim/internal/domain"
	"github.com/couchcryptid/crowd-safety-sim/internal/observability"
	"github.com/couchcryptid/crowd-safety-sim/internal/pipeline"
	"github.com/couchcryptid/crowd-safety-sim/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testEnv struct {
	srv   *httpadapter.Server
	snaps *store.Snapshots
	feed  *store.AlertFeed
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// newTestEnv builds a server over a hand-written snapshot. Pass nil to start
// with no snapshot.
func newTestEnv(records []domain.LocationRecord) *testEnv {
	snaps := store.NewSnapshots()
	if records != nil {
		snaps.Replace(domain.Snapshot{SchemaVersion: domain.SchemaVersion, Records: records})
	}
	feed := store.NewAlertFeed(10)
	alerter := pipeline.NewAlerter(domain.Unconfigured(), feed, discardLogger(), observability.NewMetricsForTesting())
	srv := httpadapter.NewServer(":0", httpadapter.Deps{
		Snapshots: snaps,
		Alerter:   alerter,
		Alerts:    feed,
	}, discardLogger())
	return &testEnv{srv: srv, snaps: snaps, feed: feed}
}

func sampleRecords() []domain.LocationRecord {
	return []domain.LocationRecord{
		{ID: "LOC-100", Name: "Dashashwamedh Ghat", Lat: 25.3109, Lon: 83.0107, BaseCapacity: 5000, CurrentCrowd: 120000, RiskScore: 95, Confidence: 0.74, Scenario: domain.ScenarioFestival, RoadCondition: domain.RoadBlocked},
		{ID: "LOC-101", Name: "Godowlia Chowk", Lat: 25.3116, Lon: 83.0103, BaseCapacity: 3000, CurrentCrowd: 1500, RiskScore: 12, Confidence: 0.96, Scenario: domain.ScenarioNormal, RoadCondition: domain.RoadGood},
		{ID: "LOC-102", Name: "Assi Ghat", Lat: 25.2876, Lon: 83.0053, BaseCapacity: 3500, CurrentCrowd: 14000, RiskScore: 61, Confidence: 0.88, Scenario: domain.ScenarioWeekend, RoadCondition: domain.RoadPotholes},
		{ID: "LOC-103", Name: "Sarnath", Lat: 25.3814, Lon: 83.0225, BaseCapacity: 3000, CurrentCrowd: 1200, RiskScore: 2, Confidence: 0.63, Scenario: domain.ScenarioEmergency, RoadCondition: domain.RoadGood},
	}
}

func (e *testEnv) do(t *testing.T, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	rec := httptest.NewRecorder()
	e.srv.ServeHTTP(rec, httptest.NewRequest(method, target, r))
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

func ids(records []domain.LocationRecord) []string {
	out := make([]string, len(records))
	for i, r := range records {
		out[i] = r.ID
	}
	return out
}

// --- operational routes ---

func TestHealthzReturns200(t *testing.T) {
	rec := newTestEnv(nil).do(t, http.MethodGet, "/healthz", "")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestReadyzFollowsSnapshot(t *testing.T) {
	env := newTestEnv(nil)
	assert.Equal(t, http.StatusServiceUnavailable, env.do(t, http.MethodGet, "/readyz", "").Code)

	env.snaps.Replace(domain.Snapshot{Records: sampleRecords()})
	assert.Equal(t, http.StatusOK, env.do(t, http.MethodGet, "/readyz", "").Code)
}

func TestMetricsEndpoint(t *testing.T) {
	rec := newTestEnv(nil).do(t, http.MethodGet, "/metrics", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "go_goroutines")
}

// --- API ---

func TestAPI_NoSnapshotReturns503(t *testing.T) {
	env := newTestEnv(nil)
	for _, target := range []string{"/api/snapshot", "/api/summary", "/api/high-risk", "/api/routes", "/api/review", "/api/congested", "/api/nearby?lat=25.3&lon=83.0"} {
		rec := env.do(t, http.MethodGet, target, "")
		assert.Equal(t, http.StatusServiceUnavailable, rec.Code, target)
		assert.Contains(t, decode[map[string]string](t, rec)["error"], "no snapshot", target)
	}
}

func TestAPI_BadQueryReturns400(t *testing.T) {
	env := newTestEnv(sampleRecords())
	for _, target := range []string{
		"/api/snapshot?scenario=Carnival",
		"/api/snapshot?schema=v3",
		"/api/summary?threshold=101",
		"/api/high-risk?threshold=abc",
		"/api/review?confidence=90",
		"/api/congested?limit=0",
		"/api/nearby?lat=25.3",
		"/api/nearby?lat=95&lon=83",
		"/api/alerts?limit=-1",
	} {
		rec := env.do(t, http.MethodGet, target, "")
		assert.Equal(t, http.StatusBadRequest, rec.Code, target)
		assert.NotEmpty(t, decode[map[string]string](t, rec)["error"], target)
	}
}

func TestAPI_Snapshot(t *testing.T) {
	env := newTestEnv(sampleRecords())

	rec := env.do(t, http.MethodGet, "/api/snapshot", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	snap := decode[domain.Snapshot](t, rec)
	assert.Equal(t, domain.SchemaVersion, snap.SchemaVersion)
	assert.Len(t, snap.Records, 4)

	rec = env.do(t, http.MethodGet, "/api/snapshot?scenario=Festival", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []string{"LOC-100"}, ids(decode[domain.Snapshot](t, rec).Records))

	latest, err := env.snaps.Latest()
	require.NoError(t, err)
	assert.Len(t, latest.Records, 4, "filtering must not touch the stored snapshot")
}

func TestAPI_SnapshotCoreSchema(t *testing.T) {
	rec := newTestEnv(sampleRecords()).do(t, http.MethodGet, "/api/snapshot?schema=core", "")
	require.Equal(t, http.StatusOK, rec.Code)

	body := decode[map[string]any](t, rec)
	assert.InDelta(t, 1, body["schemaVersion"], 0)
	records := body["records"].([]any)
	require.Len(t, records, 4)
	first := records[0].(map[string]any)
	assert.Equal(t, "LOC-100", first["id"])
	assert.NotContains(t, first, "roadCondition")
}

func TestAPI_Summary(t *testing.T) {
	env := newTestEnv(sampleRecords())

	s := decode[domain.Summary](t, env.do(t, http.MethodGet, "/api/summary", ""))
	assert.Equal(t, 4, s.Total)
	assert.Equal(t, 2, s.HighRiskCount)
	assert.Equal(t, 60, s.Threshold)
	assert.Equal(t, "critical", s.Status)

	s = decode[domain.Summary](t, env.do(t, http.MethodGet, "/api/summary?threshold=96", ""))
	assert.Equal(t, 0, s.HighRiskCount)
	assert.Equal(t, "normal", s.Status)
}

func TestAPI_HighRisk(t *testing.T) {
	env := newTestEnv(sampleRecords())
	got := decode[[]domain.LocationRecord](t, env.do(t, http.MethodGet, "/api/high-risk", ""))
	assert.Equal(t, []string{"LOC-100", "LOC-102"}, ids(got))

	got = decode[[]domain.LocationRecord](t, env.do(t, http.MethodGet, "/api/high-risk?scenario=Normal", ""))
	assert.Empty(t, got)
}

func TestAPI_Routes(t *testing.T) {
	rec := newTestEnv(sampleRecords()).do(t, http.MethodGet, "/api/routes", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Safe  []domain.LocationRecord `json:"safe"`
		Avoid []domain.LocationRecord `json:"avoid"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, []string{"LOC-103", "LOC-101"}, ids(body.Safe))
	assert.Equal(t, []string{"LOC-100", "LOC-102"}, ids(body.Avoid))
}

func TestAPI_Review(t *testing.T) {
	env := newTestEnv(sampleRecords())
	got := decode[[]domain.LocationRecord](t, env.do(t, http.MethodGet, "/api/review", ""))
	assert.Equal(t, []string{"LOC-100", "LOC-102", "LOC-103"}, ids(got))

	got = decode[[]domain.LocationRecord](t, env.do(t, http.MethodGet, "/api/review?confidence=0.7", ""))
	assert.Equal(t, []string{"LOC-103"}, ids(got))
}

func TestAPI_Congested(t *testing.T) {
	got := decode[[]domain.LocationRecord](t, newTestEnv(sampleRecords()).do(t, http.MethodGet, "/api/congested?limit=2", ""))
	assert.Equal(t, []string{"LOC-100", "LOC-102"}, ids(got))
}

func TestAPI_Nearby(t *testing.T) {
	got := decode[[]domain.Nearby](t, newTestEnv(sampleRecords()).do(t, http.MethodGet, "/api/nearby?lat=25.3814&lon=83.0225&limit=2", ""))
	require.Len(t, got, 2)
	assert.Equal(t, "LOC-103", got[0].Record.ID)
	assert.InDelta(t, 0, got[0].DistanceMeters, 1e-6)
	assert.Greater(t, got[1].DistanceMeters, 5000.0)
}

func TestAPI_RaiseAndListAlerts(t *testing.T) {
	env := newTestEnv(sampleRecords())

	rec := env.do(t, http.MethodPost, "/api/alerts", `{"locationId":"LOC-102"}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	first := decode[domain.Alert](t, rec)
	assert.Equal(t, "LOC-102", first.LocationID)
	assert.Equal(t, domain.SeverityHigh, first.Severity)
	assert.Equal(t, domain.AlertSourceTemplate, first.Source)

	rec = env.do(t, http.MethodPost, "/api/alerts", `{"locationId":"LOC-101","emergency":true}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	second := decode[domain.Alert](t, rec)
	assert.Equal(t, domain.SeverityCritical, second.Severity)
	assert.True(t, second.Emergency)

	list := decode[[]domain.Alert](t, env.do(t, http.MethodGet, "/api/alerts", ""))
	require.Len(t, list, 2)
	assert.Equal(t, second.ID, list[0].ID, "newest first")
	assert.Equal(t, first.ID, list[1].ID)

	list = decode[[]domain.Alert](t, env.do(t, http.MethodGet, "/api/alerts?limit=1", ""))
	assert.Len(t, list, 1)
}

func TestAPI_RaiseAlertErrors(t *testing.T) {
	tests := []struct {
		name     string
		records  []domain.LocationRecord
		body     string
		wantCode int
	}{
		{"unknown location", sampleRecords(), `{"locationId":"LOC-999"}`, http.StatusNotFound},
		{"missing location", sampleRecords(), `{"emergency":true}`, http.StatusBadRequest},
		{"malformed body", sampleRecords(), `{"locationId":`, http.StatusBadRequest},
		{"unknown field", sampleRecords(), `{"locationId":"LOC-100","urgent":1}`, http.StatusBadRequest},
		{"no snapshot", nil, `{"locationId":"LOC-100"}`, http.StatusServiceUnavailable},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(tt.records)
			rec := env.do(t, http.MethodPost, "/api/alerts", tt.body)
			assert.Equal(t, tt.wantCode, rec.Code)
			assert.NotEmpty(t, decode[map[string]string](t, rec)["error"])
			assert.Zero(t, env.feed.Len())
		})
	}
}

func TestAPI_EmptyAlertFeedIsEmptyArray(t *testing.T) {
	rec := newTestEnv(nil).do(t, http.MethodGet, "/api/alerts", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[]`, rec.Body.String())
}
