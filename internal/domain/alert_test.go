package domain

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockAdvisor struct {
	text      string
	err       error
	calls     int
	emergency bool
}

func (m *mockAdvisor) DraftAlert(_ context.Context, _ LocationRecord, emergency bool) (string, error) {
	m.calls++
	m.emergency = emergency
	return m.text, m.err
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func alertRecord(risk int) LocationRecord {
	return LocationRecord{ID: "LOC-105", Name: "Manikarnika Ghat", RiskScore: risk, CurrentCrowd: 9000}
}

func TestAlertSeverity(t *testing.T) {
	assert.Equal(t, SeverityHigh, AlertSeverity(61))
	assert.Equal(t, SeverityHigh, AlertSeverity(80))
	assert.Equal(t, SeverityCritical, AlertSeverity(81))
}

func TestAdvisorService(t *testing.T) {
	_, ok := Unconfigured().Advisor()
	assert.False(t, ok)

	_, ok = AdvisorService{}.Advisor()
	assert.False(t, ok, "zero value is unconfigured")

	_, ok = ConfiguredAdvisor(nil).Advisor()
	assert.False(t, ok)

	a, ok := ConfiguredAdvisor(&mockAdvisor{}).Advisor()
	assert.True(t, ok)
	assert.NotNil(t, a)
}

func TestBuildAlert_Unconfigured(t *testing.T) {
	fc := freezeClock(t)

	alert := BuildAlert(context.Background(), alertRecord(72), Unconfigured(), false, discardLogger())

	_, err := uuid.Parse(alert.ID)
	require.NoError(t, err)
	assert.Equal(t, "LOC-105", alert.LocationID)
	assert.Equal(t, "Manikarnika Ghat", alert.LocationName)
	assert.Equal(t, SeverityHigh, alert.Severity)
	assert.Equal(t, AlertSourceTemplate, alert.Source)
	assert.Contains(t, alert.Message, "Manikarnika Ghat")
	assert.Contains(t, alert.Message, "72/100")
	assert.Equal(t, fc.Now(), alert.CreatedAt)
}

func TestBuildAlert_UsesAdvisor(t *testing.T) {
	adv := &mockAdvisor{text: "  सावधान! घाट पर भीड़ बढ़ रही है।  "}

	alert := BuildAlert(context.Background(), alertRecord(90), ConfiguredAdvisor(adv), true, discardLogger())

	assert.Equal(t, 1, adv.calls)
	assert.True(t, adv.emergency)
	assert.Equal(t, AlertSourceAdvisor, alert.Source)
	assert.Equal(t, "सावधान! घाट पर भीड़ बढ़ रही है।", alert.Message)
	assert.Equal(t, SeverityCritical, alert.Severity)
	assert.True(t, alert.Emergency)
}

func TestBuildAlert_EmergencyIsAlwaysCritical(t *testing.T) {
	alert := BuildAlert(context.Background(), alertRecord(20), Unconfigured(), true, discardLogger())
	assert.Equal(t, SeverityCritical, alert.Severity)
	assert.Contains(t, alert.Message, "सावधान!")
}

func TestBuildAlert_AdvisorFailureFallsBack(t *testing.T) {
	tests := []struct {
		name string
		adv  *mockAdvisor
	}{
		{"error", &mockAdvisor{err: errors.New("quota exceeded")}},
		{"blank text", &mockAdvisor{text: "   "}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			alert := BuildAlert(context.Background(), alertRecord(85), ConfiguredAdvisor(tt.adv), false, discardLogger())
			assert.Equal(t, 1, tt.adv.calls)
			assert.Equal(t, AlertSourceTemplate, alert.Source)
			assert.Equal(t, TemplateAlert(alertRecord(85), false), alert.Message)
		})
	}
}

func TestBuildAlert_UniqueIDs(t *testing.T) {
	a := BuildAlert(context.Background(), alertRecord(70), Unconfigured(), false, discardLogger())
	b := BuildAlert(context.Background(), alertRecord(70), Unconfigured(), false, discardLogger())
	assert.NotEqual(t, a.ID, b.ID)
}

func TestLocationRecord_Core(t *testing.T) {
	rec := alertRecord(70)
	rec.RoadCondition = RoadBlocked
	core := rec.Core()
	assert.Equal(t, rec.ID, core.ID)
	assert.Equal(t, rec.RiskScore, core.RiskScore)
	assert.Equal(t, rec.CurrentCrowd, core.CurrentCrowd)
}
