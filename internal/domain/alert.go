package domain

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Alert severities.
const (
	SeverityHigh     = "high"
	SeverityCritical = "critical"
)

// Alert message sources.
const (
	AlertSourceAdvisor  = "advisor"
	AlertSourceTemplate = "template"
)

// Alert is a public-address message drafted for one location.
type Alert struct {
	ID           string    `json:"id"`
	LocationID   string    `json:"locationId"`
	LocationName string    `json:"locationName"`
	Message      string    `json:"message"`
	Severity     string    `json:"severity"`
	Emergency    bool      `json:"emergency"`
	Source       string    `json:"source"`
	RiskScore    int       `json:"riskScore"`
	CreatedAt    time.Time `json:"createdAt"`
}

// AlertSeverity grades a risk score: critical above 80, high otherwise.
func AlertSeverity(risk int) string {
	if risk > 80 {
		return SeverityCritical
	}
	return SeverityHigh
}

// Advisor drafts alert text for a location, typically via a hosted
// generative model.
type Advisor interface {
	DraftAlert(ctx context.Context, rec LocationRecord, emergency bool) (string, error)
}

// AdvisorService is the injected handle to the optional advisor. The zero
// value is unconfigured; callers must check Advisor's second result.
type AdvisorService struct {
	advisor Advisor
}

// Unconfigured returns the handle used when no advisor credentials exist.
func Unconfigured() AdvisorService {
	return AdvisorService{}
}

// ConfiguredAdvisor wraps an advisor. A nil advisor yields an unconfigured handle.
func ConfiguredAdvisor(a Advisor) AdvisorService {
	return AdvisorService{advisor: a}
}

// Advisor returns the wrapped advisor and whether one is configured.
func (s AdvisorService) Advisor() (Advisor, bool) {
	return s.advisor, s.advisor != nil
}

// BuildAlert drafts an alert for rec. It falls back to a template message
// when the advisor is unconfigured, fails, or returns blank text.
func BuildAlert(ctx context.Context, rec LocationRecord, svc AdvisorService, emergency bool, logger *slog.Logger) Alert {
	alert := Alert{
		ID:           uuid.NewString(),
		LocationID:   rec.ID,
		LocationName: rec.Name,
		Severity:     AlertSeverity(rec.RiskScore),
		Emergency:    emergency,
		RiskScore:    rec.RiskScore,
		CreatedAt:    clock.Now(),
	}
	if emergency {
		alert.Severity = SeverityCritical
	}

	if advisor, ok := svc.Advisor(); ok {
		text, err := advisor.DraftAlert(ctx, rec, emergency)
		switch {
		case err != nil:
			logger.Warn("advisor draft failed, using template",
				"location_id", rec.ID,
				"error", err,
			)
		case strings.TrimSpace(text) != "":
			alert.Message = strings.TrimSpace(text)
			alert.Source = AlertSourceAdvisor
			return alert
		}
	}

	alert.Message = TemplateAlert(rec, emergency)
	alert.Source = AlertSourceTemplate
	return alert
}

// TemplateAlert renders the fixed Hindi public-address message.
func TemplateAlert(rec LocationRecord, emergency bool) string {
	if emergency {
		return fmt.Sprintf("सावधान! %s पर आपात स्थिति। भीड़ %d, जोखिम %d/100। तुरंत सुरक्षित मार्ग से बाहर निकलें।",
			rec.Name, rec.CurrentCrowd, rec.RiskScore)
	}
	return fmt.Sprintf("⚠️ %s पर भारी भीड़ (%d लोग, जोखिम %d/100)। कृपया धैर्य रखें और वैकल्पिक मार्ग अपनाएं।",
		rec.Name, rec.CurrentCrowd, rec.RiskScore)
}
