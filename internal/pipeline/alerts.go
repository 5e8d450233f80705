package pipeline

import (
	"context"
	"log/slog"

	"github.com/couchcryptid/crowd-safety-sim/internal/domain"
	"github.com/couchcryptid/crowd-safety-sim/internal/observability"
)

// AlertSink records drafted alerts.
type AlertSink interface {
	Add(a domain.Alert) bool
}

// Alerter drafts public-address alerts with the optional advisor and
// records them in the feed.
type Alerter struct {
	advisor domain.AdvisorService
	sink    AlertSink
	logger  *slog.Logger
	metrics *observability.Metrics
}

// NewAlerter creates an Alerter. Pass domain.Unconfigured() to always use
// template messages.
func NewAlerter(advisor domain.AdvisorService, sink AlertSink, logger *slog.Logger, metrics *observability.Metrics) *Alerter {
	return &Alerter{
		advisor: advisor,
		sink:    sink,
		logger:  logger,
		metrics: metrics,
	}
}

// Raise drafts an alert for rec, stores it, and returns it.
func (a *Alerter) Raise(ctx context.Context, rec domain.LocationRecord, emergency bool) domain.Alert {
	alert := domain.BuildAlert(ctx, rec, a.advisor, emergency, a.logger)
	a.sink.Add(alert)
	a.metrics.AlertsCreated.WithLabelValues(alert.Source).Inc()

	a.logger.Info("alert raised",
		"alert_id", alert.ID,
		"location_id", alert.LocationID,
		"severity", alert.Severity,
		"source", alert.Source,
	)
	return alert
}
