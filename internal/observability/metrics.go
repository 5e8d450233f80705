package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "crowd_sim"

// Metrics holds the Prometheus counters, histograms, and gauges for the simulator.
type Metrics struct {
	SnapshotsGenerated prometheus.Counter
	GenerationDuration prometheus.Histogram
	PipelineRunning    prometheus.Gauge

	// Snapshot content.
	RecordsByScenario *prometheus.CounterVec // labels: scenario
	RiskScore         prometheus.Histogram
	HighRiskLocations prometheus.Gauge

	// Sink delivery.
	RecordsPublished *prometheus.CounterVec // labels: sink={kafka,zmq}
	PublishErrors    *prometheus.CounterVec // labels: sink={kafka,zmq}

	AlertsCreated *prometheus.CounterVec // labels: source={advisor,template}
}

// NewMetrics creates and registers all simulator metrics with the default Prometheus registry.
func NewMetrics() *Metrics {
	m := newMetrics(true)
	prometheus.MustRegister(
		m.SnapshotsGenerated,
		m.GenerationDuration,
		m.PipelineRunning,
		m.RecordsByScenario,
		m.RiskScore,
		m.HighRiskLocations,
		m.RecordsPublished,
		m.PublishErrors,
		m.AlertsCreated,
	)
	return m
}

// NewMetricsForTesting creates Metrics without registering them, avoiding
// "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return newMetrics(false)
}

func newMetrics(withHelp bool) *Metrics {
	help := func(s string) string {
		if withHelp {
			return s
		}
		return ""
	}
	return &Metrics{
		SnapshotsGenerated: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "snapshots_generated_total",
			Help:      help("Total snapshots generated."),
		}),
		GenerationDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "generation_duration_seconds",
			Help:      help("Duration of a single snapshot generation."),
			Buckets:   []float64{0.00001, 0.00005, 0.0001, 0.0005, 0.001, 0.005, 0.01},
		}),
		PipelineRunning: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "pipeline_running",
			Help:      help("1 when the generation loop is active, 0 when shut down."),
		}),
		RecordsByScenario: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "records_total",
			Help:      help("Generated location records by scenario."),
		}, []string{"scenario"}),
		RiskScore: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "risk_score",
			Help:      help("Distribution of generated risk scores."),
			Buckets:   []float64{10, 20, 30, 40, 50, 60, 70, 80, 90, 100},
		}),
		HighRiskLocations: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "high_risk_locations",
			Help:      help("Locations at or above the risk threshold in the latest snapshot."),
		}),
		RecordsPublished: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "records_published_total",
			Help:      help("Records delivered to a sink."),
		}, []string{"sink"}),
		PublishErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "publish_errors_total",
			Help:      help("Failed snapshot publish attempts by sink."),
		}, []string{"sink"}),
		AlertsCreated: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "alerts_total",
			Help:      help("Alerts drafted by message source."),
		}, []string{"source"}),
	}
}
