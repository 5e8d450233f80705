package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/couchcryptid/crowd-safety-sim/internal/domain"
	"github.com/couchcryptid/crowd-safety-sim/internal/observability"
	"github.com/jonboulle/clockwork"
	"github.com/robfig/cron/v3"
)

// SnapshotGenerator produces one complete snapshot per call.
type SnapshotGenerator interface {
	Generate() domain.Snapshot
}

// SnapshotStore receives each new snapshot, replacing the previous one.
type SnapshotStore interface {
	Replace(snap domain.Snapshot)
}

// Publisher delivers a snapshot to an external sink.
type Publisher interface {
	Name() string
	Publish(ctx context.Context, snap domain.Snapshot) error
}

// Options tunes the generation loop. Zero values select defaults.
type Options struct {
	Interval        time.Duration
	PublishAttempts int
	RiskThreshold   int
	Clock           clockwork.Clock
}

const (
	defaultInterval = 10 * time.Second
	initialBackoff  = 200 * time.Millisecond
	maxBackoff      = 5 * time.Second
	defaultAttempts = 3
)

// Pipeline orchestrates the generate-store-publish loop.
type Pipeline struct {
	generator  SnapshotGenerator
	store      SnapshotStore
	publishers []Publisher
	logger     *slog.Logger
	metrics    *observability.Metrics
	clock      clockwork.Clock
	interval   time.Duration
	attempts   int
	threshold  int
}

// New creates a Pipeline with the given stages and observability.
func New(g SnapshotGenerator, s SnapshotStore, publishers []Publisher, logger *slog.Logger, metrics *observability.Metrics, opts Options) *Pipeline {
	if opts.Interval <= 0 {
		opts.Interval = defaultInterval
	}
	if opts.PublishAttempts <= 0 {
		opts.PublishAttempts = defaultAttempts
	}
	if opts.Clock == nil {
		opts.Clock = clockwork.NewRealClock()
	}
	if opts.RiskThreshold == 0 {
		opts.RiskThreshold = domain.DefaultRiskThreshold
	}
	return &Pipeline{
		generator:  g,
		store:      s,
		publishers: publishers,
		logger:     logger,
		metrics:    metrics,
		clock:      opts.Clock,
		interval:   opts.Interval,
		attempts:   opts.PublishAttempts,
		threshold:  opts.RiskThreshold,
	}
}

// Run generates a snapshot immediately and then once per interval until the
// context is cancelled.
func (p *Pipeline) Run(ctx context.Context) error {
	p.logger.Info("pipeline started", "interval", p.interval, "sinks", len(p.publishers))
	p.metrics.PipelineRunning.Set(1)
	defer p.metrics.PipelineRunning.Set(0)

	p.Cycle(ctx)

	ticker := p.clock.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			p.logger.Info("pipeline stopping", "reason", ctx.Err())
			return nil
		case <-ticker.Chan():
			p.Cycle(ctx)
		}
	}
}

// RunSchedule generates a snapshot immediately and then on every firing of
// the cron schedule until the context is cancelled. Overlapping firings are
// skipped.
func (p *Pipeline) RunSchedule(ctx context.Context, schedule string) error {
	c := cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger)))
	if _, err := c.AddFunc(schedule, func() { p.Cycle(ctx) }); err != nil {
		return fmt.Errorf("add schedule %q: %w", schedule, err)
	}

	p.logger.Info("pipeline started", "schedule", schedule, "sinks", len(p.publishers))
	p.metrics.PipelineRunning.Set(1)
	defer p.metrics.PipelineRunning.Set(0)

	p.Cycle(ctx)
	c.Start()

	<-ctx.Done()
	p.logger.Info("pipeline stopping", "reason", ctx.Err())
	<-c.Stop().Done()
	return nil
}

// Cycle runs one generate-store-publish pass. Publish failures are logged
// and counted; they never prevent the snapshot from being stored.
func (p *Pipeline) Cycle(ctx context.Context) {
	start := time.Now()
	snap := p.generator.Generate()
	p.metrics.GenerationDuration.Observe(time.Since(start).Seconds())

	p.store.Replace(snap)
	p.observe(snap)

	p.logger.Debug("snapshot generated",
		"records", len(snap.Records),
		"generated_at", snap.GeneratedAt,
	)

	for _, pub := range p.publishers {
		if err := p.publishWithRetry(ctx, pub, snap); err != nil && ctx.Err() == nil {
			p.logger.Error("publish snapshot failed", "sink", pub.Name(), "error", err)
		}
	}
}

func (p *Pipeline) observe(snap domain.Snapshot) {
	p.metrics.SnapshotsGenerated.Inc()
	for _, r := range snap.Records {
		p.metrics.RecordsByScenario.WithLabelValues(string(r.Scenario)).Inc()
		p.metrics.RiskScore.Observe(float64(r.RiskScore))
	}
	p.metrics.HighRiskLocations.Set(float64(domain.CountAtOrAbove(snap.Records, p.threshold)))
}

// publishWithRetry tries the sink up to p.attempts times with exponential
// backoff between attempts.
func (p *Pipeline) publishWithRetry(ctx context.Context, pub Publisher, snap domain.Snapshot) error {
	backoff := initialBackoff
	var errs []error
	for attempt := 1; attempt <= p.attempts; attempt++ {
		err := pub.Publish(ctx, snap)
		if err == nil {
			p.metrics.RecordsPublished.WithLabelValues(pub.Name()).Add(float64(len(snap.Records)))
			return nil
		}
		errs = append(errs, err)
		p.metrics.PublishErrors.WithLabelValues(pub.Name()).Inc()

		if attempt == p.attempts || ctx.Err() != nil {
			break
		}
		p.logger.Warn("publish failed, retrying",
			"sink", pub.Name(),
			"attempt", attempt,
			"backoff", backoff,
			"error", err,
		)
		if !sleepWithContext(ctx, p.clock, backoff) {
			break
		}
		backoff = nextBackoff(backoff, maxBackoff)
	}
	return fmt.Errorf("%s: %d attempts: %w", pub.Name(), len(errs), errors.Join(errs...))
}

func nextBackoff(current, limit time.Duration) time.Duration {
	next := current * 2
	if next > limit {
		return limit
	}
	return next
}

func sleepWithContext(ctx context.Context, clk clockwork.Clock, d time.Duration) bool {
	if d <= 0 {
		return true
	}

	timer := clk.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return false
	case <-timer.Chan():
		return true
	}
}
