// Command crowdsim runs the crowd-safety simulator service: it generates a
// synthetic snapshot on a schedule, serves it over HTTP, and publishes each
// snapshot to the enabled sinks.
package main

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/couchcryptid/crowd-safety-sim/internal/adapter/httpadapter"
	kafkaadapter "github.com/couchcryptid/crowd-safety-sim/internal/adapter/kafka"
	zmqadapter "github.com/couchcryptid/crowd-safety-sim/internal/adapter/zmq"
	"github.com/couchcryptid/crowd-safety-sim/internal/config"
	"github.com/couchcryptid/crowd-safety-sim/internal/domain"
	"github.com/couchcryptid/crowd-safety-sim/internal/observability"
	"github.com/couchcryptid/crowd-safety-sim/internal/pipeline"
	"github.com/couchcryptid/crowd-safety-sim/internal/store"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg.LogLevel, cfg.LogFormat)
	metrics := observability.NewMetrics()

	src := domain.NewTimeSource()
	if cfg.HasSeed {
		src = domain.NewSource(cfg.Seed)
		logger.Info("deterministic generation", "seed", cfg.Seed)
	}
	generator, err := domain.NewGenerator(domain.DefaultRegistry(), src)
	if err != nil {
		logger.Error("invalid location registry", "error", err)
		os.Exit(1)
	}

	// Initialize sinks (feature-flagged via KAFKA_ENABLED / ZMQ_PUBLISHER_ADDR).
	var publishers []pipeline.Publisher
	var closers []io.Closer
	if cfg.KafkaEnabled {
		writer := kafkaadapter.NewWriter(cfg, logger)
		publishers = append(publishers, writer)
		closers = append(closers, writer)
		logger.Info("kafka sink enabled", "brokers", cfg.KafkaBrokers, "topic", cfg.KafkaTopic)
	}
	if cfg.ZMQPublisherAddr != "" {
		pub, err := zmqadapter.NewPublisher(cfg.ZMQPublisherAddr, logger)
		if err != nil {
			logger.Error("failed to start zmq publisher", "error", err)
			os.Exit(1)
		}
		publishers = append(publishers, pub)
		closers = append(closers, pub)
	}
	if len(publishers) == 0 {
		logger.Info("no sinks enabled; snapshots are served over http only")
	}

	snapshots := store.NewSnapshots()
	alerts := store.NewAlertFeed(cfg.AlertFeedSize)
	alerter := pipeline.NewAlerter(domain.Unconfigured(), alerts, logger, metrics)

	p := pipeline.New(generator, snapshots, publishers, logger, metrics, pipeline.Options{
		Interval:        cfg.GenerateInterval,
		PublishAttempts: cfg.PublishAttempts,
		RiskThreshold:   cfg.RiskThreshold,
	})

	srv := httpadapter.NewServer(cfg.HTTPAddr, httpadapter.Deps{
		Snapshots:           snapshots,
		Alerter:             alerter,
		Alerts:              alerts,
		RiskThreshold:       cfg.RiskThreshold,
		ConfidenceThreshold: cfg.ConfidenceThreshold,
	}, logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Start HTTP server.
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
		}
	}()

	// Start generation loop.
	done := make(chan struct{})
	go func() {
		defer close(done)
		var err error
		if cfg.GenerateSchedule != "" {
			err = p.RunSchedule(ctx, cfg.GenerateSchedule)
		} else {
			err = p.Run(ctx)
		}
		if err != nil {
			logger.Error("pipeline error", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "error", err)
	}
	select {
	case <-done:
	case <-shutdownCtx.Done():
		logger.Warn("pipeline did not stop before shutdown timeout")
	}
	for _, c := range closers {
		if err := c.Close(); err != nil {
			logger.Error("sink close error", "error", err)
		}
	}

	logger.Info("shutdown complete")
}
