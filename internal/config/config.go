package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	sharedcfg "github.com/couchcryptid/storm-data-shared/config"
	"github.com/robfig/cron/v3"
)

// Config holds all service settings, populated from environment variables.
type Config struct {
	HTTPAddr        string
	LogLevel        string
	LogFormat       string
	ShutdownTimeout time.Duration

	// Generation schedule. A non-empty GenerateSchedule (cron syntax) takes
	// precedence over GenerateInterval.
	GenerateInterval time.Duration
	GenerateSchedule string

	// Seed fixes the random stream when HasSeed is true.
	Seed    uint64
	HasSeed bool

	RiskThreshold       int
	ConfidenceThreshold float64
	AlertFeedSize       int
	PublishAttempts     int

	KafkaEnabled bool
	KafkaBrokers []string
	KafkaTopic   string

	ZMQPublisherAddr string
}

// Load reads configuration from environment variables, applying defaults where unset.
func Load() (*Config, error) {
	shutdownTimeout, err := sharedcfg.ParseShutdownTimeout()
	if err != nil {
		return nil, err
	}

	interval, err := time.ParseDuration(sharedcfg.EnvOrDefault("GENERATE_INTERVAL", "10s"))
	if err != nil || interval <= 0 {
		return nil, errors.New("invalid GENERATE_INTERVAL")
	}

	schedule := os.Getenv("GENERATE_SCHEDULE")
	if schedule != "" {
		if _, err := cron.ParseStandard(schedule); err != nil {
			return nil, fmt.Errorf("invalid GENERATE_SCHEDULE: %w", err)
		}
	}

	var seed uint64
	hasSeed := false
	if s := os.Getenv("RANDOM_SEED"); s != "" {
		seed, err = strconv.ParseUint(s, 10, 64)
		if err != nil {
			return nil, errors.New("invalid RANDOM_SEED: must be a non-negative integer")
		}
		hasSeed = true
	}

	riskThreshold, err := parseInt("RISK_THRESHOLD", 60, 1, 100)
	if err != nil {
		return nil, err
	}

	confidenceThreshold, err := strconv.ParseFloat(sharedcfg.EnvOrDefault("CONFIDENCE_THRESHOLD", "0.9"), 64)
	if err != nil || !(confidenceThreshold > 0 && confidenceThreshold <= 1) {
		return nil, errors.New("invalid CONFIDENCE_THRESHOLD: must be a fraction in (0, 1]")
	}

	feedSize, err := parseInt("ALERT_FEED_SIZE", 50, 1, 10000)
	if err != nil {
		return nil, err
	}

	attempts, err := parseInt("PUBLISH_ATTEMPTS", 3, 1, 20)
	if err != nil {
		return nil, err
	}

	kafkaEnabled, err := strconv.ParseBool(sharedcfg.EnvOrDefault("KAFKA_ENABLED", "false"))
	if err != nil {
		return nil, errors.New("invalid KAFKA_ENABLED")
	}

	cfg := &Config{
		HTTPAddr:            sharedcfg.EnvOrDefault("HTTP_ADDR", ":8080"),
		LogLevel:            sharedcfg.EnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:           sharedcfg.EnvOrDefault("LOG_FORMAT", "json"),
		ShutdownTimeout:     shutdownTimeout,
		GenerateInterval:    interval,
		GenerateSchedule:    schedule,
		Seed:                seed,
		HasSeed:             hasSeed,
		RiskThreshold:       riskThreshold,
		ConfidenceThreshold: confidenceThreshold,
		AlertFeedSize:       feedSize,
		PublishAttempts:     attempts,
		KafkaEnabled:        kafkaEnabled,
		KafkaBrokers:        sharedcfg.ParseBrokers(sharedcfg.EnvOrDefault("KAFKA_BROKERS", "localhost:9092")),
		KafkaTopic:          sharedcfg.EnvOrDefault("KAFKA_TOPIC", "crowd-snapshots"),
		ZMQPublisherAddr:    os.Getenv("ZMQ_PUBLISHER_ADDR"),
	}

	if cfg.KafkaEnabled {
		if len(cfg.KafkaBrokers) == 0 {
			return nil, errors.New("KAFKA_BROKERS is required when KAFKA_ENABLED is true")
		}
		if cfg.KafkaTopic == "" {
			return nil, errors.New("KAFKA_TOPIC is required when KAFKA_ENABLED is true")
		}
	}

	return cfg, nil
}

func parseInt(key string, def, lo, hi int) (int, error) {
	s := os.Getenv(key)
	if s == "" {
		return def, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < lo || n > hi {
		return 0, fmt.Errorf("invalid %s: must be an integer between %d and %d", key, lo, hi)
	}
	return n, nil
}
