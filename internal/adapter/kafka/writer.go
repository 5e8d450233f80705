package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/couchcryptid/crowd-safety-sim/internal/config"
	"github.com/couchcryptid/crowd-safety-sim/internal/domain"
	kafkago "github.com/segmentio/kafka-go"
)

// Header keys attached to every record message.
const (
	HeaderScenario      = "scenario"
	HeaderGeneratedAt   = "generated_at"
	HeaderSchemaVersion = "schema_version"
)

// Writer produces snapshot records to a Kafka topic.
// It implements pipeline.Publisher.
type Writer struct {
	writer *kafkago.Writer
	logger *slog.Logger
}

// NewWriter creates a Kafka producer for the configured topic.
func NewWriter(cfg *config.Config, logger *slog.Logger) *Writer {
	w := &kafkago.Writer{
		Addr:         kafkago.TCP(cfg.KafkaBrokers...),
		Topic:        cfg.KafkaTopic,
		Balancer:     &kafkago.Hash{},
		RequiredAcks: kafkago.RequireAll,
		BatchTimeout: 50 * time.Millisecond,
	}
	return &Writer{writer: w, logger: logger}
}

// Name identifies the sink in logs and metrics.
func (w *Writer) Name() string { return "kafka" }

// Publish writes one message per record in a single WriteMessages call.
// Records are keyed by location id so each location stays on one partition.
func (w *Writer) Publish(ctx context.Context, snap domain.Snapshot) error {
	if len(snap.Records) == 0 {
		return nil
	}
	msgs := make([]kafkago.Message, len(snap.Records))
	for i := range snap.Records {
		msg, err := serializeToMessage(snap, snap.Records[i])
		if err != nil {
			return err
		}
		msgs[i] = msg
	}
	if err := w.writer.WriteMessages(ctx, msgs...); err != nil {
		return fmt.Errorf("write %d records: %w", len(msgs), err)
	}
	w.logger.Debug("snapshot published", "sink", w.Name(), "records", len(msgs))
	return nil
}

// Close flushes pending messages and closes the underlying writer.
func (w *Writer) Close() error {
	return w.writer.Close()
}

// serializeToMessage marshals one record into a Kafka message.
func serializeToMessage(snap domain.Snapshot, rec domain.LocationRecord) (kafkago.Message, error) {
	data, err := json.Marshal(rec)
	if err != nil {
		return kafkago.Message{}, fmt.Errorf("serialize record %s: %w", rec.ID, err)
	}
	return kafkago.Message{
		Key:   []byte(rec.ID),
		Value: data,
		Headers: []kafkago.Header{
			{Key: HeaderScenario, Value: []byte(rec.Scenario)},
			{Key: HeaderGeneratedAt, Value: []byte(snap.GeneratedAt.Format(time.RFC3339))},
			{Key: HeaderSchemaVersion, Value: []byte(strconv.Itoa(snap.SchemaVersion))},
		},
	}, nil
}
