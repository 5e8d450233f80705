package kafka

import (
	"context"
	"encoding/json"
	"log/slog"
	"testing"
	"time"

	"github.com/couchcryptid/crowd-safety-sim/internal/config"
	"github.com/couchcryptid/crowd-safety-sim/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testSnapshot() domain.Snapshot {
	now := time.Date(2024, 11, 15, 18, 30, 0, 0, time.UTC)
	return domain.Snapshot{
		SchemaVersion: domain.SchemaVersion,
		GeneratedAt:   now,
		Records: []domain.LocationRecord{
			{ID: "LOC-100", Name: "Dashashwamedh Ghat", Scenario: domain.ScenarioFestival, RiskScore: 91, RoadCondition: domain.RoadBlocked, LastUpdated: now},
			{ID: "LOC-101", Name: "Godowlia Chowk", Scenario: domain.ScenarioNormal, RiskScore: 14, RoadCondition: domain.RoadGood, LastUpdated: now},
		},
	}
}

func TestSerializeToMessage(t *testing.T) {
	snap := testSnapshot()

	msg, err := serializeToMessage(snap, snap.Records[0])
	require.NoError(t, err)

	assert.Equal(t, []byte("LOC-100"), msg.Key)
	assert.Contains(t, string(msg.Value), `"riskScore":91`)
	assert.Contains(t, string(msg.Value), `"roadCondition":"Blocked"`)

	var decoded domain.LocationRecord
	require.NoError(t, json.Unmarshal(msg.Value, &decoded))
	assert.Equal(t, snap.Records[0], decoded)

	require.Len(t, msg.Headers, 3)
	assert.Equal(t, HeaderScenario, msg.Headers[0].Key)
	assert.Equal(t, []byte("Festival"), msg.Headers[0].Value)
	assert.Equal(t, HeaderGeneratedAt, msg.Headers[1].Key)
	assert.Equal(t, []byte("2024-11-15T18:30:00Z"), msg.Headers[1].Value)
	assert.Equal(t, HeaderSchemaVersion, msg.Headers[2].Key)
	assert.Equal(t, []byte("2"), msg.Headers[2].Value)
}

func TestWriter_PublishEmptySnapshotIsNoop(t *testing.T) {
	// No writer is needed: an empty snapshot never reaches Kafka.
	w := &Writer{}
	require.NoError(t, w.Publish(context.Background(), domain.Snapshot{}))
	assert.Equal(t, "kafka", w.Name())
}

func TestWriter_CloseWithoutWrites(t *testing.T) {
	cfg := &config.Config{KafkaBrokers: []string{"localhost:9092"}, KafkaTopic: "crowd-snapshots"}
	w := NewWriter(cfg, slog.New(slog.DiscardHandler))
	require.NoError(t, w.Close())
}
