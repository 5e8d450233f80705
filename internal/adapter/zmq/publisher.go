// Package zmq publishes snapshot records on a ZeroMQ PUB socket. Each frame
// is a topic prefix followed by a JSON envelope, so subscribers can filter
// by scenario with a plain prefix subscription such as "crowd.Festival".
package zmq

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/couchcryptid/crowd-safety-sim/internal/domain"
	"github.com/pebbe/zmq4"
)

// TopicPrefix starts every frame topic.
const TopicPrefix = "crowd"

// MsgTypeRecord marks an envelope carrying one location record.
const MsgTypeRecord = "record"

// Envelope wraps a payload with its type and publish time.
type Envelope struct {
	Type      string          `json:"type"`
	Timestamp time.Time       `json:"timestamp"`
	Payload   json.RawMessage `json:"payload"`
}

type socket interface {
	Send(data string, flags zmq4.Flag) (int, error)
	Close() error
}

// Publisher implements pipeline.Publisher over a bound PUB socket.
type Publisher struct {
	mu     sync.Mutex
	sock   socket
	logger *slog.Logger
}

// NewPublisher creates a PUB socket bound to addr, e.g. "tcp://*:5556".
func NewPublisher(addr string, logger *slog.Logger) (*Publisher, error) {
	sock, err := zmq4.NewSocket(zmq4.PUB)
	if err != nil {
		return nil, fmt.Errorf("create publisher: %w", err)
	}
	if err := sock.Bind(addr); err != nil {
		sock.Close() //nolint:errcheck // already failing
		return nil, fmt.Errorf("bind publisher %s: %w", addr, err)
	}
	logger.Info("zmq publisher bound", "addr", addr)
	return &Publisher{sock: sock, logger: logger}, nil
}

// Name identifies the sink in logs and metrics.
func (p *Publisher) Name() string { return "zmq" }

// Publish sends one frame per record. PUB sockets drop frames when no
// subscriber is connected; that is not an error.
func (p *Publisher) Publish(ctx context.Context, snap domain.Snapshot) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	for i := range snap.Records {
		if err := ctx.Err(); err != nil {
			return err
		}
		frame, err := Frame(snap.GeneratedAt, snap.Records[i])
		if err != nil {
			return err
		}
		if _, err := p.sock.Send(frame, 0); err != nil {
			return fmt.Errorf("send %s: %w", snap.Records[i].ID, err)
		}
	}
	p.logger.Debug("snapshot published", "sink", p.Name(), "records", len(snap.Records))
	return nil
}

// Close releases the socket.
func (p *Publisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.sock.Close()
}

// Topic returns the subscription topic for a scenario.
func Topic(s domain.Scenario) string {
	return TopicPrefix + "." + string(s)
}

// Frame renders one record as "<topic> <envelope JSON>".
func Frame(ts time.Time, rec domain.LocationRecord) (string, error) {
	payload, err := json.Marshal(rec)
	if err != nil {
		return "", fmt.Errorf("marshal record %s: %w", rec.ID, err)
	}
	env, err := json.Marshal(Envelope{Type: MsgTypeRecord, Timestamp: ts, Payload: payload})
	if err != nil {
		return "", fmt.Errorf("marshal envelope %s: %w", rec.ID, err)
	}
	return Topic(rec.Scenario) + " " + string(env), nil
}

// ParseFrame splits a frame into its topic and envelope.
func ParseFrame(frame string) (string, Envelope, error) {
	topic, body, ok := strings.Cut(frame, " ")
	if !ok {
		return "", Envelope{}, errors.New("frame has no topic separator")
	}
	var env Envelope
	if err := json.Unmarshal([]byte(body), &env); err != nil {
		return "", Envelope{}, fmt.Errorf("decode envelope: %w", err)
	}
	return topic, env, nil
}
