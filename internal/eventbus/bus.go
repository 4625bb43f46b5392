// Package eventbus publishes Guardian lifecycle events — round outcomes,
// emergency triggers, halt/resume control — over NATS so operator
// tooling and other plugin instances can observe them without polling.
package eventbus

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/nats-io/nats.go"
	"github.com/rs/zerolog"
)

// Config configures the event bus connection.
type Config struct {
	URL    string
	Prefix string // subject prefix, default "guardian."
}

// Bus is a thin publish wrapper around a NATS connection, namespaced by
// prefix. A nil *Bus is valid and every Publish call becomes a no-op,
// so the eventbus stays entirely optional: no persisted
// state is required by the core.
type Bus struct {
	nc     *nats.Conn
	prefix string
	log    zerolog.Logger
}

// Event is the envelope every published message shares.
type Event struct {
	ID        uuid.UUID       `json:"id"`
	Subject   string          `json:"subject"`
	Payload   json.RawMessage `json:"payload"`
	Timestamp time.Time       `json:"timestamp"`
}

// Connect dials NATS and returns a Bus. Pass an empty URL to get a
// disabled Bus (nil receiver semantics) without erroring.
func Connect(cfg Config, log zerolog.Logger) (*Bus, error) {
	if cfg.URL == "" {
		return nil, nil
	}

	prefix := cfg.Prefix
	if prefix == "" {
		prefix = "guardian."
	}

	nc, err := nats.Connect(cfg.URL,
		nats.Name("solana-guardian"),
		nats.ReconnectWait(2*time.Second),
		nats.MaxReconnects(-1),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			if err != nil {
				log.Warn().Err(err).Msg("eventbus: NATS disconnected")
			}
		}),
		nats.ReconnectHandler(func(c *nats.Conn) {
			log.Info().Str("url", c.ConnectedUrl()).Msg("eventbus: NATS reconnected")
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("eventbus: connect: %w", err)
	}

	return &Bus{nc: nc, prefix: prefix, log: log}, nil
}

// Publish sends payload JSON-encoded under prefix+subject. A nil Bus, or
// any marshal/publish error, is logged (if possible) and swallowed —
// event publication never gates the control loop.
func (b *Bus) Publish(subject string, payload any) {
	if b == nil || b.nc == nil {
		return
	}

	raw, err := json.Marshal(payload)
	if err != nil {
		b.log.Error().Err(err).Str("subject", subject).Msg("eventbus: marshal payload failed")
		return
	}

	event := Event{ID: uuid.New(), Subject: subject, Payload: raw, Timestamp: time.Now()}
	data, err := json.Marshal(event)
	if err != nil {
		b.log.Error().Err(err).Str("subject", subject).Msg("eventbus: marshal envelope failed")
		return
	}

	if err := b.nc.Publish(b.prefix+subject, data); err != nil {
		b.log.Error().Err(err).Str("subject", subject).Msg("eventbus: publish failed")
	}
}

// Conn exposes the underlying NATS connection for collaborators that need
// to publish or subscribe outside the Event envelope Publish wraps (e.g.
// an agent's own heartbeat publisher). Nil-safe: returns nil for a
// disabled Bus.
func (b *Bus) Conn() *nats.Conn {
	if b == nil {
		return nil
	}
	return b.nc
}

// Close drains and closes the underlying NATS connection.
func (b *Bus) Close() {
	if b == nil || b.nc == nil {
		return
	}
	_ = b.nc.Drain()
}
