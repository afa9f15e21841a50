package broker

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"
)

// DefaultFlushTimeout bounds the wait for unacknowledged sends on shutdown.
const DefaultFlushTimeout = 10 * time.Second

// messageWriter is the slice of kafka.Writer the publisher needs; tests
// substitute a capturing fake.
type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// PublisherConfig fixes the envelope identity and delivery hooks for one
// publisher instance.
type PublisherConfig struct {
	Brokers      []string
	Topic        string
	ClientID     string
	EventType    string
	EventVersion int
	Source       string
	// Transform, when set, is applied to every payload before the envelope
	// is built. Must be a pure function.
	Transform func(payload any) any
	// Key, when set, derives the delivery key from the (already transformed)
	// payload whenever the caller does not pass one explicitly.
	Key          func(payload any) string
	FlushTimeout time.Duration
}

// Publisher wraps payloads in versioned envelopes and hands them to Kafka
// with per-key ordering. The underlying writer is long-lived and owned by the
// publisher for its process lifetime; it is safe for concurrent use.
//
// The writer is configured for the strongest producer-side guarantee kafka-go
// offers: acks from the full in-sync replica set, hash balancing so messages
// sharing a key land on one partition in send order, synchronous writes so at
// most one logical send per Publisher call is in flight, and writer-internal
// retries disabled so a retried send reuses the prepared message id instead
// of minting duplicates.
type Publisher struct {
	writer messageWriter
	cfg    PublisherConfig
}

func NewPublisher(cfg PublisherConfig) *Publisher {
	if cfg.EventVersion <= 0 {
		cfg.EventVersion = 1
	}
	if cfg.FlushTimeout <= 0 {
		cfg.FlushTimeout = DefaultFlushTimeout
	}
	writer := &kafka.Writer{
		Addr:         kafka.TCP(cfg.Brokers...),
		Topic:        cfg.Topic,
		Balancer:     &kafka.Hash{},
		RequiredAcks: kafka.RequireAll,
		MaxAttempts:  1,
		BatchSize:    1,
		BatchTimeout: 10 * time.Millisecond,
		Transport:    &kafka.Transport{ClientID: cfg.ClientID},
	}
	return &Publisher{writer: writer, cfg: cfg}
}

// PreparedMessage is one logical send: envelope built once, message id fixed,
// value serialized once. Retrying a prepared message re-transmits the same
// physical bytes, keeping the id stable across attempts.
type PreparedMessage struct {
	envelope Envelope
	key      []byte
	value    []byte
}

// MessageID returns the envelope id fixed at preparation time.
func (m *PreparedMessage) MessageID() string { return m.envelope.MessageID }

// Key returns the resolved delivery key, empty when the broker chooses
// distribution.
func (m *PreparedMessage) Key() string { return string(m.key) }

// Prepare builds the envelope for one logical send. An explicit key wins;
// otherwise the publisher's key hook runs against the transformed payload; no
// key means the broker distributes freely.
func (p *Publisher) Prepare(payload any, tenantID, key string) (*PreparedMessage, error) {
	if p.cfg.Transform != nil {
		payload = p.cfg.Transform(payload)
	}
	if key == "" && p.cfg.Key != nil {
		key = p.cfg.Key(payload)
	}
	env := Envelope{
		MessageID:    uuid.NewString(),
		Timestamp:    time.Now().UTC(),
		EventType:    p.cfg.EventType,
		EventVersion: p.cfg.EventVersion,
		Source:       p.cfg.Source,
		Payload:      payload,
	}
	if tenantID != "" {
		env.TenantID = &tenantID
	}
	value, err := json.Marshal(env)
	if err != nil {
		return nil, err
	}
	msg := &PreparedMessage{envelope: env, value: value}
	if key != "" {
		msg.key = []byte(key)
	}
	return msg, nil
}

// Send delivers one prepared message. It never panics or returns an error:
// every failure collapses to false with diagnostics logged, so the retry
// orchestrator sees a uniform boolean contract.
func (p *Publisher) Send(ctx context.Context, msg *PreparedMessage) (ok bool) {
	defer func() {
		if r := recover(); r != nil {
			slog.Error("publish panic recovered", slog.String("topic", p.cfg.Topic), slog.Any("panic", r))
			ok = false
		}
	}()

	err := p.writer.WriteMessages(ctx, kafka.Message{
		Key:   msg.key,
		Value: msg.value,
		Headers: []kafka.Header{
			{Key: EventHeaderKey, Value: []byte(p.cfg.EventType)},
		},
	})
	if err != nil {
		fatal := false
		var kerr kafka.Error
		if errors.As(err, &kerr) {
			fatal = !kerr.Temporary()
		}
		slog.Warn("event publish failed",
			slog.String("topic", p.cfg.Topic),
			slog.String("messageId", msg.MessageID()),
			slog.String("key", msg.Key()),
			slog.Bool("fatal", fatal),
			slog.Any("error", err),
		)
		return false
	}

	slog.Info("event published",
		slog.String("topic", p.cfg.Topic),
		slog.String("eventType", p.cfg.EventType),
		slog.String("messageId", msg.MessageID()),
		slog.String("key", msg.Key()),
		slog.Int("bytes", len(msg.value)),
	)
	return true
}

// Publish is the one-shot form: prepare and send in a single call. Note that
// retrying Publish itself mints a fresh message id per attempt; callers that
// retry should Prepare once and retry Send.
func (p *Publisher) Publish(ctx context.Context, payload any, tenantID, key string) bool {
	msg, err := p.Prepare(payload, tenantID, key)
	if err != nil {
		slog.Warn("event prepare failed", slog.String("topic", p.cfg.Topic), slog.Any("error", err))
		return false
	}
	return p.Send(ctx, msg)
}

// Close flushes buffered, unacknowledged sends within the configured bound
// before releasing the channel.
func (p *Publisher) Close(ctx context.Context) error {
	done := make(chan error, 1)
	go func() { done <- p.writer.Close() }()

	timer := time.NewTimer(p.cfg.FlushTimeout)
	defer timer.Stop()
	select {
	case err := <-done:
		return err
	case <-timer.C:
		return errors.New("publisher flush timed out")
	case <-ctx.Done():
		return ctx.Err()
	}
}
