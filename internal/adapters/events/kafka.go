package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/segmentio/kafka-go"

	"conferencesessions/internal/domain"
)

// messageWriter is the subset of *kafka.Writer the publisher uses.
type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// KafkaPublisher streams session lifecycle events to a Kafka topic, keyed by session id.
type KafkaPublisher struct {
	writer messageWriter
	logger *slog.Logger
}

const (
	batchTimeout = 10 * time.Millisecond
	writeTimeout = 5 * time.Second
)

// NewKafkaPublisher returns a publisher writing to topic on brokers. Messages with the same
// key land on the same partition.
func NewKafkaPublisher(brokers []string, topic string, logger *slog.Logger) *KafkaPublisher {
	writer := &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafka.Hash{},
		RequiredAcks: kafka.RequireOne,
		BatchTimeout: batchTimeout,
		WriteTimeout: writeTimeout,
	}
	return &KafkaPublisher{writer: writer, logger: logger}
}

func (p *KafkaPublisher) Publish(ctx context.Context, event domain.SessionLifecycleEvent) error {
	value, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal lifecycle event: %w", err)
	}
	key := strconv.FormatInt(event.SessionID, 10)
	if event.SessionID == 0 {
		key = "subevent-" + strconv.FormatInt(event.SubEventID, 10)
	}
	if err := p.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(key),
		Value: value,
		Headers: []kafka.Header{
			{Key: "type", Value: []byte(event.Type)},
		},
	}); err != nil {
		return fmt.Errorf("publish %s: %w", event.Type, err)
	}
	p.logger.DebugContext(ctx, "published lifecycle event", "type", event.Type, "key", key)
	return nil
}

// Close flushes and closes the underlying writer.
func (p *KafkaPublisher) Close() error {
	return p.writer.Close()
}

// NoopPublisher drops events. Used when no brokers are configured.
type NoopPublisher struct{}

func (NoopPublisher) Publish(context.Context, domain.SessionLifecycleEvent) error { return nil }
