package events

import (
	"context"
	"encoding/json"

	"github.com/cenkalti/backoff/v4"
	"github.com/gartstein/contracto/internal/contract/domain"
	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

var jsonMarshal = json.Marshal

const relayMaxRetries = 3

var retryPolicy = func(ctx context.Context) backoff.BackOff {
	return backoff.WithContext(
		backoff.WithMaxRetries(backoff.NewExponentialBackOff(), relayMaxRetries), ctx)
}

// KafkaWriter is the slice of kafka.Writer the relay uses.
type KafkaWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// envelope is the wire shape of a relayed domain event.
type envelope struct {
	EventID    string      `json:"event_id"`
	EventType  string      `json:"event_type"`
	ContractID string      `json:"contract_id"`
	OccurredAt string      `json:"occurred_at"`
	Payload    interface{} `json:"payload"`
}

// KafkaRelay forwards every domain event to a Kafka topic so downstream
// systems (analytics, search indexing) can consume the contract lifecycle.
// Registered as a global handler; delivery failures are retried with
// exponential backoff and then surfaced to the publisher's failure log.
type KafkaRelay struct {
	writer KafkaWriter
	logger *zap.Logger
}

// NewKafkaRelay creates the topic if needed and builds the relay.
func NewKafkaRelay(brokers []string, topic string, logger *zap.Logger) (*KafkaRelay, error) {
	conn, err := kafka.Dial("tcp", brokers[0])
	if err != nil {
		return nil, err
	}
	defer conn.Close()

	err = conn.CreateTopics(kafka.TopicConfig{
		Topic:             topic,
		NumPartitions:     3,
		ReplicationFactor: 1,
	})
	if err != nil {
		logger.Warn("failed to create topic (may already exist)", zap.Error(err))
	}

	return &KafkaRelay{
		writer: &kafka.Writer{
			Addr:     kafka.TCP(brokers...),
			Balancer: &kafka.LeastBytes{},
			Topic:    topic,
		},
		logger: logger.Named("kafka_relay"),
	}, nil
}

// Name implements Handler.
func (r *KafkaRelay) Name() string { return "kafka_relay" }

// Handle implements Handler. Events are keyed by contract id so one
// contract's lifecycle stays in partition order.
func (r *KafkaRelay) Handle(ctx context.Context, event domain.Event) error {
	value, err := jsonMarshal(envelope{
		EventID:    event.EventID().String(),
		EventType:  event.EventType(),
		ContractID: event.AggregateID().String(),
		OccurredAt: event.OccurredAt().Format("2006-01-02T15:04:05.000Z07:00"),
		Payload:    event,
	})
	if err != nil {
		r.logger.Error("failed to serialize event",
			zap.Error(err),
			zap.String("event_id", event.EventID().String()),
		)
		return err
	}

	msg := kafka.Message{
		Key:   []byte(event.AggregateID().String()),
		Value: value,
	}
	return backoff.Retry(func() error {
		return r.writer.WriteMessages(ctx, msg)
	}, retryPolicy(ctx))
}

// Close releases the underlying writer.
func (r *KafkaRelay) Close() {
	if err := r.writer.Close(); err != nil {
		r.logger.Error("failed to close kafka writer", zap.Error(err))
	}
}
