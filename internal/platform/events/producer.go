package events

import (
	"context"
	"encoding/json"

	skafka "github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"propdesk_backend/internal/config"
)

// Writer defines the subset of segmentio kafka.Writer we need. This makes the
// producer testable.
type Writer interface {
	WriteMessages(ctx context.Context, msgs ...skafka.Message) error
	Close() error
}

// Publisher is the interface used by services to publish domain events.
type Publisher interface {
	Publish(ctx context.Context, key string, value interface{}) error
	Close() error
}

// KafkaPublisher is a thin wrapper around a kafka writer implementing Publisher.
type KafkaPublisher struct {
	writer Writer
	logger *zap.Logger
}

var _ Publisher = (*KafkaPublisher)(nil)

// NewPublisher creates a Publisher writing to the configured broker/topic.
// When no broker is configured it returns nil; callers treat a nil Publisher
// as "event publishing disabled", mirroring the optional search client.
func NewPublisher(cfg *config.Config, logger *zap.Logger) Publisher {
	if cfg.KafkaBroker == "" {
		logger.Info("Kafka broker is not configured; task events will not be published.")
		return nil
	}
	w := &skafka.Writer{
		Addr:     skafka.TCP(cfg.KafkaBroker),
		Topic:    cfg.KafkaTaskTopic,
		Balancer: &skafka.LeastBytes{},
	}
	logger.Info("Kafka publisher initialized",
		zap.String("broker", cfg.KafkaBroker),
		zap.String("topic", cfg.KafkaTaskTopic))
	return &KafkaPublisher{writer: w, logger: logger.Named("kafka_publisher")}
}

// NewPublisherWithWriter allows injecting a test writer.
func NewPublisherWithWriter(w Writer, logger *zap.Logger) *KafkaPublisher {
	return &KafkaPublisher{writer: w, logger: logger}
}

// Publish marshals the value to JSON and writes a kafka message with the given key.
func (p *KafkaPublisher) Publish(ctx context.Context, key string, value interface{}) error {
	b, err := json.Marshal(value)
	if err != nil {
		p.logger.Error("Failed to marshal event value", zap.Error(err), zap.String("key", key))
		return err
	}
	msg := skafka.Message{Key: []byte(key), Value: b}
	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		p.logger.Error("Kafka write error", zap.Error(err), zap.String("key", key))
		return err
	}
	return nil
}

// Close closes the underlying writer.
func (p *KafkaPublisher) Close() error {
	return p.writer.Close()
}
