package producers

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/bookkeeping-ledger/internal/config"
	"github.com/bookkeeping-ledger/internal/domain/activity"
	"github.com/segmentio/kafka-go"
)

// ActivityEventProducer publishes activity events to the Kafka activity topic
type ActivityEventProducer struct {
	logger *slog.Logger
	writer KafkaWriter
	topic  string
}

// NewActivityEventProducer ensures the activity topic exists and opens a synchronous writer
func NewActivityEventProducer(ctx context.Context, logger *slog.Logger, cfg *config.KafkaConfig) (*ActivityEventProducer, error) {
	if cfg.ActivityTopic == "" {
		return nil, fmt.Errorf("kafka activity topic is not configured")
	}

	conn, err := kafka.DialContext(ctx, "tcp", cfg.Brokers)
	if err != nil {
		return nil, fmt.Errorf("failed to dial kafka for activity producer: %w", err)
	}
	defer conn.Close()

	if err := createKafkaTopicIfNotExists(conn, cfg.ActivityTopic, cfg.NumPartitions, cfg.ReplicationFactor, logger); err != nil {
		return nil, fmt.Errorf("failed to ensure activity topic %s exists: %w", cfg.ActivityTopic, err)
	}

	writer := &kafka.Writer{
		Addr:         kafka.TCP(cfg.Brokers),
		Topic:        cfg.ActivityTopic,
		Balancer:     &kafka.Hash{}, // one user's events stay ordered on one partition
		RequiredAcks: kafka.RequireOne,
		WriteTimeout: cfg.MaxWait,
	}

	return &ActivityEventProducer{
		logger: logger.With("component", "activity_producer", "topic", cfg.ActivityTopic),
		writer: writer,
		topic:  cfg.ActivityTopic,
	}, nil
}

func (p *ActivityEventProducer) Publish(ctx context.Context, event *activity.Event) error {
	value, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal activity event %s: %w", event.ID, err)
	}

	msg := kafka.Message{
		Key:   []byte(event.UserID.String()),
		Value: value,
		Headers: []kafka.Header{
			{Key: HeaderAction, Value: []byte(event.Action)},
			{Key: HeaderCorrelationID, Value: []byte(event.CorrelationID)},
		},
	}

	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("failed to publish activity event %s to %s: %w", event.ID, p.topic, err)
	}

	p.logger.Debug("Published activity event", "event_id", event.ID, "action", event.Action)
	return nil
}

func (p *ActivityEventProducer) Close() error {
	p.logger.Info("Closing activity event producer")
	if err := p.writer.Close(); err != nil {
		return fmt.Errorf("failed to close kafka writer for topic %s: %w", p.topic, err)
	}
	return nil
}
