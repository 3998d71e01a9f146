package consumers

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/bookkeeping-ledger/internal/config"
	"github.com/segmentio/kafka-go"
)

const (
	fetchRetryDelay = time.Second
	// maxHandlerRetryDelay caps the backoff while a message keeps failing
	maxHandlerRetryDelay = 30 * time.Second
)

// MessageHandler processes one message. A non-nil error means the same
// message is handed over again.
type MessageHandler func(ctx context.Context, key []byte, value []byte) error

// Consumer defines the message queue consumer interface
type Consumer interface {
	Subscribe(ctx context.Context, handler MessageHandler) error
	Close() error
}

// KafkaReader wraps kafka.Reader methods for testing
type KafkaReader interface {
	FetchMessage(ctx context.Context) (kafka.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// KafkaConsumer implements Consumer using a Kafka consumer group
type KafkaConsumer struct {
	reader KafkaReader
	logger *slog.Logger
	topic  string
	group  string

	// retryDelay is the first backoff step after a handler failure; zero
	// means fetchRetryDelay
	retryDelay time.Duration
}

func NewKafkaConsumer(logger *slog.Logger, cfg *config.KafkaConfig) *KafkaConsumer {
	startOffset := kafka.FirstOffset
	if cfg.StartOffset == kafka.LastOffset {
		startOffset = kafka.LastOffset
	}
	return &KafkaConsumer{
		logger: logger.With("component", "kafka_consumer", "topic", cfg.ActivityTopic, "group_id", cfg.ConsumerGroup),
		topic:  cfg.ActivityTopic,
		group:  cfg.ConsumerGroup,
		reader: kafka.NewReader(kafka.ReaderConfig{
			Brokers:     []string{cfg.Brokers},
			Topic:       cfg.ActivityTopic,
			GroupID:     cfg.ConsumerGroup,
			MinBytes:    cfg.MinBytes,
			MaxBytes:    cfg.MaxBytes,
			MaxWait:     cfg.MaxWait,
			StartOffset: startOffset,
		}),
	}
}

// Subscribe starts consuming in the background until ctx is canceled
func (c *KafkaConsumer) Subscribe(ctx context.Context, handler MessageHandler) error {
	c.logger.Info("Subscribed to Kafka topic")
	go c.consume(ctx, handler)
	return nil
}

func (c *KafkaConsumer) consume(ctx context.Context, handler MessageHandler) {
	for {
		msg, err := c.reader.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				c.logger.Info("Context canceled, stopping consumer")
				return
			}
			c.logger.Error("Failed to fetch message from Kafka", "error", err)
			select {
			case <-ctx.Done():
				return
			case <-time.After(fetchRetryDelay):
			}
			continue
		}

		log := c.logger.With("partition", msg.Partition, "offset", msg.Offset, "key", string(msg.Key))
		log.Debug("Received message from Kafka")

		// group offsets are cumulative, so a later commit would skip this
		// message; hold the partition until it goes through
		if !c.handleUntilDone(ctx, log, msg, handler) {
			log.Info("Context canceled, leaving message uncommitted")
			return
		}

		if err := c.reader.CommitMessages(ctx, msg); err != nil {
			log.Error("Failed to commit message after successful processing", "error", err)
		}
	}
}

// handleUntilDone retries msg with exponential backoff. It returns false
// only when ctx ends first.
func (c *KafkaConsumer) handleUntilDone(ctx context.Context, log *slog.Logger, msg kafka.Message, handler MessageHandler) bool {
	delay := c.retryDelay
	if delay <= 0 {
		delay = fetchRetryDelay
	}
	for attempt := 1; ; attempt++ {
		err := handler(ctx, msg.Key, msg.Value)
		if err == nil {
			return true
		}
		log.Error("Failed to process message, retrying", "error", err, "attempt", attempt, "retry_in", delay.String())

		select {
		case <-ctx.Done():
			return false
		case <-time.After(delay):
		}
		delay = min(delay*2, maxHandlerRetryDelay)
	}
}

func (c *KafkaConsumer) Close() error {
	if c.reader == nil {
		return nil
	}
	if err := c.reader.Close(); err != nil {
		return fmt.Errorf("failed to close kafka reader: %w", err)
	}
	return nil
}
