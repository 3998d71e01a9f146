package consumers

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/bookkeeping-ledger/internal/config"
	"github.com/bookkeeping-ledger/internal/platform/messaging/rabbit"
	amqp "github.com/rabbitmq/amqp091-go"
)

// AMQPChannel wraps the consuming side of *amqp.Channel for testing
type AMQPChannel interface {
	Qos(prefetchCount, prefetchSize int, global bool) error
	Consume(queue, consumer string, autoAck, exclusive, noLocal, noWait bool, args amqp.Table) (<-chan amqp.Delivery, error)
}

// AMQPConsumer implements Consumer on a RabbitMQ queue with manual acks
type AMQPConsumer struct {
	channel  AMQPChannel
	closer   io.Closer
	logger   *slog.Logger
	queue    string
	prefetch int
}

func NewAMQPConsumer(logger *slog.Logger, cfg *config.AMQPConfig) (*AMQPConsumer, error) {
	session, err := rabbit.Dial(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to open amqp session for consumer: %w", err)
	}
	return &AMQPConsumer{
		channel:  session.Channel,
		closer:   session,
		logger:   logger.With("component", "amqp_consumer", "queue", cfg.Queue),
		queue:    cfg.Queue,
		prefetch: cfg.Prefetch,
	}, nil
}

// Subscribe registers the consumer and processes deliveries in the background
func (c *AMQPConsumer) Subscribe(ctx context.Context, handler MessageHandler) error {
	if err := c.channel.Qos(c.prefetch, 0, false); err != nil {
		return fmt.Errorf("set qos on %s: %w", c.queue, err)
	}
	deliveries, err := c.channel.Consume(c.queue, "", false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("start consuming %s: %w", c.queue, err)
	}

	c.logger.Info("Subscribed to AMQP queue")
	go c.consume(ctx, deliveries, handler)
	return nil
}

func (c *AMQPConsumer) consume(ctx context.Context, deliveries <-chan amqp.Delivery, handler MessageHandler) {
	for {
		select {
		case <-ctx.Done():
			c.logger.Info("Context canceled, stopping consumer")
			return
		case d, ok := <-deliveries:
			if !ok {
				c.logger.Warn("Delivery channel closed")
				return
			}
			log := c.logger.With("delivery_tag", d.DeliveryTag, "message_id", d.MessageId)

			if err := handler(ctx, []byte(d.MessageId), d.Body); err != nil {
				log.Error("Failed to process message, requeueing", "error", err)
				if nackErr := d.Nack(false, true); nackErr != nil {
					log.Error("Failed to nack message", "error", nackErr)
				}
				continue
			}
			if err := d.Ack(false); err != nil {
				log.Error("Failed to ack message", "error", err)
			}
		}
	}
}

func (c *AMQPConsumer) Close() error {
	if c.closer == nil {
		return nil
	}
	return c.closer.Close()
}

// NewConsumer opens the consumer for the configured backend
func NewConsumer(logger *slog.Logger, cfg *config.Config) (Consumer, error) {
	switch cfg.Messaging.Backend {
	case config.BackendKafka:
		return NewKafkaConsumer(logger, &cfg.Kafka), nil
	case config.BackendAMQP:
		c, err := NewAMQPConsumer(logger, &cfg.AMQP)
		if err != nil {
			return nil, err
		}
		return c, nil
	default:
		return nil, fmt.Errorf("unsupported messaging backend %q", cfg.Messaging.Backend)
	}
}
