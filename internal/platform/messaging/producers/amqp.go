package producers

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/bookkeeping-ledger/internal/config"
	"github.com/bookkeeping-ledger/internal/domain/activity"
	"github.com/bookkeeping-ledger/internal/platform/messaging/rabbit"
	amqp "github.com/rabbitmq/amqp091-go"
)

const amqpPublishTimeout = 5 * time.Second

// AMQPProducer publishes activity events and dead letters to a RabbitMQ exchange
type AMQPProducer struct {
	logger     *slog.Logger
	channel    AMQPChannel
	closer     io.Closer
	exchange   string
	routingKey string
	now        func() time.Time
}

// NewAMQPProducer dials the broker and declares the activity topology
func NewAMQPProducer(logger *slog.Logger, cfg *config.AMQPConfig) (*AMQPProducer, error) {
	session, err := rabbit.Dial(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to open amqp session for activity producer: %w", err)
	}

	return &AMQPProducer{
		logger:     logger.With("component", "amqp_producer", "exchange", cfg.Exchange),
		channel:    session.Channel,
		closer:     session,
		exchange:   cfg.Exchange,
		routingKey: cfg.RoutingKey,
		now:        time.Now,
	}, nil
}

func (p *AMQPProducer) Publish(ctx context.Context, event *activity.Event) error {
	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal activity event %s: %w", event.ID, err)
	}

	msg := amqp.Publishing{
		ContentType:   "application/json",
		DeliveryMode:  amqp.Persistent,
		MessageId:     event.ID.String(),
		CorrelationId: event.CorrelationID,
		Timestamp:     p.now(),
		Headers:       amqp.Table{HeaderAction: string(event.Action)},
		Body:          body,
	}

	if err := p.publish(ctx, p.routingKey, msg); err != nil {
		return fmt.Errorf("failed to publish activity event %s: %w", event.ID, err)
	}

	p.logger.Debug("Published activity event", "event_id", event.ID, "action", event.Action)
	return nil
}

func (p *AMQPProducer) PublishToDLQ(ctx context.Context, key string, originalMessageValue []byte, reason string) error {
	body, err := marshalDeadLetter(key, originalMessageValue, reason, p.now())
	if err != nil {
		return err
	}

	msg := amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		MessageId:    key,
		Timestamp:    p.now(),
		Headers:      amqp.Table{HeaderDLQReason: reason},
		Body:         body,
	}

	if err := p.publish(ctx, rabbit.DeadLetterKey(p.routingKey), msg); err != nil {
		return fmt.Errorf("failed to publish message to DLQ: %w", err)
	}

	p.logger.Info("Published message to DLQ", "key", key, "reason", reason)
	return nil
}

func (p *AMQPProducer) publish(ctx context.Context, key string, msg amqp.Publishing) error {
	ctx, cancel := context.WithTimeout(ctx, amqpPublishTimeout)
	defer cancel()
	return p.channel.PublishWithContext(ctx, p.exchange, key, false, false, msg)
}

func (p *AMQPProducer) Close() error {
	if p.closer == nil {
		return nil
	}
	p.logger.Info("Closing AMQP producer")
	return p.closer.Close()
}
