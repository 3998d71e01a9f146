package producers

import (
	"context"

	"github.com/bookkeeping-ledger/internal/domain/activity"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/segmentio/kafka-go"
)

// Message headers carried by every activity event, whatever the broker
const (
	HeaderCorrelationID = "correlation-id"
	HeaderAction        = "action"
	HeaderDLQReason     = "dlq-reason"
)

// EventPublisher sends activity events to the recorder
type EventPublisher interface {
	Publish(ctx context.Context, event *activity.Event) error
	Close() error
}

// DeadLetterPublisher parks messages the recorder could not decode
type DeadLetterPublisher interface {
	PublishToDLQ(ctx context.Context, key string, originalMessageValue []byte, reason string) error
	Close() error
}

// KafkaWriter wraps kafka.Writer methods for testing
type KafkaWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// AMQPChannel wraps the publishing side of *amqp.Channel for testing
type AMQPChannel interface {
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
}
