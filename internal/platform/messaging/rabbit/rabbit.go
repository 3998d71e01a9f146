// Package rabbit declares the RabbitMQ topology shared by the activity
// publisher and the activity recorder's consumer.
package rabbit

import (
	"fmt"

	"github.com/bookkeeping-ledger/internal/config"
	amqp "github.com/rabbitmq/amqp091-go"
)

const exchangeKind = "direct"

// DeadLetterQueue returns the queue holding messages the recorder could not decode
func DeadLetterQueue(queue string) string { return queue + "_dlq" }

// DeadLetterKey returns the routing key bound to DeadLetterQueue
func DeadLetterKey(routingKey string) string { return routingKey + ".dlq" }

// Declarer is the subset of *amqp.Channel needed to declare the topology
type Declarer interface {
	ExchangeDeclare(name, kind string, durable, autoDelete, internal, noWait bool, args amqp.Table) error
	QueueDeclare(name string, durable, autoDelete, exclusive, noWait bool, args amqp.Table) (amqp.Queue, error)
	QueueBind(name, key, exchange string, noWait bool, args amqp.Table) error
}

// Session is an open connection plus one channel with the topology declared
type Session struct {
	conn    *amqp.Connection
	Channel *amqp.Channel
}

// Dial connects to the broker and declares the exchange, the activity queue and its dead-letter queue
func Dial(cfg *config.AMQPConfig) (*Session, error) {
	conn, err := amqp.Dial(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("dial AMQP: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("open channel: %w", err)
	}

	s := &Session{conn: conn, Channel: ch}
	if err := DeclareTopology(ch, cfg); err != nil {
		s.Close()
		return nil, err
	}
	return s, nil
}

// DeclareTopology is idempotent; both binaries call it on startup
func DeclareTopology(ch Declarer, cfg *config.AMQPConfig) error {
	if err := ch.ExchangeDeclare(cfg.Exchange, exchangeKind, true, false, false, false, nil); err != nil {
		return fmt.Errorf("declare exchange %s: %w", cfg.Exchange, err)
	}

	bindings := []struct{ queue, key string }{
		{cfg.Queue, cfg.RoutingKey},
		{DeadLetterQueue(cfg.Queue), DeadLetterKey(cfg.RoutingKey)},
	}
	for _, b := range bindings {
		if _, err := ch.QueueDeclare(b.queue, true, false, false, false, nil); err != nil {
			return fmt.Errorf("declare queue %s: %w", b.queue, err)
		}
		if err := ch.QueueBind(b.queue, b.key, cfg.Exchange, false, nil); err != nil {
			return fmt.Errorf("bind queue %s: %w", b.queue, err)
		}
	}
	return nil
}

// Close closes the channel, then the connection
func (s *Session) Close() error {
	if s.Channel != nil {
		s.Channel.Close()
	}
	if s.conn != nil {
		return s.conn.Close()
	}
	return nil
}
