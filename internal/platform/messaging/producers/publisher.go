package producers

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/bookkeeping-ledger/internal/config"
)

// NewEventPublisher opens the activity publisher for the configured backend
func NewEventPublisher(ctx context.Context, logger *slog.Logger, cfg *config.Config) (EventPublisher, error) {
	switch cfg.Messaging.Backend {
	case config.BackendKafka:
		p, err := NewActivityEventProducer(ctx, logger, &cfg.Kafka)
		if err != nil {
			return nil, err
		}
		return p, nil
	case config.BackendAMQP:
		p, err := NewAMQPProducer(logger, &cfg.AMQP)
		if err != nil {
			return nil, err
		}
		return p, nil
	default:
		return nil, fmt.Errorf("unsupported messaging backend %q", cfg.Messaging.Backend)
	}
}

// NewDeadLetterPublisher opens the dead-letter publisher for the configured backend
func NewDeadLetterPublisher(ctx context.Context, logger *slog.Logger, cfg *config.Config) (DeadLetterPublisher, error) {
	switch cfg.Messaging.Backend {
	case config.BackendKafka:
		p, err := NewDLQProducer(ctx, logger, &cfg.Kafka)
		if err != nil {
			return nil, err
		}
		return p, nil
	case config.BackendAMQP:
		p, err := NewAMQPProducer(logger, &cfg.AMQP)
		if err != nil {
			return nil, err
		}
		return p, nil
	default:
		return nil, fmt.Errorf("unsupported messaging backend %q", cfg.Messaging.Backend)
	}
}
