package outbox_poller

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/bookkeeping-ledger/internal/config"
	"github.com/bookkeeping-ledger/internal/domain/outbox"
)

// Poller drains pending outbox messages into the activity log
type Poller struct {
	outboxRepo       outbox.Repository
	publisher        ActivityPublisher
	logger           *slog.Logger
	pollInterval     time.Duration
	batchSize        int
	maxRetryAttempts int
}

func NewPoller(logger *slog.Logger, cfg *config.OutboxConfig, outboxRepo outbox.Repository, publisher ActivityPublisher) *Poller {
	return &Poller{
		outboxRepo:       outboxRepo,
		publisher:        publisher,
		logger:           logger.With("component", "outbox_poller"),
		pollInterval:     cfg.PollingInterval,
		batchSize:        cfg.BatchSize,
		maxRetryAttempts: cfg.MaxRetryAttempts,
	}
}

// Start polls until ctx is cancelled
func (p *Poller) Start(ctx context.Context) {
	p.logger.Info("Starting outbox poller",
		"poll_interval", p.pollInterval.String(),
		"batch_size", p.batchSize,
		"max_retry_attempts", p.maxRetryAttempts,
	)
	ticker := time.NewTicker(p.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			p.logger.Info("Outbox poller stopped")
			return
		case <-ticker.C:
			if _, err := p.processPendingMessages(ctx); err != nil {
				p.logger.Error("Outbox batch failed", "error", err)
			}
		}
	}
}

// processPendingMessages handles one batch and returns how many messages were
// recorded. A failed message has its attempts bumped and, once they reach
// the limit, is marked FAILED_TO_PUBLISH.
func (p *Poller) processPendingMessages(ctx context.Context) (int, error) {
	messages, err := p.outboxRepo.GetPending(ctx, p.batchSize)
	if err != nil {
		return 0, fmt.Errorf("failed to get pending outbox messages: %w", err)
	}
	if len(messages) == 0 {
		return 0, nil
	}

	p.logger.Debug("Fetched pending outbox messages", "count", len(messages))

	recorded := 0
	for _, msg := range messages {
		if err := p.publisher.Publish(ctx, msg); err != nil {
			p.logger.Error("Failed to record outbox message",
				"outbox_id", msg.ID, "event_id", msg.EventID, "attempts", msg.Attempts, "error", err,
			)

			if errInc := p.outboxRepo.IncrementAttempts(ctx, msg.ID); errInc != nil {
				p.logger.Error("Failed to increment outbox attempts", "outbox_id", msg.ID, "error", errInc)
				continue
			}

			if msg.Attempts+1 >= p.maxRetryAttempts {
				p.logger.Warn("Outbox message exhausted its retries",
					"outbox_id", msg.ID, "event_id", msg.EventID, "attempts", msg.Attempts+1,
				)
				if errUpdate := p.outboxRepo.UpdateStatus(ctx, msg.ID, outbox.StatusFailedToPublish); errUpdate != nil {
					p.logger.Error("Failed to mark outbox message FAILED_TO_PUBLISH", "outbox_id", msg.ID, "error", errUpdate)
				}
			}
			continue
		}
		recorded++
	}
	return recorded, nil
}
