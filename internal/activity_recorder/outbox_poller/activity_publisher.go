package outbox_poller

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/bookkeeping-ledger/internal/activity_recorder/service"
	"github.com/bookkeeping-ledger/internal/domain/outbox"
)

// ActivityPublisher moves one outbox message into the activity log
type ActivityPublisher interface {
	Publish(ctx context.Context, message *outbox.Message) error
}

// ActivityPublisherImpl implements ActivityPublisher
type ActivityPublisherImpl struct {
	outboxRepo outbox.Repository
	recorder   service.RecordingService
	logger     *slog.Logger
}

func NewActivityPublisher(logger *slog.Logger, outboxRepo outbox.Repository, recorder service.RecordingService) ActivityPublisher {
	return &ActivityPublisherImpl{
		outboxRepo: outboxRepo,
		recorder:   recorder,
		logger:     logger,
	}
}

// Publish records the event and marks the message PROCESSED. Messages that
// can never be recorded are marked FAILED_TO_PUBLISH straight away.
func (p *ActivityPublisherImpl) Publish(ctx context.Context, message *outbox.Message) error {
	event, err := message.Event()
	if err != nil {
		p.markFailed(ctx, message)
		return fmt.Errorf("unmarshal payload for outbox %d failed: %w", message.ID, err)
	}

	logger := p.logger
	if event.CorrelationID != "" {
		logger = p.logger.With("correlation_id", event.CorrelationID)
	}

	if err := p.recorder.Record(ctx, event); err != nil {
		var invalid service.ErrInvalidEvent
		if errors.As(err, &invalid) {
			p.markFailed(ctx, message)
		}
		return fmt.Errorf("failed to record outbox %d: %w", message.ID, err)
	}

	if err := p.outboxRepo.UpdateStatus(ctx, message.ID, outbox.StatusProcessed); err != nil {
		logger.Error("Failed to mark outbox message PROCESSED", "outbox_id", message.ID, "event_id", message.EventID, "error", err)
		return fmt.Errorf("activity %s recorded, but failed to mark outbox %d as PROCESSED: %w", message.EventID, message.ID, err)
	}

	logger.Info("Outbox message recorded", "outbox_id", message.ID, "event_id", message.EventID)
	return nil
}

func (p *ActivityPublisherImpl) markFailed(ctx context.Context, message *outbox.Message) {
	if err := p.outboxRepo.UpdateStatus(ctx, message.ID, outbox.StatusFailedToPublish); err != nil {
		p.logger.Error("Failed to mark outbox message FAILED_TO_PUBLISH", "outbox_id", message.ID, "error", err)
	}
}
