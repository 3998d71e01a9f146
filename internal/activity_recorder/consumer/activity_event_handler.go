package consumer

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/bookkeeping-ledger/internal/activity_recorder/service"
	"github.com/bookkeeping-ledger/internal/domain/activity"
	"github.com/bookkeeping-ledger/internal/platform/messaging/producers"
)

// ActivityEventHandler consumes activity events from the broker
type ActivityEventHandler struct {
	recordingService service.RecordingService
	dlq              producers.DeadLetterPublisher
	logger           *slog.Logger
}

// NewActivityEventHandler accepts a nil dlq; poison messages are then retried
func NewActivityEventHandler(logger *slog.Logger, recordingService service.RecordingService, dlq producers.DeadLetterPublisher) *ActivityEventHandler {
	return &ActivityEventHandler{
		recordingService: recordingService,
		dlq:              dlq,
		logger:           logger,
	}
}

// HandleMessage returns nil when the message may be committed. Store
// failures are returned so the broker redelivers.
func (h *ActivityEventHandler) HandleMessage(ctx context.Context, key, value []byte) error {
	var event activity.Event
	if err := json.Unmarshal(value, &event); err != nil {
		h.logger.Error("Failed to decode activity event", "error", err, "message_key", string(key))
		return h.deadLetter(ctx, key, value, "undecodable activity event: "+err.Error(), err)
	}

	err := h.recordingService.Record(ctx, &event)
	var invalid service.ErrInvalidEvent
	if errors.As(err, &invalid) {
		return h.deadLetter(ctx, key, value, invalid.Error(), err)
	}
	if err != nil {
		return fmt.Errorf("recording activity %s failed: %w", event.ID, err)
	}
	return nil
}

// deadLetter parks a message that can never succeed. It falls back to cause
// when parking fails, leaving the message uncommitted. A disabled DLQ drops
// the message after logging it.
func (h *ActivityEventHandler) deadLetter(ctx context.Context, key, value []byte, reason string, cause error) error {
	if h.dlq == nil {
		return cause
	}
	err := h.dlq.PublishToDLQ(ctx, string(key), value, reason)
	if errors.Is(err, producers.ErrDLQDisabled) {
		return nil
	}
	if err != nil {
		h.logger.Error("Failed to publish message to DLQ", "dlq_error", err, "original_error", cause, "message_key", string(key))
		return cause
	}
	h.logger.Info("Parked message on DLQ", "message_key", string(key), "reason", reason)
	return nil
}
