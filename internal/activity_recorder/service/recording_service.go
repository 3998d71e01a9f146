package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/bookkeeping-ledger/internal/domain/activity"
)

// ErrInvalidEvent marks an event that fails validation. Retrying it is pointless.
type ErrInvalidEvent struct {
	EventID string
	Reason  error
}

func (e ErrInvalidEvent) Error() string {
	return "invalid activity event " + e.EventID + ": " + e.Reason.Error()
}

func (e ErrInvalidEvent) Unwrap() error {
	return e.Reason
}

type RecordingServiceImpl struct {
	logRepo activity.Repository
	logger  *slog.Logger
}

func NewRecordingService(logger *slog.Logger, logRepo activity.Repository) RecordingService {
	return &RecordingServiceImpl{
		logRepo: logRepo,
		logger:  logger,
	}
}

func (s *RecordingServiceImpl) Record(ctx context.Context, event *activity.Event) error {
	logger := s.logger
	if event.CorrelationID != "" {
		logger = s.logger.With("correlation_id", event.CorrelationID)
	}

	if err := event.Validate(); err != nil {
		logger.Warn("Rejected activity event", "event_id", event.ID.String(), "action", event.Action, "error", err)
		return ErrInvalidEvent{EventID: event.ID.String(), Reason: err}
	}

	err := s.logRepo.Create(ctx, activity.NewLog(event))
	if errors.Is(err, activity.ErrDuplicateLog{}) {
		logger.Info("Activity already recorded", "event_id", event.ID.String())
		return nil
	}
	if err != nil {
		logger.Error("Failed to store activity log", "event_id", event.ID.String(), "error", err)
		return fmt.Errorf("failed to record activity %s: %w", event.ID, err)
	}

	logger.Info("Recorded activity",
		"event_id", event.ID.String(),
		"user_id", event.UserID.String(),
		"action", event.Action,
	)
	return nil
}
