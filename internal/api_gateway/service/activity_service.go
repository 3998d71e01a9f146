package service

import (
	"context"
	"log/slog"

	"github.com/bookkeeping-ledger/internal/domain/activity"
	"github.com/bookkeeping-ledger/internal/platform/messaging/producers"
)

// ActivityServiceImpl implements the ActivityService interface
type ActivityServiceImpl struct {
	logRepo   activity.Repository
	publisher producers.EventPublisher
	logger    *slog.Logger
}

func NewActivityService(logger *slog.Logger, logRepo activity.Repository, publisher producers.EventPublisher) ActivityService {
	return &ActivityServiceImpl{
		logRepo:   logRepo,
		publisher: publisher,
		logger:    logger,
	}
}

func (s *ActivityServiceImpl) List(ctx context.Context, page, perPage int) ([]*activity.Log, int64, error) {
	logs, err := s.logRepo.List(ctx, perPage, offset(page, perPage))
	if err != nil {
		return nil, 0, storeError("list activity logs", err)
	}

	total, err := s.logRepo.Count(ctx)
	if err != nil {
		return nil, 0, storeError("count activity logs", err)
	}
	return logs, total, nil
}

func (s *ActivityServiceImpl) Record(ctx context.Context, actor Actor, action activity.Action, details string) {
	event := activity.NewEvent(actor.UserID, action, details, actor.IPAddress, actor.CorrelationID)
	if err := s.publisher.Publish(ctx, event); err != nil {
		s.logger.Error("Failed to publish activity event",
			"event_id", event.ID,
			"action", action,
			"user_id", actor.UserID,
			"correlation_id", actor.CorrelationID,
			"error", err,
		)
	}
}

// offset converts a 1-based page into a row offset
func offset(page, perPage int) int {
	if page < 1 {
		page = 1
	}
	return (page - 1) * perPage
}
