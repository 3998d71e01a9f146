package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/bookkeeping-ledger/internal/domain/activity"
	"github.com/bookkeeping-ledger/internal/domain/outbox"
	"github.com/bookkeeping-ledger/internal/domain/user"
	"github.com/bookkeeping-ledger/internal/platform/persistence"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/robfig/cron/v3"
)

// MaintenanceServiceImpl implements the MaintenanceService interface
type MaintenanceServiceImpl struct {
	db         persistence.TxRunner
	userRepo   user.Repository
	outboxRepo outbox.Repository
	logger     *slog.Logger
	now        func() time.Time
}

func NewMaintenanceService(logger *slog.Logger, db persistence.TxRunner, userRepo user.Repository, outboxRepo outbox.Repository) MaintenanceService {
	return &MaintenanceServiceImpl{
		db:         db,
		userRepo:   userRepo,
		outboxRepo: outboxRepo,
		logger:     logger,
		now:        func() time.Time { return time.Now().UTC() },
	}
}

// CleanupExpiredUsers deletes every non-admin whose trial has ended. Each
// deletion commits with its own activity event, so a failure part way keeps
// the users already removed. A zero actor (the scheduler) attributes each
// event to the removed user.
func (s *MaintenanceServiceImpl) CleanupExpiredUsers(ctx context.Context, actor Actor) (*CleanupResult, error) {
	expired, err := s.userRepo.ListExpired(ctx, s.now())
	if err != nil {
		return nil, storeError("list expired users", err)
	}

	result := &CleanupResult{DeletedUsers: []string{}}
	for _, u := range expired {
		subject := actor.UserID
		if subject == uuid.Nil {
			subject = u.ID
		}
		event := activity.NewEvent(subject, activity.ActionExpiredUserRemoved,
			fmt.Sprintf("removed expired trial user %s", u.Username), actor.IPAddress, actor.CorrelationID)

		err := s.db.ExecuteTx(ctx, func(tx pgx.Tx) error {
			if err := s.userRepo.WithTx(tx).Delete(ctx, u.ID); err != nil {
				return err
			}
			msg, err := outbox.NewMessage(event)
			if err != nil {
				return err
			}
			return s.outboxRepo.WithTx(tx).Create(ctx, msg)
		})
		if err != nil {
			s.logger.Error("Failed to remove expired user", "user_id", u.ID, "username", u.Username, "error", err)
			return result, storeError("remove expired user "+u.Username, err)
		}

		result.DeletedCount++
		result.DeletedUsers = append(result.DeletedUsers, u.Username)
	}

	s.logger.Info("Expired users cleaned up", "deleted", result.DeletedCount, "triggered_by", actor.UserID)
	return result, nil
}

// ScheduleCleanup registers the expired-trial sweep on a cron scheduler in
// the given zone. The caller starts and stops the returned scheduler. An
// empty spec returns nil.
func ScheduleCleanup(logger *slog.Logger, svc MaintenanceService, spec, timezone string, timeout time.Duration) (*cron.Cron, error) {
	if spec == "" {
		logger.Info("Expired-user cleanup schedule not configured")
		return nil, nil
	}

	loc, err := time.LoadLocation(timezone)
	if err != nil {
		return nil, fmt.Errorf("invalid timezone for cleanup schedule: %w", err)
	}

	c := cron.New(cron.WithLocation(loc))
	_, err = c.AddFunc(spec, func() {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()

		logger.Info("Running scheduled expired-user cleanup", "at", time.Now().In(loc))
		if _, err := svc.CleanupExpiredUsers(ctx, Actor{}); err != nil {
			logger.Error("Scheduled expired-user cleanup failed", "error", err)
		}
	})
	if err != nil {
		return nil, fmt.Errorf("invalid cleanup schedule %q: %w", spec, err)
	}
	return c, nil
}
