package service

import (
	"context"
	"log/slog"

	"github.com/bookkeeping-ledger/internal/domain/activity"
	"github.com/bookkeeping-ledger/internal/domain/transaction"
	"github.com/bookkeeping-ledger/internal/domain/user"
	"github.com/bookkeeping-ledger/internal/reporting"
	"golang.org/x/sync/errgroup"
)

// DashboardStats are the headline figures of the dashboard
type DashboardStats struct {
	reporting.Summary
	UserCount        int64
	ActivityLogCount int64
}

// DashboardServiceImpl implements the DashboardService interface
type DashboardServiceImpl struct {
	txRepo   transaction.Repository
	userRepo user.Repository
	logRepo  activity.Repository
	logger   *slog.Logger
}

func NewDashboardService(logger *slog.Logger, txRepo transaction.Repository, userRepo user.Repository, logRepo activity.Repository) DashboardService {
	return &DashboardServiceImpl{
		txRepo:   txRepo,
		userRepo: userRepo,
		logRepo:  logRepo,
		logger:   logger,
	}
}

// Stats queries the three stores concurrently; the first failure cancels the rest
func (s *DashboardServiceImpl) Stats(ctx context.Context) (*DashboardStats, error) {
	stats := &DashboardStats{}
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		b := reporting.NewSummaryBuilder()
		if err := s.txRepo.ForEach(gctx, transaction.Filter{}, b.Add); err != nil {
			return storeError("summarise transactions", err)
		}
		stats.Summary = *b.Result()
		return nil
	})
	g.Go(func() error {
		n, err := s.userRepo.Count(gctx)
		if err != nil {
			return storeError("count users", err)
		}
		stats.UserCount = n
		return nil
	})
	g.Go(func() error {
		n, err := s.logRepo.Count(gctx)
		if err != nil {
			return storeError("count activity logs", err)
		}
		stats.ActivityLogCount = n
		return nil
	})

	if err := g.Wait(); err != nil {
		s.logger.Error("Failed to compute dashboard stats", "error", err)
		return nil, err
	}
	return stats, nil
}
