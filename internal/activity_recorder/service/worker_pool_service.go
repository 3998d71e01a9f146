package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/bookkeeping-ledger/internal/domain/activity"
	"github.com/panjf2000/ants/v2"
)

// WorkerPoolRecordingService bounds how many events are written at once
type WorkerPoolRecordingService struct {
	baseService RecordingService
	pool        *ants.Pool
	logger      *slog.Logger
}

func NewWorkerPoolRecordingService(logger *slog.Logger, baseService RecordingService, size int) (*WorkerPoolRecordingService, error) {
	pool, err := ants.NewPool(size)
	if err != nil {
		return nil, fmt.Errorf("failed to create worker pool: %w", err)
	}

	return &WorkerPoolRecordingService{
		baseService: baseService,
		pool:        pool,
		logger:      logger,
	}, nil
}

// Record runs the base service on a pool worker and waits for its result.
// The caller's context bounds the wait, not the work already submitted.
func (s *WorkerPoolRecordingService) Record(ctx context.Context, event *activity.Event) error {
	// buffered so a worker never blocks after the caller gave up
	result := make(chan error, 1)
	eventCopy := *event

	err := s.pool.Submit(func() {
		result <- s.baseService.Record(ctx, &eventCopy)
	})
	if err != nil {
		s.logger.Error("Failed to submit activity event to worker pool", "event_id", event.ID.String(), "error", err)
		return fmt.Errorf("worker pool rejected event %s: %w", event.ID, err)
	}

	select {
	case err := <-result:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Shutdown releases the pool. Running tasks finish first.
func (s *WorkerPoolRecordingService) Shutdown() {
	s.logger.Info("Shutting down worker pool", "running_workers", s.pool.Running())
	s.pool.Release()
}

func (s *WorkerPoolRecordingService) Running() int {
	return s.pool.Running()
}

func (s *WorkerPoolRecordingService) Capacity() int {
	return s.pool.Cap()
}
