package service

import (
	"context"

	"github.com/bookkeeping-ledger/internal/domain/activity"
)

// RecordingService turns activity events into persisted audit records
type RecordingService interface {
	// Record returns ErrInvalidEvent for events that can never be stored.
	// Redelivered events succeed without writing a second record.
	Record(ctx context.Context, event *activity.Event) error
}
