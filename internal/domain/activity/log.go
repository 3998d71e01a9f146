package activity

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Log is the persisted audit record of an Event
type Log struct {
	ID            uuid.UUID `json:"id"`
	UserID        uuid.UUID `json:"user_id"`
	Action        Action    `json:"action"`
	Details       string    `json:"details"`
	IPAddress     string    `json:"ip_address,omitempty"`
	CorrelationID string    `json:"correlation_id,omitempty"`
	OccurredAt    time.Time `json:"timestamp"`
	RecordedAt    time.Time `json:"recorded_at"`
}

// NewLog converts an event into its audit record. The event id becomes the
// log id so redelivered events collapse into one record.
func NewLog(e *Event) *Log {
	return &Log{
		ID:            e.ID,
		UserID:        e.UserID,
		Action:        e.Action,
		Details:       e.Details,
		IPAddress:     e.IPAddress,
		CorrelationID: e.CorrelationID,
		OccurredAt:    e.OccurredAt,
		RecordedAt:    time.Now().UTC(),
	}
}

// Repository manages activity log persistence
type Repository interface {
	Create(ctx context.Context, log *Log) error
	// List returns logs newest first
	List(ctx context.Context, limit, offset int) ([]*Log, error)
	Count(ctx context.Context) (int64, error)
}

// ErrDuplicateLog indicates the event was already recorded
type ErrDuplicateLog struct {
	ID uuid.UUID
}

func (e ErrDuplicateLog) Error() string {
	return "activity already recorded: " + e.ID.String()
}

// Is implements the errors.Is interface for ErrDuplicateLog
func (e ErrDuplicateLog) Is(target error) bool {
	t, ok := target.(ErrDuplicateLog)
	if !ok {
		return false
	}
	if t.ID == uuid.Nil {
		return true
	}
	return e.ID == t.ID
}
