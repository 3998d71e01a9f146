package activity

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

var (
	ErrMissingEventID = errors.New("event id is required")
	ErrUnknownAction  = errors.New("unknown activity action")
	ErrMissingActor   = errors.New("event user id is required")
)

// Action names something a user did that must be kept for audit
type Action string

const (
	ActionTransactionCreated Action = "transaction.created"
	ActionTransactionUpdated Action = "transaction.updated"
	ActionTransactionDeleted Action = "transaction.deleted"
	ActionUserCreated        Action = "user.created"
	ActionUserDeleted        Action = "user.deleted"
	ActionExpiredUserRemoved Action = "user.expired_removed"
	ActionBackupCreated      Action = "backup.created"
	ActionDataExported       Action = "data.exported"
)

var knownActions = map[Action]struct{}{
	ActionTransactionCreated: {},
	ActionTransactionUpdated: {},
	ActionTransactionDeleted: {},
	ActionUserCreated:        {},
	ActionUserDeleted:        {},
	ActionExpiredUserRemoved: {},
	ActionBackupCreated:      {},
	ActionDataExported:       {},
}

// Valid reports whether a is a known action
func (a Action) Valid() bool {
	_, ok := knownActions[a]
	return ok
}

// Event is the broker message announcing an activity
type Event struct {
	ID            uuid.UUID `json:"id"`
	UserID        uuid.UUID `json:"user_id"`
	Action        Action    `json:"action"`
	Details       string    `json:"details"`
	IPAddress     string    `json:"ip_address,omitempty"`
	CorrelationID string    `json:"correlation_id,omitempty"`
	OccurredAt    time.Time `json:"occurred_at"`
}

// NewEvent stamps a fresh event id and occurrence time
func NewEvent(userID uuid.UUID, action Action, details, ipAddress, correlationID string) *Event {
	return &Event{
		ID:            uuid.New(),
		UserID:        userID,
		Action:        action,
		Details:       details,
		IPAddress:     ipAddress,
		CorrelationID: correlationID,
		OccurredAt:    time.Now().UTC(),
	}
}

// Validate checks the fields the recorder relies on
func (e *Event) Validate() error {
	if e.ID == uuid.Nil {
		return ErrMissingEventID
	}
	if e.UserID == uuid.Nil {
		return ErrMissingActor
	}
	if !e.Action.Valid() {
		return ErrUnknownAction
	}
	return nil
}
