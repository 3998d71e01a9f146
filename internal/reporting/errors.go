package reporting

import (
	"errors"
	"time"

	"github.com/bookkeeping-ledger/internal/domain/transaction"
	"github.com/google/uuid"
)

var ErrInvalidRange = errors.New("start date must not be after end date")

// ErrUnknownKind is returned when a stored transaction is neither income nor
// expense. It signals corrupt data and is never skipped.
type ErrUnknownKind struct {
	TransactionID uuid.UUID
	Kind          transaction.Kind
}

func (e ErrUnknownKind) Error() string {
	return "transaction " + e.TransactionID.String() + " has unknown kind: " + string(e.Kind)
}

// Is implements the errors.Is interface for ErrUnknownKind
func (e ErrUnknownKind) Is(target error) bool {
	_, ok := target.(ErrUnknownKind)
	return ok
}

// ErrOutOfOrder is returned by the cash flow builder when transactions do not
// arrive in ascending OccurredAt order
type ErrOutOfOrder struct {
	TransactionID uuid.UUID
	OccurredAt    time.Time
	Previous      time.Time
}

func (e ErrOutOfOrder) Error() string {
	return "transaction " + e.TransactionID.String() + " at " + e.OccurredAt.Format(time.RFC3339) +
		" precedes " + e.Previous.Format(time.RFC3339)
}

// Is implements the errors.Is interface for ErrOutOfOrder
func (e ErrOutOfOrder) Is(target error) bool {
	_, ok := target.(ErrOutOfOrder)
	return ok
}
