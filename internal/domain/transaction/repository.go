package transaction

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Filter narrows a query on OccurredAt. Nil bounds are open; both bounds are inclusive.
type Filter struct {
	From          *time.Time
	To            *time.Time
	SortAscending bool
}

// Page selects one window of a listing
type Page struct {
	Limit  int
	Offset int
}

// VisitFunc is called once per transaction by Repository.ForEach. Returning
// an error stops the iteration and is passed back to the caller.
type VisitFunc func(tx *Transaction) error

// Repository manages transaction persistence
type Repository interface {
	Create(ctx context.Context, tx *Transaction) error
	GetByID(ctx context.Context, id uuid.UUID) (*Transaction, error)
	Update(ctx context.Context, tx *Transaction) error
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, filter Filter, page Page) ([]*Transaction, error)
	Count(ctx context.Context, filter Filter) (int64, error)

	// ForEach streams every transaction matching filter without a result cap
	ForEach(ctx context.Context, filter Filter, fn VisitFunc) error
}

// ErrTransactionNotFound indicates a missing transaction
type ErrTransactionNotFound struct {
	ID uuid.UUID
}

func (e ErrTransactionNotFound) Error() string {
	return "transaction not found: " + e.ID.String()
}

// Is implements the errors.Is interface for ErrTransactionNotFound
func (e ErrTransactionNotFound) Is(target error) bool {
	t, ok := target.(ErrTransactionNotFound)
	if !ok {
		return false
	}
	// An empty target ID matches any ErrTransactionNotFound
	if t.ID == uuid.Nil {
		return true
	}
	return e.ID == t.ID
}
