package transaction

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Common errors
var (
	ErrInvalidKind        = errors.New("kind must be income or expense")
	ErrNegativeAmount     = errors.New("amount cannot be negative")
	ErrMissingOccurredAt  = errors.New("occurred_at is required")
	ErrMissingCreator     = errors.New("created_by is required")
	ErrEmptyCategoryLabel = errors.New("category cannot be empty")
)

// Kind classifies a transaction as money in or money out
type Kind string

const (
	KindIncome  Kind = "income"
	KindExpense Kind = "expense"
)

// Valid reports whether k is one of the two known kinds
func (k Kind) Valid() bool {
	return k == KindIncome || k == KindExpense
}

// Transaction is a single income or expense record in the ledger
type Transaction struct {
	ID          uuid.UUID       `json:"id"`
	Kind        Kind            `json:"kind"`
	Amount      decimal.Decimal `json:"amount"`
	Category    string          `json:"category"`
	Description string          `json:"description"`
	OccurredAt  time.Time       `json:"occurred_at"`
	CreatedBy   uuid.UUID       `json:"created_by"`
	RecordedAt  time.Time       `json:"recorded_at"`
}

// Details carries the caller-supplied fields of a transaction
type Details struct {
	Kind        Kind
	Amount      decimal.Decimal
	Category    string
	Description string
	OccurredAt  time.Time
}

func (d Details) validate() error {
	if !d.Kind.Valid() {
		return ErrInvalidKind
	}
	if d.Amount.IsNegative() {
		return ErrNegativeAmount
	}
	if d.Category == "" {
		return ErrEmptyCategoryLabel
	}
	if d.OccurredAt.IsZero() {
		return ErrMissingOccurredAt
	}
	return nil
}

// New creates a transaction authored by createdBy
func New(details Details, createdBy uuid.UUID) (*Transaction, error) {
	if err := details.validate(); err != nil {
		return nil, err
	}
	if createdBy == uuid.Nil {
		return nil, ErrMissingCreator
	}

	return &Transaction{
		ID:          uuid.New(),
		Kind:        details.Kind,
		Amount:      details.Amount,
		Category:    details.Category,
		Description: details.Description,
		OccurredAt:  details.OccurredAt.UTC(),
		CreatedBy:   createdBy,
		RecordedAt:  time.Now().UTC(),
	}, nil
}

// Replace overwrites every caller-supplied field. Identity, author and
// recording time are kept.
func (t *Transaction) Replace(details Details) error {
	if err := details.validate(); err != nil {
		return err
	}

	t.Kind = details.Kind
	t.Amount = details.Amount
	t.Category = details.Category
	t.Description = details.Description
	t.OccurredAt = details.OccurredAt.UTC()
	return nil
}
