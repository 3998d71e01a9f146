package reporting

import (
	"testing"
	"time"

	"github.com/bookkeeping-ledger/internal/domain/transaction"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func tx(kind transaction.Kind, amount int64, category string, at time.Time) *transaction.Transaction {
	return &transaction.Transaction{
		ID:         uuid.New(),
		Kind:       kind,
		Amount:     decimal.NewFromInt(amount),
		Category:   category,
		OccurredAt: at,
	}
}

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 12, 0, 0, 0, time.UTC)
}

func feed(t *testing.T, acc Accumulator, txs ...*transaction.Transaction) {
	t.Helper()
	for _, x := range txs {
		require.NoError(t, acc.Add(x))
	}
}

func dec(v string) decimal.Decimal {
	return decimal.RequireFromString(v)
}

func assertDecimal(t *testing.T, want string, got decimal.Decimal) {
	t.Helper()
	require.Truef(t, dec(want).Equal(got), "want %s, got %s", want, got.String())
}
