package reporting

import (
	"github.com/bookkeeping-ledger/internal/domain/transaction"
	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// Accumulator consumes transactions one at a time. Every report builder
// implements it so it can be fed straight from a store cursor.
type Accumulator interface {
	Add(tx *transaction.Transaction) error
}

// totals is the income/expense classification shared by the profit and loss,
// balance sheet and summary reports
type totals struct {
	income            decimal.Decimal
	expenses          decimal.Decimal
	incomeByCategory  map[string]decimal.Decimal
	expenseByCategory map[string]decimal.Decimal
	count             int
}

func newTotals() totals {
	return totals{
		incomeByCategory:  make(map[string]decimal.Decimal),
		expenseByCategory: make(map[string]decimal.Decimal),
	}
}

func (t *totals) add(tx *transaction.Transaction) error {
	switch tx.Kind {
	case transaction.KindIncome:
		t.income = t.income.Add(tx.Amount)
		t.incomeByCategory[tx.Category] = t.incomeByCategory[tx.Category].Add(tx.Amount)
	case transaction.KindExpense:
		t.expenses = t.expenses.Add(tx.Amount)
		t.expenseByCategory[tx.Category] = t.expenseByCategory[tx.Category].Add(tx.Amount)
	default:
		return ErrUnknownKind{TransactionID: tx.ID, Kind: tx.Kind}
	}
	t.count++
	return nil
}

func (t *totals) net() decimal.Decimal {
	return t.income.Sub(t.expenses)
}

func copyAmounts(m map[string]decimal.Decimal) map[string]decimal.Decimal {
	out := make(map[string]decimal.Decimal, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}
