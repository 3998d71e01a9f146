package reporting

import (
	"time"

	"github.com/bookkeeping-ledger/internal/domain/transaction"
	"github.com/shopspring/decimal"
)

// Section is one side of the balance sheet
type Section struct {
	Total      decimal.Decimal
	ByCategory map[string]decimal.Decimal
}

// BalanceSheet presents all-time income as assets and all-time expenses as
// liabilities
type BalanceSheet struct {
	AsOf        time.Time
	Assets      Section
	Liabilities Section
	Equity      decimal.Decimal
	// BalanceCheck compares assets with liabilities plus equity. Equity is
	// derived from the same totals, so it always holds.
	BalanceCheck bool
}

// BalanceSheetBuilder accumulates a balance sheet over the whole history
type BalanceSheetBuilder struct {
	asOf   time.Time
	totals totals
}

func NewBalanceSheetBuilder(asOf time.Time) *BalanceSheetBuilder {
	return &BalanceSheetBuilder{asOf: asOf, totals: newTotals()}
}

func (b *BalanceSheetBuilder) Add(tx *transaction.Transaction) error {
	return b.totals.add(tx)
}

func (b *BalanceSheetBuilder) Result() *BalanceSheet {
	equity := b.totals.net()
	return &BalanceSheet{
		AsOf: b.asOf,
		Assets: Section{
			Total:      b.totals.income,
			ByCategory: copyAmounts(b.totals.incomeByCategory),
		},
		Liabilities: Section{
			Total:      b.totals.expenses,
			ByCategory: copyAmounts(b.totals.expenseByCategory),
		},
		Equity:       equity,
		BalanceCheck: b.totals.income.Equal(b.totals.expenses.Add(equity)),
	}
}
