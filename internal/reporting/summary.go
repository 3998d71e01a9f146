package reporting

import (
	"github.com/bookkeeping-ledger/internal/domain/transaction"
	"github.com/shopspring/decimal"
)

// Summary holds the headline figures shown on the dashboard
type Summary struct {
	TotalIncome      decimal.Decimal
	TotalExpenses    decimal.Decimal
	NetProfit        decimal.Decimal
	TransactionCount int
}

type SummaryBuilder struct {
	totals totals
}

func NewSummaryBuilder() *SummaryBuilder {
	return &SummaryBuilder{totals: newTotals()}
}

func (b *SummaryBuilder) Add(tx *transaction.Transaction) error {
	return b.totals.add(tx)
}

func (b *SummaryBuilder) Result() *Summary {
	return &Summary{
		TotalIncome:      b.totals.income,
		TotalExpenses:    b.totals.expenses,
		NetProfit:        b.totals.net(),
		TransactionCount: b.totals.count,
	}
}
