package reporting

import (
	"time"

	"github.com/bookkeeping-ledger/internal/domain/transaction"
	"github.com/shopspring/decimal"
)

// DefaultProfitLossWindow is used when the caller omits the start date
const DefaultProfitLossWindow = 30 * 24 * time.Hour

// ProfitLoss summarises income against expenses for a date range
type ProfitLoss struct {
	Start             time.Time
	End               time.Time
	TotalIncome       decimal.Decimal
	TotalExpenses     decimal.Decimal
	NetProfit         decimal.Decimal
	ProfitMargin      decimal.Decimal // percent of income; zero when there is no income
	IncomeByCategory  map[string]decimal.Decimal
	ExpenseByCategory map[string]decimal.Decimal
	TransactionCount  int
}

// ProfitLossWindow resolves optional bounds. A missing end is now and a
// missing start is DefaultProfitLossWindow before now.
func ProfitLossWindow(start, end *time.Time, now time.Time) (time.Time, time.Time, error) {
	from := now.Add(-DefaultProfitLossWindow)
	to := now
	if start != nil {
		from = *start
	}
	if end != nil {
		to = *end
	}
	if from.After(to) {
		return time.Time{}, time.Time{}, ErrInvalidRange
	}
	return from, to, nil
}

// ProfitLossBuilder accumulates a profit and loss report. The transactions
// fed to it must already be limited to [start, end].
type ProfitLossBuilder struct {
	start  time.Time
	end    time.Time
	totals totals
}

func NewProfitLossBuilder(start, end time.Time) *ProfitLossBuilder {
	return &ProfitLossBuilder{start: start, end: end, totals: newTotals()}
}

func (b *ProfitLossBuilder) Add(tx *transaction.Transaction) error {
	return b.totals.add(tx)
}

func (b *ProfitLossBuilder) Result() *ProfitLoss {
	net := b.totals.net()
	margin := decimal.Zero
	if b.totals.income.IsPositive() {
		margin = net.Div(b.totals.income).Mul(hundred)
	}

	return &ProfitLoss{
		Start:             b.start,
		End:               b.end,
		TotalIncome:       b.totals.income,
		TotalExpenses:     b.totals.expenses,
		NetProfit:         net,
		ProfitMargin:      margin,
		IncomeByCategory:  copyAmounts(b.totals.incomeByCategory),
		ExpenseByCategory: copyAmounts(b.totals.expenseByCategory),
		TransactionCount:  b.totals.count,
	}
}
