package reporting

import (
	"sort"
	"time"

	"github.com/bookkeeping-ledger/internal/domain/transaction"
	"github.com/shopspring/decimal"
)

// TrendsWindow is how far back the trends report looks
const TrendsWindow = 365 * 24 * time.Hour

// MonthTotals is the income and expense of one calendar month
type MonthTotals struct {
	Income   decimal.Decimal
	Expenses decimal.Decimal
}

// Net returns income minus expenses
func (m MonthTotals) Net() decimal.Decimal {
	return m.Income.Sub(m.Expenses)
}

// GrowthRate compares a month's net profit with the month before it
type GrowthRate struct {
	Month      string
	GrowthRate decimal.Decimal
	NetProfit  decimal.Decimal
}

// Trends describes month-by-month movement over the trailing window
type Trends struct {
	WindowStart time.Time
	WindowEnd   time.Time
	MonthlyData map[string]MonthTotals
	// CategoryTrends sums income and expense together per category and month
	CategoryTrends map[string]map[string]decimal.Decimal
	GrowthRates    []GrowthRate
}

// TrendsWindowFor returns the trailing window ending at now
func TrendsWindowFor(now time.Time) (time.Time, time.Time) {
	return now.Add(-TrendsWindow), now
}

// TrendsBuilder accumulates the trends report. Input order does not matter.
type TrendsBuilder struct {
	start      time.Time
	end        time.Time
	monthly    map[string]MonthTotals
	categories map[string]map[string]decimal.Decimal
}

func NewTrendsBuilder(start, end time.Time) *TrendsBuilder {
	return &TrendsBuilder{
		start:      start,
		end:        end,
		monthly:    make(map[string]MonthTotals),
		categories: make(map[string]map[string]decimal.Decimal),
	}
}

func (b *TrendsBuilder) Add(tx *transaction.Transaction) error {
	month := PeriodKey(tx.OccurredAt, Monthly)
	totals := b.monthly[month]
	switch tx.Kind {
	case transaction.KindIncome:
		totals.Income = totals.Income.Add(tx.Amount)
	case transaction.KindExpense:
		totals.Expenses = totals.Expenses.Add(tx.Amount)
	default:
		return ErrUnknownKind{TransactionID: tx.ID, Kind: tx.Kind}
	}
	b.monthly[month] = totals

	byMonth, ok := b.categories[tx.Category]
	if !ok {
		byMonth = make(map[string]decimal.Decimal)
		b.categories[tx.Category] = byMonth
	}
	byMonth[month] = byMonth[month].Add(tx.Amount)
	return nil
}

func (b *TrendsBuilder) Result() *Trends {
	months := make([]string, 0, len(b.monthly))
	monthly := make(map[string]MonthTotals, len(b.monthly))
	for m, t := range b.monthly {
		months = append(months, m)
		monthly[m] = t
	}
	sort.Strings(months)

	categories := make(map[string]map[string]decimal.Decimal, len(b.categories))
	for c, byMonth := range b.categories {
		categories[c] = copyAmounts(byMonth)
	}

	rates := make([]GrowthRate, 0, len(months))
	for i := 1; i < len(months); i++ {
		prev := b.monthly[months[i-1]].Net()
		curr := b.monthly[months[i]].Net()
		rates = append(rates, GrowthRate{
			Month:      months[i],
			GrowthRate: growth(prev, curr),
			NetProfit:  curr,
		})
	}

	return &Trends{
		WindowStart:    b.start,
		WindowEnd:      b.end,
		MonthlyData:    monthly,
		CategoryTrends: categories,
		GrowthRates:    rates,
	}
}

// growth is the percentage change from prev to curr relative to |prev|.
// From a zero month it is 100 when curr is positive and -100 otherwise,
// including when curr is also zero.
func growth(prev, curr decimal.Decimal) decimal.Decimal {
	if !prev.IsZero() {
		return curr.Sub(prev).Div(prev.Abs()).Mul(hundred)
	}
	if curr.IsPositive() {
		return hundred
	}
	return hundred.Neg()
}
