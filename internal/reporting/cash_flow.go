package reporting

import (
	"time"

	"github.com/bookkeeping-ledger/internal/domain/transaction"
	"github.com/shopspring/decimal"
)

// CashFlowBucket is the money movement of one period
type CashFlowBucket struct {
	Period         string
	Income         decimal.Decimal
	Expenses       decimal.Decimal
	NetFlow        decimal.Decimal
	RunningBalance decimal.Decimal
}

// CashFlow lists one bucket per period that saw at least one transaction, in
// chronological order. Empty periods are not emitted.
type CashFlow struct {
	Granularity  Granularity
	Buckets      []CashFlowBucket
	FinalBalance decimal.Decimal
	TotalPeriods int
}

// CashFlowBuilder groups transactions by period in a single streaming pass.
// Transactions must arrive in ascending OccurredAt order.
type CashFlowBuilder struct {
	granularity Granularity
	buckets     []CashFlowBucket
	running     decimal.Decimal

	open     bool
	current  string
	income   decimal.Decimal
	expenses decimal.Decimal
	last     time.Time
}

// NewCashFlowBuilder panics on an invalid granularity
func NewCashFlowBuilder(g Granularity) *CashFlowBuilder {
	if !g.Valid() {
		panic("reporting: invalid granularity " + string(g))
	}
	return &CashFlowBuilder{granularity: g}
}

func (b *CashFlowBuilder) Add(tx *transaction.Transaction) error {
	if !tx.Kind.Valid() {
		return ErrUnknownKind{TransactionID: tx.ID, Kind: tx.Kind}
	}
	if b.open && tx.OccurredAt.Before(b.last) {
		return ErrOutOfOrder{TransactionID: tx.ID, OccurredAt: tx.OccurredAt, Previous: b.last}
	}

	key := PeriodKey(tx.OccurredAt, b.granularity)
	if b.open && key != b.current {
		b.buckets = append(b.buckets, b.flush())
	}
	if !b.open || key != b.current {
		b.open = true
		b.current = key
		b.income = decimal.Zero
		b.expenses = decimal.Zero
	}

	if tx.Kind == transaction.KindIncome {
		b.income = b.income.Add(tx.Amount)
	} else {
		b.expenses = b.expenses.Add(tx.Amount)
	}
	b.last = tx.OccurredAt
	return nil
}

// flush closes the current period and folds it into the running balance
func (b *CashFlowBuilder) flush() CashFlowBucket {
	net := b.income.Sub(b.expenses)
	b.running = b.running.Add(net)
	return CashFlowBucket{
		Period:         b.current,
		Income:         b.income,
		Expenses:       b.expenses,
		NetFlow:        net,
		RunningBalance: b.running,
	}
}

// Result includes the period still in progress. It does not change the
// builder, so more transactions may be added afterwards.
func (b *CashFlowBuilder) Result() *CashFlow {
	buckets := make([]CashFlowBucket, len(b.buckets), len(b.buckets)+1)
	copy(buckets, b.buckets)

	final := b.running
	if b.open {
		net := b.income.Sub(b.expenses)
		final = b.running.Add(net)
		buckets = append(buckets, CashFlowBucket{
			Period:         b.current,
			Income:         b.income,
			Expenses:       b.expenses,
			NetFlow:        net,
			RunningBalance: final,
		})
	}

	return &CashFlow{
		Granularity:  b.granularity,
		Buckets:      buckets,
		FinalBalance: final,
		TotalPeriods: len(buckets),
	}
}
