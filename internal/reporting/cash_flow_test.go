package reporting

import (
	"testing"
	"time"

	"github.com/bookkeeping-ledger/internal/domain/transaction"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCashFlowBuilder(t *testing.T) {
	t.Run("MonthlyExample", func(t *testing.T) {
		b := NewCashFlowBuilder(Monthly)
		feed(t, b,
			tx(transaction.KindIncome, 1000, "Sales", day(2024, time.January, 1)),
			tx(transaction.KindExpense, 400, "Rent", day(2024, time.January, 15)),
			tx(transaction.KindIncome, 500, "Sales", day(2024, time.February, 1)),
		)
		cf := b.Result()

		require.Len(t, cf.Buckets, 2)
		assert.Equal(t, "2024-01", cf.Buckets[0].Period)
		assertDecimal(t, "1000", cf.Buckets[0].Income)
		assertDecimal(t, "400", cf.Buckets[0].Expenses)
		assertDecimal(t, "600", cf.Buckets[0].NetFlow)
		assertDecimal(t, "600", cf.Buckets[0].RunningBalance)

		assert.Equal(t, "2024-02", cf.Buckets[1].Period)
		assertDecimal(t, "500", cf.Buckets[1].Income)
		assertDecimal(t, "0", cf.Buckets[1].Expenses)
		assertDecimal(t, "500", cf.Buckets[1].NetFlow)
		assertDecimal(t, "1100", cf.Buckets[1].RunningBalance)

		assertDecimal(t, "1100", cf.FinalBalance)
		assert.Equal(t, 2, cf.TotalPeriods)
		assert.Equal(t, Monthly, cf.Granularity)
	})

	t.Run("EmptyHistory", func(t *testing.T) {
		cf := NewCashFlowBuilder(Weekly).Result()

		assert.Empty(t, cf.Buckets)
		assertDecimal(t, "0", cf.FinalBalance)
		assert.Zero(t, cf.TotalPeriods)
	})

	t.Run("GapsAreNotFilled", func(t *testing.T) {
		b := NewCashFlowBuilder(Monthly)
		feed(t, b,
			tx(transaction.KindIncome, 100, "Sales", day(2024, time.January, 10)),
			tx(transaction.KindExpense, 30, "Rent", day(2024, time.April, 10)),
		)
		cf := b.Result()

		require.Len(t, cf.Buckets, 2)
		assert.Equal(t, "2024-01", cf.Buckets[0].Period)
		assert.Equal(t, "2024-04", cf.Buckets[1].Period)
		assertDecimal(t, "70", cf.FinalBalance)
	})

	t.Run("RunningBalanceIsPrefixSum", func(t *testing.T) {
		b := NewCashFlowBuilder(Daily)
		start := day(2024, time.March, 1)
		for i := 0; i < 20; i++ {
			kind := transaction.KindIncome
			if i%3 == 0 {
				kind = transaction.KindExpense
			}
			feed(t, b, tx(kind, int64(10*(i+1)), "Mixed", start.Add(time.Duration(i*9)*time.Hour)))
		}
		cf := b.Result()

		sum := dec("0")
		for _, bucket := range cf.Buckets {
			sum = sum.Add(bucket.NetFlow)
			assertDecimal(t, sum.String(), bucket.RunningBalance)
		}
		last := cf.Buckets[len(cf.Buckets)-1]
		assertDecimal(t, last.RunningBalance.String(), cf.FinalBalance)
	})

	t.Run("WeeklyAcrossYearBoundary", func(t *testing.T) {
		b := NewCashFlowBuilder(Weekly)
		feed(t, b,
			tx(transaction.KindIncome, 10, "Sales", day(2023, time.December, 31)),
			tx(transaction.KindIncome, 20, "Sales", day(2024, time.January, 1)),
			tx(transaction.KindIncome, 30, "Sales", day(2024, time.January, 7)),
		)
		cf := b.Result()

		require.Len(t, cf.Buckets, 3)
		assert.Equal(t, "2023-W53", cf.Buckets[0].Period)
		assert.Equal(t, "2024-W00", cf.Buckets[1].Period)
		assert.Equal(t, "2024-W01", cf.Buckets[2].Period)
	})

	t.Run("ResultIsRepeatable", func(t *testing.T) {
		b := NewCashFlowBuilder(Yearly)
		feed(t, b, tx(transaction.KindIncome, 5, "Sales", day(2022, time.June, 1)))

		first := b.Result()
		second := b.Result()
		assert.Equal(t, first.TotalPeriods, second.TotalPeriods)
		assertDecimal(t, first.FinalBalance.String(), second.FinalBalance)

		feed(t, b, tx(transaction.KindExpense, 2, "Rent", day(2023, time.June, 1)))
		third := b.Result()
		assert.Equal(t, 2, third.TotalPeriods)
		assertDecimal(t, "3", third.FinalBalance)
	})

	t.Run("OutOfOrderRejected", func(t *testing.T) {
		b := NewCashFlowBuilder(Monthly)
		feed(t, b, tx(transaction.KindIncome, 5, "Sales", day(2024, time.May, 2)))
		err := b.Add(tx(transaction.KindIncome, 5, "Sales", day(2024, time.May, 1)))
		assert.ErrorIs(t, err, ErrOutOfOrder{})
	})

	t.Run("UnknownKind", func(t *testing.T) {
		err := NewCashFlowBuilder(Monthly).Add(tx("refund", 5, "Sales", day(2024, time.May, 1)))
		assert.ErrorIs(t, err, ErrUnknownKind{})
	})

	t.Run("InvalidGranularityPanics", func(t *testing.T) {
		assert.Panics(t, func() { NewCashFlowBuilder("hourly") })
	})
}
