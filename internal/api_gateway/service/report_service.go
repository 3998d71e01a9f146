package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/bookkeeping-ledger/internal/domain/transaction"
	"github.com/bookkeeping-ledger/internal/reporting"
)

// ReportServiceImpl implements the ReportService interface. It keeps no
// state between calls, so concurrent reports never observe each other.
type ReportServiceImpl struct {
	txRepo  transaction.Repository
	logger  *slog.Logger
	timeout time.Duration
	now     func() time.Time
}

// NewReportService creates a report service. timeout bounds a single report; zero disables it.
func NewReportService(logger *slog.Logger, txRepo transaction.Repository, timeout time.Duration) ReportService {
	return &ReportServiceImpl{
		txRepo:  txRepo,
		logger:  logger,
		timeout: timeout,
		now:     func() time.Time { return time.Now().UTC() },
	}
}

func (s *ReportServiceImpl) ProfitLoss(ctx context.Context, start, end *time.Time) (*reporting.ProfitLoss, error) {
	from, to, err := reporting.ProfitLossWindow(start, end, s.now())
	if err != nil {
		return nil, err
	}

	b := reporting.NewProfitLossBuilder(from, to)
	if err := s.stream(ctx, "profit_loss", transaction.Filter{From: &from, To: &to}, b); err != nil {
		return nil, err
	}
	return b.Result(), nil
}

func (s *ReportServiceImpl) BalanceSheet(ctx context.Context) (*reporting.BalanceSheet, error) {
	b := reporting.NewBalanceSheetBuilder(s.now())
	if err := s.stream(ctx, "balance_sheet", transaction.Filter{}, b); err != nil {
		return nil, err
	}
	return b.Result(), nil
}

func (s *ReportServiceImpl) CashFlow(ctx context.Context, granularity reporting.Granularity) (*reporting.CashFlow, error) {
	if !granularity.Valid() {
		return nil, reporting.ErrInvalidGranularity
	}

	b := reporting.NewCashFlowBuilder(granularity)
	if err := s.stream(ctx, "cash_flow", transaction.Filter{SortAscending: true}, b); err != nil {
		return nil, err
	}
	return b.Result(), nil
}

// Trends has no upper bound on the store query: transactions dated after
// now still count toward their month
func (s *ReportServiceImpl) Trends(ctx context.Context) (*reporting.Trends, error) {
	from, to := reporting.TrendsWindowFor(s.now())

	b := reporting.NewTrendsBuilder(from, to)
	if err := s.stream(ctx, "trends", transaction.Filter{From: &from}, b); err != nil {
		return nil, err
	}
	return b.Result(), nil
}

// stream feeds every matching transaction into acc. Accumulator errors are
// data-integrity failures and are returned as is; anything else came from
// the store.
func (s *ReportServiceImpl) stream(ctx context.Context, report string, filter transaction.Filter, acc reporting.Accumulator) error {
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	started := time.Now()
	count := 0
	var accErr error
	err := s.txRepo.ForEach(ctx, filter, func(tx *transaction.Transaction) error {
		if err := acc.Add(tx); err != nil {
			accErr = err
			return err
		}
		count++
		return nil
	})

	if accErr != nil {
		s.logger.Error("Transaction rejected while building report", "report", report, "error", accErr)
		return accErr
	}
	if err != nil {
		s.logger.Error("Failed to read transactions for report", "report", report, "error", err)
		return storeError("read transactions", err)
	}

	s.logger.Info("Report computed",
		"report", report,
		"transactions", count,
		"duration_ms", time.Since(started).Milliseconds(),
	)
	return nil
}
