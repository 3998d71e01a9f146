package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/bookkeeping-ledger/internal/api_gateway/service"
	"github.com/bookkeeping-ledger/internal/reporting"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func reportRouter(svc service.ReportService) http.Handler {
	h := NewReportHandler(testLogger(), svc)
	router := newTestRouter()
	router.GET("/reports/profit-loss", h.ProfitLoss)
	router.GET("/reports/balance-sheet", h.BalanceSheet)
	router.GET("/reports/cash-flow", h.CashFlow)
	router.GET("/reports/trends", h.Trends)
	return router
}

func TestReportHandler_ProfitLoss(t *testing.T) {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2024, 1, 31, 0, 0, 0, 0, time.UTC)

	t.Run("Success", func(t *testing.T) {
		svc := new(MockReportService)
		svc.On("ProfitLoss", mock.Anything,
			mock.MatchedBy(func(s *time.Time) bool { return s != nil && s.Equal(start) }),
			mock.MatchedBy(func(e *time.Time) bool { return e != nil && e.Equal(end) }),
		).Return(&reporting.ProfitLoss{
			Start:             start,
			End:               end,
			TotalIncome:       decimal.NewFromInt(1000),
			TotalExpenses:     decimal.NewFromInt(400),
			NetProfit:         decimal.NewFromInt(600),
			ProfitMargin:      decimal.NewFromInt(60),
			IncomeByCategory:  map[string]decimal.Decimal{"راتب": decimal.NewFromInt(1000)},
			ExpenseByCategory: map[string]decimal.Decimal{"إيجار": decimal.NewFromInt(400)},
			TransactionCount:  2,
		}, nil)

		req, _ := http.NewRequest(http.MethodGet, "/reports/profit-loss?start_date=2024-01-01&end_date=2024-01-31T00:00:00Z", nil)
		rr := httptest.NewRecorder()
		reportRouter(svc).ServeHTTP(rr, req)

		require.Equal(t, http.StatusOK, rr.Code)
		var got ProfitLossResponse
		require.NoError(t, json.Unmarshal(decode(t, rr).Data, &got))
		assert.Equal(t, 1000.0, got.TotalIncome)
		assert.Equal(t, 60.0, got.ProfitMargin)
		assert.Equal(t, 400.0, got.ExpenseByCategory["إيجار"])
		assert.Equal(t, "2024-01-01T00:00:00Z", got.Period.StartDate)
		svc.AssertExpectations(t)
	})

	t.Run("OmittedBoundsArePassedAsNil", func(t *testing.T) {
		svc := new(MockReportService)
		svc.On("ProfitLoss", mock.Anything, (*time.Time)(nil), (*time.Time)(nil)).
			Return(&reporting.ProfitLoss{}, nil)

		req, _ := http.NewRequest(http.MethodGet, "/reports/profit-loss", nil)
		rr := httptest.NewRecorder()
		reportRouter(svc).ServeHTTP(rr, req)

		assert.Equal(t, http.StatusOK, rr.Code)
		svc.AssertExpectations(t)
	})

	badRequests := map[string]string{
		"MalformedStart": "/reports/profit-loss?start_date=01/02/2024",
		"MalformedEnd":   "/reports/profit-loss?end_date=yesterday",
		"StartAfterEnd":  "/reports/profit-loss?start_date=2024-02-01&end_date=2024-01-01",
	}
	for name, url := range badRequests {
		t.Run(name, func(t *testing.T) {
			svc := new(MockReportService)
			req, _ := http.NewRequest(http.MethodGet, url, nil)
			rr := httptest.NewRecorder()
			reportRouter(svc).ServeHTTP(rr, req)

			assert.Equal(t, http.StatusBadRequest, rr.Code)
			assert.Equal(t, "BAD_REQUEST", decode(t, rr).Error.Code)
			svc.AssertNotCalled(t, "ProfitLoss", mock.Anything, mock.Anything, mock.Anything)
		})
	}

	t.Run("StoreUnavailable", func(t *testing.T) {
		svc := new(MockReportService)
		svc.On("ProfitLoss", mock.Anything, mock.Anything, mock.Anything).
			Return(nil, fmt.Errorf("profit and loss: %w: %w", service.ErrStoreUnavailable, errors.New("timeout")))

		req, _ := http.NewRequest(http.MethodGet, "/reports/profit-loss", nil)
		rr := httptest.NewRecorder()
		reportRouter(svc).ServeHTTP(rr, req)

		assert.Equal(t, http.StatusInternalServerError, rr.Code)
		env := decode(t, rr)
		assert.Equal(t, "INTERNAL_SERVER_ERROR", env.Error.Code)
		assert.NotEmpty(t, env.CorrelationID)
	})
}

func TestReportHandler_BalanceSheet(t *testing.T) {
	svc := new(MockReportService)
	asOf := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	svc.On("BalanceSheet", mock.Anything).Return(&reporting.BalanceSheet{
		AsOf:         asOf,
		Assets:       reporting.Section{Total: decimal.NewFromInt(500), ByCategory: map[string]decimal.Decimal{"مكتب": decimal.NewFromInt(500)}},
		Liabilities:  reporting.Section{Total: decimal.NewFromInt(200), ByCategory: map[string]decimal.Decimal{}},
		Equity:       decimal.NewFromInt(300),
		BalanceCheck: true,
	}, nil)

	req, _ := http.NewRequest(http.MethodGet, "/reports/balance-sheet", nil)
	rr := httptest.NewRecorder()
	reportRouter(svc).ServeHTTP(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)
	var got BalanceSheetResponse
	require.NoError(t, json.Unmarshal(decode(t, rr).Data, &got))
	assert.Equal(t, 300.0, got.Equity)
	assert.True(t, got.BalanceCheck)
	assert.Equal(t, 500.0, got.Assets.ByCategory["مكتب"])
	assert.Equal(t, "2024-03-01T12:00:00Z", got.Date)
}

func TestReportHandler_CashFlow(t *testing.T) {
	t.Run("DefaultsToMonthly", func(t *testing.T) {
		svc := new(MockReportService)
		svc.On("CashFlow", mock.Anything, reporting.Monthly).Return(&reporting.CashFlow{
			Granularity: reporting.Monthly,
			Buckets: []reporting.CashFlowBucket{
				{Period: "2024-01", Income: decimal.NewFromInt(100), NetFlow: decimal.NewFromInt(100), RunningBalance: decimal.NewFromInt(100)},
				{Period: "2024-03", Expenses: decimal.NewFromInt(30), NetFlow: decimal.NewFromInt(-30), RunningBalance: decimal.NewFromInt(70)},
			},
			FinalBalance: decimal.NewFromInt(70),
			TotalPeriods: 2,
		}, nil)

		req, _ := http.NewRequest(http.MethodGet, "/reports/cash-flow", nil)
		rr := httptest.NewRecorder()
		reportRouter(svc).ServeHTTP(rr, req)

		require.Equal(t, http.StatusOK, rr.Code)
		var got CashFlowResponse
		require.NoError(t, json.Unmarshal(decode(t, rr).Data, &got))
		assert.Equal(t, "monthly", got.PeriodType)
		require.Len(t, got.CashFlow, 2)
		assert.Equal(t, -30.0, got.CashFlow[1].NetFlow)
		assert.Equal(t, 70.0, got.FinalBalance)
		assert.Equal(t, 2, got.TotalPeriods)
	})

	t.Run("ExplicitPeriod", func(t *testing.T) {
		svc := new(MockReportService)
		svc.On("CashFlow", mock.Anything, reporting.Weekly).Return(&reporting.CashFlow{Granularity: reporting.Weekly}, nil)

		req, _ := http.NewRequest(http.MethodGet, "/reports/cash-flow?period=weekly", nil)
		rr := httptest.NewRecorder()
		reportRouter(svc).ServeHTTP(rr, req)

		assert.Equal(t, http.StatusOK, rr.Code)
		svc.AssertExpectations(t)
	})

	t.Run("InvalidPeriod", func(t *testing.T) {
		svc := new(MockReportService)
		req, _ := http.NewRequest(http.MethodGet, "/reports/cash-flow?period=hourly", nil)
		rr := httptest.NewRecorder()
		reportRouter(svc).ServeHTTP(rr, req)

		assert.Equal(t, http.StatusBadRequest, rr.Code)
		svc.AssertNotCalled(t, "CashFlow", mock.Anything, mock.Anything)
	})
}

func TestReportHandler_Trends(t *testing.T) {
	svc := new(MockReportService)
	svc.On("Trends", mock.Anything).Return(&reporting.Trends{
		WindowStart: time.Date(2023, 6, 1, 0, 0, 0, 0, time.UTC),
		WindowEnd:   time.Date(2024, 5, 31, 0, 0, 0, 0, time.UTC),
		MonthlyData: map[string]reporting.MonthTotals{
			"2024-01": {Income: decimal.NewFromInt(100)},
			"2024-02": {Income: decimal.NewFromInt(150)},
		},
		CategoryTrends: map[string]map[string]decimal.Decimal{"راتب": {"2024-01": decimal.NewFromInt(100)}},
		GrowthRates: []reporting.GrowthRate{
			{Month: "2024-02", GrowthRate: decimal.NewFromInt(50), NetProfit: decimal.NewFromInt(150)},
		},
	}, nil)

	req, _ := http.NewRequest(http.MethodGet, "/reports/trends", nil)
	rr := httptest.NewRecorder()
	reportRouter(svc).ServeHTTP(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)
	var got TrendsResponse
	require.NoError(t, json.Unmarshal(decode(t, rr).Data, &got))
	assert.Equal(t, 150.0, got.MonthlyData["2024-02"].Income)
	require.Len(t, got.GrowthRates, 1)
	assert.Equal(t, 50.0, got.GrowthRates[0].GrowthRate)
	assert.Equal(t, "2023-06-01", got.AnalysisPeriod.StartDate)
	assert.Equal(t, 100.0, got.CategoryTrends["راتب"]["2024-01"])
}
