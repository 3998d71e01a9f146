package handler

import (
	"time"

	"github.com/bookkeeping-ledger/internal/api_gateway/service"
	"github.com/bookkeeping-ledger/internal/domain/activity"
	"github.com/bookkeeping-ledger/internal/domain/transaction"
	"github.com/bookkeeping-ledger/internal/domain/user"
	"github.com/bookkeeping-ledger/internal/reporting"
	"github.com/shopspring/decimal"
)

// Money leaves the API as JSON numbers. Amounts are kept as decimals
// everywhere up to this point.

// TransactionRequest is the body of POST and PUT /transactions
type TransactionRequest struct {
	Type        string           `json:"type" binding:"required,oneof=income expense"`
	Amount      *decimal.Decimal `json:"amount"` // nil when the field is absent or null
	Category    string           `json:"category" binding:"required"`
	Description string           `json:"description"`
	Date        string           `json:"date" binding:"required"`
}

// TransactionResponse represents a transaction in API responses
type TransactionResponse struct {
	ID          string  `json:"id"`
	Type        string  `json:"type"`
	Amount      float64 `json:"amount"`
	Category    string  `json:"category"`
	Description string  `json:"description"`
	Date        string  `json:"date"`
	CreatedBy   string  `json:"created_by"`
	CreatedAt   string  `json:"created_at"`
}

func newTransactionResponse(tx *transaction.Transaction) TransactionResponse {
	return TransactionResponse{
		ID:          tx.ID.String(),
		Type:        string(tx.Kind),
		Amount:      tx.Amount.InexactFloat64(),
		Category:    tx.Category,
		Description: tx.Description,
		Date:        tx.OccurredAt.Format(time.RFC3339),
		CreatedBy:   tx.CreatedBy.String(),
		CreatedAt:   tx.RecordedAt.Format(time.RFC3339),
	}
}

// CreateUserRequest is the body of POST /users
type CreateUserRequest struct {
	Username string `json:"username" binding:"required"`
	Email    string `json:"email" binding:"required"`
	FullName string `json:"full_name" binding:"required"`
	Role     string `json:"role" binding:"required"`
}

// UserResponse represents a user in API responses
type UserResponse struct {
	ID             string  `json:"id"`
	Username       string  `json:"username"`
	Email          string  `json:"email"`
	FullName       string  `json:"full_name"`
	Role           string  `json:"role"`
	IsActive       bool    `json:"is_active"`
	CreatedAt      string  `json:"created_at"`
	LastLogin      *string `json:"last_login,omitempty"`
	TrialExpiresAt *string `json:"trial_expires_at,omitempty"`
}

func newUserResponse(u *user.User) UserResponse {
	return UserResponse{
		ID:             u.ID.String(),
		Username:       u.Username,
		Email:          u.Email,
		FullName:       u.FullName,
		Role:           string(u.Role),
		IsActive:       u.IsActive,
		CreatedAt:      u.CreatedAt.Format(time.RFC3339),
		LastLogin:      formatOptional(u.LastLogin),
		TrialExpiresAt: formatOptional(u.TrialExpiresAt),
	}
}

func formatOptional(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := t.Format(time.RFC3339)
	return &s
}

// ActivityLogResponse represents one audit record
type ActivityLogResponse struct {
	ID            string `json:"id"`
	UserID        string `json:"user_id"`
	Action        string `json:"action"`
	Details       string `json:"details"`
	IPAddress     string `json:"ip_address,omitempty"`
	CorrelationID string `json:"correlation_id,omitempty"`
	Timestamp     string `json:"timestamp"`
}

func newActivityLogResponse(l *activity.Log) ActivityLogResponse {
	return ActivityLogResponse{
		ID:            l.ID.String(),
		UserID:        l.UserID.String(),
		Action:        string(l.Action),
		Details:       l.Details,
		IPAddress:     l.IPAddress,
		CorrelationID: l.CorrelationID,
		Timestamp:     l.OccurredAt.Format(time.RFC3339),
	}
}

// PeriodResponse is the date range a report covers
type PeriodResponse struct {
	StartDate string `json:"start_date"`
	EndDate   string `json:"end_date"`
}

// ProfitLossResponse is the body of GET /reports/profit-loss
type ProfitLossResponse struct {
	Period            PeriodResponse     `json:"period"`
	TotalIncome       float64            `json:"total_income"`
	TotalExpenses     float64            `json:"total_expenses"`
	NetProfit         float64            `json:"net_profit"`
	ProfitMargin      float64            `json:"profit_margin"`
	IncomeByCategory  map[string]float64 `json:"income_by_category"`
	ExpenseByCategory map[string]float64 `json:"expense_by_category"`
	TransactionCount  int                `json:"transaction_count"`
}

func newProfitLossResponse(r *reporting.ProfitLoss) ProfitLossResponse {
	return ProfitLossResponse{
		Period: PeriodResponse{
			StartDate: r.Start.Format(time.RFC3339),
			EndDate:   r.End.Format(time.RFC3339),
		},
		TotalIncome:       r.TotalIncome.InexactFloat64(),
		TotalExpenses:     r.TotalExpenses.InexactFloat64(),
		NetProfit:         r.NetProfit.InexactFloat64(),
		ProfitMargin:      r.ProfitMargin.InexactFloat64(),
		IncomeByCategory:  floats(r.IncomeByCategory),
		ExpenseByCategory: floats(r.ExpenseByCategory),
		TransactionCount:  r.TransactionCount,
	}
}

// SectionResponse is one side of the balance sheet
type SectionResponse struct {
	Total      float64            `json:"total"`
	ByCategory map[string]float64 `json:"by_category"`
}

// BalanceSheetResponse is the body of GET /reports/balance-sheet
type BalanceSheetResponse struct {
	Date         string          `json:"date"`
	Assets       SectionResponse `json:"assets"`
	Liabilities  SectionResponse `json:"liabilities"`
	Equity       float64         `json:"equity"`
	BalanceCheck bool            `json:"balance_check"`
}

func newBalanceSheetResponse(r *reporting.BalanceSheet) BalanceSheetResponse {
	return BalanceSheetResponse{
		Date:         r.AsOf.Format(time.RFC3339),
		Assets:       SectionResponse{Total: r.Assets.Total.InexactFloat64(), ByCategory: floats(r.Assets.ByCategory)},
		Liabilities:  SectionResponse{Total: r.Liabilities.Total.InexactFloat64(), ByCategory: floats(r.Liabilities.ByCategory)},
		Equity:       r.Equity.InexactFloat64(),
		BalanceCheck: r.BalanceCheck,
	}
}

// CashFlowBucketResponse is one period of the cash flow report
type CashFlowBucketResponse struct {
	Period         string  `json:"period"`
	Income         float64 `json:"income"`
	Expenses       float64 `json:"expenses"`
	NetFlow        float64 `json:"net_flow"`
	RunningBalance float64 `json:"running_balance"`
}

// CashFlowResponse is the body of GET /reports/cash-flow
type CashFlowResponse struct {
	PeriodType   string                   `json:"period_type"`
	CashFlow     []CashFlowBucketResponse `json:"cash_flow"`
	FinalBalance float64                  `json:"final_balance"`
	TotalPeriods int                      `json:"total_periods"`
}

func newCashFlowResponse(r *reporting.CashFlow) CashFlowResponse {
	buckets := make([]CashFlowBucketResponse, 0, len(r.Buckets))
	for _, b := range r.Buckets {
		buckets = append(buckets, CashFlowBucketResponse{
			Period:         b.Period,
			Income:         b.Income.InexactFloat64(),
			Expenses:       b.Expenses.InexactFloat64(),
			NetFlow:        b.NetFlow.InexactFloat64(),
			RunningBalance: b.RunningBalance.InexactFloat64(),
		})
	}
	return CashFlowResponse{
		PeriodType:   string(r.Granularity),
		CashFlow:     buckets,
		FinalBalance: r.FinalBalance.InexactFloat64(),
		TotalPeriods: r.TotalPeriods,
	}
}

// MonthTotalsResponse is the income and expense of one month
type MonthTotalsResponse struct {
	Income   float64 `json:"income"`
	Expenses float64 `json:"expenses"`
}

// GrowthRateResponse compares one month with the month before
type GrowthRateResponse struct {
	Month      string  `json:"month"`
	GrowthRate float64 `json:"growth_rate"`
	NetProfit  float64 `json:"net_profit"`
}

// TrendsResponse is the body of GET /reports/trends
type TrendsResponse struct {
	MonthlyData    map[string]MonthTotalsResponse `json:"monthly_data"`
	CategoryTrends map[string]map[string]float64  `json:"category_trends"`
	GrowthRates    []GrowthRateResponse           `json:"growth_rates"`
	AnalysisPeriod PeriodResponse                 `json:"analysis_period"`
}

func newTrendsResponse(r *reporting.Trends) TrendsResponse {
	monthly := make(map[string]MonthTotalsResponse, len(r.MonthlyData))
	for month, t := range r.MonthlyData {
		monthly[month] = MonthTotalsResponse{Income: t.Income.InexactFloat64(), Expenses: t.Expenses.InexactFloat64()}
	}
	categories := make(map[string]map[string]float64, len(r.CategoryTrends))
	for c, byMonth := range r.CategoryTrends {
		categories[c] = floats(byMonth)
	}
	rates := make([]GrowthRateResponse, 0, len(r.GrowthRates))
	for _, g := range r.GrowthRates {
		rates = append(rates, GrowthRateResponse{
			Month:      g.Month,
			GrowthRate: g.GrowthRate.InexactFloat64(),
			NetProfit:  g.NetProfit.InexactFloat64(),
		})
	}
	return TrendsResponse{
		MonthlyData:    monthly,
		CategoryTrends: categories,
		GrowthRates:    rates,
		AnalysisPeriod: PeriodResponse{
			StartDate: r.WindowStart.Format("2006-01-02"),
			EndDate:   r.WindowEnd.Format("2006-01-02"),
		},
	}
}

// DashboardResponse is the body of GET /dashboard/stats
type DashboardResponse struct {
	TotalIncome       float64 `json:"total_income"`
	TotalExpenses     float64 `json:"total_expenses"`
	NetProfit         float64 `json:"net_profit"`
	TotalUsers        int64   `json:"total_users"`
	TotalTransactions int     `json:"total_transactions"`
	TotalActivityLogs int64   `json:"total_activity_logs"`
}

func newDashboardResponse(s *service.DashboardStats) DashboardResponse {
	return DashboardResponse{
		TotalIncome:       s.TotalIncome.InexactFloat64(),
		TotalExpenses:     s.TotalExpenses.InexactFloat64(),
		NetProfit:         s.NetProfit.InexactFloat64(),
		TotalUsers:        s.UserCount,
		TotalTransactions: s.TransactionCount,
		TotalActivityLogs: s.ActivityLogCount,
	}
}

// CleanupResponse is the body of POST /maintenance/cleanup-expired-users
type CleanupResponse struct {
	DeletedCount int      `json:"deleted_count"`
	DeletedUsers []string `json:"deleted_users"`
	CleanupTime  string   `json:"cleanup_time"`
}

// CategoriesResponse is the body of GET /categories
type CategoriesResponse struct {
	Categories []string `json:"categories"`
}

// PaginationParams represents pagination parameters for list endpoints
type PaginationParams struct {
	Page    int `form:"page,default=1" binding:"min=1"`
	PerPage int `form:"per_page,default=10" binding:"min=1,max=100"`
}

func floats(in map[string]decimal.Decimal) map[string]float64 {
	out := make(map[string]float64, len(in))
	for k, v := range in {
		out[k] = v.InexactFloat64()
	}
	return out
}
