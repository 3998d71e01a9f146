package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/bookkeeping-ledger/internal/api_gateway/middleware"
	"github.com/bookkeeping-ledger/internal/api_gateway/service"
	"github.com/bookkeeping-ledger/internal/domain/access"
	"github.com/bookkeeping-ledger/internal/domain/activity"
	"github.com/bookkeeping-ledger/internal/domain/transaction"
	"github.com/bookkeeping-ledger/internal/domain/user"
	"github.com/bookkeeping-ledger/internal/reporting"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockReportService struct {
	mock.Mock
}

func (m *MockReportService) ProfitLoss(ctx context.Context, start, end *time.Time) (*reporting.ProfitLoss, error) {
	args := m.Called(ctx, start, end)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*reporting.ProfitLoss), args.Error(1)
}

func (m *MockReportService) BalanceSheet(ctx context.Context) (*reporting.BalanceSheet, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*reporting.BalanceSheet), args.Error(1)
}

func (m *MockReportService) CashFlow(ctx context.Context, granularity reporting.Granularity) (*reporting.CashFlow, error) {
	args := m.Called(ctx, granularity)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*reporting.CashFlow), args.Error(1)
}

func (m *MockReportService) Trends(ctx context.Context) (*reporting.Trends, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*reporting.Trends), args.Error(1)
}

type MockTransactionService struct {
	mock.Mock
}

func (m *MockTransactionService) Create(ctx context.Context, actor service.Actor, details transaction.Details) (*transaction.Transaction, error) {
	args := m.Called(ctx, actor, details)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*transaction.Transaction), args.Error(1)
}

func (m *MockTransactionService) Get(ctx context.Context, id uuid.UUID) (*transaction.Transaction, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*transaction.Transaction), args.Error(1)
}

func (m *MockTransactionService) List(ctx context.Context, page, perPage int) ([]*transaction.Transaction, int64, error) {
	args := m.Called(ctx, page, perPage)
	if args.Get(0) == nil {
		return nil, args.Get(1).(int64), args.Error(2)
	}
	return args.Get(0).([]*transaction.Transaction), args.Get(1).(int64), args.Error(2)
}

func (m *MockTransactionService) Update(ctx context.Context, actor service.Actor, id uuid.UUID, details transaction.Details) (*transaction.Transaction, error) {
	args := m.Called(ctx, actor, id, details)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*transaction.Transaction), args.Error(1)
}

func (m *MockTransactionService) Delete(ctx context.Context, actor service.Actor, id uuid.UUID) error {
	return m.Called(ctx, actor, id).Error(0)
}

type MockUserService struct {
	mock.Mock
}

func (m *MockUserService) Create(ctx context.Context, actor service.Actor, input service.NewUser) (*user.User, error) {
	args := m.Called(ctx, actor, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*user.User), args.Error(1)
}

func (m *MockUserService) GetByID(ctx context.Context, id uuid.UUID) (*user.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*user.User), args.Error(1)
}

func (m *MockUserService) List(ctx context.Context, page, perPage int) ([]*user.User, int64, error) {
	args := m.Called(ctx, page, perPage)
	if args.Get(0) == nil {
		return nil, args.Get(1).(int64), args.Error(2)
	}
	return args.Get(0).([]*user.User), args.Get(1).(int64), args.Error(2)
}

func (m *MockUserService) Delete(ctx context.Context, actor service.Actor, id uuid.UUID) error {
	return m.Called(ctx, actor, id).Error(0)
}

func (m *MockUserService) Resolve(ctx context.Context, id uuid.UUID) (*user.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*user.User), args.Error(1)
}

func (m *MockUserService) EnsureAdmin(ctx context.Context, input service.NewUser) (*user.User, bool, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Bool(1), args.Error(2)
	}
	return args.Get(0).(*user.User), args.Bool(1), args.Error(2)
}

type MockActivityService struct {
	mock.Mock
}

func (m *MockActivityService) List(ctx context.Context, page, perPage int) ([]*activity.Log, int64, error) {
	args := m.Called(ctx, page, perPage)
	if args.Get(0) == nil {
		return nil, args.Get(1).(int64), args.Error(2)
	}
	return args.Get(0).([]*activity.Log), args.Get(1).(int64), args.Error(2)
}

func (m *MockActivityService) Record(ctx context.Context, actor service.Actor, action activity.Action, details string) {
	m.Called(ctx, actor, action, details)
}

type MockExportService struct {
	mock.Mock
}

// Export writes the configured payload to w before returning the configured error
func (m *MockExportService) Export(ctx context.Context, actor service.Actor, format service.ExportFormat, w io.Writer) error {
	args := m.Called(ctx, actor, format, w)
	if payload := args.String(0); payload != "" {
		_, _ = io.WriteString(w, payload)
	}
	return args.Error(1)
}

type MockMaintenanceService struct {
	mock.Mock
}

func (m *MockMaintenanceService) CleanupExpiredUsers(ctx context.Context, actor service.Actor) (*service.CleanupResult, error) {
	args := m.Called(ctx, actor)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.CleanupResult), args.Error(1)
}

type MockBackupService struct {
	mock.Mock
}

func (m *MockBackupService) Backup(ctx context.Context, actor service.Actor) (*service.Snapshot, error) {
	args := m.Called(ctx, actor)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.Snapshot), args.Error(1)
}

type MockDashboardService struct {
	mock.Mock
}

func (m *MockDashboardService) Stats(ctx context.Context) (*service.DashboardStats, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.DashboardStats), args.Error(1)
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(io.Discard, nil))
}

var testUser = &user.User{
	ID:       uuid.MustParse("7b0c1d2e-3f40-4a5b-8c6d-7e8f9a0b1c2d"),
	Username: "admin",
	Email:    "admin@example.com",
	FullName: "Admin User",
	Role:     access.RoleAdmin,
	IsActive: true,
}

// newTestRouter returns an engine whose requests already carry testUser
func newTestRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(middleware.CorrelationID())
	router.Use(func(c *gin.Context) {
		c.Set(middleware.UserKey, testUser)
		c.Next()
	})
	return router
}

// isTestActor matches the actor built for testUser
func isTestActor(a service.Actor) bool {
	return a.UserID == testUser.ID && a.Username == testUser.Username && a.Role == testUser.Role && a.CorrelationID != ""
}

func jsonBody(t *testing.T, v interface{}) *bytes.Reader {
	t.Helper()
	raw, err := json.Marshal(v)
	require.NoError(t, err)
	return bytes.NewReader(raw)
}

// envelope decodes a response into the generic envelope with Data left raw
type envelope struct {
	Data          json.RawMessage `json:"data"`
	Error         *ErrorInfo      `json:"error"`
	CorrelationID string          `json:"correlation_id"`
	Meta          *MetaInfo       `json:"meta"`
}

func decode(t *testing.T, rr *httptest.ResponseRecorder) envelope {
	t.Helper()
	var env envelope
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &env))
	return env
}
