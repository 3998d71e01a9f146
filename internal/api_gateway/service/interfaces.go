package service

import (
	"context"
	"io"
	"time"

	"github.com/bookkeeping-ledger/internal/domain/access"
	"github.com/bookkeeping-ledger/internal/domain/activity"
	"github.com/bookkeeping-ledger/internal/domain/transaction"
	"github.com/bookkeeping-ledger/internal/domain/user"
	"github.com/bookkeeping-ledger/internal/reporting"
	"github.com/google/uuid"
)

// ReportService computes financial reports from a fresh snapshot of the
// transaction store on every call
type ReportService interface {
	// ProfitLoss covers [start, end]. Nil bounds default to the trailing
	// 30 days ending now. Returns reporting.ErrInvalidRange if start > end.
	ProfitLoss(ctx context.Context, start, end *time.Time) (*reporting.ProfitLoss, error)
	BalanceSheet(ctx context.Context) (*reporting.BalanceSheet, error)
	CashFlow(ctx context.Context, granularity reporting.Granularity) (*reporting.CashFlow, error)
	Trends(ctx context.Context) (*reporting.Trends, error)
}

// TransactionService manages income and expense records
type TransactionService interface {
	Create(ctx context.Context, actor Actor, details transaction.Details) (*transaction.Transaction, error)
	// Get returns transaction.ErrTransactionNotFound if the id is unknown
	Get(ctx context.Context, id uuid.UUID) (*transaction.Transaction, error)
	// List returns one page, newest first, and the total count
	List(ctx context.Context, page, perPage int) ([]*transaction.Transaction, int64, error)
	Update(ctx context.Context, actor Actor, id uuid.UUID, details transaction.Details) (*transaction.Transaction, error)
	Delete(ctx context.Context, actor Actor, id uuid.UUID) error
}

// NewUser is the input of UserService.Create
type NewUser struct {
	Username string
	Email    string
	FullName string
	Role     access.Role
}

// UserService manages operator accounts
type UserService interface {
	// Create returns user.ErrDuplicateUser if the username or email is taken
	Create(ctx context.Context, actor Actor, input NewUser) (*user.User, error)
	GetByID(ctx context.Context, id uuid.UUID) (*user.User, error)
	List(ctx context.Context, page, perPage int) ([]*user.User, int64, error)
	// Delete returns ErrSelfDeletion when the actor targets itself
	Delete(ctx context.Context, actor Actor, id uuid.UUID) error
	// Resolve loads the caller of a request and records the visit
	Resolve(ctx context.Context, id uuid.UUID) (*user.User, error)
	// EnsureAdmin creates an administrator from input unless its username or
	// email is already registered. It reports whether a user was created.
	EnsureAdmin(ctx context.Context, input NewUser) (*user.User, bool, error)
}

// ActivityService reads and emits audit records
type ActivityService interface {
	List(ctx context.Context, page, perPage int) ([]*activity.Log, int64, error)
	// Record publishes an event for the recorder. Failures are logged and
	// never surface to the caller.
	Record(ctx context.Context, actor Actor, action activity.Action, details string)
}

// ExportFormat names an export encoding
type ExportFormat string

const (
	FormatJSON ExportFormat = "json"
	FormatCSV  ExportFormat = "csv"
	FormatXLSX ExportFormat = "xlsx"
)

// ExportService writes every transaction in one of the ExportFormats
type ExportService interface {
	// Export returns ErrUnsupportedFormat before writing anything if format is unknown
	Export(ctx context.Context, actor Actor, format ExportFormat, w io.Writer) error
}

// CleanupResult reports one expired-trial sweep
type CleanupResult struct {
	DeletedCount int
	DeletedUsers []string
}

// MaintenanceService runs housekeeping jobs
type MaintenanceService interface {
	CleanupExpiredUsers(ctx context.Context, actor Actor) (*CleanupResult, error)
}

// BackupService produces database snapshots
type BackupService interface {
	Backup(ctx context.Context, actor Actor) (*Snapshot, error)
}

// DashboardService aggregates headline figures
type DashboardService interface {
	Stats(ctx context.Context) (*DashboardStats, error)
}
