package user

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// Repository defines user persistence operations
type Repository interface {
	Create(ctx context.Context, user *User) error
	GetByID(ctx context.Context, id uuid.UUID) (*User, error)
	GetByUsernameOrEmail(ctx context.Context, username, email string) (*User, error)
	List(ctx context.Context, limit, offset int) ([]*User, error)
	Count(ctx context.Context) (int64, error)
	Delete(ctx context.Context, id uuid.UUID) error
	TouchLastLogin(ctx context.Context, id uuid.UUID, at time.Time) error

	// ListExpired returns non-admin users whose trial ended before now
	ListExpired(ctx context.Context, now time.Time) ([]*User, error)
	WithTx(tx pgx.Tx) Repository
}

// ErrUserNotFound indicates a missing user
type ErrUserNotFound struct {
	UserID uuid.UUID
}

func (e ErrUserNotFound) Error() string {
	return "user not found: " + e.UserID.String()
}

// ErrDuplicateUser indicates a username or email uniqueness violation
type ErrDuplicateUser struct {
	Username string
	Email    string
}

func (e ErrDuplicateUser) Error() string {
	return "username or email already registered: " + e.Username + " / " + e.Email
}
