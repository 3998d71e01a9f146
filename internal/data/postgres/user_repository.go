// Package postgres provides the PostgreSQL implementations of the user and
// activity outbox repositories.
package postgres

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/bookkeeping-ledger/internal/domain/access"
	"github.com/bookkeeping-ledger/internal/domain/user"
	"github.com/bookkeeping-ledger/internal/platform/persistence"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

const uniqueViolation = "23505"

const userColumns = `id, username, email, full_name, role, is_active, created_at, last_login, trial_expires_at`

const (
	insertUserQuery = `
		INSERT INTO users (` + userColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`
	selectUserByIDQuery = `
		SELECT ` + userColumns + `
		FROM users
		WHERE id = $1
	`
	selectUserByUsernameOrEmailQuery = `
		SELECT ` + userColumns + `
		FROM users
		WHERE username = $1 OR email = $2
		LIMIT 1
	`
	listUsersQuery = `
		SELECT ` + userColumns + `
		FROM users
		ORDER BY created_at DESC
		LIMIT $1 OFFSET $2
	`
	countUsersQuery = `SELECT COUNT(*) FROM users`
	deleteUserQuery = `
		DELETE FROM users
		WHERE id = $1
	`
	touchLastLoginQuery = `
		UPDATE users
		SET last_login = $1
		WHERE id = $2
	`
	listExpiredUsersQuery = `
		SELECT ` + userColumns + `
		FROM users
		WHERE role <> $1 AND trial_expires_at IS NOT NULL AND trial_expires_at < $2
		ORDER BY trial_expires_at ASC
	`
)

// UserRepository implements the user.Repository interface for PostgreSQL
type UserRepository struct {
	querier persistence.Querier // *pgxpool.Pool or pgx.Tx
	logger  *slog.Logger
}

// NewUserRepository creates a new PostgreSQL user repository
func NewUserRepository(logger *slog.Logger, db *persistence.PostgresDB) user.Repository {
	return &UserRepository{
		querier: db.Pool(),
		logger:  logger,
	}
}

// WithTx returns a repository bound to tx
func (r *UserRepository) WithTx(tx pgx.Tx) user.Repository {
	return &UserRepository{
		querier: tx,
		logger:  r.logger,
	}
}

// Create inserts a user. Returns ErrDuplicateUser when the username or email is taken.
func (r *UserRepository) Create(ctx context.Context, u *user.User) error {
	_, err := r.querier.Exec(ctx, insertUserQuery,
		u.ID,
		u.Username,
		u.Email,
		u.FullName,
		u.Role,
		u.IsActive,
		u.CreatedAt,
		u.LastLogin,
		u.TrialExpiresAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return user.ErrDuplicateUser{Username: u.Username, Email: u.Email}
		}
		r.logger.Error("Failed to create user", "username", u.Username, "error", err)
		return fmt.Errorf("failed to create user: %w", err)
	}

	return nil
}

// GetByID retrieves a user by ID
func (r *UserRepository) GetByID(ctx context.Context, id uuid.UUID) (*user.User, error) {
	u, err := scanUser(r.querier.QueryRow(ctx, selectUserByIDQuery, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, user.ErrUserNotFound{UserID: id}
		}
		r.logger.Error("Failed to get user", "id", id.String(), "error", err)
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	return u, nil
}

// GetByUsernameOrEmail returns nil, nil when neither is registered
func (r *UserRepository) GetByUsernameOrEmail(ctx context.Context, username, email string) (*user.User, error) {
	u, err := scanUser(r.querier.QueryRow(ctx, selectUserByUsernameOrEmailQuery, username, email))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		r.logger.Error("Failed to look up user", "username", username, "error", err)
		return nil, fmt.Errorf("failed to look up user: %w", err)
	}

	return u, nil
}

// List returns users newest first
func (r *UserRepository) List(ctx context.Context, limit, offset int) ([]*user.User, error) {
	rows, err := r.querier.Query(ctx, listUsersQuery, limit, offset)
	if err != nil {
		r.logger.Error("Failed to list users", "error", err)
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	return r.collect(rows)
}

// Count returns the number of registered users
func (r *UserRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	if err := r.querier.QueryRow(ctx, countUsersQuery).Scan(&count); err != nil {
		r.logger.Error("Failed to count users", "error", err)
		return 0, fmt.Errorf("failed to count users: %w", err)
	}
	return count, nil
}

// Delete removes a user. Returns ErrUserNotFound if nothing was deleted.
func (r *UserRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := r.querier.Exec(ctx, deleteUserQuery, id)
	if err != nil {
		r.logger.Error("Failed to delete user", "id", id.String(), "error", err)
		return fmt.Errorf("failed to delete user: %w", err)
	}

	if result.RowsAffected() == 0 {
		return user.ErrUserNotFound{UserID: id}
	}

	return nil
}

// TouchLastLogin records when the user was last seen
func (r *UserRepository) TouchLastLogin(ctx context.Context, id uuid.UUID, at time.Time) error {
	result, err := r.querier.Exec(ctx, touchLastLoginQuery, at, id)
	if err != nil {
		r.logger.Error("Failed to update last login", "id", id.String(), "error", err)
		return fmt.Errorf("failed to update last login: %w", err)
	}

	if result.RowsAffected() == 0 {
		return user.ErrUserNotFound{UserID: id}
	}

	return nil
}

// ListExpired returns non-admin users whose trial ended before now
func (r *UserRepository) ListExpired(ctx context.Context, now time.Time) ([]*user.User, error) {
	rows, err := r.querier.Query(ctx, listExpiredUsersQuery, access.RoleAdmin, now)
	if err != nil {
		r.logger.Error("Failed to list expired users", "error", err)
		return nil, fmt.Errorf("failed to list expired users: %w", err)
	}
	return r.collect(rows)
}

func (r *UserRepository) collect(rows pgx.Rows) ([]*user.User, error) {
	defer rows.Close()

	users := make([]*user.User, 0)
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			r.logger.Error("Failed to scan user", "error", err)
			return nil, fmt.Errorf("failed to scan user: %w", err)
		}
		users = append(users, u)
	}

	if err := rows.Err(); err != nil {
		r.logger.Error("Error iterating over users", "error", err)
		return nil, fmt.Errorf("error iterating over users: %w", err)
	}

	return users, nil
}

func scanUser(row pgx.Row) (*user.User, error) {
	var u user.User
	err := row.Scan(
		&u.ID,
		&u.Username,
		&u.Email,
		&u.FullName,
		&u.Role,
		&u.IsActive,
		&u.CreatedAt,
		&u.LastLogin,
		&u.TrialExpiresAt,
	)
	if err != nil {
		return nil, err
	}
	return &u, nil
}
