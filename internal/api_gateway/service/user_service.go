package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/bookkeeping-ledger/internal/domain/access"
	"github.com/bookkeeping-ledger/internal/domain/activity"
	"github.com/bookkeeping-ledger/internal/domain/outbox"
	"github.com/bookkeeping-ledger/internal/domain/user"
	"github.com/bookkeeping-ledger/internal/platform/persistence"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// UserServiceImpl implements the UserService interface. User changes and
// their activity events are written to Postgres in one transaction; the
// recorder drains the outbox.
type UserServiceImpl struct {
	db          persistence.TxRunner
	userRepo    user.Repository
	outboxRepo  outbox.Repository
	trialPeriod time.Duration
	logger      *slog.Logger
	now         func() time.Time
}

func NewUserService(logger *slog.Logger, db persistence.TxRunner, userRepo user.Repository, outboxRepo outbox.Repository, trialPeriod time.Duration) UserService {
	return &UserServiceImpl{
		db:          db,
		userRepo:    userRepo,
		outboxRepo:  outboxRepo,
		trialPeriod: trialPeriod,
		logger:      logger,
		now:         func() time.Time { return time.Now().UTC() },
	}
}

// Create checks uniqueness up front for a clean 409; the unique constraints
// still catch a concurrent insert
func (s *UserServiceImpl) Create(ctx context.Context, actor Actor, input NewUser) (*user.User, error) {
	u, err := user.NewUser(input.Username, input.Email, input.FullName, input.Role, s.trialPeriod)
	if err != nil {
		return nil, err
	}

	existing, err := s.userRepo.GetByUsernameOrEmail(ctx, u.Username, u.Email)
	if err != nil {
		return nil, storeError("look up user", err)
	}
	if existing != nil {
		return nil, user.ErrDuplicateUser{Username: u.Username, Email: u.Email}
	}

	event := activity.NewEvent(actor.UserID, activity.ActionUserCreated,
		fmt.Sprintf("created user %s with role %s", u.Username, u.Role), actor.IPAddress, actor.CorrelationID)
	if err := s.insert(ctx, u, event); err != nil {
		return nil, err
	}

	s.logger.Info("User created", "user_id", u.ID, "username", u.Username, "role", u.Role, "created_by", actor.UserID)
	return u, nil
}

// EnsureAdmin seeds the first administrator of a fresh deployment. The
// event is attributed to the new admin since no caller exists yet.
func (s *UserServiceImpl) EnsureAdmin(ctx context.Context, input NewUser) (*user.User, bool, error) {
	u, err := user.NewUser(input.Username, input.Email, input.FullName, access.RoleAdmin, s.trialPeriod)
	if err != nil {
		return nil, false, err
	}

	existing, err := s.userRepo.GetByUsernameOrEmail(ctx, u.Username, u.Email)
	if err != nil {
		return nil, false, storeError("look up bootstrap admin", err)
	}
	if existing != nil {
		s.logger.Debug("Bootstrap admin already registered", "user_id", existing.ID, "username", existing.Username)
		return existing, false, nil
	}

	event := activity.NewEvent(u.ID, activity.ActionUserCreated,
		"bootstrapped administrator "+u.Username, "", "")
	if err := s.insert(ctx, u, event); err != nil {
		var dup user.ErrDuplicateUser
		if errors.As(err, &dup) {
			// another instance won the race
			existing, lookupErr := s.userRepo.GetByUsernameOrEmail(ctx, u.Username, u.Email)
			if lookupErr != nil {
				return nil, false, storeError("look up bootstrap admin", lookupErr)
			}
			if existing == nil {
				return nil, false, dup
			}
			return existing, false, nil
		}
		return nil, false, err
	}

	s.logger.Info("Bootstrap admin created", "user_id", u.ID, "username", u.Username)
	return u, true, nil
}

// insert writes u and its event in one transaction
func (s *UserServiceImpl) insert(ctx context.Context, u *user.User, event *activity.Event) error {
	err := s.db.ExecuteTx(ctx, func(tx pgx.Tx) error {
		if err := s.userRepo.WithTx(tx).Create(ctx, u); err != nil {
			return err
		}
		return s.enqueue(ctx, tx, event)
	})
	if err != nil {
		var dup user.ErrDuplicateUser
		if errors.As(err, &dup) {
			return dup
		}
		return storeError("create user", err)
	}
	return nil
}

func (s *UserServiceImpl) GetByID(ctx context.Context, id uuid.UUID) (*user.User, error) {
	u, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		var notFound user.ErrUserNotFound
		if errors.As(err, &notFound) {
			return nil, notFound
		}
		return nil, storeError("get user", err)
	}
	return u, nil
}

func (s *UserServiceImpl) List(ctx context.Context, page, perPage int) ([]*user.User, int64, error) {
	users, err := s.userRepo.List(ctx, perPage, offset(page, perPage))
	if err != nil {
		return nil, 0, storeError("list users", err)
	}

	total, err := s.userRepo.Count(ctx)
	if err != nil {
		return nil, 0, storeError("count users", err)
	}
	return users, total, nil
}

func (s *UserServiceImpl) Delete(ctx context.Context, actor Actor, id uuid.UUID) error {
	if id == actor.UserID {
		return ErrSelfDeletion
	}

	target, err := s.GetByID(ctx, id)
	if err != nil {
		return err
	}

	event := activity.NewEvent(actor.UserID, activity.ActionUserDeleted,
		"deleted user "+target.Username, actor.IPAddress, actor.CorrelationID)

	err = s.db.ExecuteTx(ctx, func(tx pgx.Tx) error {
		if err := s.userRepo.WithTx(tx).Delete(ctx, id); err != nil {
			return err
		}
		return s.enqueue(ctx, tx, event)
	})
	if err != nil {
		var notFound user.ErrUserNotFound
		if errors.As(err, &notFound) {
			return notFound
		}
		return storeError("delete user", err)
	}

	s.logger.Info("User deleted", "user_id", id, "username", target.Username, "deleted_by", actor.UserID)
	return nil
}

func (s *UserServiceImpl) Resolve(ctx context.Context, id uuid.UUID) (*user.User, error) {
	u, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	now := s.now()
	if err := s.userRepo.TouchLastLogin(ctx, id, now); err != nil {
		s.logger.Warn("Failed to record last login", "user_id", id, "error", err)
	} else {
		u.LastLogin = &now
	}
	return u, nil
}

func (s *UserServiceImpl) enqueue(ctx context.Context, tx pgx.Tx, event *activity.Event) error {
	msg, err := outbox.NewMessage(event)
	if err != nil {
		return err
	}
	return s.outboxRepo.WithTx(tx).Create(ctx, msg)
}
