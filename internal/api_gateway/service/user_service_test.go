package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/bookkeeping-ledger/internal/domain/access"
	"github.com/bookkeeping-ledger/internal/domain/activity"
	"github.com/bookkeeping-ledger/internal/domain/outbox"
	"github.com/bookkeeping-ledger/internal/domain/user"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type userFixture struct {
	db     *MockTxRunner
	users  *MockUserRepository
	outbox *MockOutboxRepository
	svc    *UserServiceImpl
}

func newUserFixture() *userFixture {
	f := &userFixture{
		db:     new(MockTxRunner),
		users:  new(MockUserRepository),
		outbox: new(MockOutboxRepository),
	}
	f.svc = NewUserService(testLogger(), f.db, f.users, f.outbox, 7*24*time.Hour).(*UserServiceImpl)
	return f
}

func outboxEvent(action activity.Action) interface{} {
	return mock.MatchedBy(func(m *outbox.Message) bool {
		e, err := m.Event()
		return err == nil && e.Action == action && m.Status == outbox.StatusPending
	})
}

func TestUserService_Create(t *testing.T) {
	ctx := context.Background()
	actor := testActor()
	input := NewUser{Username: "Alice", Email: "Alice@Example.com", FullName: "Alice A", Role: access.RoleViewer}

	t.Run("WritesUserAndOutboxInOneTransaction", func(t *testing.T) {
		f := newUserFixture()
		f.users.On("GetByUsernameOrEmail", ctx, "Alice", "alice@example.com").Return(nil, nil).Once()
		f.db.On("ExecuteTx", ctx).Return(nil).Once()
		f.users.On("Create", ctx, mock.MatchedBy(func(u *user.User) bool {
			return u.Username == "Alice" && u.TrialExpiresAt != nil
		})).Return(nil).Once()
		f.outbox.On("Create", ctx, outboxEvent(activity.ActionUserCreated)).Return(nil).Once()

		u, err := f.svc.Create(ctx, actor, input)
		require.NoError(t, err)
		assert.Equal(t, "alice@example.com", u.Email)
		require.NotNil(t, u.TrialExpiresAt)
		assert.WithinDuration(t, u.CreatedAt.Add(7*24*time.Hour), *u.TrialExpiresAt, time.Second)
		f.users.AssertExpectations(t)
		f.outbox.AssertExpectations(t)
	})

	t.Run("DuplicateFoundUpFront", func(t *testing.T) {
		f := newUserFixture()
		f.users.On("GetByUsernameOrEmail", ctx, "Alice", "alice@example.com").Return(&user.User{Username: "Alice"}, nil).Once()

		_, err := f.svc.Create(ctx, actor, input)
		var dup user.ErrDuplicateUser
		require.ErrorAs(t, err, &dup)
		f.db.AssertNotCalled(t, "ExecuteTx", mock.Anything)
	})

	t.Run("DuplicateRaisedByConstraint", func(t *testing.T) {
		f := newUserFixture()
		f.users.On("GetByUsernameOrEmail", ctx, mock.Anything, mock.Anything).Return(nil, nil).Once()
		f.db.On("ExecuteTx", ctx).Return(nil).Once()
		f.users.On("Create", ctx, mock.Anything).Return(user.ErrDuplicateUser{Username: "Alice"}).Once()

		_, err := f.svc.Create(ctx, actor, input)
		var dup user.ErrDuplicateUser
		require.ErrorAs(t, err, &dup)
		assert.NotErrorIs(t, err, ErrStoreUnavailable)
		f.outbox.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("InvalidRole", func(t *testing.T) {
		f := newUserFixture()
		bad := input
		bad.Role = "owner"
		_, err := f.svc.Create(ctx, actor, bad)
		require.ErrorIs(t, err, user.ErrInvalidRole)
	})

	t.Run("OutboxFailureIsStoreError", func(t *testing.T) {
		f := newUserFixture()
		f.users.On("GetByUsernameOrEmail", ctx, mock.Anything, mock.Anything).Return(nil, nil).Once()
		f.db.On("ExecuteTx", ctx).Return(nil).Once()
		f.users.On("Create", ctx, mock.Anything).Return(nil).Once()
		f.outbox.On("Create", ctx, mock.Anything).Return(errors.New("connection reset")).Once()

		_, err := f.svc.Create(ctx, actor, input)
		require.ErrorIs(t, err, ErrStoreUnavailable)
	})
}

func TestUserService_EnsureAdmin(t *testing.T) {
	ctx := context.Background()
	input := NewUser{Username: "root", Email: "Admin@System.com", FullName: "System Admin", Role: access.RoleViewer}

	t.Run("CreatesAdminWithOutboxEvent", func(t *testing.T) {
		f := newUserFixture()
		f.users.On("GetByUsernameOrEmail", ctx, "root", "admin@system.com").Return(nil, nil).Once()
		f.db.On("ExecuteTx", ctx).Return(nil).Once()
		f.users.On("Create", ctx, mock.MatchedBy(func(u *user.User) bool {
			return u.Role == access.RoleAdmin && u.TrialExpiresAt == nil
		})).Return(nil).Once()

		var event *activity.Event
		f.outbox.On("Create", ctx, outboxEvent(activity.ActionUserCreated)).Run(func(args mock.Arguments) {
			event, _ = args.Get(1).(*outbox.Message).Event()
		}).Return(nil).Once()

		u, created, err := f.svc.EnsureAdmin(ctx, input)
		require.NoError(t, err)
		assert.True(t, created)
		assert.Equal(t, access.RoleAdmin, u.Role)
		require.NotNil(t, event)
		assert.Equal(t, u.ID, event.UserID)
		f.users.AssertExpectations(t)
		f.outbox.AssertExpectations(t)
	})

	t.Run("ExistingUserLeftAlone", func(t *testing.T) {
		f := newUserFixture()
		existing := &user.User{ID: uuid.New(), Username: "root", Role: access.RoleAdmin}
		f.users.On("GetByUsernameOrEmail", ctx, "root", "admin@system.com").Return(existing, nil).Once()

		u, created, err := f.svc.EnsureAdmin(ctx, input)
		require.NoError(t, err)
		assert.False(t, created)
		assert.Same(t, existing, u)
		f.db.AssertNotCalled(t, "ExecuteTx", mock.Anything)
		f.outbox.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("ConcurrentInsertReturnsWinner", func(t *testing.T) {
		f := newUserFixture()
		winner := &user.User{ID: uuid.New(), Username: "root", Role: access.RoleAdmin}
		f.users.On("GetByUsernameOrEmail", ctx, "root", "admin@system.com").Return(nil, nil).Once()
		f.db.On("ExecuteTx", ctx).Return(nil).Once()
		f.users.On("Create", ctx, mock.Anything).Return(user.ErrDuplicateUser{Username: "root"}).Once()
		f.users.On("GetByUsernameOrEmail", ctx, "root", "admin@system.com").Return(winner, nil).Once()

		u, created, err := f.svc.EnsureAdmin(ctx, input)
		require.NoError(t, err)
		assert.False(t, created)
		assert.Same(t, winner, u)
	})

	t.Run("LookupFailure", func(t *testing.T) {
		f := newUserFixture()
		f.users.On("GetByUsernameOrEmail", ctx, mock.Anything, mock.Anything).Return(nil, errors.New("timeout")).Once()

		_, _, err := f.svc.EnsureAdmin(ctx, input)
		require.ErrorIs(t, err, ErrStoreUnavailable)
	})

	t.Run("InvalidEmail", func(t *testing.T) {
		f := newUserFixture()
		bad := input
		bad.Email = "nope"
		_, _, err := f.svc.EnsureAdmin(ctx, bad)
		require.ErrorIs(t, err, user.ErrInvalidEmail)
	})
}

func TestUserService_Delete(t *testing.T) {
	ctx := context.Background()
	actor := testActor()

	t.Run("SelfDeletionRefused", func(t *testing.T) {
		f := newUserFixture()
		err := f.svc.Delete(ctx, actor, actor.UserID)
		require.ErrorIs(t, err, ErrSelfDeletion)
		f.users.AssertNotCalled(t, "GetByID", mock.Anything, mock.Anything)
	})

	t.Run("DeletesWithOutboxEvent", func(t *testing.T) {
		f := newUserFixture()
		target := &user.User{ID: uuid.New(), Username: "bob"}
		f.users.On("GetByID", ctx, target.ID).Return(target, nil).Once()
		f.db.On("ExecuteTx", ctx).Return(nil).Once()
		f.users.On("Delete", ctx, target.ID).Return(nil).Once()
		f.outbox.On("Create", ctx, outboxEvent(activity.ActionUserDeleted)).Return(nil).Once()

		require.NoError(t, f.svc.Delete(ctx, actor, target.ID))
		f.outbox.AssertExpectations(t)
	})

	t.Run("UnknownUser", func(t *testing.T) {
		f := newUserFixture()
		id := uuid.New()
		f.users.On("GetByID", ctx, id).Return(nil, user.ErrUserNotFound{UserID: id}).Once()

		err := f.svc.Delete(ctx, actor, id)
		var notFound user.ErrUserNotFound
		require.ErrorAs(t, err, &notFound)
		assert.Equal(t, id, notFound.UserID)
	})
}

func TestUserService_Resolve(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2024, 3, 1, 8, 0, 0, 0, time.UTC)

	t.Run("TouchesLastLogin", func(t *testing.T) {
		f := newUserFixture()
		f.svc.now = func() time.Time { return now }
		u := &user.User{ID: uuid.New(), Role: access.RoleAdmin, IsActive: true}
		f.users.On("GetByID", ctx, u.ID).Return(u, nil).Once()
		f.users.On("TouchLastLogin", ctx, u.ID, now).Return(nil).Once()

		got, err := f.svc.Resolve(ctx, u.ID)
		require.NoError(t, err)
		require.NotNil(t, got.LastLogin)
		assert.Equal(t, now, *got.LastLogin)
	})

	t.Run("TouchFailureIsNotFatal", func(t *testing.T) {
		f := newUserFixture()
		f.svc.now = func() time.Time { return now }
		u := &user.User{ID: uuid.New()}
		f.users.On("GetByID", ctx, u.ID).Return(u, nil).Once()
		f.users.On("TouchLastLogin", ctx, u.ID, now).Return(errors.New("timeout")).Once()

		got, err := f.svc.Resolve(ctx, u.ID)
		require.NoError(t, err)
		assert.Nil(t, got.LastLogin)
	})

	t.Run("StoreFailure", func(t *testing.T) {
		f := newUserFixture()
		id := uuid.New()
		f.users.On("GetByID", ctx, id).Return(nil, errors.New("pool closed")).Once()

		_, err := f.svc.Resolve(ctx, id)
		require.ErrorIs(t, err, ErrStoreUnavailable)
	})
}

func TestUserService_List(t *testing.T) {
	ctx := context.Background()
	f := newUserFixture()
	users := []*user.User{{Username: "a"}, {Username: "b"}}
	f.users.On("List", ctx, 10, 0).Return(users, nil).Once()
	f.users.On("Count", ctx).Return(int64(2), nil).Once()

	got, total, err := f.svc.List(ctx, 1, 10)
	require.NoError(t, err)
	assert.Len(t, got, 2)
	assert.Equal(t, int64(2), total)
}
