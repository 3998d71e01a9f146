package service

import (
	"context"
	"errors"
	"testing"

	"github.com/bookkeeping-ledger/internal/domain/activity"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestActivityService_Record(t *testing.T) {
	ctx := context.Background()
	actor := testActor()

	t.Run("PublishesEventWithActorContext", func(t *testing.T) {
		pub := new(MockEventPublisher)
		pub.On("Publish", ctx, mock.MatchedBy(func(e *activity.Event) bool {
			return e.UserID == actor.UserID &&
				e.Action == activity.ActionDataExported &&
				e.IPAddress == actor.IPAddress &&
				e.CorrelationID == actor.CorrelationID &&
				e.Validate() == nil
		})).Return(nil).Once()

		NewActivityService(testLogger(), new(MockActivityRepository), pub).Record(ctx, actor, activity.ActionDataExported, "exported 3 transactions as csv")
		pub.AssertExpectations(t)
	})

	t.Run("PublishFailureIsSwallowed", func(t *testing.T) {
		pub := new(MockEventPublisher)
		pub.On("Publish", ctx, mock.Anything).Return(errors.New("broker down")).Once()

		assert.NotPanics(t, func() {
			NewActivityService(testLogger(), new(MockActivityRepository), pub).Record(ctx, actor, activity.ActionBackupCreated, "backup")
		})
		pub.AssertExpectations(t)
	})
}

func TestActivityService_List(t *testing.T) {
	ctx := context.Background()

	t.Run("Paginates", func(t *testing.T) {
		repo := new(MockActivityRepository)
		logs := []*activity.Log{{Action: activity.ActionUserCreated}}
		repo.On("List", ctx, 25, 25).Return(logs, nil).Once()
		repo.On("Count", ctx).Return(int64(26), nil).Once()

		got, total, err := NewActivityService(testLogger(), repo, new(MockEventPublisher)).List(ctx, 2, 25)
		require.NoError(t, err)
		assert.Equal(t, logs, got)
		assert.Equal(t, int64(26), total)
	})

	t.Run("PageBelowOneIsFirstPage", func(t *testing.T) {
		repo := new(MockActivityRepository)
		repo.On("List", ctx, 10, 0).Return([]*activity.Log{}, nil).Once()
		repo.On("Count", ctx).Return(int64(0), nil).Once()

		_, _, err := NewActivityService(testLogger(), repo, new(MockEventPublisher)).List(ctx, 0, 10)
		require.NoError(t, err)
		repo.AssertExpectations(t)
	})

	t.Run("StoreFailure", func(t *testing.T) {
		repo := new(MockActivityRepository)
		repo.On("List", ctx, 10, 0).Return(nil, errors.New("no primary")).Once()

		_, _, err := NewActivityService(testLogger(), repo, new(MockEventPublisher)).List(ctx, 1, 10)
		require.ErrorIs(t, err, ErrStoreUnavailable)
	})
}
