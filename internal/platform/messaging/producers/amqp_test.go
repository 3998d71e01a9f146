package producers

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/bookkeeping-ledger/internal/domain/activity"
	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func newTestAMQPProducer(ch AMQPChannel, closer *MockCloser) *AMQPProducer {
	p := &AMQPProducer{
		logger:     testLogger(),
		channel:    ch,
		exchange:   "bookkeeping",
		routingKey: "activity.recorded",
		now:        fixedNow,
	}
	if closer != nil {
		p.closer = closer
	}
	return p
}

func TestAMQPProducer_Publish(t *testing.T) {
	event := activity.NewEvent(uuid.New(), activity.ActionUserCreated, "created user alice", "", "corr-9")

	t.Run("PersistentJSONMessage", func(t *testing.T) {
		ch := new(MockAMQPChannel)
		ch.On("PublishWithContext", "bookkeeping", "activity.recorded", mock.MatchedBy(func(msg amqp.Publishing) bool {
			var decoded activity.Event
			if err := json.Unmarshal(msg.Body, &decoded); err != nil {
				return false
			}
			return msg.DeliveryMode == amqp.Persistent &&
				msg.ContentType == "application/json" &&
				msg.MessageId == event.ID.String() &&
				msg.CorrelationId == "corr-9" &&
				msg.Headers[HeaderAction] == string(activity.ActionUserCreated) &&
				decoded.UserID == event.UserID
		})).Return(nil).Once()

		require.NoError(t, newTestAMQPProducer(ch, nil).Publish(context.Background(), event))
		ch.AssertExpectations(t)
	})

	t.Run("ChannelError", func(t *testing.T) {
		ch := new(MockAMQPChannel)
		boom := errors.New("channel closed")
		ch.On("PublishWithContext", "bookkeeping", "activity.recorded", mock.Anything).Return(boom).Once()

		err := newTestAMQPProducer(ch, nil).Publish(context.Background(), event)
		require.ErrorIs(t, err, boom)
	})
}

func TestAMQPProducer_PublishToDLQ(t *testing.T) {
	ch := new(MockAMQPChannel)
	ch.On("PublishWithContext", "bookkeeping", "activity.recorded.dlq", mock.MatchedBy(func(msg amqp.Publishing) bool {
		var payload map[string]string
		if err := json.Unmarshal(msg.Body, &payload); err != nil {
			return false
		}
		return payload["original_value"] == "not json" &&
			payload["dlq_reason"] == "decode failed" &&
			msg.Headers[HeaderDLQReason] == "decode failed"
	})).Return(nil).Once()

	require.NoError(t, newTestAMQPProducer(ch, nil).PublishToDLQ(context.Background(), "k", []byte("not json"), "decode failed"))
	ch.AssertExpectations(t)
}

func TestAMQPProducer_Close(t *testing.T) {
	t.Run("ClosesSession", func(t *testing.T) {
		closer := new(MockCloser)
		closer.On("Close").Return(nil).Once()
		require.NoError(t, newTestAMQPProducer(new(MockAMQPChannel), closer).Close())
		closer.AssertExpectations(t)
	})

	t.Run("NoSession", func(t *testing.T) {
		assert.NoError(t, newTestAMQPProducer(new(MockAMQPChannel), nil).Close())
	})
}
