package events

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/streadway/amqp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestDispatcher_HandlerErrorsDoNotStopOthers(t *testing.T) {
	d := NewInMemoryDispatcher(nil)
	var calls []string
	d.Subscribe(EventEntryAdmitted, func(context.Context, Event) error {
		calls = append(calls, "first")
		return errors.New("boom")
	})
	d.Subscribe(EventEntryAdmitted, func(context.Context, Event) error {
		calls = append(calls, "second")
		return nil
	})
	d.Subscribe(EventEntryDenied, func(context.Context, Event) error {
		calls = append(calls, "other")
		return nil
	})

	require.NoError(t, d.Publish(context.Background(), Event{Type: EventEntryAdmitted}))
	assert.Equal(t, []string{"first", "second"}, calls)
}

type mockChannel struct {
	mock.Mock
}

func (m *mockChannel) Publish(exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error {
	args := m.Called(exchange, key, msg)
	return args.Error(0)
}

func (m *mockChannel) Close() error {
	return m.Called().Error(0)
}

func TestAMQPForwarder_RoutesByType(t *testing.T) {
	ch := new(mockChannel)
	ch.On("Publish", "gate", "entry_denied", mock.MatchedBy(func(msg amqp.Publishing) bool {
		var decoded Event
		if err := json.Unmarshal(msg.Body, &decoded); err != nil {
			return false
		}
		return msg.MessageId == "evt-1" && decoded.UserID == "u1" && msg.ContentType == "application/json"
	})).Return(nil).Once()

	d := NewInMemoryDispatcher(nil)
	f := newAMQPForwarder(ch, "gate", nil)
	f.Register(d)

	require.NoError(t, d.Publish(context.Background(), Event{
		ID:        "evt-1",
		Type:      EventEntryDenied,
		UserID:    "u1",
		Timestamp: time.Now(),
	}))
	ch.AssertExpectations(t)
}

func TestAMQPForwarder_PublishError(t *testing.T) {
	ch := new(mockChannel)
	ch.On("Publish", "gate", "user_registered", mock.Anything).Return(errors.New("closed"))

	f := newAMQPForwarder(ch, "gate", nil)
	err := f.Forward(context.Background(), Event{ID: "e", Type: EventUserRegistered})
	assert.ErrorContains(t, err, "closed")
}
