package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/spec-kit/event-gate/internal/domain"
	"github.com/spec-kit/event-gate/internal/events"
)

// publish is best-effort: dispatch failures are logged and dropped.
func publish(ctx context.Context, dispatcher events.Dispatcher, logger *zap.Logger, eventType events.EventType, userID string, actor *domain.Identity, payload interface{}) {
	if dispatcher == nil {
		return
	}
	evt := events.Event{
		ID:        uuid.NewString(),
		Type:      eventType,
		UserID:    userID,
		Timestamp: time.Now().UTC(),
		Payload:   payload,
	}
	if actor != nil && actor.User != nil {
		evt.Actor = events.Actor{Type: actor.Subject(), UserID: actor.User.ID}
	}
	if err := dispatcher.Publish(ctx, evt); err != nil {
		logger.Warn("publish domain event", zap.String("event_type", string(eventType)), zap.Error(err))
	}
}
