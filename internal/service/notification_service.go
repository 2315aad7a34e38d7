package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/spec-kit/event-gate/internal/events"
)

// NotificationService reacts to domain events. Gate denials are raised at
// warn level so a log-driven display can alert staff alongside the buzzer.
type NotificationService struct {
	dispatcher events.Dispatcher
	logger     *zap.Logger
}

// NewNotificationService creates the service.
func NewNotificationService(dispatcher events.Dispatcher, logger *zap.Logger) *NotificationService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &NotificationService{dispatcher: dispatcher, logger: logger}
}

// RegisterHandlers subscribes to events.
func (n *NotificationService) RegisterHandlers() {
	if n.dispatcher == nil {
		return
	}
	n.dispatcher.Subscribe(events.EventUserRegistered, n.handleUserRegistered)
	n.dispatcher.Subscribe(events.EventEntryAdmitted, n.handleEntryAdmitted)
	n.dispatcher.Subscribe(events.EventEntryDenied, n.handleEntryDenied)
	n.dispatcher.Subscribe(events.EventEventRegistered, n.handleEventRegistered)
}

func (n *NotificationService) handleUserRegistered(_ context.Context, event events.Event) error {
	n.logger.Info("UserRegistered", zap.String("user_id", event.UserID), zap.String("event_id", event.ID))
	return nil
}

func (n *NotificationService) handleEntryAdmitted(_ context.Context, event events.Event) error {
	n.logger.Info("EntryAdmitted", zap.String("user_id", event.UserID), zap.Any("payload", event.Payload))
	return nil
}

func (n *NotificationService) handleEntryDenied(_ context.Context, event events.Event) error {
	n.logger.Warn("EntryDenied",
		zap.String("user_id", event.UserID),
		zap.String("operator_id", event.Actor.UserID),
		zap.Any("payload", event.Payload))
	return nil
}

func (n *NotificationService) handleEventRegistered(_ context.Context, event events.Event) error {
	n.logger.Info("EventRegistered", zap.String("user_id", event.UserID), zap.Any("payload", event.Payload))
	return nil
}
