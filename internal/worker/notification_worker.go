package worker

import (
	"github.com/spec-kit/event-gate/internal/events"
	"github.com/spec-kit/event-gate/internal/service"
)

// StartNotificationWorker registers notification handlers and, when a
// broker forwarder is configured, the AMQP fan-out.
func StartNotificationWorker(dispatcher events.Dispatcher, notificationService *service.NotificationService, forwarder *events.AMQPForwarder) {
	if notificationService != nil {
		notificationService.RegisterHandlers()
	}
	if forwarder != nil && dispatcher != nil {
		forwarder.Register(dispatcher)
	}
}
