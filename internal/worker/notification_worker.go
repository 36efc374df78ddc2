package worker

import (
	"go.uber.org/zap"

	"github.com/spec-kit/guard-duty-service/internal/service"
)

// StartNotificationWorker wires the notification service into the event stream.
func StartNotificationWorker(notifications *service.NotificationService, logger *zap.Logger) {
	notifications.RegisterHandlers()
	logger.Info("notification worker started")
}
