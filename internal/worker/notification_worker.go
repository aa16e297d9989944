package worker

import (
	"context"

	"go.uber.org/zap"

	"github.com/spec-kit/helpdesk/internal/service"
)

// StartNotificationWorker registers notification handlers.
func StartNotificationWorker(notificationService *service.NotificationService) {
	if notificationService == nil {
		return
	}
	notificationService.RegisterHandlers()
}

// DrainNotifications waits for in-flight alert fan-outs until ctx ends.
// It reports whether every fan-out finished.
func DrainNotifications(ctx context.Context, notificationService *service.NotificationService, logger *zap.Logger) bool {
	if notificationService == nil {
		return true
	}
	done := make(chan struct{})
	go func() {
		notificationService.Wait()
		close(done)
	}()

	select {
	case <-done:
		return true
	case <-ctx.Done():
		logger.Warn("notification drain timed out", zap.Error(ctx.Err()))
		return false
	}
}
