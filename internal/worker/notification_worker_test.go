package worker

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"

	"github.com/spec-kit/helpdesk/internal/events"
	"github.com/spec-kit/helpdesk/internal/service"
)

func TestDrainNotifications(t *testing.T) {
	assert.True(t, DrainNotifications(context.Background(), nil, zap.NewNop()))

	svc := service.NewNotificationService(service.NotificationDependencies{
		Dispatcher: events.NewInMemoryDispatcher(zap.NewNop()),
	})
	StartNotificationWorker(svc)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	assert.True(t, DrainNotifications(ctx, svc, zap.NewNop()))
}
