package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/spec-kit/helpdesk/internal/alert"
	"github.com/spec-kit/helpdesk/internal/domain"
	"github.com/spec-kit/helpdesk/internal/events"
	"github.com/spec-kit/helpdesk/internal/repository"
)

// NotificationRecorder counts fanned-out events.
type NotificationRecorder interface {
	RecordNotification(event string)
}

// NotificationService turns ticket events into alerts: one dispatch per
// recipient, each in its own goroutine, off the request path.
type NotificationService struct {
	dispatcher events.Dispatcher
	alerts     AlertSender
	stations   repository.StationRepository
	principals repository.PrincipalRepository
	recorder   NotificationRecorder
	logger     *zap.Logger
	timeout    time.Duration
	wg         sync.WaitGroup
}

// NotificationDependencies bundles collaborators for the notification service.
type NotificationDependencies struct {
	Dispatcher    events.Dispatcher
	Alerts        AlertSender
	StationRepo   repository.StationRepository
	PrincipalRepo repository.PrincipalRepository
	Recorder      NotificationRecorder
	Logger        *zap.Logger
	Timeout       time.Duration
}

// NewNotificationService creates the service.
func NewNotificationService(deps NotificationDependencies) *NotificationService {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	timeout := deps.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &NotificationService{
		dispatcher: deps.Dispatcher,
		alerts:     deps.Alerts,
		stations:   deps.StationRepo,
		principals: deps.PrincipalRepo,
		recorder:   deps.Recorder,
		logger:     logger,
		timeout:    timeout,
	}
}

// RegisterHandlers subscribes to events.
func (n *NotificationService) RegisterHandlers() {
	if n.dispatcher == nil {
		return
	}
	n.dispatcher.Subscribe(events.EventTicketCreated, n.handle)
	n.dispatcher.Subscribe(events.EventTicketTransitioned, n.handle)
	n.dispatcher.Subscribe(events.EventTicketAssigned, n.handle)
}

// Wait blocks until every in-flight fan-out finished.
func (n *NotificationService) Wait() {
	n.wg.Wait()
}

func (n *NotificationService) handle(_ context.Context, event events.Event) error {
	n.wg.Add(1)
	go func() {
		defer n.wg.Done()
		ctx, cancel := context.WithTimeout(context.Background(), n.timeout)
		defer cancel()
		n.fanOut(ctx, event)
	}()
	return nil
}

func (n *NotificationService) fanOut(ctx context.Context, event events.Event) {
	if n.recorder != nil {
		n.recorder.RecordNotification(string(event.Type))
	}
	requests := n.recipients(ctx, event)
	if len(requests) == 0 {
		n.logger.Debug("no recipients for event", zap.String("event_type", string(event.Type)), zap.String("ticket", event.Reference))
		return
	}

	var g errgroup.Group
	for _, req := range requests {
		req := req
		g.Go(func() error {
			res, err := n.alerts.Dispatch(ctx, req)
			fields := []zap.Field{
				zap.String("event_id", event.ID),
				zap.String("event_type", string(event.Type)),
				zap.String("ticket", event.Reference),
				zap.String("platform", string(req.Platform)),
			}
			if err != nil {
				n.logger.Warn("ticket alert failed", append(fields, zap.Error(err))...)
				return nil
			}
			n.logger.Info("ticket alert delivered", append(fields, zap.String("dispatch_id", res.ID))...)
			return nil
		})
	}
	_ = g.Wait()
}

// recipients builds one request per destination: the station chat when it has
// Telegram routing, and the assignee's mailbox when the ticket is assigned.
func (n *NotificationService) recipients(ctx context.Context, event events.Event) []domain.AlertRequest {
	message, assigneeID := describe(event)
	if message == "" {
		return nil
	}

	var out []domain.AlertRequest
	station, err := n.stations.GetByID(ctx, event.StationID)
	if err != nil {
		n.logger.Warn("station lookup for alert failed", zap.Int64("station_id", event.StationID), zap.Error(err))
	} else if station.HasTelegram() {
		req := domain.AlertRequest{
			Platform: domain.PlatformTelegram,
			BotName:  station.TelegramBot,
			ChatID:   station.TelegramChatID,
			ThreadID: station.TelegramThreadID,
			Message:  message,
			Username: actorName(event.Actor),
		}
		if alert.IsAssignment(message) {
			req.AssignerName = actorName(event.Actor)
		}
		out = append(out, req)
	}

	if assigneeID != nil {
		assignee, err := n.principals.GetByID(ctx, *assigneeID)
		if err != nil {
			n.logger.Warn("assignee lookup for alert failed", zap.String("principal_id", *assigneeID), zap.Error(err))
		} else if assignee.Active && assignee.Email != "" {
			out = append(out, domain.AlertRequest{
				Platform: domain.PlatformGmail,
				Email:    assignee.Email,
				Subject:  fmt.Sprintf("Ticket %s", event.Reference),
				Message:  message,
				Username: actorName(event.Actor),
			})
		}
	}
	return out
}

func describe(event events.Event) (string, *string) {
	switch p := event.Payload.(type) {
	case events.TicketCreatedPayload:
		msg := fmt.Sprintf("New ticket %s: %s", event.Reference, p.IssueType)
		if p.AssigneeName != "" {
			msg += fmt.Sprintf("\nAssigned to %s", p.AssigneeName)
		}
		return msg, p.AssigneeID
	case events.TicketTransitionedPayload:
		msg := fmt.Sprintf("Ticket %s moved from %s to %s", event.Reference, p.OldStatus, p.NewStatus)
		if p.AssigneeName != "" {
			msg += fmt.Sprintf("\nAssigned to %s", p.AssigneeName)
		}
		return msg, p.AssigneeID
	case events.TicketAssignedPayload:
		if p.AssigneeID == nil {
			return fmt.Sprintf("Ticket %s is now unassigned", event.Reference), nil
		}
		return fmt.Sprintf("Ticket %s assigned to %s", event.Reference, p.AssigneeName), p.AssigneeID
	default:
		return "", nil
	}
}

func actorName(actor events.Actor) string {
	if actor.Name != "" {
		return actor.Name
	}
	return "system"
}
