package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/spec-kit/helpdesk/internal/auth"
	"github.com/spec-kit/helpdesk/internal/domain"
	"github.com/spec-kit/helpdesk/internal/events"
	"github.com/spec-kit/helpdesk/internal/repository"
	apperrors "github.com/spec-kit/helpdesk/pkg/util"
)

// TicketService coordinates ticket workflows.
type TicketService struct {
	tickets     repository.TicketRepository
	attachments repository.AttachmentRepository
	stations    repository.StationRepository
	principals  repository.PrincipalRepository
	dispatcher  events.Dispatcher
	logger      *zap.Logger
	now         func() time.Time
}

// TicketDependencies bundles repositories for ticket service.
type TicketDependencies struct {
	TicketRepo     repository.TicketRepository
	AttachmentRepo repository.AttachmentRepository
	StationRepo    repository.StationRepository
	PrincipalRepo  repository.PrincipalRepository
	Dispatcher     events.Dispatcher
	Logger         *zap.Logger
	Now            func() time.Time
}

// TicketCreateInput describes ticket creation payload.
type TicketCreateInput struct {
	TicketID    string
	StationID   int64
	IssueType   string
	Description string
	AssignedTo  *string
}

// TicketUpdateInput carries detail edits. Nil fields are left unchanged.
type TicketUpdateInput struct {
	StationID   *int64
	IssueType   *string
	Description *string
}

// TransitionInput requests a status change. When ChangeAssignee is set the
// assignee is replaced by AssigneeID (nil clears it) in the same save.
type TransitionInput struct {
	Status         domain.TicketStatus
	ChangeAssignee bool
	AssigneeID     *string
}

// TicketListFilter describes listing filters.
type TicketListFilter struct {
	StationID      *int64
	Statuses       []domain.TicketStatus
	AssignedTo     *string
	UnassignedOnly bool
	Search         string
	Limit          int
	Offset         int
}

// AttachmentInput defines attachment metadata.
type AttachmentInput struct {
	StorageKey string
	FileName   string
	MimeType   string
	SizeBytes  int64
}

// NewTicketService constructs the service.
func NewTicketService(deps TicketDependencies) *TicketService {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	now := deps.Now
	if now == nil {
		now = time.Now
	}
	return &TicketService{
		tickets:     deps.TicketRepo,
		attachments: deps.AttachmentRepo,
		stations:    deps.StationRepo,
		principals:  deps.PrincipalRepo,
		dispatcher:  deps.Dispatcher,
		logger:      logger,
		now:         now,
	}
}

// Create opens a ticket. Supplying an assignee additionally needs listAssign.
func (s *TicketService) Create(ctx context.Context, actor *domain.AuthContext, input TicketCreateInput) (*domain.Ticket, error) {
	if err := auth.Require(actor, domain.ResourceTickets, domain.ActionAdd); err != nil {
		return nil, err
	}
	if input.AssignedTo != nil {
		if err := auth.Require(actor, domain.ResourceTickets, domain.ActionListAssign); err != nil {
			return nil, err
		}
	}

	station, err := s.stations.GetByID(ctx, input.StationID)
	if err != nil {
		return nil, notFoundOr(err, "station", map[string]any{"stationId": input.StationID})
	}

	ticket := domain.NewTicket(
		strings.TrimSpace(input.TicketID),
		station.ID,
		strings.TrimSpace(input.IssueType),
		strings.TrimSpace(input.Description),
		s.now(),
	)
	ticket.StationName = station.Name

	if input.AssignedTo != nil {
		assignee, err := s.resolveAssignee(ctx, *input.AssignedTo)
		if err != nil {
			return nil, err
		}
		ticket.AssignedTo = &assignee.ID
		ticket.AssigneeName = assignee.Name
	}

	if err := s.tickets.Create(ctx, ticket); err != nil {
		return nil, uniqueConflict(err, apperrors.CodeDuplicateTicket, "ticket id already exists",
			map[string]any{"ticketId": ticket.TicketID})
	}

	s.publishEvent(ctx, events.NewTicketEvent(events.EventTicketCreated, ticket, events.ActorFrom(actor), s.now(),
		events.TicketCreatedPayload{
			IssueType:    ticket.IssueType,
			AssigneeID:   ticket.AssignedTo,
			AssigneeName: ticket.AssigneeName,
		}))
	return ticket, nil
}

// Get returns a single ticket.
func (s *TicketService) Get(ctx context.Context, actor *domain.AuthContext, id int64) (*domain.Ticket, error) {
	if err := auth.Require(actor, domain.ResourceTickets, domain.ActionList); err != nil {
		return nil, err
	}
	return s.load(ctx, id)
}

// List returns tickets matching filter.
func (s *TicketService) List(ctx context.Context, actor *domain.AuthContext, filter TicketListFilter) ([]domain.Ticket, error) {
	if err := auth.Require(actor, domain.ResourceTickets, domain.ActionList); err != nil {
		return nil, err
	}
	for _, status := range filter.Statuses {
		if !status.Valid() {
			return nil, apperrors.NewValidationError("unknown ticket status", map[string]any{"status": status})
		}
	}
	return s.tickets.List(ctx, repository.TicketFilter{
		StationID:      filter.StationID,
		Statuses:       filter.Statuses,
		AssignedTo:     filter.AssignedTo,
		UnassignedOnly: filter.UnassignedOnly,
		Search:         filter.Search,
		Limit:          filter.Limit,
		Offset:         filter.Offset,
	})
}

// Update edits ticket details. Closed tickets are immutable.
func (s *TicketService) Update(ctx context.Context, actor *domain.AuthContext, id int64, input TicketUpdateInput) (*domain.Ticket, error) {
	if err := auth.Require(actor, domain.ResourceTickets, domain.ActionEdit); err != nil {
		return nil, err
	}
	ticket, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if ticket.IsClosed() {
		return nil, lifecycleError(domain.ErrTicketClosed, ticket, ticket.Status)
	}

	if input.StationID != nil && *input.StationID != ticket.StationID {
		station, err := s.stations.GetByID(ctx, *input.StationID)
		if err != nil {
			return nil, notFoundOr(err, "station", map[string]any{"stationId": *input.StationID})
		}
		ticket.StationID = station.ID
		ticket.StationName = station.Name
	}
	if input.IssueType != nil {
		ticket.IssueType = strings.TrimSpace(*input.IssueType)
	}
	if input.Description != nil {
		ticket.Description = strings.TrimSpace(*input.Description)
	}

	if err := s.save(ctx, ticket); err != nil {
		return nil, err
	}
	return ticket, nil
}

// Transition moves a ticket to a new status, optionally reassigning it in the
// same save. The event is published after the save; its failure never undoes it.
func (s *TicketService) Transition(ctx context.Context, actor *domain.AuthContext, id int64, input TransitionInput) (*domain.Ticket, error) {
	required := []domain.Action{domain.ActionEdit}
	if input.ChangeAssignee {
		required = append(required, domain.ActionListAssign)
	}
	if err := auth.RequireAll(actor, domain.ResourceTickets, required...); err != nil {
		return nil, err
	}

	ticket, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if ticket.IsClosed() {
		return nil, lifecycleError(domain.ErrTicketClosed, ticket, input.Status)
	}

	if input.ChangeAssignee {
		if err := s.applyAssignee(ctx, ticket, input.AssigneeID); err != nil {
			return nil, err
		}
	}

	prev, err := ticket.Transition(input.Status, s.now())
	if err != nil {
		return nil, lifecycleError(err, ticket, input.Status)
	}

	if err := s.save(ctx, ticket); err != nil {
		return nil, err
	}

	s.publishEvent(ctx, events.NewTicketEvent(events.EventTicketTransitioned, ticket, events.ActorFrom(actor), s.now(),
		events.TicketTransitionedPayload{
			OldStatus:    prev,
			NewStatus:    ticket.Status,
			AssigneeID:   ticket.AssignedTo,
			AssigneeName: ticket.AssigneeName,
		}))
	return ticket, nil
}

// Assign sets or clears the assignee without touching status.
func (s *TicketService) Assign(ctx context.Context, actor *domain.AuthContext, id int64, assigneeID *string) (*domain.Ticket, error) {
	if err := auth.Require(actor, domain.ResourceTickets, domain.ActionListAssign); err != nil {
		return nil, err
	}
	ticket, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if ticket.IsClosed() {
		return nil, lifecycleError(domain.ErrTicketClosed, ticket, ticket.Status)
	}

	previous := ticket.AssignedTo
	if err := s.applyAssignee(ctx, ticket, assigneeID); err != nil {
		return nil, err
	}
	if err := s.save(ctx, ticket); err != nil {
		return nil, err
	}

	s.publishEvent(ctx, events.NewTicketEvent(events.EventTicketAssigned, ticket, events.ActorFrom(actor), s.now(),
		events.TicketAssignedPayload{
			PreviousAssigneeID: previous,
			AssigneeID:         ticket.AssignedTo,
			AssigneeName:       ticket.AssigneeName,
		}))
	return ticket, nil
}

// save persists ticket. A row closed by a concurrent request since ticket was
// loaded surfaces as TICKET_CLOSED.
func (s *TicketService) save(ctx context.Context, ticket *domain.Ticket) error {
	if err := s.tickets.Update(ctx, ticket); err != nil {
		if errors.Is(err, domain.ErrTicketClosed) {
			return lifecycleError(err, ticket, ticket.Status)
		}
		return notFoundOr(err, "ticket", map[string]any{"id": ticket.ID})
	}
	return nil
}

// Delete hard-deletes a ticket and its attachment rows.
func (s *TicketService) Delete(ctx context.Context, actor *domain.AuthContext, id int64) error {
	if err := auth.Require(actor, domain.ResourceTickets, domain.ActionDelete); err != nil {
		return err
	}
	if err := s.tickets.Delete(ctx, id); err != nil {
		return notFoundOr(err, "ticket", map[string]any{"id": id})
	}
	return nil
}

// AttachImage registers an uploaded image. Closed tickets still accept attachments.
func (s *TicketService) AttachImage(ctx context.Context, actor *domain.AuthContext, id int64, input AttachmentInput) (*domain.Attachment, error) {
	if err := auth.Require(actor, domain.ResourceTickets, domain.ActionEdit); err != nil {
		return nil, err
	}
	if !strings.HasPrefix(strings.ToLower(input.MimeType), "image/") {
		return nil, apperrors.NewValidationError("only images can be attached",
			map[string]any{"fields": map[string]any{"mimeType": "image"}})
	}
	ticket, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}

	attachment := &domain.Attachment{
		TicketID:   &ticket.ID,
		StorageKey: input.StorageKey,
		FileName:   input.FileName,
		MimeType:   input.MimeType,
		SizeBytes:  input.SizeBytes,
	}
	if err := s.attachments.Create(ctx, attachment); err != nil {
		return nil, err
	}
	return attachment, nil
}

// Attachments lists the ticket's attachment metadata.
func (s *TicketService) Attachments(ctx context.Context, actor *domain.AuthContext, id int64) ([]domain.Attachment, error) {
	if err := auth.Require(actor, domain.ResourceTickets, domain.ActionList); err != nil {
		return nil, err
	}
	if _, err := s.load(ctx, id); err != nil {
		return nil, err
	}
	return s.attachments.ListByTicket(ctx, id)
}

func (s *TicketService) load(ctx context.Context, id int64) (*domain.Ticket, error) {
	ticket, err := s.tickets.GetByID(ctx, id)
	if err != nil {
		return nil, notFoundOr(err, "ticket", map[string]any{"id": id})
	}
	return ticket, nil
}

func (s *TicketService) applyAssignee(ctx context.Context, ticket *domain.Ticket, assigneeID *string) error {
	if assigneeID == nil || strings.TrimSpace(*assigneeID) == "" {
		return lifecycleError(ticket.Assign(nil), ticket, ticket.Status)
	}
	assignee, err := s.resolveAssignee(ctx, *assigneeID)
	if err != nil {
		return err
	}
	if err := ticket.Assign(&assignee.ID); err != nil {
		return lifecycleError(err, ticket, ticket.Status)
	}
	ticket.AssigneeName = assignee.Name
	return nil
}

func (s *TicketService) resolveAssignee(ctx context.Context, id string) (*domain.Principal, error) {
	id = strings.TrimSpace(id)
	if _, err := uuid.Parse(id); err != nil {
		return nil, apperrors.NewNotFound("assignee", map[string]any{"assigneeId": id})
	}
	assignee, err := s.principals.GetByID(ctx, id)
	if err != nil {
		return nil, notFoundOr(err, "assignee", map[string]any{"assigneeId": id})
	}
	if !assignee.Active {
		return nil, apperrors.NewConflict("assignee is inactive", map[string]any{"assigneeId": id})
	}
	return assignee, nil
}

func (s *TicketService) publishEvent(ctx context.Context, event events.Event) {
	if s.dispatcher == nil {
		return
	}
	if err := s.dispatcher.Publish(ctx, event); err != nil && !errors.Is(err, context.Canceled) {
		s.logger.Warn("ticket event not fully handled",
			zap.String("event_type", string(event.Type)),
			zap.String("ticket", event.Reference),
			zap.Error(err),
		)
	}
}
