package handlers

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/helpdesk/internal/api/dto"
	"github.com/spec-kit/helpdesk/internal/domain"
	"github.com/spec-kit/helpdesk/internal/service"
)

// TicketWorkflow is the ticket use-case surface behind /tickets.
type TicketWorkflow interface {
	Create(ctx context.Context, actor *domain.AuthContext, input service.TicketCreateInput) (*domain.Ticket, error)
	Get(ctx context.Context, actor *domain.AuthContext, id int64) (*domain.Ticket, error)
	List(ctx context.Context, actor *domain.AuthContext, filter service.TicketListFilter) ([]domain.Ticket, error)
	Update(ctx context.Context, actor *domain.AuthContext, id int64, input service.TicketUpdateInput) (*domain.Ticket, error)
	Transition(ctx context.Context, actor *domain.AuthContext, id int64, input service.TransitionInput) (*domain.Ticket, error)
	Assign(ctx context.Context, actor *domain.AuthContext, id int64, assigneeID *string) (*domain.Ticket, error)
	Delete(ctx context.Context, actor *domain.AuthContext, id int64) error
	AttachImage(ctx context.Context, actor *domain.AuthContext, id int64, input service.AttachmentInput) (*domain.Attachment, error)
	Attachments(ctx context.Context, actor *domain.AuthContext, id int64) ([]domain.Attachment, error)
}

// TicketsHandler serves /tickets.
type TicketsHandler struct {
	tickets TicketWorkflow
	now     func() time.Time
}

// NewTicketsHandler constructs handler.
func NewTicketsHandler(tickets TicketWorkflow) *TicketsHandler {
	return &TicketsHandler{tickets: tickets, now: time.Now}
}

func (h *TicketsHandler) respond(c *fiber.Ctx, status int, ticket *domain.Ticket) error {
	return c.Status(status).JSON(fiber.Map{"data": dto.NewTicketResponse(ticket, h.now())})
}

// Create handles POST /tickets.
func (h *TicketsHandler) Create(c *fiber.Ctx) error {
	var req dto.CreateTicketRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	ticket, err := h.tickets.Create(c.UserContext(), caller(c), service.TicketCreateInput{
		TicketID:    req.TicketID,
		StationID:   req.StationID,
		IssueType:   req.IssueType,
		Description: req.Description,
		AssignedTo:  req.AssignedTo,
	})
	if err != nil {
		return err
	}
	return h.respond(c, http.StatusCreated, ticket)
}

// List handles GET /tickets?station=&status=OPEN,ON_HOLD&assignee=&unassigned=&q=.
func (h *TicketsHandler) List(c *fiber.Ctx) error {
	query := parseTicketQuery(c)
	limit, offset := page(c)
	tickets, err := h.tickets.List(c.UserContext(), caller(c), service.TicketListFilter{
		StationID:      query.StationID,
		Statuses:       query.Statuses,
		AssignedTo:     query.AssignedTo,
		UnassignedOnly: query.UnassignedOnly,
		Search:         query.Search,
		Limit:          limit,
		Offset:         offset,
	})
	if err != nil {
		return err
	}
	now := h.now()
	items := make([]dto.TicketResponse, 0, len(tickets))
	for i := range tickets {
		items = append(items, dto.NewTicketResponse(&tickets[i], now))
	}
	return c.JSON(fiber.Map{"data": items})
}

// Get handles GET /tickets/:id.
func (h *TicketsHandler) Get(c *fiber.Ctx) error {
	id, err := int64Param(c, "id")
	if err != nil {
		return err
	}
	ticket, err := h.tickets.Get(c.UserContext(), caller(c), id)
	if err != nil {
		return err
	}
	return h.respond(c, http.StatusOK, ticket)
}

// Update handles PATCH /tickets/:id.
func (h *TicketsHandler) Update(c *fiber.Ctx) error {
	id, err := int64Param(c, "id")
	if err != nil {
		return err
	}
	var req dto.UpdateTicketRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	ticket, err := h.tickets.Update(c.UserContext(), caller(c), id, service.TicketUpdateInput{
		StationID:   req.StationID,
		IssueType:   req.IssueType,
		Description: req.Description,
	})
	if err != nil {
		return err
	}
	return h.respond(c, http.StatusOK, ticket)
}

// Transition handles POST /tickets/:id/transition.
func (h *TicketsHandler) Transition(c *fiber.Ctx) error {
	id, err := int64Param(c, "id")
	if err != nil {
		return err
	}
	var req dto.TransitionRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	ticket, err := h.tickets.Transition(c.UserContext(), caller(c), id, service.TransitionInput{
		Status:         req.Status,
		ChangeAssignee: req.Reassign,
		AssigneeID:     req.AssignedTo,
	})
	if err != nil {
		return err
	}
	return h.respond(c, http.StatusOK, ticket)
}

// Assign handles POST /tickets/:id/assign.
func (h *TicketsHandler) Assign(c *fiber.Ctx) error {
	id, err := int64Param(c, "id")
	if err != nil {
		return err
	}
	var req dto.AssignRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	ticket, err := h.tickets.Assign(c.UserContext(), caller(c), id, req.AssignedTo)
	if err != nil {
		return err
	}
	return h.respond(c, http.StatusOK, ticket)
}

// Delete handles DELETE /tickets/:id.
func (h *TicketsHandler) Delete(c *fiber.Ctx) error {
	id, err := int64Param(c, "id")
	if err != nil {
		return err
	}
	if err := h.tickets.Delete(c.UserContext(), caller(c), id); err != nil {
		return err
	}
	return c.SendStatus(http.StatusNoContent)
}

// AttachImage handles POST /tickets/:id/attachments.
func (h *TicketsHandler) AttachImage(c *fiber.Ctx) error {
	id, err := int64Param(c, "id")
	if err != nil {
		return err
	}
	var req dto.AttachmentRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	att, err := h.tickets.AttachImage(c.UserContext(), caller(c), id, attachmentInput(req))
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": dto.NewAttachmentResponse(att)})
}

// Attachments handles GET /tickets/:id/attachments.
func (h *TicketsHandler) Attachments(c *fiber.Ctx) error {
	id, err := int64Param(c, "id")
	if err != nil {
		return err
	}
	list, err := h.tickets.Attachments(c.UserContext(), caller(c), id)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": attachmentResponses(list)})
}

func parseTicketQuery(c *fiber.Ctx) dto.TicketListQuery {
	query := dto.TicketListQuery{Search: c.Query("q")}
	if raw := c.Query("station"); raw != "" {
		if id, err := strconv.ParseInt(raw, 10, 64); err == nil {
			query.StationID = &id
		}
	}
	for _, part := range splitCSV(c.Query("status")) {
		query.Statuses = append(query.Statuses, domain.TicketStatus(part))
	}
	if raw := c.Query("assignee"); raw != "" {
		query.AssignedTo = &raw
	}
	query.UnassignedOnly = c.QueryBool("unassigned", false)
	return query
}
