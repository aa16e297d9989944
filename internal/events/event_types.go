package events

import (
	"time"

	"github.com/google/uuid"

	"github.com/spec-kit/helpdesk/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventTicketCreated      EventType = "ticket_created"
	EventTicketTransitioned EventType = "ticket_transitioned"
	EventTicketAssigned     EventType = "ticket_assigned"
)

// Actor encapsulates actor metadata for an event.
type Actor struct {
	PrincipalID string `json:"principal_id"`
	Name        string `json:"name"`
}

// ActorFrom copies the caller identity out of an AuthContext.
func ActorFrom(ac *domain.AuthContext) Actor {
	if ac == nil || ac.Principal == nil {
		return Actor{}
	}
	return Actor{PrincipalID: ac.Principal.ID, Name: ac.Principal.Name}
}

// Event represents a domain event emitted by services.
type Event struct {
	ID        string      `json:"id"`
	Type      EventType   `json:"type"`
	TicketID  int64       `json:"ticket_id"`
	Reference string      `json:"reference"`
	StationID int64       `json:"station_id"`
	Actor     Actor       `json:"actor"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   interface{} `json:"payload"`
}

// NewTicketEvent stamps a fresh event for ticket.
func NewTicketEvent(eventType EventType, ticket *domain.Ticket, actor Actor, at time.Time, payload interface{}) Event {
	return Event{
		ID:        uuid.NewString(),
		Type:      eventType,
		TicketID:  ticket.ID,
		Reference: ticket.TicketID,
		StationID: ticket.StationID,
		Actor:     actor,
		Timestamp: at,
		Payload:   payload,
	}
}

// TicketCreatedPayload payload.
type TicketCreatedPayload struct {
	IssueType    string  `json:"issue_type"`
	AssigneeID   *string `json:"assignee_id,omitempty"`
	AssigneeName string  `json:"assignee_name,omitempty"`
}

// TicketTransitionedPayload payload.
type TicketTransitionedPayload struct {
	OldStatus    domain.TicketStatus `json:"old_status"`
	NewStatus    domain.TicketStatus `json:"new_status"`
	AssigneeID   *string             `json:"assignee_id,omitempty"`
	AssigneeName string              `json:"assignee_name,omitempty"`
}

// TicketAssignedPayload payload.
type TicketAssignedPayload struct {
	PreviousAssigneeID *string `json:"previous_assignee_id,omitempty"`
	AssigneeID         *string `json:"assignee_id,omitempty"`
	AssigneeName       string  `json:"assignee_name,omitempty"`
}
