package domain

import (
	"errors"
	"time"
)

// TicketStatus enumerates lifecycle states for tickets.
type TicketStatus string

const (
	TicketStatusOpen          TicketStatus = "OPEN"
	TicketStatusOnHold        TicketStatus = "ON_HOLD"
	TicketStatusInProgress    TicketStatus = "IN_PROGRESS"
	TicketStatusPendingVendor TicketStatus = "PENDING_VENDOR"
	TicketStatusClosed        TicketStatus = "CLOSED"
)

var (
	ErrTicketClosed     = errors.New("ticket is closed")
	ErrUnknownStatus    = errors.New("unknown ticket status")
	ErrReopenNotAllowed = errors.New("tickets cannot return to open")
)

// Valid reports whether s is one of the known statuses.
func (s TicketStatus) Valid() bool {
	switch s {
	case TicketStatusOpen, TicketStatusOnHold, TicketStatusInProgress, TicketStatusPendingVendor, TicketStatusClosed:
		return true
	}
	return false
}

// Ticket is the aggregate for help-desk issues. Each status owns one timestamp
// slot; the slot of the current status is always the most recently stamped.
type Ticket struct {
	ID            int64
	TicketID      string
	StationID     int64
	StationName   string
	IssueType     string
	Description   string
	AssignedTo    *string
	AssigneeName  string
	Status        TicketStatus
	Opened        *time.Time
	OnHold        *time.Time
	InProgress    *time.Time
	PendingVendor *time.Time
	Closed        *time.Time
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// NewTicket builds an open ticket stamped at now.
func NewTicket(ticketID string, stationID int64, issueType, description string, now time.Time) *Ticket {
	opened := now
	return &Ticket{
		TicketID:    ticketID,
		StationID:   stationID,
		IssueType:   issueType,
		Description: description,
		Status:      TicketStatusOpen,
		Opened:      &opened,
	}
}

// IsClosed reports whether the ticket reached its terminal state.
func (t *Ticket) IsClosed() bool {
	return t.Status == TicketStatusClosed
}

// Transition moves the ticket to next and stamps next's slot with now. Other
// slots are left untouched. Re-affirming the current status re-stamps its slot.
// The previous status is returned.
func (t *Ticket) Transition(next TicketStatus, now time.Time) (TicketStatus, error) {
	prev := t.Status
	if t.IsClosed() {
		return prev, ErrTicketClosed
	}
	if !next.Valid() {
		return prev, ErrUnknownStatus
	}
	if next == TicketStatusOpen && prev != TicketStatusOpen {
		return prev, ErrReopenNotAllowed
	}
	stamp := now
	*t.slot(next) = &stamp
	t.Status = next
	return prev, nil
}

// Assign sets or clears the assignee. Closed tickets cannot be reassigned.
func (t *Ticket) Assign(principalID *string) error {
	if t.IsClosed() {
		return ErrTicketClosed
	}
	t.AssignedTo = principalID
	if principalID == nil {
		t.AssigneeName = ""
	}
	return nil
}

// StampOf returns the timestamp recorded for status, or nil.
func (t *Ticket) StampOf(status TicketStatus) *time.Time {
	if !status.Valid() {
		return nil
	}
	return *t.slot(status)
}

// Elapsed is the ticket time: open to close for closed tickets, open to now otherwise.
func (t *Ticket) Elapsed(now time.Time) time.Duration {
	if t.Opened == nil {
		return 0
	}
	end := now
	if t.IsClosed() && t.Closed != nil {
		end = *t.Closed
	}
	if end.Before(*t.Opened) {
		return 0
	}
	return end.Sub(*t.Opened)
}

func (t *Ticket) slot(status TicketStatus) **time.Time {
	switch status {
	case TicketStatusOnHold:
		return &t.OnHold
	case TicketStatusInProgress:
		return &t.InProgress
	case TicketStatusPendingVendor:
		return &t.PendingVendor
	case TicketStatusClosed:
		return &t.Closed
	default:
		return &t.Opened
	}
}
