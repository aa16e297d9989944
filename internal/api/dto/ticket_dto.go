package dto

import (
	"time"

	"github.com/spec-kit/helpdesk/internal/domain"
)

// CreateTicketRequest payload.
type CreateTicketRequest struct {
	TicketID    string  `json:"ticketId" validate:"required,max=64"`
	StationID   int64   `json:"stationId" validate:"required,gt=0"`
	IssueType   string  `json:"issueType" validate:"required,max=120"`
	Description string  `json:"description" validate:"max=4000"`
	AssignedTo  *string `json:"assignedTo" validate:"omitempty,uuid"`
}

// UpdateTicketRequest edits details. Absent fields are kept.
type UpdateTicketRequest struct {
	StationID   *int64  `json:"stationId" validate:"omitempty,gt=0"`
	IssueType   *string `json:"issueType" validate:"omitempty,max=120"`
	Description *string `json:"description" validate:"omitempty,max=4000"`
}

// TransitionRequest moves a ticket. With reassign set, assignedTo replaces the
// assignee in the same save; a null assignedTo clears it.
type TransitionRequest struct {
	Status     domain.TicketStatus `json:"status" validate:"required"`
	Reassign   bool                `json:"reassign"`
	AssignedTo *string             `json:"assignedTo"`
}

// AssignRequest sets or clears the assignee.
type AssignRequest struct {
	AssignedTo *string `json:"assignedTo"`
}

// TicketListQuery captures query filters.
type TicketListQuery struct {
	StationID      *int64
	Statuses       []domain.TicketStatus
	AssignedTo     *string
	UnassignedOnly bool
	Search         string
	Page           int
	PageSize       int
}

// TicketResponse is the full ticket view including the per-status timestamps
// and the elapsed ticket time.
type TicketResponse struct {
	ID                int64               `json:"id"`
	TicketID          string              `json:"ticketId"`
	StationID         int64               `json:"stationId"`
	StationName       string              `json:"stationName"`
	IssueType         string              `json:"issueType"`
	Description       string              `json:"description"`
	AssignedTo        *string             `json:"assignedTo"`
	AssigneeName      string              `json:"assigneeName,omitempty"`
	Status            domain.TicketStatus `json:"status"`
	Opened            *time.Time          `json:"opened"`
	OnHold            *time.Time          `json:"onHold"`
	InProgress        *time.Time          `json:"inProgress"`
	PendingVendor     *time.Time          `json:"pendingVendor"`
	Closed            *time.Time          `json:"closed"`
	TicketTime        string              `json:"ticketTime"`
	TicketTimeSeconds int64               `json:"ticketTimeSeconds"`
	CreatedAt         time.Time           `json:"createdAt"`
	UpdatedAt         time.Time           `json:"updatedAt"`
}

// NewTicketResponse maps a ticket; now anchors the elapsed time of open tickets.
func NewTicketResponse(t *domain.Ticket, now time.Time) TicketResponse {
	elapsed := t.Elapsed(now).Truncate(time.Second)
	return TicketResponse{
		ID:                t.ID,
		TicketID:          t.TicketID,
		StationID:         t.StationID,
		StationName:       t.StationName,
		IssueType:         t.IssueType,
		Description:       t.Description,
		AssignedTo:        t.AssignedTo,
		AssigneeName:      t.AssigneeName,
		Status:            t.Status,
		Opened:            t.Opened,
		OnHold:            t.OnHold,
		InProgress:        t.InProgress,
		PendingVendor:     t.PendingVendor,
		Closed:            t.Closed,
		TicketTime:        elapsed.String(),
		TicketTimeSeconds: int64(elapsed / time.Second),
		CreatedAt:         t.CreatedAt,
		UpdatedAt:         t.UpdatedAt,
	}
}

// AttachmentRequest describes an uploaded file already placed in storage.
type AttachmentRequest struct {
	StorageKey string `json:"storageKey" validate:"required,max=512"`
	FileName   string `json:"fileName" validate:"required,max=255"`
	MimeType   string `json:"mimeType" validate:"required"`
	SizeBytes  int64  `json:"sizeBytes" validate:"gte=0"`
}

// AttachmentResponse metadata.
type AttachmentResponse struct {
	ID          int64     `json:"id"`
	TicketID    *int64    `json:"ticketId,omitempty"`
	PrincipalID *string   `json:"principalId,omitempty"`
	StorageKey  string    `json:"storageKey"`
	FileName    string    `json:"fileName"`
	MimeType    string    `json:"mimeType"`
	SizeBytes   int64     `json:"sizeBytes"`
	CreatedAt   time.Time `json:"createdAt"`
}

// NewAttachmentResponse maps attachment metadata.
func NewAttachmentResponse(a *domain.Attachment) AttachmentResponse {
	return AttachmentResponse{
		ID:          a.ID,
		TicketID:    a.TicketID,
		PrincipalID: a.PrincipalID,
		StorageKey:  a.StorageKey,
		FileName:    a.FileName,
		MimeType:    a.MimeType,
		SizeBytes:   a.SizeBytes,
		CreatedAt:   a.CreatedAt,
	}
}
