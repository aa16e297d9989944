package domain

import "time"

// Attachment stores metadata for an uploaded file owned by a ticket or a principal.
type Attachment struct {
	ID          int64
	TicketID    *int64
	PrincipalID *string
	StorageKey  string
	FileName    string
	MimeType    string
	SizeBytes   int64
	CreatedAt   time.Time
}
