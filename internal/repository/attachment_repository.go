package repository

import (
	"context"

	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/helpdesk/internal/domain"
	"github.com/spec-kit/helpdesk/internal/persistence"
)

// AttachmentRepository persists attachment metadata.
type AttachmentRepository interface {
	Create(ctx context.Context, attachment *domain.Attachment) error
	ListByTicket(ctx context.Context, ticketID int64) ([]domain.Attachment, error)
	ListByPrincipal(ctx context.Context, principalID string) ([]domain.Attachment, error)
}

type attachmentRepository struct {
	db persistence.DB
}

// NewAttachmentRepository constructs repository.
func NewAttachmentRepository(db persistence.DB) AttachmentRepository {
	return &attachmentRepository{db: db}
}

func (r *attachmentRepository) Create(ctx context.Context, attachment *domain.Attachment) error {
	const query = `
        INSERT INTO attachments (ticket_id, principal_id, storage_key, file_name, mime_type, size_bytes)
        VALUES ($1,$2,$3,$4,$5,$6)
        RETURNING id, created_at`
	return r.db.QueryRow(ctx, query,
		attachment.TicketID,
		attachment.PrincipalID,
		attachment.StorageKey,
		attachment.FileName,
		attachment.MimeType,
		attachment.SizeBytes,
	).Scan(&attachment.ID, &attachment.CreatedAt)
}

func (r *attachmentRepository) ListByTicket(ctx context.Context, ticketID int64) ([]domain.Attachment, error) {
	const query = `
        SELECT id, ticket_id, principal_id::text, storage_key, file_name, mime_type, size_bytes, created_at
        FROM attachments WHERE ticket_id=$1 ORDER BY id`
	return r.list(ctx, query, ticketID)
}

func (r *attachmentRepository) ListByPrincipal(ctx context.Context, principalID string) ([]domain.Attachment, error) {
	const query = `
        SELECT id, ticket_id, principal_id::text, storage_key, file_name, mime_type, size_bytes, created_at
        FROM attachments WHERE principal_id=$1 ORDER BY id`
	return r.list(ctx, query, principalID)
}

func (r *attachmentRepository) list(ctx context.Context, query string, arg any) ([]domain.Attachment, error) {
	rows, err := r.db.Query(ctx, query, arg)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (domain.Attachment, error) {
		var attachment domain.Attachment
		err := row.Scan(
			&attachment.ID,
			&attachment.TicketID,
			&attachment.PrincipalID,
			&attachment.StorageKey,
			&attachment.FileName,
			&attachment.MimeType,
			&attachment.SizeBytes,
			&attachment.CreatedAt,
		)
		return attachment, err
	})
}
