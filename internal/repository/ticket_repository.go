package repository

import (
	"context"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/helpdesk/internal/domain"
	"github.com/spec-kit/helpdesk/internal/persistence"
)

// TicketFilter captures list parameters.
type TicketFilter struct {
	StationID      *int64
	Statuses       []domain.TicketStatus
	AssignedTo     *string
	UnassignedOnly bool
	Search         string
	Limit          int
	Offset         int
}

// TicketRepository encapsulates ticket persistence.
type TicketRepository interface {
	Create(ctx context.Context, ticket *domain.Ticket) error
	Update(ctx context.Context, ticket *domain.Ticket) error
	GetByID(ctx context.Context, id int64) (*domain.Ticket, error)
	List(ctx context.Context, filter TicketFilter) ([]domain.Ticket, error)
	Delete(ctx context.Context, id int64) error
}

type ticketRepository struct {
	db persistence.DB
}

// NewTicketRepository instantiates repository.
func NewTicketRepository(db persistence.DB) TicketRepository {
	return &ticketRepository{db: db}
}

const ticketColumns = `t.id, t.ticket_id, t.station_id, s.name, t.issue_type, t.description,
               t.assigned_to::text, COALESCE(p.name, ''), t.status,
               t.ticket_open, t.ticket_on_hold, t.ticket_in_progress, t.ticket_pending_vendor, t.ticket_close,
               t.created_at, t.updated_at`

func (r *ticketRepository) Create(ctx context.Context, ticket *domain.Ticket) error {
	const query = `
        INSERT INTO tickets (ticket_id, station_id, issue_type, description, assigned_to, status,
            ticket_open, ticket_on_hold, ticket_in_progress, ticket_pending_vendor, ticket_close)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)
        RETURNING id, created_at, updated_at`
	return r.db.QueryRow(ctx, query,
		ticket.TicketID,
		ticket.StationID,
		ticket.IssueType,
		ticket.Description,
		ticket.AssignedTo,
		ticket.Status,
		ticket.Opened,
		ticket.OnHold,
		ticket.InProgress,
		ticket.PendingVendor,
		ticket.Closed,
	).Scan(&ticket.ID, &ticket.CreatedAt, &ticket.UpdatedAt)
}

// Update saves the ticket unless the stored row is already closed. The row is
// locked first so a concurrent close cannot be overwritten by a stale snapshot.
func (r *ticketRepository) Update(ctx context.Context, ticket *domain.Ticket) error {
	const query = `
        UPDATE tickets SET station_id=$1, issue_type=$2, description=$3, assigned_to=$4, status=$5,
            ticket_open=$6, ticket_on_hold=$7, ticket_in_progress=$8, ticket_pending_vendor=$9, ticket_close=$10,
            updated_at=NOW()
        WHERE id=$11
        RETURNING updated_at`
	return persistence.WithTx(ctx, r.db, func(tx pgx.Tx) error {
		var stored domain.TicketStatus
		if err := tx.QueryRow(ctx, `SELECT status FROM tickets WHERE id=$1 FOR UPDATE`, ticket.ID).Scan(&stored); err != nil {
			return err
		}
		if stored == domain.TicketStatusClosed {
			return domain.ErrTicketClosed
		}
		return tx.QueryRow(ctx, query,
			ticket.StationID,
			ticket.IssueType,
			ticket.Description,
			ticket.AssignedTo,
			ticket.Status,
			ticket.Opened,
			ticket.OnHold,
			ticket.InProgress,
			ticket.PendingVendor,
			ticket.Closed,
			ticket.ID,
		).Scan(&ticket.UpdatedAt)
	})
}

func (r *ticketRepository) GetByID(ctx context.Context, id int64) (*domain.Ticket, error) {
	query, args, err := ticketSelect().Where(sq.Eq{"t.id": id}).ToSql()
	if err != nil {
		return nil, err
	}
	return scanTicket(r.db.QueryRow(ctx, query, args...))
}

func (r *ticketRepository) List(ctx context.Context, filter TicketFilter) ([]domain.Ticket, error) {
	builder := ticketSelect().
		OrderBy("t.updated_at DESC").
		Limit(pageLimit(filter.Limit, 20)).
		Offset(pageOffset(filter.Offset))

	if filter.StationID != nil {
		builder = builder.Where(sq.Eq{"t.station_id": *filter.StationID})
	}
	if len(filter.Statuses) > 0 {
		statuses := make([]string, 0, len(filter.Statuses))
		for _, status := range filter.Statuses {
			statuses = append(statuses, string(status))
		}
		builder = builder.Where(sq.Eq{"t.status": statuses})
	}
	if filter.UnassignedOnly {
		builder = builder.Where(sq.Eq{"t.assigned_to": nil})
	} else if filter.AssignedTo != nil {
		builder = builder.Where(sq.Eq{"t.assigned_to": *filter.AssignedTo})
	}
	if term := likeTerm(filter.Search); term != "" {
		builder = builder.Where(sq.Or{
			sq.ILike{"t.ticket_id": term},
			sq.ILike{"t.issue_type": term},
			sq.ILike{"t.description": term},
		})
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return nil, err
	}
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.Ticket
	for rows.Next() {
		ticket, err := scanTicket(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *ticket)
	}
	return result, rows.Err()
}

// Delete removes the ticket and its attachment rows in one transaction.
func (r *ticketRepository) Delete(ctx context.Context, id int64) error {
	return persistence.WithTx(ctx, r.db, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, `DELETE FROM attachments WHERE ticket_id=$1`, id); err != nil {
			return err
		}
		cmd, err := tx.Exec(ctx, `DELETE FROM tickets WHERE id=$1`, id)
		if err != nil {
			return err
		}
		if cmd.RowsAffected() == 0 {
			return pgx.ErrNoRows
		}
		return nil
	})
}

func ticketSelect() sq.SelectBuilder {
	return psql.Select(ticketColumns).
		From("tickets t").
		Join("stations s ON s.id = t.station_id").
		LeftJoin("principals p ON p.id = t.assigned_to")
}

func scanTicket(row pgx.Row) (*domain.Ticket, error) {
	var ticket domain.Ticket
	if err := row.Scan(
		&ticket.ID,
		&ticket.TicketID,
		&ticket.StationID,
		&ticket.StationName,
		&ticket.IssueType,
		&ticket.Description,
		&ticket.AssignedTo,
		&ticket.AssigneeName,
		&ticket.Status,
		&ticket.Opened,
		&ticket.OnHold,
		&ticket.InProgress,
		&ticket.PendingVendor,
		&ticket.Closed,
		&ticket.CreatedAt,
		&ticket.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &ticket, nil
}
