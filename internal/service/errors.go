package service

import (
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/helpdesk/internal/domain"
	"github.com/spec-kit/helpdesk/internal/persistence"
	apperrors "github.com/spec-kit/helpdesk/pkg/util"
)

// notFoundOr maps a missing row to a NotFound error for resource and leaves other errors alone.
func notFoundOr(err error, resource string, details map[string]any) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return apperrors.NewNotFound(resource, details)
	}
	return err
}

// lifecycleError translates state machine sentinels into domain errors.
func lifecycleError(err error, ticket *domain.Ticket, requested domain.TicketStatus) error {
	switch {
	case errors.Is(err, domain.ErrTicketClosed):
		return apperrors.NewConflictCode(apperrors.CodeTicketClosed, "ticket is closed",
			map[string]any{"ticketId": ticket.TicketID})
	case errors.Is(err, domain.ErrUnknownStatus):
		return apperrors.NewValidationError("unknown ticket status",
			map[string]any{"fields": map[string]any{"status": "oneof"}, "status": requested})
	case errors.Is(err, domain.ErrReopenNotAllowed):
		return apperrors.NewValidationError("tickets cannot return to OPEN",
			map[string]any{"from": ticket.Status, "status": requested})
	default:
		return err
	}
}

func uniqueConflict(err error, code, message string, details map[string]any) error {
	if persistence.IsUniqueViolation(err) {
		return apperrors.NewConflictCode(code, message, details)
	}
	return err
}
