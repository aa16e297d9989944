package domain_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/helpdesk/internal/domain"
)

var base = time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

func TestNewTicketIsOpen(t *testing.T) {
	ticket := domain.NewTicket("TCK-1", 7, "network", "switch down", base)

	assert.Equal(t, domain.TicketStatusOpen, ticket.Status)
	require.NotNil(t, ticket.Opened)
	assert.Equal(t, base, *ticket.Opened)
	assert.Nil(t, ticket.OnHold)
	assert.Nil(t, ticket.InProgress)
	assert.Nil(t, ticket.PendingVendor)
	assert.Nil(t, ticket.Closed)
	assert.Nil(t, ticket.AssignedTo)
}

func TestTransitionOpenToInProgressToClosed(t *testing.T) {
	ticket := domain.NewTicket("TCK-1", 7, "network", "switch down", base)

	t1 := base.Add(time.Hour)
	prev, err := ticket.Transition(domain.TicketStatusInProgress, t1)
	require.NoError(t, err)
	assert.Equal(t, domain.TicketStatusOpen, prev)
	assert.Equal(t, domain.TicketStatusInProgress, ticket.Status)
	assert.Equal(t, t1, *ticket.InProgress)
	assert.Equal(t, base, *ticket.Opened)

	t2 := base.Add(2 * time.Hour)
	_, err = ticket.Transition(domain.TicketStatusClosed, t2)
	require.NoError(t, err)
	assert.Equal(t, t2, *ticket.Closed)
	assert.Equal(t, t1, *ticket.InProgress)

	_, err = ticket.Transition(domain.TicketStatusOnHold, base.Add(3*time.Hour))
	assert.ErrorIs(t, err, domain.ErrTicketClosed)
}

func TestTransitionSameStatusRestampsOnlyItsSlot(t *testing.T) {
	ticket := domain.NewTicket("TCK-2", 1, "power", "ups alarm", base)
	t1 := base.Add(time.Minute)
	_, err := ticket.Transition(domain.TicketStatusOnHold, t1)
	require.NoError(t, err)

	t2 := base.Add(time.Hour)
	prev, err := ticket.Transition(domain.TicketStatusOnHold, t2)
	require.NoError(t, err)

	assert.Equal(t, domain.TicketStatusOnHold, prev)
	assert.Equal(t, domain.TicketStatusOnHold, ticket.Status)
	assert.Equal(t, t2, *ticket.OnHold)
	assert.Equal(t, base, *ticket.Opened)
	assert.Nil(t, ticket.InProgress)
	assert.Nil(t, ticket.PendingVendor)
	assert.Nil(t, ticket.Closed)
}

func TestReaffirmOpenRestampsOpened(t *testing.T) {
	ticket := domain.NewTicket("TCK-3", 1, "power", "ups alarm", base)
	later := base.Add(time.Minute)

	_, err := ticket.Transition(domain.TicketStatusOpen, later)
	require.NoError(t, err)
	assert.Equal(t, later, *ticket.Opened)
}

func TestNonTerminalStatesCycle(t *testing.T) {
	ticket := domain.NewTicket("TCK-4", 1, "printer", "jam", base)
	sequence := []domain.TicketStatus{
		domain.TicketStatusOnHold,
		domain.TicketStatusInProgress,
		domain.TicketStatusPendingVendor,
		domain.TicketStatusOnHold,
		domain.TicketStatusInProgress,
	}
	for i, status := range sequence {
		at := base.Add(time.Duration(i+1) * time.Minute)
		_, err := ticket.Transition(status, at)
		require.NoError(t, err)
		assert.Equal(t, at, *ticket.StampOf(status))
	}
	assert.Equal(t, base.Add(4*time.Minute), *ticket.OnHold)
	assert.Equal(t, base.Add(5*time.Minute), *ticket.InProgress)
	assert.Equal(t, base.Add(3*time.Minute), *ticket.PendingVendor)
}

func TestTransitionOnClosedLeavesTicketUnmodified(t *testing.T) {
	ticket := domain.NewTicket("TCK-5", 1, "network", "flap", base)
	_, err := ticket.Transition(domain.TicketStatusClosed, base.Add(time.Hour))
	require.NoError(t, err)
	snapshot := *ticket

	for _, status := range []domain.TicketStatus{
		domain.TicketStatusOpen,
		domain.TicketStatusOnHold,
		domain.TicketStatusInProgress,
		domain.TicketStatusPendingVendor,
		domain.TicketStatusClosed,
	} {
		_, err := ticket.Transition(status, base.Add(2*time.Hour))
		assert.ErrorIs(t, err, domain.ErrTicketClosed, status)
	}
	assert.Equal(t, snapshot, *ticket)

	owner := "p-1"
	assert.ErrorIs(t, ticket.Assign(&owner), domain.ErrTicketClosed)
	assert.Nil(t, ticket.AssignedTo)
}

func TestTransitionRejectsUnknownAndReopen(t *testing.T) {
	ticket := domain.NewTicket("TCK-6", 1, "network", "flap", base)
	_, err := ticket.Transition("RESOLVED", base)
	assert.ErrorIs(t, err, domain.ErrUnknownStatus)

	_, err = ticket.Transition(domain.TicketStatusInProgress, base.Add(time.Minute))
	require.NoError(t, err)
	_, err = ticket.Transition(domain.TicketStatusOpen, base.Add(2*time.Minute))
	assert.ErrorIs(t, err, domain.ErrReopenNotAllowed)
	assert.Equal(t, domain.TicketStatusInProgress, ticket.Status)
}

func TestElapsed(t *testing.T) {
	ticket := domain.NewTicket("TCK-7", 1, "network", "flap", base)
	assert.Equal(t, 30*time.Minute, ticket.Elapsed(base.Add(30*time.Minute)))

	_, err := ticket.Transition(domain.TicketStatusClosed, base.Add(time.Hour))
	require.NoError(t, err)
	assert.Equal(t, time.Hour, ticket.Elapsed(base.Add(10*time.Hour)))
}
