package dispatch

import (
	"context"

	"github.com/aretw0/ticketflow/pkg/domain"
	"github.com/aretw0/ticketflow/pkg/ticket"
)

// Confirmation guards ticket deletion behind a single-use confirmation.
//
//	Idle --Request(id)--> AwaitingDeleteConfirmation{id}
//	AwaitingDeleteConfirmation --CONFIRM_DELETE--> delete --> Idle
//	AwaitingDeleteConfirmation --anything else--> Idle
type Confirmation struct {
	tickets *ticket.Service
}

// NewConfirmation creates a confirmation flow over the ticket service.
func NewConfirmation(tickets *ticket.Service) *Confirmation {
	return &Confirmation{tickets: tickets}
}

// Resolution is the outcome of a pending confirmation.
type Resolution struct {
	Confirmed bool          // The event was a matching CONFIRM_DELETE
	Ticket    domain.Ticket // Deleted ticket, when Confirmed and err == nil
}

// Request checks that the ticket is visible to the user and returns the
// session that waits for confirmation.
func (c *Confirmation) Request(ctx context.Context, userID, ticketID string) (domain.Session, error) {
	if _, err := c.tickets.Get(ctx, userID, ticketID); err != nil {
		return domain.Idle(), err
	}
	return domain.AwaitingDeleteConfirmation(ticketID), nil
}

// Matches reports whether cmd confirms the pending session. A CONFIRM_DELETE
// that names a different ticket does not.
func (c *Confirmation) Matches(pending domain.Session, cmd *domain.Command) bool {
	if pending.Kind != domain.KindAwaitingDeleteConfirmation || cmd == nil {
		return false
	}
	if cmd.Name != domain.CmdConfirmDelete {
		return false
	}
	return cmd.TicketID == "" || cmd.TicketID == pending.TicketID
}

// Resolve consumes the pending confirmation. The next session is Idle in
// every case; the deletion runs only for a matching confirmation.
func (c *Confirmation) Resolve(ctx context.Context, userID string, pending domain.Session, cmd *domain.Command) (Resolution, error) {
	if !c.Matches(pending, cmd) {
		return Resolution{}, nil
	}
	t, err := c.tickets.Delete(ctx, userID, pending.TicketID)
	if err != nil {
		return Resolution{Confirmed: true}, err
	}
	return Resolution{Confirmed: true, Ticket: t}, nil
}
