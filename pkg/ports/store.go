package ports

import (
	"context"

	"github.com/aretw0/ticketflow/pkg/domain"
)

// SessionStore defines the interface for persisting conversation sessions.
// A missing session is reported as domain.ErrSessionNotFound and means Idle.
type SessionStore interface {
	// Save persists the session for a given user.
	Save(ctx context.Context, userID string, session domain.Session) error

	// Load retrieves the session for a given user.
	Load(ctx context.Context, userID string) (domain.Session, error)

	// Delete removes the session. Deleting a missing session is not an error.
	Delete(ctx context.Context, userID string) error

	// List returns the users that currently have a stored session.
	List(ctx context.Context) ([]string, error)
}

// TicketStorage is the durable ticket collaborator.
// A ticket created and then listed by the same user must be visible.
type TicketStorage interface {
	// CreateTicket stores a new open ticket and returns its storage-assigned ID.
	CreateTicket(ctx context.Context, userID string, fields domain.Record) (string, error)

	// ListTickets returns the user's tickets in creation order.
	ListTickets(ctx context.Context, userID string) ([]domain.Ticket, error)

	// GetTicket fetches a ticket by ID regardless of owner.
	// Unknown IDs return domain.ErrTicketNotFound.
	GetTicket(ctx context.Context, ticketID string) (domain.Ticket, error)

	// DeleteTicket removes the ticket if it belongs to userID.
	// Unknown or foreign IDs return domain.ErrTicketNotFound.
	DeleteTicket(ctx context.Context, userID, ticketID string) error
}

// Notifier delivers operator notifications.
type Notifier interface {
	Notify(ctx context.Context, text string) error
}
