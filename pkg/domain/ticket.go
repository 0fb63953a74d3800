package domain

import "time"

// TicketStatus is the lifecycle status of a ticket.
type TicketStatus string

const (
	TicketOpen   TicketStatus = "open"
	TicketClosed TicketStatus = "closed"
)

// Ticket is the durable entity submitted through the form.
// The storage collaborator owns it; the core holds copies only for the
// duration of an operation.
type Ticket struct {
	ID        string       `json:"ticket_id"`
	UserID    string       `json:"user_id"`
	Fields    Record       `json:"fields"`
	Status    TicketStatus `json:"status"`
	CreatedAt time.Time    `json:"created_at"`
}

// OwnedBy reports whether the ticket belongs to userID.
func (t Ticket) OwnedBy(userID string) bool {
	return t.UserID == userID
}
