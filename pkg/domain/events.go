package domain

import (
	"context"
	"time"
)

// DispatchEvent describes one processed user turn.
type DispatchEvent struct {
	Timestamp time.Time   `json:"timestamp"`
	UserID    string      `json:"user_id"`
	Action    Action      `json:"action"`
	From      SessionKind `json:"from"`
	To        SessionKind `json:"to"`
	Err       error       `json:"-"` // Recoverable error reported to the user, if any
}

// TicketEvent describes a ticket created or deleted through the desk.
type TicketEvent struct {
	Timestamp time.Time `json:"timestamp"`
	UserID    string    `json:"user_id"`
	TicketID  string    `json:"ticket_id"`
	Ticket    *Ticket   `json:"ticket,omitempty"` // Set on creation
}

// LifecycleHooks defines callbacks for desk observability.
// Hooks run after the user's session lock is released.
type LifecycleHooks struct {
	OnDispatch      func(context.Context, *DispatchEvent)
	OnTicketCreated func(context.Context, *TicketEvent)
	OnTicketDeleted func(context.Context, *TicketEvent)
}

// ComposeHooks fans each callback out to every non-nil hook in order.
func ComposeHooks(hooks ...LifecycleHooks) LifecycleHooks {
	return LifecycleHooks{
		OnDispatch: func(ctx context.Context, e *DispatchEvent) {
			for _, h := range hooks {
				if h.OnDispatch != nil {
					h.OnDispatch(ctx, e)
				}
			}
		},
		OnTicketCreated: func(ctx context.Context, e *TicketEvent) {
			for _, h := range hooks {
				if h.OnTicketCreated != nil {
					h.OnTicketCreated(ctx, e)
				}
			}
		},
		OnTicketDeleted: func(ctx context.Context, e *TicketEvent) {
			for _, h := range hooks {
				if h.OnTicketDeleted != nil {
					h.OnTicketDeleted(ctx, e)
				}
			}
		},
	}
}
