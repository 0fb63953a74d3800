package notify

import (
	"context"
	"log/slog"

	"github.com/aretw0/ticketflow/internal/logging"
	"github.com/aretw0/ticketflow/pkg/domain"
	"github.com/aretw0/ticketflow/pkg/ports"
)

// Notifier renders ticket events and hands them to a sink.
// Delivery failures are logged and never reach the user.
type Notifier struct {
	sink      ports.Notifier
	templates *Templates
	logger    *slog.Logger
}

// Option configures the Notifier.
type Option func(*Notifier)

// WithLogger configures a logger for the Notifier.
func WithLogger(logger *slog.Logger) Option {
	return func(n *Notifier) {
		n.logger = logger
	}
}

// WithTemplates replaces the default templates.
func WithTemplates(t *Templates) Option {
	return func(n *Notifier) {
		n.templates = t
	}
}

// New creates a notifier that delivers to sink.
func New(sink ports.Notifier, opts ...Option) *Notifier {
	defaults, _ := ParseTemplates("", "")
	n := &Notifier{
		sink:      sink,
		templates: defaults,
		logger:    logging.NewNop(),
	}
	for _, opt := range opts {
		opt(n)
	}
	return n
}

// Hooks returns lifecycle hooks that notify on ticket creation and deletion.
func (n *Notifier) Hooks() domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnTicketCreated: func(ctx context.Context, ev *domain.TicketEvent) {
			n.deliver(ctx, "new_ticket", ev, n.templates.NewTicket)
		},
		OnTicketDeleted: func(ctx context.Context, ev *domain.TicketEvent) {
			n.deliver(ctx, "ticket_deleted", ev, n.templates.TicketDeleted)
		},
	}
}

func (n *Notifier) deliver(ctx context.Context, kind string, ev *domain.TicketEvent, render func(*domain.TicketEvent) (string, error)) {
	text, err := render(ev)
	if err != nil {
		n.logger.Error("Failed to render notification", "kind", kind, "ticket_id", ev.TicketID, "err", err)
		return
	}
	if err := n.sink.Notify(ctx, text); err != nil {
		n.logger.Warn("Failed to deliver notification", "kind", kind, "ticket_id", ev.TicketID, "err", err)
	}
}
