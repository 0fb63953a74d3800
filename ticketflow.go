package ticketflow

import (
	"context"
	"log/slog"
	"time"

	"github.com/aretw0/ticketflow/internal/logging"
	"github.com/aretw0/ticketflow/pkg/adapters/memory"
	"github.com/aretw0/ticketflow/pkg/dispatch"
	"github.com/aretw0/ticketflow/pkg/domain"
	"github.com/aretw0/ticketflow/pkg/form"
	"github.com/aretw0/ticketflow/pkg/normalize"
	"github.com/aretw0/ticketflow/pkg/ports"
	"github.com/aretw0/ticketflow/pkg/session"
	"github.com/aretw0/ticketflow/pkg/ticket"
	"github.com/aretw0/ticketflow/pkg/validate"
)

// Desk is the high-level entry point for the library.
// It wires the session manager, form engine, ticket service and dispatcher
// and is safe for concurrent use by many users.
type Desk struct {
	dispatcher *dispatch.Dispatcher
	sessions   *session.Manager
	tickets    *ticket.Service
	forms      *form.Engine

	sessionStore   ports.SessionStore
	ticketStorage  ports.TicketStorage
	locker         ports.DistributedLocker
	schema         form.Schema
	hooks          []domain.LifecycleHooks
	messages       *dispatch.Messages
	listLimit      int
	storageTimeout time.Duration
	logger         *slog.Logger
}

// Option defines a functional option for configuring the Desk.
type Option func(*Desk)

// WithSessionStore sets where sessions live (default: in memory).
func WithSessionStore(store ports.SessionStore) Option {
	return func(d *Desk) {
		d.sessionStore = store
	}
}

// WithTicketStorage sets the ticket storage collaborator (default: in memory).
func WithTicketStorage(storage ports.TicketStorage) Option {
	return func(d *Desk) {
		d.ticketStorage = storage
	}
}

// WithLocker enables cross-replica locking of sessions.
func WithLocker(locker ports.DistributedLocker) Option {
	return func(d *Desk) {
		d.locker = locker
	}
}

// WithSchema replaces the default form.
func WithSchema(schema form.Schema) Option {
	return func(d *Desk) {
		d.schema = schema
	}
}

// WithLifecycleHooks registers observability hooks. It may be repeated.
func WithLifecycleHooks(hooks domain.LifecycleHooks) Option {
	return func(d *Desk) {
		d.hooks = append(d.hooks, hooks)
	}
}

// WithMessages replaces the user-facing texts.
func WithMessages(m dispatch.Messages) Option {
	return func(d *Desk) {
		d.messages = &m
	}
}

// WithListLimit caps the ticket choices attached to a list reply.
func WithListLimit(n int) Option {
	return func(d *Desk) {
		d.listLimit = n
	}
}

// WithStorageTimeout bounds each ticket storage call.
func WithStorageTimeout(timeout time.Duration) Option {
	return func(d *Desk) {
		d.storageTimeout = timeout
	}
}

// WithLogger sets a custom structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(d *Desk) {
		d.logger = logger
	}
}

// New builds a Desk. Without options it keeps everything in memory and
// uses the default seven-field form.
func New(opts ...Option) (*Desk, error) {
	d := &Desk{
		listLimit: dispatch.DefaultListLimit,
	}
	for _, opt := range opts {
		opt(d)
	}

	if d.logger == nil {
		d.logger = logging.NewNop()
	}
	if d.sessionStore == nil {
		d.sessionStore = memory.NewStore()
	}
	if d.ticketStorage == nil {
		d.ticketStorage = memory.NewTicketStore()
	}
	if d.schema == nil {
		d.schema = form.DefaultSchema(validate.DefaultPhoneMinDigits)
	}

	forms, err := form.NewEngine(d.schema)
	if err != nil {
		return nil, err
	}
	d.forms = forms

	sessionOpts := []session.Option{session.WithLogger(d.logger)}
	if d.locker != nil {
		sessionOpts = append(sessionOpts, session.WithLocker(d.locker))
	}
	d.sessions = session.NewManager(d.sessionStore, sessionOpts...)
	d.tickets = ticket.NewService(d.ticketStorage, ticket.WithLogger(d.logger))

	dispatchOpts := []dispatch.Option{
		dispatch.WithLogger(d.logger),
		dispatch.WithListLimit(d.listLimit),
		dispatch.WithStorageTimeout(d.storageTimeout),
		dispatch.WithHooks(domain.ComposeHooks(d.hooks...)),
	}
	if d.messages != nil {
		dispatchOpts = append(dispatchOpts, dispatch.WithMessages(*d.messages))
	}
	d.dispatcher = dispatch.New(d.sessions, d.forms, d.tickets, dispatchOpts...)

	return d, nil
}

// Handle processes one normalized event.
func (d *Desk) Handle(ctx context.Context, ev domain.Event) (domain.OutgoingMessage, error) {
	return d.dispatcher.Dispatch(ctx, ev)
}

// HandleLine processes a chat line; "/delete 7" style lines become commands.
func (d *Desk) HandleLine(ctx context.Context, userID, line string) (domain.OutgoingMessage, error) {
	ev, err := normalize.Line(userID, line)
	if err != nil {
		return domain.OutgoingMessage{}, err
	}
	return d.Handle(ctx, ev)
}

// Tickets lists the user's tickets.
func (d *Desk) Tickets(ctx context.Context, userID string) ([]domain.Ticket, error) {
	return d.tickets.List(ctx, userID)
}

// CreateTicket stores a ticket directly, bypassing the form.
func (d *Desk) CreateTicket(ctx context.Context, userID string, fields domain.Record) (string, error) {
	return d.tickets.Create(ctx, userID, fields)
}

// Session returns the user's current session.
func (d *Desk) Session(ctx context.Context, userID string) (domain.Session, error) {
	return d.sessions.Get(ctx, userID)
}

// ResetSession clears the user's session back to Idle.
func (d *Desk) ResetSession(ctx context.Context, userID string) error {
	return d.sessions.Clear(ctx, userID)
}

// Sessions lists users with a stored (non-idle) session.
func (d *Desk) Sessions(ctx context.Context) ([]string, error) {
	return d.sessions.List(ctx)
}

// Schema returns the form in use.
func (d *Desk) Schema() form.Schema {
	return d.forms.Schema()
}
