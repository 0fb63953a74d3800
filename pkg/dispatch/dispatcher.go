// Package dispatch holds the per-user conversation state machine.
//
// Each event is routed by the first rule that matches:
//
//  1. A session awaiting delete confirmation goes to the Confirmation flow.
//  2. A recognized structured command runs its operation and abandons any
//     form in progress.
//  3. A session filling the form passes the raw text to the form engine.
//  4. Anything else gets a "not understood" reply and no state change.
//
// Free-text digits are never read as ticket selections; tickets are only
// addressed through command arguments.
package dispatch

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/aretw0/ticketflow/internal/logging"
	"github.com/aretw0/ticketflow/pkg/domain"
	"github.com/aretw0/ticketflow/pkg/form"
	"github.com/aretw0/ticketflow/pkg/session"
	"github.com/aretw0/ticketflow/pkg/ticket"
)

// Dispatcher maps (session, event) to exactly one action.
type Dispatcher struct {
	sessions *session.Manager
	forms    *form.Engine
	tickets  *ticket.Service
	confirm  *Confirmation

	messages       Messages
	listLimit      int
	storageTimeout time.Duration
	hooks          domain.LifecycleHooks
	logger         *slog.Logger
	now            func() time.Time
}

// Option configures the Dispatcher.
type Option func(*Dispatcher)

// WithMessages replaces the user-facing texts.
func WithMessages(m Messages) Option {
	return func(d *Dispatcher) {
		d.messages = m
	}
}

// WithListLimit caps the ticket choices attached to a list reply.
func WithListLimit(n int) Option {
	return func(d *Dispatcher) {
		d.listLimit = n
	}
}

// WithStorageTimeout bounds every ticket storage call.
func WithStorageTimeout(timeout time.Duration) Option {
	return func(d *Dispatcher) {
		d.storageTimeout = timeout
	}
}

// WithHooks registers lifecycle callbacks.
func WithHooks(hooks domain.LifecycleHooks) Option {
	return func(d *Dispatcher) {
		d.hooks = hooks
	}
}

// WithLogger configures a logger for the Dispatcher.
func WithLogger(logger *slog.Logger) Option {
	return func(d *Dispatcher) {
		d.logger = logger
	}
}

// New wires a dispatcher.
func New(sessions *session.Manager, forms *form.Engine, tickets *ticket.Service, opts ...Option) *Dispatcher {
	d := &Dispatcher{
		sessions:  sessions,
		forms:     forms,
		tickets:   tickets,
		confirm:   NewConfirmation(tickets),
		messages:  DefaultMessages(),
		listLimit: DefaultListLimit,
		logger:    logging.NewNop(),
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// turn collects what one dispatch did, for the reply and the hooks.
type turn struct {
	action    domain.Action
	from      domain.SessionKind
	reply     domain.OutgoingMessage
	err       error
	// submitted is set once the completed form reached ticket storage.
	submitted bool
	created   *domain.TicketEvent
	deleted   *domain.TicketEvent
}

// Dispatch processes one event for its user and returns the reply.
//
// Validation, not-found and ticket storage failures are reported in the reply
// and resolve the session to a known state; they never surface as errors.
// A returned error means the session store itself failed (or ctx ended) and
// the session was left as it was. Once a completed form reached ticket storage the
// reply is returned regardless, after one more attempt to reset the session.
func (d *Dispatcher) Dispatch(ctx context.Context, ev domain.Event) (domain.OutgoingMessage, error) {
	if ev.UserID == "" {
		return domain.OutgoingMessage{}, errors.New("event has no user id")
	}
	cmd := d.command(ev)

	var t turn
	updated, err := d.sessions.Update(ctx, ev.UserID, func(ctx context.Context, current domain.Session) (domain.Session, error) {
		t = turn{from: kindOf(current)}
		return d.route(ctx, ev, cmd, current, &t), nil
	})

	// Hooks run outside the user's lock.
	event := &domain.DispatchEvent{
		Timestamp: d.now(),
		UserID:    ev.UserID,
		Action:    t.action,
		From:      t.from,
		To:        kindOf(updated),
		Err:       t.err,
	}
	if err != nil && t.submitted {
		// A retained form would be submitted twice.
		clearCtx, cancel := d.storageContext(context.WithoutCancel(ctx))
		clearErr := d.sessions.Clear(clearCtx, ev.UserID)
		cancel()
		d.logger.Error("Form submitted but session reset failed",
			"user_id", ev.UserID,
			"err", err,
			"clear_err", clearErr,
		)
		event.To = domain.KindIdle
		if clearErr != nil {
			event.To = t.from
		}
		if event.Err == nil {
			event.Err = err
		}
		d.fire(ctx, event, t.created, t.deleted)
		return t.reply, nil
	}
	if err != nil {
		event.Err = err
		event.To = t.from
		d.logger.Error("Dispatch failed", "user_id", ev.UserID, "err", err)
		d.fire(ctx, event, t.created, t.deleted)
		return domain.OutgoingMessage{}, fmt.Errorf("dispatch for %s: %w", ev.UserID, err)
	}

	d.logger.Debug("Dispatched",
		"user_id", ev.UserID,
		"action", t.action,
		"from", event.From,
		"to", event.To,
	)
	d.fire(ctx, event, t.created, t.deleted)
	return t.reply, nil
}

// command returns the event's structured command, or nil when it is absent
// or malformed.
func (d *Dispatcher) command(ev domain.Event) *domain.Command {
	if ev.Command == nil {
		return nil
	}
	if err := ev.Command.Validate(); err != nil {
		d.logger.Debug("Ignoring malformed command", "user_id", ev.UserID, "err", err)
		return nil
	}
	return ev.Command
}

func (d *Dispatcher) route(ctx context.Context, ev domain.Event, cmd *domain.Command, current domain.Session, t *turn) domain.Session {
	switch {
	case current.Kind == domain.KindAwaitingDeleteConfirmation:
		return d.resolveConfirmation(ctx, ev.UserID, current, cmd, t)
	case cmd != nil:
		return d.runCommand(ctx, ev.UserID, *cmd, t)
	case current.Kind == domain.KindFillingForm:
		return d.submitField(ctx, ev.UserID, current, ev.Text, t)
	default:
		t.action = domain.ActionFallback
		t.reply = d.messages.withMenu(d.messages.NotUnderstood)
		return current
	}
}

func (d *Dispatcher) runCommand(ctx context.Context, userID string, cmd domain.Command, t *turn) domain.Session {
	m := d.messages

	switch cmd.Name {
	case domain.CmdStartForm:
		next := d.forms.Start()
		t.action = domain.ActionStartForm
		t.reply = m.text(m.FormStarted, d.forms.Prompt(next))
		t.reply.Choices = m.formChoices()
		return next

	case domain.CmdListTickets:
		t.action = domain.ActionListTickets
		sctx, cancel := d.storageContext(ctx)
		defer cancel()
		tickets, err := d.tickets.List(sctx, userID)
		if err != nil {
			d.storageFailed(t, err)
			return domain.Idle()
		}
		t.reply = m.ticketList(tickets, d.listLimit)
		return domain.Idle()

	case domain.CmdShowTicket:
		t.action = domain.ActionShowTicket
		sctx, cancel := d.storageContext(ctx)
		defer cancel()
		tk, err := d.tickets.Get(sctx, userID, cmd.TicketID)
		if err != nil {
			d.ticketFailed(t, err)
			return domain.Idle()
		}
		t.reply = m.ticketDetail(tk)
		return domain.Idle()

	case domain.CmdRequestDelete:
		t.action = domain.ActionRequestDelete
		sctx, cancel := d.storageContext(ctx)
		defer cancel()
		next, err := d.confirm.Request(sctx, userID, cmd.TicketID)
		if err != nil {
			d.ticketFailed(t, err)
			return domain.Idle()
		}
		t.reply = m.confirmDelete(cmd.TicketID)
		return next

	case domain.CmdConfirmDelete:
		t.action = domain.ActionCancel
		t.reply = m.withMenu(m.NothingToConfirm)
		return domain.Idle()

	case domain.CmdCancel:
		t.action = domain.ActionCancel
		t.reply = m.withMenu(m.Cancelled)
		return domain.Idle()

	case domain.CmdHelp:
		t.action = domain.ActionHelp
		t.reply = m.withMenu(m.Welcome)
		return domain.Idle()
	}

	// Unreachable: cmd passed Validate.
	t.action = domain.ActionFallback
	t.reply = m.withMenu(m.NotUnderstood)
	return domain.Idle()
}

func (d *Dispatcher) submitField(ctx context.Context, userID string, current domain.Session, raw string, t *turn) domain.Session {
	m := d.messages
	t.action = domain.ActionAdvanceForm

	step, err := d.forms.Submit(current, raw)
	var verr *domain.ValidationError
	switch {
	case errors.As(err, &verr):
		t.err = err
		t.reply = m.text(fmt.Sprintf(m.FieldRejected, verr.Reason), d.forms.Prompt(current))
		t.reply.Choices = m.formChoices()
		return current
	case err != nil:
		// The stored session no longer fits the schema.
		d.logger.Warn("Discarding unusable form session", "user_id", userID, "err", err)
		t.err = err
		t.action = domain.ActionFallback
		t.reply = m.withMenu(m.NotUnderstood)
		return domain.Idle()
	case !step.Done:
		t.reply = m.text(d.forms.Prompt(step.Session))
		t.reply.Choices = m.formChoices()
		return step.Session
	}

	// The form is complete: one create call, then exactly one reset to Idle
	// whatever its outcome.
	t.action = domain.ActionSubmitTicket
	t.submitted = true
	sctx, cancel := d.storageContext(ctx)
	defer cancel()
	id, err := d.tickets.Create(sctx, userID, step.Record)
	if err != nil {
		d.storageFailed(t, err)
		return domain.Idle()
	}

	t.reply = m.withMenu(fmt.Sprintf(m.TicketCreated, id))
	t.created = &domain.TicketEvent{
		UserID:   userID,
		TicketID: id,
		Ticket: &domain.Ticket{
			ID:        id,
			UserID:    userID,
			Fields:    step.Record,
			Status:    domain.TicketOpen,
			CreatedAt: d.now(),
		},
	}
	return domain.Idle()
}

func (d *Dispatcher) resolveConfirmation(ctx context.Context, userID string, pending domain.Session, cmd *domain.Command, t *turn) domain.Session {
	m := d.messages

	if !d.confirm.Matches(pending, cmd) {
		t.action = domain.ActionCancelDelete
		t.reply = m.withMenu(m.DeleteCancelled)
		return domain.Idle()
	}

	t.action = domain.ActionConfirmDelete
	sctx, cancel := d.storageContext(ctx)
	defer cancel()
	res, err := d.confirm.Resolve(sctx, userID, pending, cmd)
	if err != nil {
		d.ticketFailed(t, err)
		return domain.Idle()
	}

	t.reply = m.withMenu(fmt.Sprintf(m.TicketDeleted, res.Ticket.ID))
	deleted := res.Ticket
	t.deleted = &domain.TicketEvent{
		UserID:   userID,
		TicketID: deleted.ID,
		Ticket:   &deleted,
	}
	return domain.Idle()
}

// ticketFailed reports not-found and storage failures.
func (d *Dispatcher) ticketFailed(t *turn, err error) {
	if errors.Is(err, domain.ErrTicketNotFound) {
		t.err = err
		t.reply = d.messages.withMenu(d.messages.TicketNotFound)
		return
	}
	d.storageFailed(t, err)
}

func (d *Dispatcher) storageFailed(t *turn, err error) {
	t.err = err
	t.reply = d.messages.withMenu(d.messages.StorageFailure)
}

func (d *Dispatcher) storageContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if d.storageTimeout <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, d.storageTimeout)
}

func (d *Dispatcher) fire(ctx context.Context, ev *domain.DispatchEvent, created, deleted *domain.TicketEvent) {
	if d.hooks.OnDispatch != nil {
		d.hooks.OnDispatch(ctx, ev)
	}
	if created != nil && d.hooks.OnTicketCreated != nil {
		created.Timestamp = ev.Timestamp
		d.hooks.OnTicketCreated(ctx, created)
	}
	if deleted != nil && d.hooks.OnTicketDeleted != nil {
		deleted.Timestamp = ev.Timestamp
		d.hooks.OnTicketDeleted(ctx, deleted)
	}
}

func kindOf(s domain.Session) domain.SessionKind {
	if s.IsIdle() {
		return domain.KindIdle
	}
	return s.Kind
}
