// Package ticket wraps the ticket storage collaborator with ownership
// checks and uniform error reporting.
package ticket

import (
	"context"
	"errors"
	"log/slog"

	"github.com/aretw0/ticketflow/internal/logging"
	"github.com/aretw0/ticketflow/pkg/domain"
	"github.com/aretw0/ticketflow/pkg/ports"
)

// Service creates, lists, fetches and deletes tickets on behalf of a user.
// It holds no mutable state of its own.
type Service struct {
	storage ports.TicketStorage
	logger  *slog.Logger
}

// Option configures the Service.
type Option func(*Service)

// WithLogger configures a logger for the Service.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

// NewService creates a ticket service over the given storage.
func NewService(storage ports.TicketStorage, opts ...Option) *Service {
	s := &Service{
		storage: storage,
		logger:  logging.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Create stores a new open ticket and returns its ID.
func (s *Service) Create(ctx context.Context, userID string, fields domain.Record) (string, error) {
	id, err := s.storage.CreateTicket(ctx, userID, fields.Clone())
	if err != nil {
		return "", s.fail("create", userID, err)
	}
	s.logger.Info("Ticket created", "user_id", userID, "ticket_id", id)
	return id, nil
}

// List returns the user's tickets in creation order.
func (s *Service) List(ctx context.Context, userID string) ([]domain.Ticket, error) {
	tickets, err := s.storage.ListTickets(ctx, userID)
	if err != nil {
		return nil, s.fail("list", userID, err)
	}
	return tickets, nil
}

// Get returns the ticket if it exists and belongs to userID.
// Foreign tickets are reported as domain.ErrTicketNotFound.
func (s *Service) Get(ctx context.Context, userID, ticketID string) (domain.Ticket, error) {
	t, err := s.storage.GetTicket(ctx, ticketID)
	if errors.Is(err, domain.ErrTicketNotFound) {
		return domain.Ticket{}, domain.ErrTicketNotFound
	}
	if err != nil {
		return domain.Ticket{}, s.fail("get", userID, err)
	}
	if !t.OwnedBy(userID) {
		s.logger.Debug("Ticket access denied", "user_id", userID, "ticket_id", ticketID)
		return domain.Ticket{}, domain.ErrTicketNotFound
	}
	return t, nil
}

// Delete removes the user's ticket and returns the deleted copy.
func (s *Service) Delete(ctx context.Context, userID, ticketID string) (domain.Ticket, error) {
	t, err := s.Get(ctx, userID, ticketID)
	if err != nil {
		return domain.Ticket{}, err
	}

	err = s.storage.DeleteTicket(ctx, userID, ticketID)
	if errors.Is(err, domain.ErrTicketNotFound) {
		return domain.Ticket{}, domain.ErrTicketNotFound
	}
	if err != nil {
		return domain.Ticket{}, s.fail("delete", userID, err)
	}
	s.logger.Info("Ticket deleted", "user_id", userID, "ticket_id", ticketID)
	return t, nil
}

func (s *Service) fail(op, userID string, err error) error {
	s.logger.Error("Ticket storage failed", "op", op, "user_id", userID, "err", err)
	return &domain.StorageError{Op: op, Err: err}
}
