package memory

import (
	"context"
	"strconv"
	"sync"
	"time"

	"github.com/aretw0/ticketflow/pkg/domain"
)

// TicketStore implements ports.TicketStorage in memory.
// IDs are sequential decimal strings starting at 1.
type TicketStore struct {
	mu      sync.RWMutex
	seq     int
	tickets map[string]domain.Ticket
	byUser  map[string][]string // creation order
	now     func() time.Time
}

// NewTicketStore creates an empty ticket store.
func NewTicketStore() *TicketStore {
	return &TicketStore{
		tickets: make(map[string]domain.Ticket),
		byUser:  make(map[string][]string),
		now:     time.Now,
	}
}

func (s *TicketStore) CreateTicket(ctx context.Context, userID string, fields domain.Record) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.seq++
	id := strconv.Itoa(s.seq)
	s.tickets[id] = domain.Ticket{
		ID:        id,
		UserID:    userID,
		Fields:    fields.Clone(),
		Status:    domain.TicketOpen,
		CreatedAt: s.now().UTC(),
	}
	s.byUser[userID] = append(s.byUser[userID], id)
	return id, nil
}

func (s *TicketStore) ListTickets(ctx context.Context, userID string) ([]domain.Ticket, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	ids := s.byUser[userID]
	out := make([]domain.Ticket, 0, len(ids))
	for _, id := range ids {
		out = append(out, copyTicket(s.tickets[id]))
	}
	return out, nil
}

func (s *TicketStore) GetTicket(ctx context.Context, ticketID string) (domain.Ticket, error) {
	if err := ctx.Err(); err != nil {
		return domain.Ticket{}, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	t, ok := s.tickets[ticketID]
	if !ok {
		return domain.Ticket{}, domain.ErrTicketNotFound
	}
	return copyTicket(t), nil
}

func (s *TicketStore) DeleteTicket(ctx context.Context, userID, ticketID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	t, ok := s.tickets[ticketID]
	if !ok || !t.OwnedBy(userID) {
		return domain.ErrTicketNotFound
	}
	delete(s.tickets, ticketID)

	ids := s.byUser[userID]
	for i, id := range ids {
		if id == ticketID {
			s.byUser[userID] = append(ids[:i:i], ids[i+1:]...)
			break
		}
	}
	if len(s.byUser[userID]) == 0 {
		delete(s.byUser, userID)
	}
	return nil
}

// Len returns the number of stored tickets.
func (s *TicketStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.tickets)
}

func copyTicket(t domain.Ticket) domain.Ticket {
	t.Fields = t.Fields.Clone()
	return t
}
