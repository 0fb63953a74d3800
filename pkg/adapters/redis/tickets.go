package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/aretw0/ticketflow/pkg/domain"
	backend "github.com/redis/go-redis/v9"
)

// TicketStore implements ports.TicketStorage using Redis.
//
// Keys:
//
//	<prefix>ticket:seq             INCR counter, source of ticket IDs
//	<prefix>ticket:<id>            ticket JSON
//	<prefix>user:<uid>:tickets     ZSET of ticket IDs scored by sequence
type TicketStore struct {
	client *backend.Client
	prefix string
}

// NewTicketStore creates a ticket store on an existing client.
func NewTicketStore(client *backend.Client, prefix string) *TicketStore {
	if prefix == "" {
		prefix = DefaultPrefix
	}
	return &TicketStore{client: client, prefix: prefix}
}

func (s *TicketStore) seqKey() string             { return s.prefix + "ticket:seq" }
func (s *TicketStore) ticketKey(id string) string { return s.prefix + "ticket:" + id }
func (s *TicketStore) userKey(uid string) string  { return s.prefix + "user:" + uid + ":tickets" }

func (s *TicketStore) CreateTicket(ctx context.Context, userID string, fields domain.Record) (string, error) {
	seq, err := s.client.Incr(ctx, s.seqKey()).Result()
	if err != nil {
		return "", fmt.Errorf("failed to allocate ticket id: %w", err)
	}
	id := strconv.FormatInt(seq, 10)

	t := domain.Ticket{
		ID:        id,
		UserID:    userID,
		Fields:    fields.Clone(),
		Status:    domain.TicketOpen,
		CreatedAt: time.Now().UTC(),
	}
	data, err := json.Marshal(t)
	if err != nil {
		return "", fmt.Errorf("failed to marshal ticket: %w", err)
	}

	_, err = s.client.TxPipelined(ctx, func(pipe backend.Pipeliner) error {
		pipe.Set(ctx, s.ticketKey(id), data, 0)
		pipe.ZAdd(ctx, s.userKey(userID), backend.Z{Score: float64(seq), Member: id})
		return nil
	})
	if err != nil {
		return "", fmt.Errorf("failed to store ticket: %w", err)
	}
	return id, nil
}

func (s *TicketStore) ListTickets(ctx context.Context, userID string) ([]domain.Ticket, error) {
	ids, err := s.client.ZRange(ctx, s.userKey(userID), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list ticket ids: %w", err)
	}
	if len(ids) == 0 {
		return []domain.Ticket{}, nil
	}

	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = s.ticketKey(id)
	}
	vals, err := s.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to load tickets: %w", err)
	}

	tickets := make([]domain.Ticket, 0, len(vals))
	for _, v := range vals {
		raw, ok := v.(string)
		if !ok {
			continue // deleted between ZRANGE and MGET
		}
		var t domain.Ticket
		if err := json.Unmarshal([]byte(raw), &t); err != nil {
			return nil, fmt.Errorf("failed to unmarshal ticket: %w", err)
		}
		tickets = append(tickets, t)
	}
	return tickets, nil
}

func (s *TicketStore) GetTicket(ctx context.Context, ticketID string) (domain.Ticket, error) {
	return s.get(ctx, s.client, ticketID)
}

func (s *TicketStore) get(ctx context.Context, c backend.Cmdable, ticketID string) (domain.Ticket, error) {
	raw, err := c.Get(ctx, s.ticketKey(ticketID)).Result()
	if errors.Is(err, backend.Nil) {
		return domain.Ticket{}, domain.ErrTicketNotFound
	}
	if err != nil {
		return domain.Ticket{}, fmt.Errorf("failed to get ticket: %w", err)
	}

	var t domain.Ticket
	if err := json.Unmarshal([]byte(raw), &t); err != nil {
		return domain.Ticket{}, fmt.Errorf("failed to unmarshal ticket: %w", err)
	}
	return t, nil
}

// DeleteTicket checks ownership and deletes inside an optimistic transaction.
func (s *TicketStore) DeleteTicket(ctx context.Context, userID, ticketID string) error {
	key := s.ticketKey(ticketID)
	err := s.client.Watch(ctx, func(tx *backend.Tx) error {
		t, err := s.get(ctx, tx, ticketID)
		if err != nil {
			return err
		}
		if !t.OwnedBy(userID) {
			return domain.ErrTicketNotFound
		}
		_, err = tx.TxPipelined(ctx, func(pipe backend.Pipeliner) error {
			pipe.Del(ctx, key)
			pipe.ZRem(ctx, s.userKey(userID), ticketID)
			return nil
		})
		return err
	}, key)

	if errors.Is(err, backend.TxFailedErr) {
		// Someone else changed the ticket first.
		n, existsErr := s.client.Exists(ctx, key).Result()
		if existsErr == nil && n == 0 {
			return domain.ErrTicketNotFound
		}
		return fmt.Errorf("ticket %s changed during delete: %w", ticketID, err)
	}
	return err
}
