package ports

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/aretw0/ticketflow/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// RunSessionStoreContract runs a suite of tests to verify that a SessionStore
// implementation adheres to the defined interface contract.
func RunSessionStoreContract(t *testing.T, store SessionStore) {
	ctx := context.Background()
	userID := "contract-user-" + time.Now().Format("20060102150405")

	t.Run("Save and Load", func(t *testing.T) {
		session := domain.FillingForm(2, domain.Record{
			{Name: "name", Value: "Ann"},
			{Name: "email", Value: "ann@example.com"},
		})
		session.Revision = 4

		require.NoError(t, store.Save(ctx, userID, session), "Save should not return error")

		loaded, err := store.Load(ctx, userID)
		require.NoError(t, err, "Load should not return error")
		assert.True(t, session.Equal(loaded), "expected %+v, got %+v", session, loaded)
	})

	t.Run("Overwrite Variant", func(t *testing.T) {
		require.NoError(t, store.Save(ctx, userID, domain.AwaitingDeleteConfirmation("42")))

		loaded, err := store.Load(ctx, userID)
		require.NoError(t, err)
		assert.Equal(t, domain.KindAwaitingDeleteConfirmation, loaded.Kind)
		assert.Equal(t, "42", loaded.TicketID)
		assert.Empty(t, loaded.Collected, "previous variant data must not leak")
	})

	t.Run("Load Non-Existent", func(t *testing.T) {
		_, err := store.Load(ctx, "non-existent-"+userID)
		assert.ErrorIs(t, err, domain.ErrSessionNotFound)
	})

	t.Run("Delete", func(t *testing.T) {
		require.NoError(t, store.Save(ctx, userID, domain.FillingForm(0, nil)))

		require.NoError(t, store.Delete(ctx, userID), "Delete should not return error")

		_, err := store.Load(ctx, userID)
		assert.ErrorIs(t, err, domain.ErrSessionNotFound, "Load after Delete should return ErrSessionNotFound")

		assert.NoError(t, store.Delete(ctx, userID), "Deleting twice is not an error")
	})

	t.Run("List", func(t *testing.T) {
		id1 := userID + "-1"
		id2 := userID + "-2"
		_ = store.Save(ctx, id1, domain.FillingForm(0, nil))
		_ = store.Save(ctx, id2, domain.AwaitingDeleteConfirmation("1"))

		defer func() {
			_ = store.Delete(ctx, id1)
			_ = store.Delete(ctx, id2)
		}()

		users, err := store.List(ctx)
		require.NoError(t, err)
		assert.Contains(t, users, id1)
		assert.Contains(t, users, id2)
	})
}

// RunTicketStorageContract runs a suite of tests to verify that a TicketStorage
// implementation adheres to the defined interface contract.
func RunTicketStorageContract(t *testing.T, storage TicketStorage) {
	ctx := context.Background()
	suffix := time.Now().Format("20060102150405.000000000")
	owner := "owner-" + suffix
	other := "other-" + suffix

	fields := domain.Record{
		{Name: "name", Value: "Ann"},
		{Name: "phone", Value: "79111234567"},
	}

	t.Run("Create and Get", func(t *testing.T) {
		id, err := storage.CreateTicket(ctx, owner, fields)
		require.NoError(t, err)
		require.NotEmpty(t, id, "storage must assign an ID")

		ticket, err := storage.GetTicket(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, id, ticket.ID)
		assert.Equal(t, owner, ticket.UserID)
		assert.Equal(t, domain.TicketOpen, ticket.Status)
		assert.Equal(t, fields, ticket.Fields, "field order must be preserved")
		assert.False(t, ticket.CreatedAt.IsZero())
	})

	t.Run("List In Creation Order", func(t *testing.T) {
		user := "lister-" + suffix
		var ids []string
		for i := 0; i < 3; i++ {
			id, err := storage.CreateTicket(ctx, user, domain.Record{{Name: "n", Value: fmt.Sprint(i)}})
			require.NoError(t, err)
			ids = append(ids, id)
		}

		tickets, err := storage.ListTickets(ctx, user)
		require.NoError(t, err)
		require.Len(t, tickets, 3)
		for i, tk := range tickets {
			assert.Equal(t, ids[i], tk.ID)
			assert.Equal(t, user, tk.UserID)
		}

		none, err := storage.ListTickets(ctx, "nobody-"+suffix)
		require.NoError(t, err)
		assert.Empty(t, none)
	})

	t.Run("Get Non-Existent", func(t *testing.T) {
		_, err := storage.GetTicket(ctx, "missing-"+suffix)
		assert.ErrorIs(t, err, domain.ErrTicketNotFound)
	})

	t.Run("Delete Foreign", func(t *testing.T) {
		id, err := storage.CreateTicket(ctx, owner, fields)
		require.NoError(t, err)

		err = storage.DeleteTicket(ctx, other, id)
		assert.ErrorIs(t, err, domain.ErrTicketNotFound)

		_, err = storage.GetTicket(ctx, id)
		assert.NoError(t, err, "foreign delete must leave the ticket in place")
	})

	t.Run("Delete", func(t *testing.T) {
		id, err := storage.CreateTicket(ctx, owner, fields)
		require.NoError(t, err)

		require.NoError(t, storage.DeleteTicket(ctx, owner, id))

		_, err = storage.GetTicket(ctx, id)
		assert.ErrorIs(t, err, domain.ErrTicketNotFound)

		err = storage.DeleteTicket(ctx, owner, id)
		assert.ErrorIs(t, err, domain.ErrTicketNotFound, "second delete reports not found")
	})
}
