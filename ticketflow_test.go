package ticketflow_test

import (
	"context"
	"sync/atomic"
	"testing"

	"github.com/aretw0/ticketflow"
	"github.com/aretw0/ticketflow/pkg/domain"
	"github.com/aretw0/ticketflow/pkg/form"
	"github.com/aretw0/ticketflow/pkg/validate"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDesk_FullConversation(t *testing.T) {
	var created atomic.Int32
	desk, err := ticketflow.New(ticketflow.WithLifecycleHooks(domain.LifecycleHooks{
		OnTicketCreated: func(ctx context.Context, e *domain.TicketEvent) { created.Add(1) },
	}))
	require.NoError(t, err)

	ctx := context.Background()
	answers := []string{"Ann", "ann@example.com", "+7 (911) 123-45-67", "Acme", "Website", "Landing page", ""}

	_, err = desk.HandleLine(ctx, "u1", "/start")
	require.NoError(t, err)
	for _, a := range answers {
		_, err = desk.HandleLine(ctx, "u1", a)
		require.NoError(t, err)
	}

	s, err := desk.Session(ctx, "u1")
	require.NoError(t, err)
	assert.True(t, s.IsIdle())
	assert.Equal(t, int32(1), created.Load())

	tickets, err := desk.Tickets(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, tickets, 1)
	name, _ := tickets[0].Fields.Get("name")
	assert.Equal(t, "Ann", name)

	reply, err := desk.HandleLine(ctx, "u1", "/delete #"+tickets[0].ID)
	require.NoError(t, err)
	assert.Contains(t, reply.Text, tickets[0].ID)

	_, err = desk.HandleLine(ctx, "u1", "/confirm")
	require.NoError(t, err)

	tickets, err = desk.Tickets(ctx, "u1")
	require.NoError(t, err)
	assert.Empty(t, tickets)
}

func TestDesk_SessionsAndReset(t *testing.T) {
	desk, err := ticketflow.New()
	require.NoError(t, err)
	ctx := context.Background()

	_, err = desk.Handle(ctx, domain.Event{UserID: "u2", Command: &domain.Command{Name: domain.CmdStartForm}})
	require.NoError(t, err)

	users, err := desk.Sessions(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"u2"}, users)

	require.NoError(t, desk.ResetSession(ctx, "u2"))
	users, err = desk.Sessions(ctx)
	require.NoError(t, err)
	assert.Empty(t, users)
}

func TestDesk_CustomSchema(t *testing.T) {
	schema := form.Schema{
		{Name: "topic", Prompt: "Topic?", Required: true, Validator: validate.Text(40)},
	}
	desk, err := ticketflow.New(ticketflow.WithSchema(schema))
	require.NoError(t, err)
	assert.Equal(t, []string{"topic"}, desk.Schema().Names())

	ctx := context.Background()
	_, err = desk.HandleLine(ctx, "u3", "/new")
	require.NoError(t, err)
	_, err = desk.HandleLine(ctx, "u3", "printer on fire")
	require.NoError(t, err)

	tickets, err := desk.Tickets(ctx, "u3")
	require.NoError(t, err)
	require.Len(t, tickets, 1)
}

func TestDesk_InvalidSchema(t *testing.T) {
	_, err := ticketflow.New(ticketflow.WithSchema(form.Schema{}))
	assert.Error(t, err)
}

func TestDesk_HandleLineRequiresUser(t *testing.T) {
	desk, err := ticketflow.New()
	require.NoError(t, err)
	_, err = desk.HandleLine(context.Background(), " ", "hello")
	assert.Error(t, err)
}

func TestVersion(t *testing.T) {
	assert.NotEmpty(t, ticketflow.Version)
}

func TestDesk_MalformedSlashCommandIsFormText(t *testing.T) {
	desk, err := ticketflow.New()
	require.NoError(t, err)
	ctx := context.Background()

	_, err = desk.HandleLine(ctx, "u4", "/start")
	require.NoError(t, err)
	reply, err := desk.HandleLine(ctx, "u4", "/show")
	require.NoError(t, err)
	assert.NotContains(t, reply.Text, "required")

	s, err := desk.Session(ctx, "u4")
	require.NoError(t, err)
	assert.Equal(t, 1, s.FieldIndex)
	name, _ := s.Collected.Get("name")
	assert.Equal(t, "/show", name)
}
