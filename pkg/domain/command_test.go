package domain_test

import (
	"context"
	"errors"
	"testing"

	"github.com/aretw0/ticketflow/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseCommand(t *testing.T) {
	cmd, err := domain.ParseCommand(" request_delete ", " 7 ")
	require.NoError(t, err)
	assert.Equal(t, domain.CmdRequestDelete, cmd.Name)
	assert.Equal(t, "7", cmd.TicketID)
	assert.Equal(t, "REQUEST_DELETE{7}", cmd.String())

	cmd, err = domain.ParseCommand("LIST_TICKETS", "")
	require.NoError(t, err)
	assert.Equal(t, "LIST_TICKETS", cmd.String())
}

func TestParseCommand_Malformed(t *testing.T) {
	tests := []struct {
		name     string
		cmd      string
		ticketID string
	}{
		{"Unknown", "DROP_TABLE", ""},
		{"Empty", "", ""},
		{"Delete Without Ticket", "REQUEST_DELETE", ""},
		{"Show Without Ticket", "SHOW_TICKET", "  "},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := domain.ParseCommand(tt.cmd, tt.ticketID)
			var perr *domain.ProtocolError
			assert.True(t, errors.As(err, &perr), "expected ProtocolError, got %v", err)
		})
	}
}

func TestComposeHooks(t *testing.T) {
	var calls []string
	h := domain.ComposeHooks(
		domain.LifecycleHooks{OnDispatch: func(_ context.Context, e *domain.DispatchEvent) { calls = append(calls, "a") }},
		domain.LifecycleHooks{},
		domain.LifecycleHooks{OnDispatch: func(_ context.Context, e *domain.DispatchEvent) { calls = append(calls, "b") }},
	)
	h.OnDispatch(context.Background(), &domain.DispatchEvent{})
	h.OnTicketCreated(context.Background(), &domain.TicketEvent{})
	assert.Equal(t, []string{"a", "b"}, calls)
}
