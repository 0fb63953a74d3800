package notify_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"log/slog"
	"testing"

	"github.com/aretw0/ticketflow/internal/logging"
	"github.com/aretw0/ticketflow/pkg/domain"
	"github.com/aretw0/ticketflow/pkg/notify"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingSink struct {
	mu    sync.Mutex
	texts []string
	err   error
}

func (s *recordingSink) Notify(_ context.Context, text string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.texts = append(s.texts, text)
	return s.err
}

func created() *domain.TicketEvent {
	return &domain.TicketEvent{
		UserID:   "42",
		TicketID: "7",
		Ticket: &domain.Ticket{
			ID:     "7",
			UserID: "42",
			Fields: domain.Record{{Name: "name", Value: "Ann"}, {Name: "extra", Value: ""}, {Name: "company", Value: "Acme"}},
		},
	}
}

func TestNotifier_DefaultTemplates(t *testing.T) {
	sink := &recordingSink{}
	hooks := notify.New(sink).Hooks()

	hooks.OnTicketCreated(context.Background(), created())
	hooks.OnTicketDeleted(context.Background(), &domain.TicketEvent{UserID: "42", TicketID: "7"})

	require.Len(t, sink.texts, 2)
	assert.Contains(t, sink.texts[0], "Ticket ID: 7")
	assert.Contains(t, sink.texts[0], "name: Ann\ncompany: Acme")
	assert.Contains(t, sink.texts[1], "Ticket deleted")
}

func TestNotifier_CustomTemplate(t *testing.T) {
	tpl, err := notify.ParseTemplates("#{{.TicketID}} by {{.UserID}}", "")
	require.NoError(t, err)
	sink := &recordingSink{}

	notify.New(sink, notify.WithTemplates(tpl)).Hooks().OnTicketCreated(context.Background(), created())

	assert.Equal(t, []string{"#7 by 42"}, sink.texts)
}

func TestParseTemplates_Invalid(t *testing.T) {
	_, err := notify.ParseTemplates("{{.TicketID", "")
	assert.Error(t, err)
}

func TestNotifier_SinkFailureIsSwallowed(t *testing.T) {
	sink := &recordingSink{err: errors.New("unreachable")}
	assert.NotPanics(t, func() {
		notify.New(sink).Hooks().OnTicketCreated(context.Background(), created())
	})
}

func TestWebhookSink(t *testing.T) {
	var got map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	sink := notify.NewWebhookSink(srv.URL, []string{"1", "2"})
	require.NoError(t, sink.Notify(context.Background(), "hello"))
	assert.Equal(t, "hello", got["text"])
	assert.Equal(t, []any{"1", "2"}, got["admin_ids"])
}

func TestWebhookSink_ErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	err := notify.NewWebhookSink(srv.URL, nil).Notify(context.Background(), "x")
	assert.ErrorContains(t, err, "502")
}

func TestLogSink_MaskedByDefaultPatterns(t *testing.T) {
	var buf bytes.Buffer
	logger := logging.New(slog.LevelInfo, logging.WithOutput(&buf), logging.WithMask(logging.DefaultMaskPatterns...))
	hooks := notify.New(notify.LogSink{Logger: logger}).Hooks()

	hooks.OnTicketCreated(context.Background(), created())

	out := buf.String()
	assert.Contains(t, out, "Operator notification")
	assert.Contains(t, out, notify.LogKey+"=***")
	assert.NotContains(t, out, "Ann")
}
