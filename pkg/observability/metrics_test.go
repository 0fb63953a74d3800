package observability

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"net/http/httptest"
	"testing"

	"github.com/aretw0/ticketflow/pkg/domain"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestMetrics_Hooks(t *testing.T) {
	m := NewMetrics()
	hooks := m.Hooks()
	ctx := context.Background()

	hooks.OnDispatch(ctx, &domain.DispatchEvent{Action: domain.ActionStartForm, From: domain.KindIdle, To: domain.KindFillingForm})
	hooks.OnDispatch(ctx, &domain.DispatchEvent{
		Action: domain.ActionAdvanceForm,
		From:   domain.KindFillingForm,
		To:     domain.KindFillingForm,
		Err:    &domain.ValidationError{Field: "phone", Reason: "too short"},
	})
	hooks.OnDispatch(ctx, &domain.DispatchEvent{
		Action: domain.ActionSubmitTicket,
		Err:    &domain.StorageError{Op: "create", Err: errors.New("down")},
	})
	hooks.OnTicketCreated(ctx, &domain.TicketEvent{TicketID: "1"})

	assert.Equal(t, 1.0, testutil.ToFloat64(m.dispatches.WithLabelValues("start_form", "ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.dispatches.WithLabelValues("advance_form", "invalid")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.dispatches.WithLabelValues("submit_ticket", "storage_error")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.transitions.WithLabelValues("idle", "filling_form")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.tickets.WithLabelValues("created")))

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	assert.Contains(t, rec.Body.String(), "ticketflow_dispatch_total")
}

func TestAuditHooks(t *testing.T) {
	var buf bytes.Buffer
	hooks := AuditHooks(slog.New(slog.NewTextHandler(&buf, nil)))

	hooks.OnDispatch(context.Background(), &domain.DispatchEvent{UserID: "u1", Action: domain.ActionFallback})
	hooks.OnTicketDeleted(context.Background(), &domain.TicketEvent{UserID: "u1", TicketID: "3"})

	assert.Contains(t, buf.String(), "action=fallback")
	assert.Contains(t, buf.String(), "ticket_id=3")
}
