package http_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/aretw0/ticketflow"
	httpadapter "github.com/aretw0/ticketflow/pkg/adapters/http"
	"github.com/aretw0/ticketflow/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type failingDesk struct{}

func (failingDesk) Handle(ctx context.Context, ev domain.Event) (domain.OutgoingMessage, error) {
	return domain.OutgoingMessage{}, errors.New("session store down")
}

func (failingDesk) Tickets(ctx context.Context, userID string) ([]domain.Ticket, error) {
	return nil, errors.New("storage down")
}

func newHandler(t *testing.T) http.Handler {
	t.Helper()
	desk, err := ticketflow.New()
	require.NoError(t, err)
	return httpadapter.NewHandler(desk)
}

func post(t *testing.T, h http.Handler, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/v1/events", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func TestGetHealth(t *testing.T) {
	h := newHandler(t)
	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"ok"`)
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
}

func TestPostEvent_StartForm(t *testing.T) {
	h := newHandler(t)
	w := post(t, h, `{"user_id":"42","command":"start_form"}`)
	require.Equal(t, http.StatusOK, w.Code)

	var reply domain.OutgoingMessage
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &reply))
	assert.Contains(t, reply.Text, "(1/7)")
}

func TestPostEvent_FormAndListing(t *testing.T) {
	h := newHandler(t)
	require.Equal(t, http.StatusOK, post(t, h, `{"user_id":"42","command":"START_FORM"}`).Code)
	for _, a := range []string{"Ann", "ann@example.com", "+7 (911) 123-45-67", "Acme", "Website", "Landing page", ""} {
		body, _ := json.Marshal(httpadapter.EventRequest{UserID: "42", Text: a})
		require.Equal(t, http.StatusOK, post(t, h, string(body)).Code)
	}

	req := httptest.NewRequest(http.MethodGet, "/v1/users/42/tickets", nil)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	var resp httpadapter.TicketListResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp.Tickets, 1)
	assert.Equal(t, "42", resp.Tickets[0].UserID)
}

func TestListTickets_EmptyIsArray(t *testing.T) {
	h := newHandler(t)
	req := httptest.NewRequest(http.MethodGet, "/v1/users/nobody/tickets", nil)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"tickets":[]}`, w.Body.String())
}

func TestPostEvent_BadRequests(t *testing.T) {
	h := newHandler(t)
	assert.Equal(t, http.StatusBadRequest, post(t, h, `not json`).Code)
	assert.Equal(t, http.StatusBadRequest, post(t, h, `{"text":"hi"}`).Code)
	assert.Equal(t, http.StatusBadRequest, post(t, h, `{"user_id":"1","text":"\xff"}`).Code)
}

func TestPostEvent_MalformedCommandIsNotAnError(t *testing.T) {
	h := newHandler(t)
	w := post(t, h, `{"user_id":"1","command":"SHOW_TICKET"}`)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestServer_DeskFailures(t *testing.T) {
	h := httpadapter.NewHandler(failingDesk{})
	assert.Equal(t, http.StatusInternalServerError, post(t, h, `{"user_id":"1","text":"hi"}`).Code)

	req := httptest.NewRequest(http.MethodGet, "/v1/users/1/tickets", nil)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
}

func TestCORSPreflight(t *testing.T) {
	h := newHandler(t)
	req := httptest.NewRequest(http.MethodOptions, "/v1/events", nil)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestListenAndServe_StopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- httpadapter.ListenAndServe(ctx, "127.0.0.1:0", http.NotFoundHandler(), nil)
	}()
	cancel()
	assert.NoError(t, <-done)
}
