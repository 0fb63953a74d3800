// Package http exposes the desk over HTTP/JSON.
package http

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/aretw0/ticketflow/internal/logging"
	"github.com/aretw0/ticketflow/pkg/domain"
	"github.com/aretw0/ticketflow/pkg/normalize"
	"github.com/go-chi/chi/v5"
)

// Desk is the part of the desk the HTTP transport needs.
type Desk interface {
	Handle(ctx context.Context, ev domain.Event) (domain.OutgoingMessage, error)
	Tickets(ctx context.Context, userID string) ([]domain.Ticket, error)
}

// EventRequest is the body of POST /v1/events.
type EventRequest struct {
	UserID   string `json:"user_id"`
	Text     string `json:"text,omitempty"`
	Command  string `json:"command,omitempty"`
	TicketID string `json:"ticket_id,omitempty"`
}

// TicketListResponse is the body of GET /v1/users/{userID}/tickets.
type TicketListResponse struct {
	Tickets []domain.Ticket `json:"tickets"`
}

type errorResponse struct {
	Error string `json:"error"`
}

const maxBodySize = 1 << 20

// Server routes HTTP requests to the desk.
type Server struct {
	Desk   Desk
	logger *slog.Logger
}

// Option configures the Server.
type Option func(*Server)

// WithLogger sets the request logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// NewHandler creates a new HTTP handler for the desk.
func NewHandler(desk Desk, opts ...Option) http.Handler {
	server := &Server{
		Desk:   desk,
		logger: logging.NewNop(),
	}
	for _, opt := range opts {
		opt(server)
	}

	r := chi.NewRouter()
	r.Use(enableCORS)
	r.Get("/healthz", server.GetHealth)
	r.Route("/v1", func(r chi.Router) {
		r.Post("/events", server.PostEvent)
		r.Get("/users/{userID}/tickets", server.ListTickets)
	})
	return r
}

// GetHealth reports liveness.
func (s *Server) GetHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// PostEvent dispatches one user turn and returns the reply.
func (s *Server) PostEvent(w http.ResponseWriter, r *http.Request) {
	var req EventRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodySize)).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid JSON body"})
		return
	}

	ev, err := normalize.Event(req.UserID, req.Text, req.Command, req.TicketID)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}

	reply, err := s.Desk.Handle(r.Context(), ev)
	if err != nil {
		s.logger.Error("dispatch failed", "user_id", ev.UserID, "error", err)
		status := http.StatusInternalServerError
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
			status = http.StatusServiceUnavailable
		}
		writeJSON(w, status, errorResponse{Error: "request could not be processed"})
		return
	}
	writeJSON(w, http.StatusOK, reply)
}

// ListTickets returns the user's tickets.
func (s *Server) ListTickets(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")
	tickets, err := s.Desk.Tickets(r.Context(), userID)
	if err != nil {
		s.logger.Error("list tickets failed", "user_id", userID, "error", err)
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "tickets are unavailable"})
		return
	}
	if tickets == nil {
		tickets = []domain.Ticket{}
	}
	writeJSON(w, http.StatusOK, TicketListResponse{Tickets: tickets})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func enableCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// ListenAndServe serves handler on addr until ctx is cancelled, then shuts
// down gracefully.
func ListenAndServe(ctx context.Context, addr string, handler http.Handler, logger *slog.Logger) error {
	if logger == nil {
		logger = logging.NewNop()
	}
	srv := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("http server listening", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err, ok := <-errCh:
		if ok {
			return err
		}
		return nil
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	logger.Info("http server shutting down", "addr", addr)
	return srv.Shutdown(shutdownCtx)
}
