// Package mcp exposes the desk as Model Context Protocol tools.
package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/aretw0/ticketflow"
	"github.com/aretw0/ticketflow/internal/logging"
	"github.com/aretw0/ticketflow/pkg/domain"
	"github.com/aretw0/ticketflow/pkg/form"
	"github.com/aretw0/ticketflow/pkg/normalize"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// SchemaURI is the resource describing the form fields.
const SchemaURI = "ticketflow://schema"

// Desk is the part of the desk the MCP server drives.
type Desk interface {
	Handle(ctx context.Context, ev domain.Event) (domain.OutgoingMessage, error)
	Tickets(ctx context.Context, userID string) ([]domain.Ticket, error)
	Session(ctx context.Context, userID string) (domain.Session, error)
	Schema() form.Schema
}

// SendEventArgs are the arguments of the send_event tool.
type SendEventArgs struct {
	UserID   string `json:"user_id"`
	Text     string `json:"text,omitempty"`
	Command  string `json:"command,omitempty"`
	TicketID string `json:"ticket_id,omitempty"`
}

// EventResponse is the structured result of send_event.
type EventResponse struct {
	Reply   domain.OutgoingMessage `json:"reply" jsonschema_description:"The desk reply with optional choices"`
	Session domain.SessionKind     `json:"session" jsonschema_description:"The user's session state after the event"`
}

// Server wraps the desk and exposes it as an MCP Server.
type Server struct {
	desk      Desk
	mcpServer *server.MCPServer
	logger    *slog.Logger
}

// Option configures the Server.
type Option func(*Server)

// WithLogger sets the server logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// NewServer creates a new MCP Server instance.
func NewServer(desk Desk, opts ...Option) *Server {
	s := &Server{
		desk:      desk,
		mcpServer: server.NewMCPServer("ticketflow-mcp", strings.TrimSpace(ticketflow.Version)),
		logger:    logging.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.registerTools()
	s.registerResources()
	return s
}

// ServeStdio starts the server on Stdin/Stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcpServer)
}

// ServeSSE serves the MCP SSE transport on addr until ctx is cancelled.
func (s *Server) ServeSSE(ctx context.Context, addr, baseURL string) error {
	sseServer := server.NewSSEServer(s.mcpServer, server.WithBaseURL(baseURL))

	mux := http.NewServeMux()
	mux.Handle("/sse", sseServer.SSEHandler())
	mux.Handle("/message", sseServer.MessageHandler())

	httpServer := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serverErrors := make(chan error, 1)
	go func() {
		s.logger.Info("MCP server listening (SSE)", "addr", addr)
		serverErrors <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("could not stop server gracefully: %w", err)
		}
		return nil
	}
}

func (s *Server) registerTools() {
	sendTool := mcp.NewTool("send_event",
		mcp.WithDescription("Send one user turn to the ticket desk: free text answers the current form question, a command starts, lists, shows, deletes, confirms or cancels."),
		mcp.WithString("user_id", mcp.Required(), mcp.Description("The user the turn belongs to")),
		mcp.WithString("text", mcp.Description("Free text typed by the user")),
		mcp.WithString("command", mcp.Description("START_FORM, LIST_TICKETS, SHOW_TICKET, REQUEST_DELETE, CONFIRM_DELETE, CANCEL or HELP")),
		mcp.WithString("ticket_id", mcp.Description("Ticket argument for SHOW_TICKET, REQUEST_DELETE and CONFIRM_DELETE")),
		mcp.WithOutputSchema[EventResponse](),
	)
	s.mcpServer.AddTool(sendTool, mcp.NewStructuredToolHandler(s.handleSendEvent))

	s.mcpServer.AddTool(mcp.NewTool("list_tickets",
		mcp.WithDescription("List a user's tickets as JSON."),
		mcp.WithString("user_id", mcp.Required(), mcp.Description("The ticket owner")),
	), s.handleListTickets)

	s.mcpServer.AddTool(mcp.NewTool("get_session",
		mcp.WithDescription("Show a user's current conversation state as JSON."),
		mcp.WithString("user_id", mcp.Required(), mcp.Description("The user to inspect")),
	), s.handleGetSession)
}

func (s *Server) handleSendEvent(ctx context.Context, request mcp.CallToolRequest, args SendEventArgs) (EventResponse, error) {
	ev, err := normalize.Event(args.UserID, args.Text, args.Command, args.TicketID)
	if err != nil {
		return EventResponse{}, fmt.Errorf("event rejected: %w", err)
	}

	reply, err := s.desk.Handle(ctx, ev)
	if err != nil {
		s.logger.Error("MCP send_event failed", "user_id", ev.UserID, "error", err)
		return EventResponse{}, fmt.Errorf("dispatch failed: %w", err)
	}

	resp := EventResponse{Reply: reply, Session: domain.KindIdle}
	if current, err := s.desk.Session(ctx, ev.UserID); err == nil && !current.IsIdle() {
		resp.Session = current.Kind
	}
	return resp, nil
}

func (s *Server) handleListTickets(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	userID := strings.TrimSpace(request.GetString("user_id", ""))
	if userID == "" {
		return mcp.NewToolResultError("user_id is required"), nil
	}
	tickets, err := s.desk.Tickets(ctx, userID)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("list failed: %v", err)), nil
	}
	if tickets == nil {
		tickets = []domain.Ticket{}
	}
	jsonBytes, _ := json.Marshal(tickets)
	return mcp.NewToolResultText(string(jsonBytes)), nil
}

func (s *Server) handleGetSession(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	userID := strings.TrimSpace(request.GetString("user_id", ""))
	if userID == "" {
		return mcp.NewToolResultError("user_id is required"), nil
	}
	current, err := s.desk.Session(ctx, userID)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("session lookup failed: %v", err)), nil
	}
	jsonBytes, _ := json.Marshal(current)
	return mcp.NewToolResultText(string(jsonBytes)), nil
}

type schemaField struct {
	Name     string `json:"name"`
	Prompt   string `json:"prompt"`
	Required bool   `json:"required"`
}

func (s *Server) schemaJSON() []byte {
	schema := s.desk.Schema()
	fields := make([]schemaField, len(schema))
	for i, f := range schema {
		fields[i] = schemaField{Name: f.Name, Prompt: f.Prompt, Required: f.Required}
	}
	jsonBytes, _ := json.Marshal(fields)
	return jsonBytes
}

func (s *Server) registerResources() {
	s.mcpServer.AddResource(mcp.NewResource(SchemaURI, "Ticket Form Fields",
		mcp.WithMIMEType("application/json"),
	), func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		return []mcp.ResourceContents{
			mcp.TextResourceContents{
				URI:      SchemaURI,
				MIMEType: "application/json",
				Text:     string(s.schemaJSON()),
			},
		}, nil
	})
}
