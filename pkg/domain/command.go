package domain

import (
	"fmt"
	"strings"
)

// CommandName identifies a structured command.
type CommandName string

// Structured command vocabulary.
const (
	CmdStartForm     CommandName = "START_FORM"
	CmdListTickets   CommandName = "LIST_TICKETS"
	CmdShowTicket    CommandName = "SHOW_TICKET"
	CmdRequestDelete CommandName = "REQUEST_DELETE"
	CmdConfirmDelete CommandName = "CONFIRM_DELETE"
	CmdCancel        CommandName = "CANCEL"
	CmdHelp          CommandName = "HELP"
)

var knownCommands = map[CommandName]bool{
	CmdStartForm:     false,
	CmdListTickets:   false,
	CmdShowTicket:    true,
	CmdRequestDelete: true,
	CmdConfirmDelete: false,
	CmdCancel:        false,
	CmdHelp:          false,
}

// Command is a named, explicitly triggered action.
// TicketID is required by SHOW_TICKET and REQUEST_DELETE and optional for
// CONFIRM_DELETE, where it must match the pending ticket when given.
type Command struct {
	Name     CommandName `json:"name"`
	TicketID string      `json:"ticket_id,omitempty"`
}

// ParseCommand builds a command from transport-provided strings.
// Names are matched case-insensitively.
func ParseCommand(name, ticketID string) (*Command, error) {
	cmd := &Command{
		Name:     CommandName(strings.ToUpper(strings.TrimSpace(name))),
		TicketID: strings.TrimSpace(ticketID),
	}
	if err := cmd.Validate(); err != nil {
		return nil, err
	}
	return cmd, nil
}

// Validate checks the command against the vocabulary.
func (c Command) Validate() error {
	needsTicket, ok := knownCommands[c.Name]
	if !ok {
		return &ProtocolError{Command: string(c.Name), Reason: ErrUnknownCommand.Error()}
	}
	if needsTicket && c.TicketID == "" {
		return &ProtocolError{Command: string(c.Name), Reason: "ticket_id is required"}
	}
	return nil
}

func (c Command) String() string {
	if c.TicketID == "" {
		return string(c.Name)
	}
	return fmt.Sprintf("%s{%s}", c.Name, c.TicketID)
}

// Event is one normalized inbound user turn.
// When Command is present and well-formed it takes precedence over Text.
type Event struct {
	UserID  string   `json:"user_id"`
	Text    string   `json:"text,omitempty"`
	Command *Command `json:"command,omitempty"`
}
