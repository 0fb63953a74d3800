package normalize

import (
	"errors"
	"strings"

	"github.com/aretw0/ticketflow/pkg/domain"
)

// ErrNoUser is returned when an event carries no user identity.
var ErrNoUser = errors.New("user id is required")

// Event builds a domain event from transport fields.
//
// The command is carried as given, even when malformed; the dispatcher
// decides whether it is usable. An empty commandName means no command.
func Event(userID, text, commandName, ticketID string) (domain.Event, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return domain.Event{}, ErrNoUser
	}

	clean, err := Sanitize(text)
	if err != nil {
		return domain.Event{}, err
	}

	ev := domain.Event{UserID: userID, Text: clean}
	if strings.TrimSpace(commandName) != "" {
		ev.Command = &domain.Command{
			Name:     domain.CommandName(strings.ToUpper(strings.TrimSpace(commandName))),
			TicketID: strings.TrimSpace(ticketID),
		}
	}
	return ev, nil
}

var slashCommands = map[string]domain.CommandName{
	"/start":   domain.CmdStartForm,
	"/new":     domain.CmdStartForm,
	"/list":    domain.CmdListTickets,
	"/show":    domain.CmdShowTicket,
	"/delete":  domain.CmdRequestDelete,
	"/confirm": domain.CmdConfirmDelete,
	"/cancel":  domain.CmdCancel,
	"/help":    domain.CmdHelp,
}

// ParseSlash reads a chat line such as "/delete 7" as a command.
// Lines that are not a known slash command report ok == false and should be
// sent as plain text.
func ParseSlash(line string) (name domain.CommandName, ticketID string, ok bool) {
	fields := strings.Fields(line)
	if len(fields) == 0 || !strings.HasPrefix(fields[0], "/") {
		return "", "", false
	}
	name, ok = slashCommands[strings.ToLower(fields[0])]
	if !ok {
		return "", "", false
	}
	if len(fields) > 1 {
		ticketID = strings.TrimPrefix(fields[1], "#")
	}
	return name, ticketID, true
}

// Line converts one line of chat input to an event. A slash command keeps
// the raw line as text for when its command turns out malformed.
func Line(userID, line string) (domain.Event, error) {
	if name, id, ok := ParseSlash(line); ok {
		return Event(userID, line, string(name), id)
	}
	return Event(userID, line, "", "")
}

var slashNames = map[domain.CommandName]string{
	domain.CmdStartForm:     "/start",
	domain.CmdListTickets:   "/list",
	domain.CmdShowTicket:    "/show",
	domain.CmdRequestDelete: "/delete",
	domain.CmdConfirmDelete: "/confirm",
	domain.CmdCancel:        "/cancel",
	domain.CmdHelp:          "/help",
}

// SlashLine is the inverse of ParseSlash: the chat line that sends cmd.
func SlashLine(cmd domain.Command) string {
	name, ok := slashNames[cmd.Name]
	if !ok {
		return ""
	}
	if cmd.TicketID != "" {
		return name + " " + cmd.TicketID
	}
	return name
}
