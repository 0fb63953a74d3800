package dispatch

import (
	"fmt"
	"strings"

	"github.com/aretw0/ticketflow/pkg/domain"
)

// DefaultListLimit caps the number of ticket choices attached to a list.
const DefaultListLimit = 5

// Messages holds every user-facing string the dispatcher produces.
// Entries containing %s receive a ticket ID or a reason.
type Messages struct {
	Welcome          string
	FormStarted      string
	FieldRejected    string // %s: reason
	TicketCreated    string // %s: ticket ID
	NoTickets        string
	TicketListHeader string
	TicketListMore   string // %d shown, %d total
	TicketNotFound   string
	ConfirmDelete    string // %s: ticket ID
	TicketDeleted    string // %s: ticket ID
	DeleteCancelled  string
	NothingToConfirm string
	Cancelled        string
	NotUnderstood    string
	StorageFailure   string

	StartLabel   string
	ListLabel    string
	HelpLabel    string
	DeleteLabel  string
	ConfirmLabel string
	CancelLabel  string
}

// DefaultMessages returns the stock English texts.
func DefaultMessages() Messages {
	return Messages{
		Welcome:          "Welcome! I can help you file a request for a website or an IT product.",
		FormStarted:      "Great, let's fill in the form. I will ask one question at a time.",
		FieldRejected:    "That doesn't look right: %s.",
		TicketCreated:    "Thank you! Ticket #%s has been created. We will contact you soon.",
		NoTickets:        "You have no tickets yet. Would you like to create one?",
		TicketListHeader: "Your tickets:",
		TicketListMore:   "Showing %d of %d tickets.",
		TicketNotFound:   "Ticket not found or you don't have access to it.",
		ConfirmDelete:    "Are you sure you want to delete ticket #%s? This cannot be undone.",
		TicketDeleted:    "Ticket #%s has been deleted.",
		DeleteCancelled:  "Deletion cancelled.",
		NothingToConfirm: "There is nothing to confirm.",
		Cancelled:        "Cancelled. Start a new ticket any time.",
		NotUnderstood:    "Sorry, I didn't understand that.",
		StorageFailure:   "Something went wrong on our side. Please try again later.",

		StartLabel:   "New ticket",
		ListLabel:    "My tickets",
		HelpLabel:    "Help",
		DeleteLabel:  "Delete ticket",
		ConfirmLabel: "Yes, delete",
		CancelLabel:  "Cancel",
	}
}

func (m Messages) menu() []domain.Choice {
	return []domain.Choice{
		{Label: m.StartLabel, Command: domain.Command{Name: domain.CmdStartForm}},
		{Label: m.ListLabel, Command: domain.Command{Name: domain.CmdListTickets}},
		{Label: m.HelpLabel, Command: domain.Command{Name: domain.CmdHelp}},
	}
}

func (m Messages) formChoices() []domain.Choice {
	return []domain.Choice{
		{Label: m.CancelLabel, Command: domain.Command{Name: domain.CmdCancel}},
	}
}

func (m Messages) text(lines ...string) domain.OutgoingMessage {
	return domain.OutgoingMessage{Text: strings.Join(lines, "\n")}
}

func (m Messages) withMenu(lines ...string) domain.OutgoingMessage {
	msg := m.text(lines...)
	msg.Choices = m.menu()
	return msg
}

func (m Messages) ticketList(tickets []domain.Ticket, limit int) domain.OutgoingMessage {
	if len(tickets) == 0 {
		return m.withMenu(m.NoTickets)
	}

	lines := []string{m.TicketListHeader, ""}
	for i, t := range tickets {
		lines = append(lines, fmt.Sprintf("%d. Ticket #%s from %s", i+1, t.ID, t.CreatedAt.Format("2006-01-02")))
	}

	shown := tickets
	if limit > 0 && len(shown) > limit {
		shown = shown[:limit]
		lines = append(lines, "", fmt.Sprintf(m.TicketListMore, limit, len(tickets)))
	}

	msg := m.text(lines...)
	for _, t := range shown {
		msg.Choices = append(msg.Choices, domain.Choice{
			Label:   "#" + t.ID,
			Command: domain.Command{Name: domain.CmdShowTicket, TicketID: t.ID},
		})
	}
	msg.Choices = append(msg.Choices, domain.Choice{
		Label:   m.StartLabel,
		Command: domain.Command{Name: domain.CmdStartForm},
	})
	return msg
}

func (m Messages) ticketDetail(t domain.Ticket) domain.OutgoingMessage {
	lines := []string{
		fmt.Sprintf("Ticket #%s (%s)", t.ID, t.Status),
		"Created: " + t.CreatedAt.Format("2006-01-02 15:04"),
		"",
	}
	for _, e := range t.Fields {
		lines = append(lines, fmt.Sprintf("%s: %s", e.Name, e.Value))
	}

	msg := m.text(lines...)
	msg.Choices = []domain.Choice{
		{Label: m.DeleteLabel, Command: domain.Command{Name: domain.CmdRequestDelete, TicketID: t.ID}},
		{Label: m.ListLabel, Command: domain.Command{Name: domain.CmdListTickets}},
	}
	return msg
}

func (m Messages) confirmDelete(ticketID string) domain.OutgoingMessage {
	msg := m.text(fmt.Sprintf(m.ConfirmDelete, ticketID))
	msg.Choices = []domain.Choice{
		{Label: m.ConfirmLabel, Command: domain.Command{Name: domain.CmdConfirmDelete, TicketID: ticketID}},
		{Label: m.CancelLabel, Command: domain.Command{Name: domain.CmdCancel}},
	}
	return msg
}
