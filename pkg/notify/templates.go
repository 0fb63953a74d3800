// Package notify tells operators about created and deleted tickets.
package notify

import (
	"fmt"
	"strings"
	"text/template"

	"github.com/aretw0/ticketflow/pkg/domain"
)

const (
	DefaultNewTicketTemplate = "New ticket!\n\nTicket ID: {{.TicketID}}\nFrom user: {{.UserID}}\n\n{{.Summary}}"

	DefaultTicketDeletedTemplate = "Ticket deleted by user\n\nTicket ID: {{.TicketID}}\nUser: {{.UserID}}"
)

// Data is the template input.
type Data struct {
	TicketID string
	UserID   string
	Fields   domain.Record
	Summary  string // "name: value" lines in form order
}

// Templates renders notification texts.
type Templates struct {
	newTicket     *template.Template
	ticketDeleted *template.Template
}

// ParseTemplates compiles the two templates; empty strings select defaults.
func ParseTemplates(newTicket, ticketDeleted string) (*Templates, error) {
	if newTicket == "" {
		newTicket = DefaultNewTicketTemplate
	}
	if ticketDeleted == "" {
		ticketDeleted = DefaultTicketDeletedTemplate
	}

	nt, err := template.New("new_ticket").Option("missingkey=error").Parse(newTicket)
	if err != nil {
		return nil, fmt.Errorf("parse new ticket template: %w", err)
	}
	dt, err := template.New("ticket_deleted").Option("missingkey=error").Parse(ticketDeleted)
	if err != nil {
		return nil, fmt.Errorf("parse ticket deleted template: %w", err)
	}
	return &Templates{newTicket: nt, ticketDeleted: dt}, nil
}

// NewTicket renders the creation notice.
func (t *Templates) NewTicket(ev *domain.TicketEvent) (string, error) {
	return render(t.newTicket, ev)
}

// TicketDeleted renders the deletion notice.
func (t *Templates) TicketDeleted(ev *domain.TicketEvent) (string, error) {
	return render(t.ticketDeleted, ev)
}

func render(tpl *template.Template, ev *domain.TicketEvent) (string, error) {
	data := Data{TicketID: ev.TicketID, UserID: ev.UserID}
	if ev.Ticket != nil {
		data.Fields = ev.Ticket.Fields
		data.Summary = summary(ev.Ticket.Fields)
	}

	var b strings.Builder
	if err := tpl.Execute(&b, data); err != nil {
		return "", err
	}
	return b.String(), nil
}

func summary(fields domain.Record) string {
	lines := make([]string, 0, len(fields))
	for _, e := range fields {
		if e.Value == "" {
			continue
		}
		lines = append(lines, e.Name+": "+e.Value)
	}
	return strings.Join(lines, "\n")
}
