// Package tui renders desk replies for the terminal chat.
package tui

import (
	"fmt"
	"os"
	"strings"

	"github.com/aretw0/ticketflow/pkg/domain"
	"github.com/aretw0/ticketflow/pkg/normalize"
	"github.com/charmbracelet/glamour"
	"github.com/muesli/termenv"
	"golang.org/x/term"
)

// ContentRenderer turns markdown into terminal output.
type ContentRenderer func(string) (string, error)

// NewRenderer returns a glamour markdown renderer with automatic light/dark
// style detection.
func NewRenderer() ContentRenderer {
	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(80),
	)
	if err != nil {
		return nil
	}
	return func(markdown string) (string, error) {
		return r.Render(markdown)
	}
}

// IsInteractive reports whether f is attached to a terminal.
func IsInteractive(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}

// Message renders a reply: the text through render (when non-nil) followed
// by the choices, each shown with the line that selects it.
func Message(msg domain.OutgoingMessage, render ContentRenderer, styled bool) string {
	var b strings.Builder

	body := msg.Text
	if render != nil {
		if out, err := render(markdownLines(body)); err == nil {
			body = out
		}
	}
	b.WriteString(strings.TrimRight(body, "\n"))

	if len(msg.Choices) > 0 {
		b.WriteString("\n")
	}
	p := termenv.ColorProfile()
	for _, c := range msg.Choices {
		line := normalize.SlashLine(c.Command)
		entry := fmt.Sprintf("  %-24s %s", c.Label, line)
		if styled {
			label := termenv.String(fmt.Sprintf("%-24s", c.Label)).Bold()
			hint := termenv.String(line).Foreground(p.Color("#22d3ee"))
			entry = fmt.Sprintf("  %s %s", label, hint)
		}
		b.WriteString("\n")
		b.WriteString(entry)
	}
	return b.String()
}

// markdownLines keeps reply lines apart; markdown would join them into one
// paragraph.
func markdownLines(text string) string {
	return strings.ReplaceAll(text, "\n", "  \n")
}
