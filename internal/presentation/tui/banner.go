package tui

import (
	"fmt"
	"io"
	"strings"

	"github.com/muesli/termenv"
)

// PrintBanner writes the ticketflow banner and version to w.
func PrintBanner(w io.Writer, version string) {
	p := termenv.ColorProfile()
	lines := []struct {
		text  string
		color string
	}{
		{" _   _      _        _    __ _", "#38bdf8"},
		{"| |_(_) ___| | _____| |_ / _| | _____      __", "#22d3ee"},
		{"| __| |/ __| |/ / _ \\ __| |_| |/ _ \\ \\ /\\ / /", "#2dd4bf"},
		{"| |_| | (__|   <  __/ |_|  _| | (_) \\ V  V /", "#34d399"},
		{" \\__|_|\\___|_|\\_\\___|\\__|_| |_|\\___/ \\_/\\_/", "#4ade80"},
	}

	fmt.Fprintln(w)
	for _, l := range lines {
		fmt.Fprintln(w, termenv.String(l.text).Foreground(p.Color(l.color)))
	}
	fmt.Fprintln(w, termenv.String("  v"+strings.TrimSpace(version)).Faint())
	fmt.Fprintln(w)
}
