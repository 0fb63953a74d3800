package main

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func run(t *testing.T, args ...string) string {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	require.NoError(t, rootCmd.Execute())
	return out.String()
}

func TestVersionCommand(t *testing.T) {
	assert.True(t, strings.HasPrefix(run(t, "version"), "ticketflow "))
}

func TestTicketsSeedAndList_FileSessions(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	t.Setenv("TICKET_BACKEND", "memory")
	t.Setenv("SESSION_BACKEND", "file")
	t.Setenv("SESSION_DIR", dir)

	out := run(t, "tickets", "seed", "u1", "-n", "2")
	assert.Contains(t, out, "Created ticket #1")
	assert.Contains(t, out, "Created ticket #2")

	// Memory tickets do not outlive the process.
	assert.Contains(t, run(t, "tickets", "ls", "u1"), "No tickets found.")
	assert.Contains(t, run(t, "sessions", "ls"), "No active sessions found.")
}

func TestSessionsRmRequiresTarget(t *testing.T) {
	t.Chdir(t.TempDir())
	rootCmd.SetArgs([]string{"sessions", "rm"})
	rootCmd.SetOut(&bytes.Buffer{})
	rootCmd.SetErr(&bytes.Buffer{})
	assert.Error(t, rootCmd.Execute())
}

func TestCommandsRegistered(t *testing.T) {
	names := map[string]bool{}
	for _, c := range rootCmd.Commands() {
		names[c.Name()] = true
	}
	for _, want := range []string{"serve", "chat", "mcp", "sessions", "tickets", "version"} {
		assert.True(t, names[want], want)
	}
}
