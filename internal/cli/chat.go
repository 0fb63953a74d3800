package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/aretw0/ticketflow/internal/logging"
	"github.com/aretw0/ticketflow/internal/presentation/tui"
	"github.com/aretw0/ticketflow/pkg/domain"
)

// ChatDesk is what the chat loop talks to.
type ChatDesk interface {
	HandleLine(ctx context.Context, userID, line string) (domain.OutgoingMessage, error)
}

// ChatOptions configures Chat.
type ChatOptions struct {
	UserID   string
	In       io.Reader
	Out      io.Writer
	Renderer tui.ContentRenderer
	// Styled colours the choice list.
	Styled bool
	Logger *slog.Logger
}

var quitLines = map[string]bool{"/quit": true, "/exit": true, "/q": true}

// Chat runs an interactive conversation for one user until the input ends,
// the user types /quit, or ctx is cancelled.
func Chat(ctx context.Context, desk ChatDesk, opts ChatOptions) error {
	if opts.UserID == "" {
		return errors.New("chat: user id is required")
	}
	if opts.Logger == nil {
		opts.Logger = logging.NewNop()
	}

	lines := make(chan string)
	readErr := make(chan error, 1)
	go func() {
		scanner := bufio.NewScanner(opts.In)
		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-ctx.Done():
				return
			}
		}
		readErr <- scanner.Err()
		close(lines)
	}()

	turn(ctx, desk, opts, "/help")

	for {
		fmt.Fprint(opts.Out, "> ")
		select {
		case <-ctx.Done():
			fmt.Fprintln(opts.Out)
			return nil
		case line, ok := <-lines:
			if !ok {
				fmt.Fprintln(opts.Out)
				return <-readErr
			}
			if quitLines[strings.ToLower(strings.TrimSpace(line))] {
				return nil
			}
			turn(ctx, desk, opts, line)
		}
	}
}

// turn sends one line. Failures are reported and the conversation goes on.
func turn(ctx context.Context, desk ChatDesk, opts ChatOptions, line string) {
	reply, err := desk.HandleLine(ctx, opts.UserID, line)
	if err != nil {
		if ctx.Err() != nil {
			return
		}
		opts.Logger.Warn("Chat turn failed", "user_id", opts.UserID, "error", err)
		fmt.Fprintf(opts.Out, ">>> %v\n", err)
		return
	}
	fmt.Fprintln(opts.Out, tui.Message(reply, opts.Renderer, opts.Styled))
}
