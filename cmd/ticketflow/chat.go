package main

import (
	"context"
	"os"

	"github.com/aretw0/ticketflow"
	"github.com/aretw0/ticketflow/internal/cli"
	"github.com/aretw0/ticketflow/internal/presentation/tui"
	"github.com/spf13/cobra"
)

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Talk to the desk in the terminal",
	Long: `Starts an interactive conversation as one user. Plain lines answer the
current question; /start, /list, /show <id>, /delete <id>, /confirm, /cancel
and /help send commands. /quit leaves.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		sigCtx := cli.NewSignalContext(context.Background())
		defer sigCtx.Cancel()

		rt, err := openRuntime(sigCtx, cmd)
		if err != nil {
			return err
		}
		defer rt.Close()

		user, _ := cmd.Flags().GetString("user")
		plain, _ := cmd.Flags().GetBool("plain")

		interactive := !plain && tui.IsInteractive(os.Stdout)
		opts := cli.ChatOptions{
			UserID: user,
			In:     os.Stdin,
			Out:    os.Stdout,
			Styled: interactive,
			Logger: rt.Logger,
		}
		if interactive {
			tui.PrintBanner(os.Stdout, ticketflow.Version)
			opts.Renderer = tui.NewRenderer()
		}
		return cli.Chat(sigCtx, rt.Desk, opts)
	},
}

func init() {
	rootCmd.AddCommand(chatCmd)
	chatCmd.Flags().String("user", defaultUser(), "User to chat as")
	chatCmd.Flags().Bool("plain", false, "Disable markdown rendering and colours")
}

func defaultUser() string {
	if u := os.Getenv("USER"); u != "" {
		return u
	}
	return "cli"
}
