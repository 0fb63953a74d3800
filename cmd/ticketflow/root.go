package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/aretw0/ticketflow/internal/cli"
	"github.com/aretw0/ticketflow/internal/config"
	"github.com/aretw0/ticketflow/internal/logging"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "ticketflow",
	Short: "ticketflow is a conversational ticket desk",
	Long: `ticketflow walks users through a request form one message at a time,
files the answers as a ticket, and lets them list, inspect and delete their
tickets. It can be served over HTTP, as an MCP tool server, or used directly
as a terminal chat.

Configuration comes from the environment, a .env file and --config.`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and runs it.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().String("config", "", "Optional config file (.env, .yaml, .json, .toml)")
	rootCmd.PersistentFlags().String("log-level", "", "Log level: debug, info, warn, error")
}

// flagBindings maps command flags onto configuration keys.
var flagBindings = map[string]string{
	"log-level":    "LOG_LEVEL",
	"addr":         "HTTP_ADDR",
	"metrics-addr": "METRICS_ADDR",
}

// loadConfig resolves configuration for cmd; explicit flags win over
// the environment.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	path, _ := cmd.Flags().GetString("config")

	config.LoadDotEnv()
	v, err := config.New(path)
	if err != nil {
		return nil, err
	}
	for name, key := range flagBindings {
		if f := cmd.Flags().Lookup(name); f != nil && f.Changed {
			if err := v.BindPFlag(key, f); err != nil {
				return nil, err
			}
		}
	}
	return config.Decode(v)
}

func newLogger(cfg *config.Config) *slog.Logger {
	return logging.New(logging.ParseLevel(cfg.LogLevel), logging.WithMask(logging.DefaultMaskPatterns...))
}

// openRuntime builds the desk for cmd; callers must Close it.
func openRuntime(ctx context.Context, cmd *cobra.Command) (*cli.Runtime, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}
	return cli.Build(ctx, cfg, newLogger(cfg))
}
