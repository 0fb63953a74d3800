package main

import (
	"context"
	"fmt"

	"github.com/aretw0/ticketflow/internal/cli"
	"github.com/aretw0/ticketflow/pkg/adapters/mcp"
	"github.com/spf13/cobra"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Run the Model Context Protocol (MCP) server",
	Long: `Exposes the desk as MCP tools (send_event, list_tickets, get_session) so
that AI agents can drive conversations.

Supported Transports:
- stdio (default): Uses Standard Input/Output. Logs go to Stderr.
- sse: Uses Server-Sent Events over HTTP.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		sigCtx := cli.NewSignalContext(context.Background())
		defer sigCtx.Cancel()

		rt, err := openRuntime(sigCtx, cmd)
		if err != nil {
			return err
		}
		defer rt.Close()

		transport, _ := cmd.Flags().GetString("transport")
		srv := mcp.NewServer(rt.Desk, mcp.WithLogger(rt.Logger))

		switch transport {
		case "stdio":
			rt.Logger.Info("Starting MCP server (stdio)")
			return srv.ServeStdio()
		case "sse":
			addr, _ := cmd.Flags().GetString("sse-addr")
			baseURL, _ := cmd.Flags().GetString("base-url")
			if baseURL == "" {
				baseURL = "http://localhost" + addr
			}
			return srv.ServeSSE(sigCtx, addr, baseURL)
		default:
			return fmt.Errorf("unknown transport %q (supported: stdio, sse)", transport)
		}
	},
}

func init() {
	rootCmd.AddCommand(mcpCmd)
	mcpCmd.Flags().StringP("transport", "t", "stdio", "Transport: stdio or sse")
	mcpCmd.Flags().String("sse-addr", ":8081", "Listen address for the sse transport")
	mcpCmd.Flags().String("base-url", "", "Public base URL for the sse transport")
}
