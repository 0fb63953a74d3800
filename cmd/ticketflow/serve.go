package main

import (
	"context"
	"errors"
	"net/http"

	"github.com/aretw0/ticketflow/internal/cli"
	httpadapter "github.com/aretw0/ticketflow/pkg/adapters/http"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP server",
	Long: `Serves the desk as a JSON API:

  POST /v1/events                   one user turn {user_id, text, command, ticket_id}
  GET  /v1/users/{userID}/tickets   the user's tickets
  GET  /healthz                     liveness

With --metrics-addr (or METRICS_ADDR) Prometheus metrics are served on /metrics.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		sigCtx := cli.NewSignalContext(context.Background())
		defer sigCtx.Cancel()

		rt, err := openRuntime(sigCtx, cmd)
		if err != nil {
			return err
		}
		defer rt.Close()

		handler := httpadapter.NewHandler(rt.Desk, httpadapter.WithLogger(rt.Logger))

		errs := make(chan error, 2)
		servers := 1
		go func() {
			errs <- httpadapter.ListenAndServe(sigCtx, rt.Config.HTTPAddr, handler, rt.Logger)
		}()
		if addr := rt.Config.MetricsAddr; addr != "" {
			servers++
			mux := http.NewServeMux()
			mux.Handle("/metrics", rt.Metrics.Handler())
			go func() {
				errs <- httpadapter.ListenAndServe(sigCtx, addr, mux, rt.Logger)
			}()
		}

		var result error
		for i := 0; i < servers; i++ {
			if err := <-errs; err != nil {
				result = errors.Join(result, err)
				sigCtx.Cancel()
			}
		}
		if sig := sigCtx.Signal(); sig != nil {
			rt.Logger.Info("Server stopped", "signal", sig.String())
		}
		return result
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().String("addr", ":8080", "HTTP listen address")
	serveCmd.Flags().String("metrics-addr", "", "Prometheus /metrics listen address")
}
