package main

import (
	"fmt"
	"math/rand/v2"
	"text/tabwriter"

	"github.com/aretw0/ticketflow/internal/cli"
	"github.com/spf13/cobra"
)

var ticketsCmd = &cobra.Command{
	Use:   "tickets",
	Short: "Inspect and seed tickets",
}

var ticketsLsCmd = &cobra.Command{
	Use:   "ls <user-id>",
	Short: "List a user's tickets",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		rt, err := openRuntime(cmd.Context(), cmd)
		if err != nil {
			return err
		}
		defer rt.Close()

		tickets, err := rt.Desk.Tickets(cmd.Context(), args[0])
		if err != nil {
			return fmt.Errorf("listing tickets: %w", err)
		}
		if len(tickets) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "No tickets found.")
			return nil
		}

		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tSTATUS\tCREATED\tFIELDS")
		for _, t := range tickets {
			fmt.Fprintf(w, "%s\t%s\t%s\t%d\n", t.ID, t.Status, t.CreatedAt.Format("2006-01-02 15:04"), len(t.Fields))
		}
		return w.Flush()
	},
}

var ticketsSeedCmd = &cobra.Command{
	Use:   "seed <user-id>",
	Short: "Create random tickets for development",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		count, _ := cmd.Flags().GetInt("count")

		rt, err := openRuntime(cmd.Context(), cmd)
		if err != nil {
			return err
		}
		defer rt.Close()

		schema := rt.Desk.Schema()
		r := rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
		for i := 0; i < count; i++ {
			id, err := rt.Desk.CreateTicket(cmd.Context(), args[0], cli.RandomRecord(schema, r))
			if err != nil {
				return fmt.Errorf("creating ticket: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Created ticket #%s for '%s'\n", id, args[0])
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(ticketsCmd)
	ticketsCmd.AddCommand(ticketsLsCmd)
	ticketsCmd.AddCommand(ticketsSeedCmd)
	ticketsSeedCmd.Flags().IntP("count", "n", 1, "Number of tickets to create")
}
