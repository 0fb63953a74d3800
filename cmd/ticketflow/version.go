package main

import (
	"fmt"
	"strings"

	"github.com/aretw0/ticketflow"
	"github.com/spf13/cobra"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number of ticketflow",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintln(cmd.OutOrStdout(), "ticketflow", strings.TrimSpace(ticketflow.Version))
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
