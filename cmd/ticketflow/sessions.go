package main

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

var sessionsCmd = &cobra.Command{
	Use:   "sessions",
	Short: "Manage stored conversation sessions",
	Long:  `List, inspect, and remove the sessions held by the configured session backend.`,
}

var sessionsLsCmd = &cobra.Command{
	Use:   "ls",
	Short: "List users with an active session",
	RunE: func(cmd *cobra.Command, args []string) error {
		rt, err := openRuntime(cmd.Context(), cmd)
		if err != nil {
			return err
		}
		defer rt.Close()

		users, err := rt.Desk.Sessions(cmd.Context())
		if err != nil {
			return fmt.Errorf("listing sessions: %w", err)
		}

		out := cmd.OutOrStdout()
		if len(users) == 0 {
			fmt.Fprintln(out, "No active sessions found.")
			return nil
		}
		fmt.Fprintln(out, "Active Sessions:")
		for _, u := range users {
			s, err := rt.Desk.Session(cmd.Context(), u)
			if err != nil {
				fmt.Fprintf(out, "- %s (unreadable: %v)\n", u, err)
				continue
			}
			fmt.Fprintf(out, "- %s [%s]\n", u, s.Kind)
		}
		return nil
	},
}

var sessionsInspectCmd = &cobra.Command{
	Use:   "inspect <user-id>",
	Short: "Inspect the session of a user",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		rt, err := openRuntime(cmd.Context(), cmd)
		if err != nil {
			return err
		}
		defer rt.Close()

		s, err := rt.Desk.Session(cmd.Context(), args[0])
		if err != nil {
			return fmt.Errorf("loading session '%s': %w", args[0], err)
		}
		data, err := json.MarshalIndent(s, "", "  ")
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), string(data))
		return nil
	},
}

var sessionsRmCmd = &cobra.Command{
	Use:   "rm [user-id]...",
	Short: "Reset one or more sessions to idle",
	RunE: func(cmd *cobra.Command, args []string) error {
		all, _ := cmd.Flags().GetBool("all")
		if len(args) == 0 && !all {
			return errors.New("give at least one user id or --all")
		}

		rt, err := openRuntime(cmd.Context(), cmd)
		if err != nil {
			return err
		}
		defer rt.Close()

		if all {
			if args, err = rt.Desk.Sessions(cmd.Context()); err != nil {
				return fmt.Errorf("listing sessions: %w", err)
			}
		}

		var errs []error
		for _, u := range args {
			if err := rt.Desk.ResetSession(cmd.Context(), u); err != nil {
				errs = append(errs, fmt.Errorf("removing '%s': %w", u, err))
				continue
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Removed session '%s'\n", u)
		}
		return errors.Join(errs...)
	},
}

func init() {
	rootCmd.AddCommand(sessionsCmd)
	sessionsCmd.AddCommand(sessionsLsCmd)
	sessionsCmd.AddCommand(sessionsInspectCmd)
	sessionsCmd.AddCommand(sessionsRmCmd)
	sessionsRmCmd.Flags().Bool("all", false, "Remove every stored session")
}
