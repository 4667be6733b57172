package main

import (
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/jonathan/brand-voice/internal/observability"
)

func newProfilesCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "profiles",
		Short: "Manage saved tone profiles",
	}

	var asJSON bool
	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List saved profiles with their indices",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			store, closeStore, err := a.openStore()
			if err != nil {
				return err
			}
			defer func() { _ = closeStore() }()

			saved, err := store.List(cmd.Context())
			if err != nil {
				return fmt.Errorf("failed to list profiles: %w", err)
			}

			if asJSON {
				data, err := json.MarshalIndent(saved, "", "  ")
				if err != nil {
					return fmt.Errorf("failed to marshal profiles: %w", err)
				}
				_, _ = fmt.Fprintln(cmd.OutOrStdout(), string(data))
				return nil
			}
			observability.NewPrinter(cmd.OutOrStdout()).PrintSavedProfiles(saved)
			return nil
		},
	}
	listCmd.Flags().BoolVar(&asJSON, "json", false, "Print the list as JSON")

	showCmd := &cobra.Command{
		Use:   "show <index>",
		Short: "Show a saved profile",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			index, err := parseIndex(args[0])
			if err != nil {
				return err
			}

			store, closeStore, err := a.openStore()
			if err != nil {
				return err
			}
			defer func() { _ = closeStore() }()

			saved, err := store.Get(cmd.Context(), index)
			if err != nil {
				return fmt.Errorf("failed to load profile %d: %w", index, err)
			}
			observability.NewPrinter(cmd.OutOrStdout()).PrintToneProfile(saved.Name, &saved.Profile)
			return nil
		},
	}

	deleteCmd := &cobra.Command{
		Use:   "delete <index>",
		Short: "Delete a saved profile",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			index, err := parseIndex(args[0])
			if err != nil {
				return err
			}

			store, closeStore, err := a.openStore()
			if err != nil {
				return err
			}
			defer func() { _ = closeStore() }()

			removed, err := store.Delete(cmd.Context(), index)
			if err != nil {
				return fmt.Errorf("failed to delete profile %d: %w", index, err)
			}
			_, _ = color.New(color.FgYellow).Fprintf(cmd.OutOrStdout(), "Deleted profile %q\n", removed.Name)
			return nil
		},
	}

	cmd.AddCommand(listCmd, showCmd, deleteCmd)
	return cmd
}

func parseIndex(arg string) (int, error) {
	index, err := strconv.Atoi(arg)
	if err != nil {
		return 0, fmt.Errorf("invalid index %q: must be a number", arg)
	}
	return index, nil
}
