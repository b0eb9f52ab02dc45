package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/hookgate/hookgate"
	"github.com/hookgate/hookgate/service/allowlist"
	allowfs "github.com/hookgate/hookgate/service/allowlist/fs"
)

// newStore opens the allow-list store without wiring a messenger, so the
// list can be managed even when no messenger is configured.
func newStore(ctx context.Context) (allowlist.Store, error) {
	config, err := hookgate.LoadConfig(ctx, configURL)
	if err != nil {
		return nil, err
	}
	return allowfs.New(config.AllowListURL), nil
}

// buildAllowCmd creates the "allow" command group for managing the
// always-allow list.
func buildAllowCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "allow",
		Short: "Manage the always-allow tool list",
	}
	cmd.AddCommand(
		buildAllowListCmd(),
		buildAllowAddCmd(),
		buildAllowRemoveCmd(),
		buildAllowClearCmd(),
	)
	return cmd
}

func buildAllowListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "Show tools that are always allowed",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			store, err := newStore(ctx)
			if err != nil {
				return err
			}
			tools := store.List(ctx)
			if len(tools) == 0 {
				cmd.Println("no tools are always allowed")
				return nil
			}
			for _, tool := range tools {
				cmd.Println(tool)
			}
			return nil
		},
	}
}

func buildAllowAddCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "add <tool>",
		Short: "Always allow a tool",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			store, err := newStore(ctx)
			if err != nil {
				return err
			}
			if err := store.Add(ctx, args[0]); err != nil {
				return fmt.Errorf("failed to add %s: %w", args[0], err)
			}
			cmd.Printf("added %s\n", args[0])
			return nil
		},
	}
}

func buildAllowRemoveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "remove <tool>",
		Short: "Stop always allowing a tool",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			store, err := newStore(ctx)
			if err != nil {
				return err
			}
			if err := store.Remove(ctx, args[0]); err != nil {
				return fmt.Errorf("failed to remove %s: %w", args[0], err)
			}
			cmd.Printf("removed %s\n", args[0])
			return nil
		},
	}
}

func buildAllowClearCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Clear the always-allow list",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			store, err := newStore(ctx)
			if err != nil {
				return err
			}
			if err := store.Clear(ctx); err != nil {
				return fmt.Errorf("failed to clear allow list: %w", err)
			}
			cmd.Println("allow list cleared")
			return nil
		},
	}
}
