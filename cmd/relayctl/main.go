// Package main provides relayctl, an operator CLI for the relay: it
// inspects and edits the group registry and sends test messages
// through the same dispatcher the server uses.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"linerelay/internal/config"
	"linerelay/internal/container"
	"linerelay/internal/dispatch"
	"linerelay/internal/logger"
	"linerelay/internal/relay"
)

func main() {
	root := &cobra.Command{
		Use:           "relayctl",
		Short:         "Operator tooling for the LINE relay",
		Long:          "relayctl manages the relay's group registry and sends test messages using the same configuration as the server.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(groupsCmd())
	root.AddCommand(sendCmd())

	if err := root.Execute(); err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// build assembles the dependency graph from the environment, the same
// way the server binaries do.
func build(ctx context.Context) (*container.Container, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	log := logger.New("error")
	return container.Build(ctx, cfg, log)
}

func groupsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "groups",
		Short: "Inspect and edit the group registry",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "Print all registered group ids",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			c, err := build(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = c.Close() }()

			ids, err := c.Groups.ListAll(ctx)
			if err != nil {
				return fmt.Errorf("list groups: %w", err)
			}
			for _, id := range ids {
				fmt.Println(id)
			}
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "add <group-id>",
		Short: "Register a group id",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			c, err := build(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = c.Close() }()

			if err := c.Groups.Add(ctx, args[0]); err != nil {
				return fmt.Errorf("add group: %w", err)
			}
			fmt.Println("added", args[0])
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "remove <group-id>",
		Short: "Remove a group id from the registry",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			c, err := build(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = c.Close() }()

			if err := c.Groups.Remove(ctx, args[0]); err != nil {
				return fmt.Errorf("remove group: %w", err)
			}
			fmt.Println("removed", args[0])
			return nil
		},
	})

	return cmd
}

func sendCmd() *cobra.Command {
	var mode string
	var to string

	cmd := &cobra.Command{
		Use:   "send <message>",
		Short: "Send a test text message",
		Long:  "Sends a plain text message by the given mode: broadcast to all friends, group to every registered group, or all for both. With --to the message goes to that single recipient instead.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			c, err := build(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = c.Close() }()

			if to != "" {
				return c.Dispatcher.Push(ctx, to, args[0])
			}

			payload := dispatch.Payload{Message: args[0]}
			return c.App.Send(ctx, relay.ParseSendMode(mode), payload)
		},
	}

	cmd.Flags().StringVar(&mode, "mode", "broadcast", "delivery mode: broadcast, group, or all")
	cmd.Flags().StringVar(&to, "to", "", "send to a single user/group id instead of fanning out")

	return cmd
}
