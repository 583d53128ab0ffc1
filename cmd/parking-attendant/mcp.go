package main

import (
	"github.com/spf13/cobra"

	"github.com/Kinsa/parking-attendant/internal/mcptool"
)

func newMCPCommand(c *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "mcp",
		Short: "Serve the vehicle_lookup tool over MCP stdio",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			// Stdout carries the protocol; logs go to stderr.
			return c.withApp(cmd.Context(), cmd.ErrOrStderr(), func(a *app) error {
				return mcptool.ServeStdio(mcptool.NewServer(version, a.lookup))
			})
		},
	}
}
