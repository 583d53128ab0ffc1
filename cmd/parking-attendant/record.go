package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Kinsa/parking-attendant/internal/grpcapi"
	"github.com/Kinsa/parking-attendant/internal/parking/types"
)

func newRecordCommand(c *commandContext) *cobra.Command {
	var (
		at       string
		remote   string
		jsonFlag bool
	)

	cmd := &cobra.Command{
		Use:   "record <vrm>",
		Short: "Record a vehicle entry",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			req := types.EntryRequest{VRM: args[0], EnteredAt: at}

			var resp types.EntryResponse
			var err error
			if remote != "" {
				err = withRemote(remote, func(client *grpcapi.Client) (err error) {
					resp, err = client.RecordEntry(cmd.Context(), req)
					return err
				})
			} else {
				err = c.withApp(cmd.Context(), cmd.ErrOrStderr(), func(a *app) (err error) {
					resp, err = a.entries.Record(cmd.Context(), req)
					return err
				})
			}
			if err != nil {
				return err
			}

			if wantJSON(cmd, jsonFlag) {
				return writeJSON(cmd, resp)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Recorded entry %d: %s at %s\n", resp.ID, resp.VRM, resp.EnteredAt)
			return nil
		},
	}

	cmd.Flags().StringVar(&at, "at", "", "Entry time (default now)")
	cmd.Flags().StringVar(&remote, "remote", "", "Record through a running server's gRPC address")
	cmd.Flags().BoolVar(&jsonFlag, "json", false, "Output JSON")
	return cmd
}
