package main

import (
	"fmt"
	"io"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/Kinsa/parking-attendant/internal/grpcapi"
	"github.com/Kinsa/parking-attendant/internal/parking/types"
)

func newSearchCommand(c *commandContext) *cobra.Command {
	var (
		at       string
		window   string
		remote   string
		jsonFlag bool
	)

	cmd := &cobra.Command{
		Use:   "search <plate>",
		Short: "Exact or prefix plate search with expiry status",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			req := types.PlateSearchRequest{Plate: args[0], Datetime: at, Window: window}

			var resp types.PlateSearchResponse
			var err error
			if remote != "" {
				err = withRemote(remote, func(client *grpcapi.Client) (err error) {
					resp, err = client.SearchPlate(cmd.Context(), req)
					return err
				})
			} else {
				err = c.withApp(cmd.Context(), cmd.ErrOrStderr(), func(a *app) (err error) {
					resp, err = a.lookup.SearchPlate(cmd.Context(), req)
					return err
				})
			}
			if err != nil {
				return err
			}

			if wantJSON(cmd, jsonFlag) {
				return writeJSON(cmd, resp)
			}
			printSearch(cmd.OutOrStdout(), resp)
			return nil
		},
	}

	cmd.Flags().StringVar(&at, "at", "", "Reference time (default now)")
	cmd.Flags().StringVarP(&window, "window", "w", "", "Session length in minutes (default from config)")
	cmd.Flags().StringVar(&remote, "remote", "", "Query a running server's gRPC address instead of the local database")
	cmd.Flags().BoolVar(&jsonFlag, "json", false, "Output JSON")
	return cmd
}

func printSearch(w io.Writer, resp types.PlateSearchResponse) {
	fmt.Fprintln(w, resp.Message)
	if !resp.Found {
		return
	}

	rows := make([][]string, 0, len(resp.Results))
	for _, r := range resp.Results {
		rows = append(rows, []string{
			r.LicensePlate,
			deref(r.TimeIn),
			deref(r.ExpirationTime),
			strconv.FormatBool(r.Expired),
		})
	}
	fmt.Fprintln(w, renderTable([]string{"Plate", "Time in", "Expires", "Expired"}, rows, nil))
}
