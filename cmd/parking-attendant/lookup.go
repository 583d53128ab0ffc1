package main

import (
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/Kinsa/parking-attendant/internal/grpcapi"
	"github.com/Kinsa/parking-attendant/internal/parking/store"
	"github.com/Kinsa/parking-attendant/internal/parking/types"
)

func newLookupCommand(c *commandContext) *cobra.Command {
	var (
		window   string
		from     string
		to       string
		remote   string
		jsonFlag bool
	)

	cmd := &cobra.Command{
		Use:   "lookup <vrm>",
		Short: "Find parking sessions for a registration mark",
		Long: "Find parking sessions for a registration mark, tolerating common camera misreads.\n" +
			"Times use the layout YYYY-MM-DD HH:MM:SS in the configured time zone.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			req := types.LookupRequest{VRM: args[0], Window: window, QueryFrom: from, QueryTo: to}

			var resp types.LookupResponse
			var err error
			if remote != "" {
				err = withRemote(remote, func(client *grpcapi.Client) (err error) {
					resp, err = client.Lookup(cmd.Context(), req)
					return err
				})
			} else {
				err = c.withApp(cmd.Context(), cmd.ErrOrStderr(), func(a *app) (err error) {
					resp, err = a.lookup.Lookup(cmd.Context(), req)
					return err
				})
			}
			if err != nil {
				return err
			}

			if wantJSON(cmd, jsonFlag) {
				return writeJSON(cmd, resp)
			}
			printLookup(cmd.OutOrStdout(), resp, c.reference(to))
			return nil
		},
	}

	cmd.Flags().StringVarP(&window, "window", "w", "", "Session length in minutes (default from config)")
	cmd.Flags().StringVar(&from, "from", "", "Ignore entries before this time")
	cmd.Flags().StringVar(&to, "to", "", "Reference time (default now)")
	cmd.Flags().StringVar(&remote, "remote", "", "Query a running server's gRPC address instead of the local database")
	cmd.Flags().BoolVar(&jsonFlag, "json", false, "Output JSON")
	return cmd
}

// reference is the instant relative ages are measured from: the --to value
// when it parses, otherwise now.
func (c *commandContext) reference(to string) time.Time {
	loc := c.location()
	if to != "" {
		if t, err := time.ParseInLocation(store.TimeLayout, to, loc); err == nil {
			return t
		}
	}
	return time.Now().In(loc)
}

func printLookup(w io.Writer, resp types.LookupResponse, ref time.Time) {
	fmt.Fprintln(w, resp.Message)
	if len(resp.Results) == 1 && resp.Results[0].SessionStart == nil {
		return
	}

	rows := make([][]string, 0, len(resp.Results))
	for _, r := range resp.Results {
		distance := ""
		if r.Distance != nil {
			distance = strconv.Itoa(*r.Distance)
		}
		rows = append(rows, []string{
			r.VRM,
			r.Session,
			deref(r.SessionStart),
			relative(deref(r.SessionStart), ref),
			deref(r.SessionEnd),
			distance,
		})
	}
	fmt.Fprintln(w, renderTable(
		[]string{"VRM", "Session", "Entered", "", "Ends", "Distance"},
		rows,
		[]columnAlignment{alignLeft, alignLeft, alignLeft, alignLeft, alignLeft, alignRight},
	))
}

func relative(raw string, ref time.Time) string {
	t, err := time.ParseInLocation(store.TimeLayout, raw, ref.Location())
	if err != nil {
		return ""
	}
	return humanize.RelTime(t, ref, "ago", "from now")
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
