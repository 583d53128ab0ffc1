package main

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	dbpkg "github.com/Kinsa/parking-attendant/internal/db"
	"github.com/Kinsa/parking-attendant/internal/parking/service"
)

func newSeedCommand(c *commandContext) *cobra.Command {
	var count int

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Load random dev fixtures (plates entered yesterday)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withApp(cmd.Context(), cmd.ErrOrStderr(), func(a *app) error {
				if a.cfg.Env != "dev" {
					return fmt.Errorf("seed refused: env is %q", a.cfg.Env)
				}
				n, err := dbpkg.SeedDev(cmd.Context(), a.db, dbpkg.SeedDevOptions{
					Count: count,
					Now:   time.Now().In(a.loc),
				})
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Seeded %d entries\n", n)
				return nil
			})
		},
	}

	cmd.Flags().IntVarP(&count, "count", "n", 20, "Number of entries")
	return cmd
}

func newMigrateCommand(c *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or upgrade the entry database schema",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			// Opening the database applies pending migrations.
			return c.withApp(cmd.Context(), cmd.ErrOrStderr(), func(a *app) error {
				v, err := dbpkg.SchemaVersion(cmd.Context(), a.db)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Schema version %d (%s)\n", v, a.cfg.DBPath)
				return nil
			})
		},
	}
}

func newPruneCommand(c *commandContext) *cobra.Command {
	var days int

	cmd := &cobra.Command{
		Use:   "prune",
		Short: "Delete entries older than the retention period",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withApp(cmd.Context(), cmd.ErrOrStderr(), func(a *app) error {
				if !cmd.Flags().Changed("days") {
					days = a.cfg.EntryRetentionDays
				}
				if days <= 0 {
					return errors.New("no retention period: set entry_retention_days or pass --days")
				}
				pruner := service.NewEntryPruner(a.store, service.PrunerConfig{
					RetentionDays: days,
					Location:      a.loc,
				}, a.logger)
				n, err := pruner.PruneOnce(cmd.Context())
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Pruned %d entries older than %d days\n", n, days)
				return nil
			})
		},
	}

	cmd.Flags().IntVar(&days, "days", 0, "Retention in days (default entry_retention_days)")
	return cmd
}
