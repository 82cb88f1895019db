package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/multierr"

	"github.com/inodb/vibe-burden/internal/duckdb"
	"github.com/inodb/vibe-burden/internal/output"
	"github.com/inodb/vibe-burden/internal/unit"
)

func newSummaryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "summary [flags] [units]...",
		Short: "Count variants per aggregate unit",
		Long: `Print the number of variants in each aggregate unit and the number of
unique units. Units are read from tables written by 'aggregate' or 'regions',
or from the aggregate_units table of a DuckDB database (--db).`,
		Example: `  vibe-burden summary units.tsv
  vibe-burden summary --db units.duckdb`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSummary(cmd, args)
		},
	}
	cmd.Flags().String("db", "", "read units from this DuckDB database")
	cmd.Flags().StringP("output", "o", "", "output file (default: stdout)")
	return cmd
}

func runSummary(cmd *cobra.Command, paths []string) (err error) {
	dbPath := viper.GetString("db")
	switch {
	case dbPath != "" && len(paths) > 0:
		return usagef("units files and --db are mutually exclusive")
	case dbPath == "" && len(paths) == 0:
		return usagef("a units file or --db is required")
	}

	var counts []unit.GroupCount
	if dbPath != "" {
		counts, err = readStoredCounts(cmd, dbPath)
	} else {
		var c *unit.Collection
		if c, err = output.ReadUnits(paths); err == nil {
			counts = unit.Counts(c)
		}
	}
	if err != nil {
		return err
	}

	out, err := openOutput(cmd, viper.GetString("output"))
	if err != nil {
		return err
	}
	defer multierr.AppendInvoke(&err, multierr.Close(out))

	w := output.NewSummaryWriter(out)
	if err := w.WriteCounts(counts); err != nil {
		return fmt.Errorf("write summary: %w", err)
	}
	if err := w.Flush(); err != nil {
		return fmt.Errorf("flush summary: %w", err)
	}

	fmt.Fprintf(cmd.ErrOrStderr(), "Unique groups: %d\n", len(counts))
	output.WriteStats(cmd.ErrOrStderr(), unit.CountStats(counts))
	return nil
}

func readStoredCounts(cmd *cobra.Command, path string) (_ []unit.GroupCount, err error) {
	store, err := duckdb.Open(path)
	if err != nil {
		return nil, err
	}
	defer multierr.AppendInvoke(&err, multierr.Close(store))
	store.SetLogger(logger)

	return store.GroupCounts(cmd.Context())
}
