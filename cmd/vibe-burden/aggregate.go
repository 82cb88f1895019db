package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/inodb/vibe-burden/internal/aggregate"
	"github.com/inodb/vibe-burden/internal/duckdb"
	"github.com/inodb/vibe-burden/internal/output"
	"github.com/inodb/vibe-burden/internal/table"
	"github.com/inodb/vibe-burden/internal/unit"
)

func newAggregateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "aggregate [flags] <table>...",
		Short: "Group annotated variants into per-gene units",
		Long: `Load one or more tab-separated annotation tables, drop variants without a
gene, keep variants whose score exceeds the threshold and whose consequence
matches the pattern, and write one row per retained variant.

Tables may be gzipped. Use '-' to read from stdin.`,
		Example: `  vibe-burden aggregate --threshold 15 --consequence missense_variant annotated.tsv
  vibe-burden aggregate --match term --consequence intron_variant -o units.tsv chr*.tsv.gz
  vibe-burden aggregate --db units.duckdb --stats annotated.tsv`,
		Args: minArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAggregate(cmd, args)
		},
	}

	cmd.Flags().String("gene-column", aggregate.DefaultGeneColumn, "column holding the gene id")
	addFilterFlags(cmd)
	addExportFlags(cmd)
	return cmd
}

// addFilterFlags registers the table, column and filter flags shared by
// aggregate and regions.
func addFilterFlags(cmd *cobra.Command) {
	f := cmd.Flags()
	f.String("chrom-column", aggregate.DefaultChromColumn, "column holding the chromosome")
	f.String("pos-column", aggregate.DefaultPosColumn, "column holding the 1-based position")
	f.String("ref-column", aggregate.DefaultRefColumn, "column holding the reference allele")
	f.String("alt-column", aggregate.DefaultAltColumn, "column holding the alternate allele")
	f.String("score-column", aggregate.DefaultScoreColumn, "column holding the deleteriousness score (empty disables the score filter)")
	f.Float64("threshold", 0, "keep variants with score strictly greater than this")
	f.String("consequence-column", aggregate.DefaultConsequenceColumn, "column holding the consequence")
	f.String("consequence", "", "consequence pattern (empty disables the consequence filter)")
	f.String("match", "substring", "consequence match mode: substring, term or regexp")
	f.String("missing", table.DefaultMissingToken, "cell text marking a missing value")
}

// addExportFlags registers the output flags shared by aggregate and regions.
func addExportFlags(cmd *cobra.Command) {
	f := cmd.Flags()
	f.StringP("output", "o", "", "output file (default: stdout)")
	f.String("db", "", "also write units to the aggregate_units table of this DuckDB database")
	f.Bool("stats", false, "print the unit size distribution to stderr")
}

func variantColumnsFromConfig() aggregate.VariantColumns {
	return aggregate.VariantColumns{
		Chrom: viper.GetString("chrom-column"),
		Pos:   viper.GetString("pos-column"),
		Ref:   viper.GetString("ref-column"),
		Alt:   viper.GetString("alt-column"),
	}
}

func filterFromConfig() (aggregate.Filter, error) {
	mode, err := aggregate.ParseMatchMode(viper.GetString("match"))
	if err != nil {
		return aggregate.Filter{}, &usageError{err: err}
	}
	return aggregate.Filter{
		ScoreColumn:        viper.GetString("score-column"),
		ScoreThreshold:     viper.GetFloat64("threshold"),
		ConsequenceColumn:  viper.GetString("consequence-column"),
		ConsequencePattern: viper.GetString("consequence"),
		Match:              mode,
	}, nil
}

func loadTable(paths []string) (*table.Table, error) {
	t, err := table.Load(paths, viper.GetString("missing"))
	if err != nil {
		return nil, err
	}
	logger.Info("loaded annotation tables",
		zap.Int("files", len(paths)),
		zap.Int("rows", t.Len()))
	return t, nil
}

func runAggregate(cmd *cobra.Command, paths []string) error {
	filter, err := filterFromConfig()
	if err != nil {
		return err
	}
	opts := aggregate.Options{
		GeneColumn: viper.GetString("gene-column"),
		Filter:     filter,
		Columns:    variantColumnsFromConfig(),
	}

	t, err := loadTable(paths)
	if err != nil {
		return err
	}

	agg := aggregate.New(opts)
	agg.SetLogger(logger)
	return exportUnits(cmd, aggregate.NewProvider(t, agg))
}

// exportUnits builds the units of p and writes them to the configured outputs.
func exportUnits(cmd *cobra.Command, p unit.Provider) error {
	ctx := cmd.Context()
	c, err := p.Units(ctx)
	if err != nil {
		return err
	}
	logger.Info("built aggregate units",
		zap.Int("groups", c.Len()),
		zap.Int("variants", c.VariantCount()))

	if err := writeUnits(cmd, c); err != nil {
		return err
	}
	if path := viper.GetString("db"); path != "" {
		if err := storeUnits(ctx, path, c); err != nil {
			return err
		}
	}
	if viper.GetBool("stats") {
		output.WriteStats(cmd.ErrOrStderr(), unit.SizeStats(c))
	}
	return nil
}

func writeUnits(cmd *cobra.Command, c *unit.Collection) (err error) {
	out, err := openOutput(cmd, viper.GetString("output"))
	if err != nil {
		return err
	}
	defer multierr.AppendInvoke(&err, multierr.Close(out))

	w := output.NewUnitWriter(out)
	if err := w.WriteCollection(c); err != nil {
		return fmt.Errorf("write units: %w", err)
	}
	if err := w.Flush(); err != nil {
		return fmt.Errorf("flush units: %w", err)
	}
	return nil
}

func storeUnits(ctx context.Context, path string, c *unit.Collection) (err error) {
	store, err := duckdb.Open(path)
	if err != nil {
		return err
	}
	defer multierr.AppendInvoke(&err, multierr.Close(store))
	store.SetLogger(logger)

	if err := store.WriteUnits(ctx, c); err != nil {
		return err
	}
	logger.Info("stored units", zap.String("db", path))
	return nil
}
