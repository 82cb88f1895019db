package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/inodb/vibe-burden/internal/duckdb"
	"github.com/inodb/vibe-burden/internal/genedb"
	"github.com/inodb/vibe-burden/internal/output"
	"github.com/inodb/vibe-burden/internal/region"
)

func newRegionsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "regions [flags] <table>...",
		Short: "Group variants by merged transcript regions",
		Long: `Query a transcript coordinate database for the transcripts overlapping the
variants, merge overlapping transcripts into gene regions and group the
variants by the region that contains them. Variants outside every region
are dropped. The unit id is the region label chrom:start-end.

The coordinate database is a GTF/GFF file (--gtf), a DuckDB database built
by 'vibe-burden import' (--genes-db), or, when neither is given, the
database or GENCODE GTF found under ~/.vibe-burden/<assembly>/.`,
		Example: `  vibe-burden regions --gtf gencode.v46.annotation.gtf.gz variants.tsv
  vibe-burden regions --genes-db ~/.vibe-burden/grch38/transcripts.duckdb --threshold 20 variants.tsv
  vibe-burden regions --regions-out regions.tsv -o units.tsv variants.tsv`,
		Args: minArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRegions(cmd, args)
		},
	}

	cmd.Flags().String("gtf", "", "GTF/GFF transcript annotation file")
	cmd.Flags().String("genes-db", "", "DuckDB coordinate database built by 'vibe-burden import'")
	cmd.Flags().String("assembly", "GRCh38", "genome assembly used to find the default coordinate database")
	cmd.Flags().String("regions-out", "", "write the merged gene regions to this file")
	addFilterFlags(cmd)
	addExportFlags(cmd)
	return cmd
}

func runRegions(cmd *cobra.Command, paths []string) (err error) {
	filter, err := filterFromConfig()
	if err != nil {
		return err
	}

	db, closeDB, err := openCoordinates(cmd.Context(), viper.GetString("gtf"), viper.GetString("genes-db"), viper.GetString("assembly"))
	if err != nil {
		return err
	}
	defer multierr.AppendInvoke(&err, multierr.Invoke(closeDB))

	t, err := loadTable(paths)
	if err != nil {
		return err
	}

	p := region.NewProvider(t, db, filter, variantColumnsFromConfig())
	p.SetLogger(logger)
	if err := exportUnits(cmd, p); err != nil {
		return err
	}

	logger.Info("merged gene regions", zap.Int("regions", len(p.Regions())))
	if path := viper.GetString("regions-out"); path != "" {
		return writeRegions(path, p.Regions())
	}
	return nil
}

// openCoordinates opens the coordinate database selected by the flags. The
// returned close function must be called once the database is no longer used.
func openCoordinates(ctx context.Context, gtfPath, dbPath, assembly string) (region.OverlapQuerier, func() error, error) {
	if gtfPath != "" && dbPath != "" {
		return nil, nil, usagef("--gtf and --genes-db are mutually exclusive")
	}

	if gtfPath == "" && dbPath == "" {
		if p := DefaultDBPath(assembly); p != "" {
			if _, err := os.Stat(p); err == nil {
				dbPath = p
			}
		}
		if dbPath == "" {
			p, found := FindGENCODEGTF(assembly)
			if !found {
				return nil, nil, fmt.Errorf("no coordinate database found for %s", assembly)
			}
			gtfPath = p
		}
	}

	if dbPath != "" {
		store, err := duckdb.Open(dbPath)
		if err != nil {
			return nil, nil, err
		}
		store.SetLogger(logger)
		n, err := store.TranscriptCount(ctx)
		if err != nil {
			return nil, nil, multierr.Append(err, store.Close())
		}
		logger.Info("opened coordinate database", zap.String("db", dbPath), zap.Int("transcripts", n))
		return store, store.Close, nil
	}

	transcripts, err := genedb.LoadGFF(gtfPath)
	if err != nil {
		return nil, nil, err
	}
	idx := genedb.NewIndex(transcripts)
	logger.Info("loaded transcripts",
		zap.String("gtf", gtfPath),
		zap.Int("transcripts", idx.TranscriptCount()),
		zap.Int("chromosomes", len(idx.Chromosomes())))
	return idx, func() error { return nil }, nil
}

func writeRegions(path string, regions []region.GeneRegion) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create regions file: %w", err)
	}
	defer multierr.AppendInvoke(&err, multierr.Close(f))

	w := output.NewRegionWriter(f)
	if err := w.WriteHeader(); err != nil {
		return fmt.Errorf("write regions: %w", err)
	}
	for _, r := range regions {
		if err := w.Write(r); err != nil {
			return fmt.Errorf("write regions: %w", err)
		}
	}
	return w.Flush()
}
