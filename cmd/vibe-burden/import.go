package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/inodb/vibe-burden/internal/duckdb"
	"github.com/inodb/vibe-burden/internal/genedb"
)

func newImportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "import [flags] [gtf]",
		Short: "Import transcripts into a DuckDB coordinate database",
		Long: `Read transcript features from a GTF/GFF file and store them in a DuckDB
coordinate database for 'vibe-burden regions --genes-db'. The import is
skipped when the file has not changed since the last import.

Without arguments the GENCODE GTF under ~/.vibe-burden/<assembly>/ is used.`,
		Example: `  vibe-burden import
  vibe-burden import --genes-db genes.duckdb gencode.v46.basic.annotation.gtf.gz
  vibe-burden import --force annotation.gff3`,
		Args: maxArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			gtf := ""
			if len(args) == 1 {
				gtf = args[0]
			}
			return runImport(cmd, gtf)
		},
	}
	cmd.Flags().String("genes-db", "", "DuckDB database to create (default: ~/.vibe-burden/<assembly>/transcripts.duckdb)")
	cmd.Flags().String("assembly", "GRCh38", "genome assembly used for default paths")
	cmd.Flags().Bool("force", false, "re-import even if the source is unchanged")
	return cmd
}

func runImport(cmd *cobra.Command, gtfPath string) (err error) {
	assembly := viper.GetString("assembly")
	if gtfPath == "" {
		p, found := FindGENCODEGTF(assembly)
		if !found {
			return fmt.Errorf("no GENCODE GTF found for %s", assembly)
		}
		gtfPath = p
	}
	dbPath := viper.GetString("genes-db")
	if dbPath == "" {
		if dbPath = DefaultDBPath(assembly); dbPath == "" {
			return usagef("--genes-db is required when the home directory is unknown")
		}
	}

	fp, err := duckdb.StatFile(gtfPath)
	if err != nil {
		return fmt.Errorf("stat GTF: %w", err)
	}

	ctx := cmd.Context()
	store, err := duckdb.Open(dbPath)
	if err != nil {
		return err
	}
	defer multierr.AppendInvoke(&err, multierr.Close(store))
	store.SetLogger(logger)

	if !viper.GetBool("force") {
		current, err := store.SourceCurrent(ctx, fp)
		if err != nil {
			return err
		}
		if current {
			logger.Info("coordinate database is up to date", zap.String("db", dbPath), zap.String("gtf", gtfPath))
			return nil
		}
	}

	transcripts, err := genedb.LoadGFF(gtfPath)
	if err != nil {
		return err
	}
	if err := store.ImportTranscripts(ctx, transcripts); err != nil {
		return err
	}
	if err := store.RecordSource(ctx, fp); err != nil {
		return err
	}

	logger.Info("imported transcripts",
		zap.String("gtf", gtfPath),
		zap.String("db", dbPath),
		zap.Int("transcripts", len(transcripts)))
	fmt.Fprintf(cmd.OutOrStdout(), "Imported %d transcripts into %s\n", len(transcripts), dbPath)
	return nil
}
