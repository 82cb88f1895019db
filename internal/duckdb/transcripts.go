package duckdb

import (
	"context"
	"database/sql/driver"
	"fmt"
	"strings"

	goduckdb "github.com/marcboeker/go-duckdb"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/inodb/vibe-burden/internal/genedb"
)

// overlapBatch bounds the number of ranges bound into one overlap query.
const overlapBatch = 500

// ImportTranscripts replaces the stored transcripts using the Appender API.
func (s *Store) ImportTranscripts(ctx context.Context, transcripts []*genedb.Transcript) (err error) {
	conn, err := s.db.Conn(ctx)
	if err != nil {
		return fmt.Errorf("get connection: %w", err)
	}
	defer multierr.AppendInvoke(&err, multierr.Close(conn))

	if _, err := conn.ExecContext(ctx, `DELETE FROM transcripts`); err != nil {
		return fmt.Errorf("clear transcripts: %w", err)
	}

	var appender *goduckdb.Appender
	if err := conn.Raw(func(driverConn any) error {
		var err error
		appender, err = goduckdb.NewAppenderFromConn(driverConn.(driver.Conn), "", "transcripts")
		return err
	}); err != nil {
		return fmt.Errorf("create appender: %w", err)
	}
	defer multierr.AppendInvoke(&err, multierr.Close(appender))

	for _, t := range transcripts {
		if err := appender.AppendRow(
			t.ID, t.GeneID, t.GeneName,
			t.Chrom, genedb.NormalizeChrom(t.Chrom),
			t.Start, t.End, t.Strand, t.Biotype,
		); err != nil {
			return fmt.Errorf("append transcript %s: %w", t.ID, err)
		}
	}
	if err := appender.Flush(); err != nil {
		return fmt.Errorf("flush transcripts: %w", err)
	}

	s.logger.Debug("imported transcripts", zap.Int("count", len(transcripts)))
	return nil
}

// TranscriptCount returns the number of stored transcripts.
func (s *Store) TranscriptCount(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT count(*) FROM transcripts`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count transcripts: %w", err)
	}
	return n, nil
}

// FindOverlaps returns every stored transcript overlapping any of the ranges,
// joining the ranges against the transcripts table. Each transcript is
// reported once; results are ordered like genedb.Index.FindOverlaps.
func (s *Store) FindOverlaps(ctx context.Context, ranges []genedb.Range) ([]*genedb.Transcript, error) {
	type key struct {
		id, chrom  string
		start, end int64
	}
	seen := make(map[key]bool)
	var result []*genedb.Transcript

	for lo := 0; lo < len(ranges); lo += overlapBatch {
		hi := min(lo+overlapBatch, len(ranges))
		batch, err := s.findOverlaps(ctx, ranges[lo:hi])
		if err != nil {
			return nil, err
		}
		for _, t := range batch {
			k := key{t.ID, t.Chrom, t.Start, t.End}
			if !seen[k] {
				seen[k] = true
				result = append(result, t)
			}
		}
	}

	genedb.SortTranscripts(result)
	s.logger.Debug("overlap query",
		zap.Int("ranges", len(ranges)),
		zap.Int("transcripts", len(result)))
	return result, nil
}

func (s *Store) findOverlaps(ctx context.Context, ranges []genedb.Range) ([]*genedb.Transcript, error) {
	values := make([]string, len(ranges))
	args := make([]any, 0, 3*len(ranges))
	for i, r := range ranges {
		values[i] = "(CAST(? AS VARCHAR), CAST(? AS BIGINT), CAST(? AS BIGINT))"
		args = append(args, genedb.NormalizeChrom(r.Chrom), r.Start, r.End)
	}

	query := `SELECT DISTINCT
		t.transcript_id, t.gene_id, t.gene_name, t.chrom,
		t.start_pos, t.end_pos, t.strand, t.biotype
		FROM transcripts t
		JOIN (VALUES ` + strings.Join(values, ", ") + `) AS q(chrom_key, start_pos, end_pos)
		ON t.chrom_key = q.chrom_key
		AND t.start_pos <= q.end_pos
		AND t.end_pos >= q.start_pos`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query overlaps: %w", err)
	}
	defer rows.Close()

	var result []*genedb.Transcript
	for rows.Next() {
		var t genedb.Transcript
		if err := rows.Scan(
			&t.ID, &t.GeneID, &t.GeneName, &t.Chrom,
			&t.Start, &t.End, &t.Strand, &t.Biotype,
		); err != nil {
			return nil, fmt.Errorf("scan transcript: %w", err)
		}
		result = append(result, &t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate transcripts: %w", err)
	}
	return result, nil
}
