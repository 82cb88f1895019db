package duckdb

import (
	"context"
	"database/sql/driver"
	"fmt"

	goduckdb "github.com/marcboeker/go-duckdb"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/inodb/vibe-burden/internal/unit"
)

// WriteUnits replaces the aggregate_units table with the variants of c, one
// row per variant, preserving collection order.
func (s *Store) WriteUnits(ctx context.Context, c *unit.Collection) (err error) {
	conn, err := s.db.Conn(ctx)
	if err != nil {
		return fmt.Errorf("get connection: %w", err)
	}
	defer multierr.AppendInvoke(&err, multierr.Close(conn))

	if _, err := conn.ExecContext(ctx, `DELETE FROM aggregate_units`); err != nil {
		return fmt.Errorf("clear units: %w", err)
	}

	var appender *goduckdb.Appender
	if err := conn.Raw(func(driverConn any) error {
		var err error
		appender, err = goduckdb.NewAppenderFromConn(driverConn.(driver.Conn), "", "aggregate_units")
		return err
	}); err != nil {
		return fmt.Errorf("create appender: %w", err)
	}
	defer multierr.AppendInvoke(&err, multierr.Close(appender))

	var seq int64
	for u := range c.All() {
		for _, v := range u.Variants {
			if err := appender.AppendRow(seq, u.GroupID, v.Chrom, v.Pos, v.Ref, v.Alt); err != nil {
				return fmt.Errorf("append unit %s: %w", u.GroupID, err)
			}
			seq++
		}
	}
	if err := appender.Flush(); err != nil {
		return fmt.Errorf("flush units: %w", err)
	}

	s.logger.Debug("wrote units",
		zap.Int("groups", c.Len()),
		zap.Int64("variants", seq))
	return nil
}

// Units reads the stored aggregate units back in the order they were written.
func (s *Store) Units(ctx context.Context) (*unit.Collection, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT group_id, chrom, pos, ref, alt FROM aggregate_units ORDER BY seq`)
	if err != nil {
		return nil, fmt.Errorf("query units: %w", err)
	}
	defer rows.Close()

	b := unit.NewBuilder()
	for rows.Next() {
		var group string
		var v unit.Variant
		if err := rows.Scan(&group, &v.Chrom, &v.Pos, &v.Ref, &v.Alt); err != nil {
			return nil, fmt.Errorf("scan unit: %w", err)
		}
		b.Add(group, v)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate units: %w", err)
	}
	return b.Build(), nil
}

// GroupCounts returns the number of stored variants per group, in the order
// groups were written.
func (s *Store) GroupCounts(ctx context.Context) ([]unit.GroupCount, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT group_id, count(*)
		FROM aggregate_units
		GROUP BY group_id
		ORDER BY min(seq)`)
	if err != nil {
		return nil, fmt.Errorf("query group counts: %w", err)
	}
	defer rows.Close()

	var counts []unit.GroupCount
	for rows.Next() {
		var gc unit.GroupCount
		if err := rows.Scan(&gc.GroupID, &gc.Count); err != nil {
			return nil, fmt.Errorf("scan group count: %w", err)
		}
		counts = append(counts, gc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate group counts: %w", err)
	}
	return counts, nil
}
