// Package aggregate groups annotated variants into per-gene aggregate units
// and filters them by deleteriousness score and consequence.
package aggregate

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/inodb/vibe-burden/internal/table"
	"github.com/inodb/vibe-burden/internal/unit"
)

// Default column names, as written by VEP with the CADD plugin.
const (
	DefaultChromColumn       = "Chrom"
	DefaultPosColumn         = "Pos"
	DefaultRefColumn         = "Ref"
	DefaultAltColumn         = "Alt"
	DefaultGeneColumn        = "GeneName"
	DefaultScoreColumn       = "CADD_PHRED"
	DefaultConsequenceColumn = "Consequence"
)

// VariantColumns names the columns that identify a variant.
type VariantColumns struct {
	Chrom string
	Pos   string
	Ref   string
	Alt   string
}

// DefaultVariantColumns returns the default variant columns.
func DefaultVariantColumns() VariantColumns {
	return VariantColumns{
		Chrom: DefaultChromColumn,
		Pos:   DefaultPosColumn,
		Ref:   DefaultRefColumn,
		Alt:   DefaultAltColumn,
	}
}

func (vc VariantColumns) names() []string {
	return []string{vc.Chrom, vc.Pos, vc.Ref, vc.Alt}
}

// Filter holds the score and consequence filters shared by both unit sources.
type Filter struct {
	// ScoreColumn rows must exceed ScoreThreshold; empty disables the score filter.
	ScoreColumn    string
	ScoreThreshold float64

	// ConsequenceColumn must match ConsequencePattern under Match. An empty
	// column or pattern disables the consequence filter.
	ConsequenceColumn  string
	ConsequencePattern string
	Match              MatchMode
}

// Options configures Aggregate.
type Options struct {
	GeneColumn string
	Filter
	Columns VariantColumns
}

// DefaultOptions returns options using the default columns, a threshold of
// 0 and no consequence pattern.
func DefaultOptions() Options {
	return Options{
		GeneColumn: DefaultGeneColumn,
		Filter: Filter{
			ScoreColumn:       DefaultScoreColumn,
			ConsequenceColumn: DefaultConsequenceColumn,
		},
		Columns: DefaultVariantColumns(),
	}
}

// Aggregator runs the aggregation pipeline.
type Aggregator struct {
	opts   Options
	logger *zap.Logger
}

// New creates an aggregator for the given options.
func New(opts Options) *Aggregator {
	return &Aggregator{opts: opts, logger: zap.NewNop()}
}

// SetLogger sets the logger for per-stage row counts.
func (a *Aggregator) SetLogger(l *zap.Logger) {
	a.logger = l
}

// Aggregate runs the pipeline with a no-op logger.
func Aggregate(t *table.Table, opts Options) (*unit.Collection, error) {
	return New(opts).Aggregate(t)
}

// Aggregate drops rows without a gene id, partitions the rest by gene id,
// applies the score and consequence filters within each partition and
// projects the surviving rows to variants. Groups are emitted in the order
// their gene id first appears in t; groups left empty are omitted. An empty
// collection is a valid result.
func (a *Aggregator) Aggregate(t *table.Table) (*unit.Collection, error) {
	if a.opts.GeneColumn == "" {
		return nil, fmt.Errorf("gene column not configured")
	}
	if err := t.RequireColumns(append(a.opts.Columns.names(), a.opts.GeneColumn)...); err != nil {
		return nil, err
	}
	keep, err := a.opts.Filter.compile(t)
	if err != nil {
		return nil, err
	}

	withGene := dropMissing(t, a.opts.GeneColumn)
	a.logger.Debug("dropped rows without gene id",
		zap.Int("rows", t.Len()),
		zap.Int("kept", withGene.Len()))

	b := unit.NewBuilder()
	for _, p := range partition(withGene, a.opts.GeneColumn) {
		rows, err := filterPartition(p, keep)
		if err != nil {
			return nil, err
		}
		if rows.Len() == 0 {
			continue
		}
		for i := range rows.Len() {
			v, err := projectVariant(rows.Row(i), a.opts.Columns)
			if err != nil {
				err.Group = p.key
				return nil, err
			}
			b.Add(p.key, v)
		}
	}

	c := b.Build()
	a.logger.Debug("aggregated units",
		zap.Int("groups", c.Len()),
		zap.Int("variants", c.VariantCount()))
	return c, nil
}

// dropMissing returns the rows where column is present.
func dropMissing(t *table.Table, column string) *table.Table {
	return t.Filter(func(r table.Row) bool {
		return r.Get(column).Present()
	})
}

type group struct {
	key  string
	rows *table.Table
}

// partition splits t by distinct value of column, in first-seen order.
func partition(t *table.Table, column string) []group {
	keys, parts := t.Partition(column)
	groups := make([]group, len(keys))
	for i := range keys {
		groups[i] = group{key: keys[i], rows: parts[i]}
	}
	return groups
}

func filterPartition(p group, keep rowFilter) (*table.Table, error) {
	var ferr error
	out := p.rows.Filter(func(r table.Row) bool {
		if ferr != nil {
			return false
		}
		ok, err := keep(r)
		if err != nil {
			err.Group = p.key
			ferr = err
			return false
		}
		return ok
	})
	if ferr != nil {
		return nil, ferr
	}
	return out, nil
}

// projectVariant maps a row to its variant columns.
func projectVariant(r table.Row, cols VariantColumns) (unit.Variant, *table.MalformedInputError) {
	pos, ok, err := r.Get(cols.Pos).Int()
	if err != nil || !ok || pos < 1 {
		return unit.Variant{}, &table.MalformedInputError{
			Path:   r.Source(),
			Column: cols.Pos,
			Msg:    fmt.Sprintf("invalid position %q", r.Get(cols.Pos).String()),
		}
	}
	return unit.Variant{
		Chrom: r.Get(cols.Chrom).String(),
		Pos:   pos,
		Ref:   r.Get(cols.Ref).String(),
		Alt:   r.Get(cols.Alt).String(),
	}, nil
}

// Provider supplies units from a pre-annotated table.
type Provider struct {
	table *table.Table
	agg   *Aggregator
}

// NewProvider returns a unit.Provider that aggregates t with agg.
func NewProvider(t *table.Table, agg *Aggregator) *Provider {
	return &Provider{table: t, agg: agg}
}

// Units implements unit.Provider.
func (p *Provider) Units(ctx context.Context) (*unit.Collection, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return p.agg.Aggregate(p.table)
}

// Variants projects every row of t to its variant columns, in table order.
func Variants(t *table.Table, cols VariantColumns) ([]unit.Variant, error) {
	if err := t.RequireColumns(cols.names()...); err != nil {
		return nil, err
	}
	vs := make([]unit.Variant, 0, t.Len())
	for i := range t.Len() {
		v, err := projectVariant(t.Row(i), cols)
		if err != nil {
			return nil, err
		}
		vs = append(vs, v)
	}
	return vs, nil
}
