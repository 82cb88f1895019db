package region

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/inodb/vibe-burden/internal/aggregate"
	"github.com/inodb/vibe-burden/internal/genedb"
	"github.com/inodb/vibe-burden/internal/table"
	"github.com/inodb/vibe-burden/internal/unit"
)

// OverlapQuerier is a coordinate database that returns the transcripts
// overlapping a set of genomic ranges.
type OverlapQuerier interface {
	FindOverlaps(ctx context.Context, ranges []genedb.Range) ([]*genedb.Transcript, error)
}

// Provider builds aggregate units from gene regions: transcripts overlapping
// the variants are merged with Reduce and every variant is assigned to the
// region that contains it.
type Provider struct {
	table   *table.Table
	db      OverlapQuerier
	filter  aggregate.Filter
	columns aggregate.VariantColumns
	logger  *zap.Logger

	regions []GeneRegion
}

// NewProvider creates a region-based unit provider. Rows of t must pass
// filter before they are assigned to regions.
func NewProvider(t *table.Table, db OverlapQuerier, filter aggregate.Filter, columns aggregate.VariantColumns) *Provider {
	return &Provider{
		table:   t,
		db:      db,
		filter:  filter,
		columns: columns,
		logger:  zap.NewNop(),
	}
}

// SetLogger sets the logger for query and assignment counts.
func (p *Provider) SetLogger(l *zap.Logger) {
	p.logger = l
}

// Regions returns the gene regions computed by the last call to Units.
func (p *Provider) Regions() []GeneRegion {
	return p.regions
}

// Units implements unit.Provider. Variants outside every region are dropped.
// Groups are ordered by the first variant assigned to them.
func (p *Provider) Units(ctx context.Context) (*unit.Collection, error) {
	rows, err := p.filter.Apply(p.table)
	if err != nil {
		return nil, err
	}
	variants, err := aggregate.Variants(rows, p.columns)
	if err != nil {
		return nil, err
	}

	regions, err := p.reduce(ctx, variants)
	if err != nil {
		return nil, err
	}
	p.regions = regions

	idx, err := NewIndex(regions)
	if err != nil {
		return nil, err
	}

	b := unit.NewBuilder()
	dropped := 0
	for _, v := range variants {
		r, ok := idx.Locate(v.Chrom, v.Pos)
		if !ok {
			dropped++
			continue
		}
		b.Add(r.Label(), v)
	}

	c := b.Build()
	p.logger.Debug("assigned variants to gene regions",
		zap.Int("variants", len(variants)),
		zap.Int("outside_regions", dropped),
		zap.Int("regions", len(regions)),
		zap.Int("units", c.Len()))
	return c, nil
}

// reduce queries the transcripts overlapping the variants and merges them.
func (p *Provider) reduce(ctx context.Context, variants []unit.Variant) ([]GeneRegion, error) {
	seen := make(map[genedb.Range]bool)
	var ranges []genedb.Range
	for _, v := range variants {
		r := genedb.Point(v.Chrom, v.Pos)
		if !seen[r] {
			seen[r] = true
			ranges = append(ranges, r)
		}
	}
	if len(ranges) == 0 {
		return nil, nil
	}

	transcripts, err := p.db.FindOverlaps(ctx, ranges)
	if err != nil {
		return nil, fmt.Errorf("query overlapping transcripts: %w", err)
	}

	intervals := make([]Interval, len(transcripts))
	for i, t := range transcripts {
		intervals[i] = Interval{
			Chrom: genedb.NormalizeChrom(t.Chrom),
			Start: t.Start,
			End:   t.End,
			ID:    t.ID,
		}
	}
	return Reduce(intervals), nil
}
