package region

import (
	"fmt"

	"github.com/biogo/store/interval"

	"github.com/inodb/vibe-burden/internal/genedb"
)

// regionInterval adapts a GeneRegion to interval.IntInterface. Tree ranges
// are half-open, so a region [Start, End] is stored as [Start, End+1).
type regionInterval struct {
	uid    uintptr
	region GeneRegion
}

func (ri regionInterval) Overlap(b interval.IntRange) bool {
	return int(ri.region.Start) < b.End && int(ri.region.End)+1 > b.Start
}

func (ri regionInterval) ID() uintptr { return ri.uid }

func (ri regionInterval) Range() interval.IntRange {
	return interval.IntRange{Start: int(ri.region.Start), End: int(ri.region.End) + 1}
}

// point is a single-base query.
type point int

func (p point) Overlap(b interval.IntRange) bool {
	return int(p) >= b.Start && int(p) < b.End
}

// Index locates the region containing a position. Chromosome names are
// matched without a "chr" prefix.
type Index struct {
	trees map[string]*interval.IntTree
}

// NewIndex builds an index over regions. Regions on one chromosome must not
// overlap, as returned by Reduce.
func NewIndex(regions []GeneRegion) (*Index, error) {
	idx := &Index{trees: make(map[string]*interval.IntTree)}
	for i, r := range regions {
		chrom := genedb.NormalizeChrom(r.Chrom)
		tree, ok := idx.trees[chrom]
		if !ok {
			tree = &interval.IntTree{}
			idx.trees[chrom] = tree
		}
		if err := tree.Insert(regionInterval{uid: uintptr(i + 1), region: r}, true); err != nil {
			return nil, fmt.Errorf("index region %s: %w", r.Label(), err)
		}
	}
	for _, tree := range idx.trees {
		tree.AdjustRanges()
	}
	return idx, nil
}

// Locate returns the region containing chrom:pos.
func (idx *Index) Locate(chrom string, pos int64) (GeneRegion, bool) {
	tree, ok := idx.trees[genedb.NormalizeChrom(chrom)]
	if !ok {
		return GeneRegion{}, false
	}
	hits := tree.Get(point(pos))
	if len(hits) == 0 {
		return GeneRegion{}, false
	}
	return hits[0].(regionInterval).region, true
}
