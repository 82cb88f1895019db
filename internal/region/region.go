// Package region merges overlapping transcript intervals into gene regions
// and uses them as aggregate units.
package region

import (
	"cmp"
	"fmt"
	"slices"
	"sort"
)

// Interval is a strand-agnostic closed genomic interval. ID names the
// feature it came from and may be empty.
type Interval struct {
	Chrom string
	Start int64
	End   int64
	ID    string
}

// GeneRegion is a maximal merged interval. Within a chromosome no two
// regions overlap.
type GeneRegion struct {
	Chrom       string
	Start       int64
	End         int64
	Transcripts []string // source IDs, sorted and de-duplicated
}

// Label returns the region's group id, chrom:start-end.
func (g GeneRegion) Label() string {
	return fmt.Sprintf("%s:%d-%d", g.Chrom, g.Start, g.End)
}

// Contains reports whether pos lies within the region.
func (g GeneRegion) Contains(pos int64) bool {
	return pos >= g.Start && pos <= g.End
}

// Intervals returns the region as intervals, one per source ID, so that a
// reduced set can be reduced again.
func (g GeneRegion) Intervals() []Interval {
	if len(g.Transcripts) == 0 {
		return []Interval{{Chrom: g.Chrom, Start: g.Start, End: g.End}}
	}
	out := make([]Interval, len(g.Transcripts))
	for i, id := range g.Transcripts {
		out[i] = Interval{Chrom: g.Chrom, Start: g.Start, End: g.End, ID: id}
	}
	return out
}

// Reduce merges intervals into the minimal set of disjoint covering regions.
// Within a chromosome intervals are swept in start order (stable for equal
// starts) and the next interval is merged whenever next.Start <= acc.End.
// Regions are returned ordered by chromosome name, then start.
func Reduce(intervals []Interval) []GeneRegion {
	byChrom := make(map[string][]Interval)
	for _, iv := range intervals {
		if iv.End < iv.Start {
			iv.Start, iv.End = iv.End, iv.Start
		}
		byChrom[iv.Chrom] = append(byChrom[iv.Chrom], iv)
	}

	chroms := make([]string, 0, len(byChrom))
	for c := range byChrom {
		chroms = append(chroms, c)
	}
	sort.Strings(chroms)

	regions := []GeneRegion{}
	for _, chrom := range chroms {
		ivs := byChrom[chrom]
		slices.SortStableFunc(ivs, func(a, b Interval) int {
			return cmp.Compare(a.Start, b.Start)
		})

		acc := ivs[0]
		ids := []string{acc.ID}
		for _, iv := range ivs[1:] {
			if iv.Start <= acc.End {
				acc.End = max(acc.End, iv.End)
				ids = append(ids, iv.ID)
				continue
			}
			regions = append(regions, newRegion(acc, ids))
			acc = iv
			ids = []string{iv.ID}
		}
		regions = append(regions, newRegion(acc, ids))
	}
	return regions
}

func newRegion(acc Interval, ids []string) GeneRegion {
	ids = slices.DeleteFunc(ids, func(id string) bool { return id == "" })
	slices.Sort(ids)
	ids = slices.Compact(ids)
	if len(ids) == 0 {
		ids = nil
	}
	return GeneRegion{Chrom: acc.Chrom, Start: acc.Start, End: acc.End, Transcripts: ids}
}
