package genedb

import (
	"context"
	"sort"
)

// Index is an in-memory coordinate database of transcripts indexed by chromosome.
type Index struct {
	trees map[string]*IntervalTree
	count int
}

// NewIndex builds an index over transcripts, keyed by normalized chromosome.
func NewIndex(transcripts []*Transcript) *Index {
	byChrom := make(map[string][]*Transcript)
	for _, t := range transcripts {
		chrom := NormalizeChrom(t.Chrom)
		byChrom[chrom] = append(byChrom[chrom], t)
	}

	idx := &Index{trees: make(map[string]*IntervalTree, len(byChrom)), count: len(transcripts)}
	for chrom, ts := range byChrom {
		idx.trees[chrom] = BuildIntervalTree(ts)
	}
	return idx
}

// TranscriptCount returns the number of indexed transcripts.
func (idx *Index) TranscriptCount() int { return idx.count }

// Chromosomes returns a sorted list of chromosomes in the index.
func (idx *Index) Chromosomes() []string {
	chroms := make([]string, 0, len(idx.trees))
	for chrom := range idx.trees {
		chroms = append(chroms, chrom)
	}
	sort.Strings(chroms)
	return chroms
}

// FindOverlaps returns every transcript overlapping any of the ranges. Each
// transcript is reported once; results are ordered by chromosome, start and ID.
func (idx *Index) FindOverlaps(ctx context.Context, ranges []Range) ([]*Transcript, error) {
	seen := make(map[*Transcript]bool)
	var result []*Transcript
	for _, r := range ranges {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		tree, ok := idx.trees[NormalizeChrom(r.Chrom)]
		if !ok {
			continue
		}
		for _, t := range tree.FindOverlaps(r.Start, r.End) {
			if !seen[t] {
				seen[t] = true
				result = append(result, t)
			}
		}
	}
	SortTranscripts(result)
	return result, nil
}

// SortTranscripts orders transcripts by chromosome, start, end and ID.
func SortTranscripts(ts []*Transcript) {
	sort.Slice(ts, func(i, j int) bool {
		a, b := ts[i], ts[j]
		if a.Chrom != b.Chrom {
			return a.Chrom < b.Chrom
		}
		if a.Start != b.Start {
			return a.Start < b.Start
		}
		if a.End != b.End {
			return a.End < b.End
		}
		return a.ID < b.ID
	})
}
