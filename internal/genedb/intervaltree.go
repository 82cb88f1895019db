package genedb

import "sort"

// IntervalTree answers overlap queries over a start-sorted slice. A binary
// search bounds the candidates by start; the scan then walks left until no
// earlier interval reaches the query start. A long interval near the front
// keeps that bound open, so the worst case scans every candidate.
// Transcripts are loaded once and never modified after build.
type IntervalTree struct {
	intervals []*Transcript
	maxEnd    []int64 // maxEnd[i] = max(End) for intervals[:i+1]
}

// BuildIntervalTree creates an interval tree from transcripts on one chromosome.
func BuildIntervalTree(transcripts []*Transcript) *IntervalTree {
	if len(transcripts) == 0 {
		return &IntervalTree{}
	}

	intervals := make([]*Transcript, len(transcripts))
	copy(intervals, transcripts)
	sort.SliceStable(intervals, func(i, j int) bool {
		return intervals[i].Start < intervals[j].Start
	})

	maxEnd := make([]int64, len(intervals))
	maxEnd[0] = intervals[0].End
	for i := 1; i < len(intervals); i++ {
		maxEnd[i] = max(maxEnd[i-1], intervals[i].End)
	}

	return &IntervalTree{intervals: intervals, maxEnd: maxEnd}
}

// FindOverlaps returns all transcripts whose [Start, End] range shares a base
// with [start, end], in order of increasing start.
func (t *IntervalTree) FindOverlaps(start, end int64) []*Transcript {
	if len(t.intervals) == 0 {
		return nil
	}

	// Candidates are [0, hi): every interval starting after end is excluded.
	hi := sort.Search(len(t.intervals), func(i int) bool {
		return t.intervals[i].Start > end
	})

	var result []*Transcript
	for i := hi - 1; i >= 0; i-- {
		// No interval in [0, i] reaches start.
		if t.maxEnd[i] < start {
			break
		}
		if t.intervals[i].End >= start {
			result = append(result, t.intervals[i])
		}
	}

	// Scanned right to left; restore start order.
	for l, r := 0, len(result)-1; l < r; l, r = l+1, r-1 {
		result[l], result[r] = result[r], result[l]
	}
	return result
}

// Len returns the number of transcripts in the tree.
func (t *IntervalTree) Len() int { return len(t.intervals) }
