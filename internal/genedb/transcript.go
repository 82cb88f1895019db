// Package genedb provides genome-feature (transcript) coordinates and
// overlap queries against them.
package genedb

import "strings"

// Transcript is a named genomic feature with its own coordinates.
type Transcript struct {
	ID       string // Transcript ID (e.g., ENST00000311936), version stripped
	GeneID   string // Parent gene ID
	GeneName string // Parent gene symbol
	Chrom    string // Chromosome, normalized (no "chr" prefix)
	Start    int64  // Transcript start (1-based)
	End      int64  // Transcript end (1-based, inclusive)
	Strand   int8   // +1, -1, or 0 if unknown
	Biotype  string // Transcript biotype
}

// Overlaps reports whether the transcript shares at least one base with r.
func (t *Transcript) Overlaps(r Range) bool {
	return t.Chrom == r.Chrom && t.Start <= r.End && t.End >= r.Start
}

// Range is a closed 1-based genomic range.
type Range struct {
	Chrom string
	Start int64
	End   int64
}

// Point returns the single-base range at pos.
func Point(chrom string, pos int64) Range {
	return Range{Chrom: NormalizeChrom(chrom), Start: pos, End: pos}
}

// NormalizeChrom returns the chromosome name without a "chr" prefix.
func NormalizeChrom(chrom string) string {
	if len(chrom) > 3 && strings.EqualFold(chrom[:3], "chr") {
		return chrom[3:]
	}
	return chrom
}

// stripVersion removes an Ensembl version suffix (ENST00000311936.8 -> ENST00000311936).
func stripVersion(id string) string {
	if i := strings.LastIndexByte(id, '.'); i > 0 && strings.HasPrefix(id, "ENS") {
		return id[:i]
	}
	return id
}
