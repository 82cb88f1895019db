package genedb

import (
	"fmt"
	"strings"

	"github.com/biogo/biogo/io/featio"
	"github.com/biogo/biogo/io/featio/gff"
	"go.uber.org/multierr"

	"github.com/inodb/vibe-burden/internal/fileio"
)

// transcriptFeatures are the GTF/GFF feature types loaded as transcripts.
var transcriptFeatures = map[string]bool{
	"transcript": true,
	"mRNA":       true,
}

// LoadGFF reads transcript features from a GTF or GFF file, plain or gzipped.
func LoadGFF(path string) (transcripts []*Transcript, err error) {
	rc, err := fileio.Open(path)
	if err != nil {
		return nil, err
	}
	defer multierr.AppendInvoke(&err, multierr.Close(rc))

	sc := featio.NewScanner(gff.NewReader(rc))
	for sc.Next() {
		f, ok := sc.Feat().(*gff.Feature)
		if !ok || !transcriptFeatures[f.Feature] {
			continue
		}
		t, err := transcriptFromFeature(f)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
		transcripts = append(transcripts, t)
	}
	if err := sc.Error(); err != nil {
		return nil, fmt.Errorf("read gff %s: %w", path, err)
	}
	return transcripts, nil
}

// transcriptFromFeature converts a feature. gff.Feature coordinates are
// 0-based half-open; transcripts are 1-based closed.
func transcriptFromFeature(f *gff.Feature) (*Transcript, error) {
	id := attr(f, "transcript_id", "ID")
	if id == "" {
		return nil, fmt.Errorf("%s feature at %s:%d has no transcript_id or ID", f.Feature, f.SeqName, f.FeatStart+1)
	}
	return &Transcript{
		ID:       stripVersion(stripPrefix(id)),
		GeneID:   stripVersion(stripPrefix(attr(f, "gene_id", "Parent"))),
		GeneName: attr(f, "gene_name", "Name"),
		Chrom:    NormalizeChrom(f.SeqName),
		Start:    int64(f.FeatStart) + 1,
		End:      int64(f.FeatEnd),
		Strand:   int8(f.FeatStrand),
		Biotype:  attr(f, "transcript_type", "transcript_biotype", "biotype"),
	}, nil
}

// attr returns the first non-empty attribute among keys. GTF attributes are
// space separated (tag "value"); GFF3 attributes (tag=value) are parsed by
// the reader as a single tag and are split here.
func attr(f *gff.Feature, keys ...string) string {
	for _, k := range keys {
		for _, a := range f.FeatAttributes {
			tag, val := a.Tag, a.Value
			if t, v, ok := strings.Cut(tag, "="); ok {
				tag, val = t, v
			}
			if tag == k {
				if v := strings.Trim(strings.TrimSpace(val), `"`); v != "" {
					return v
				}
			}
		}
	}
	return ""
}

// stripPrefix removes an Ensembl GFF3 type prefix (transcript:ENST... -> ENST...).
func stripPrefix(id string) string {
	if _, rest, ok := strings.Cut(id, ":"); ok {
		return rest
	}
	return id
}
