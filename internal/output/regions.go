package output

import (
	"bufio"
	"io"
	"strconv"
	"strings"

	"github.com/inodb/vibe-burden/internal/region"
)

// RegionWriter writes merged gene regions.
type RegionWriter struct {
	w *bufio.Writer
}

// NewRegionWriter creates a new region writer.
func NewRegionWriter(w io.Writer) *RegionWriter {
	return &RegionWriter{w: bufio.NewWriter(w)}
}

// WriteHeader writes the header line.
func (rw *RegionWriter) WriteHeader() error {
	_, err := rw.w.WriteString("chrom\tstart\tend\ttranscripts\n")
	return err
}

// Write writes a single region. Transcript IDs are comma-separated, or "."
// when the region has none.
func (rw *RegionWriter) Write(r region.GeneRegion) error {
	transcripts := strings.Join(r.Transcripts, ",")
	if transcripts == "" {
		transcripts = "."
	}
	values := []string{
		r.Chrom,
		strconv.FormatInt(r.Start, 10),
		strconv.FormatInt(r.End, 10),
		transcripts,
	}
	_, err := rw.w.WriteString(strings.Join(values, "\t") + "\n")
	return err
}

// Flush flushes any buffered data to the underlying writer.
func (rw *RegionWriter) Flush() error {
	return rw.w.Flush()
}
