package output

import (
	"bufio"
	"fmt"
	"io"
	"strconv"

	"github.com/inodb/vibe-burden/internal/unit"
)

// SummaryWriter writes the number of retained variants per group.
type SummaryWriter struct {
	w *bufio.Writer
}

// NewSummaryWriter creates a new summary writer.
func NewSummaryWriter(w io.Writer) *SummaryWriter {
	return &SummaryWriter{w: bufio.NewWriter(w)}
}

// WriteHeader writes the header line.
func (sw *SummaryWriter) WriteHeader() error {
	_, err := sw.w.WriteString("group_id\tcount\n")
	return err
}

// Write writes one group count.
func (sw *SummaryWriter) Write(gc unit.GroupCount) error {
	_, err := sw.w.WriteString(gc.GroupID + "\t" + strconv.Itoa(gc.Count) + "\n")
	return err
}

// WriteCounts writes the header followed by counts in order.
func (sw *SummaryWriter) WriteCounts(counts []unit.GroupCount) error {
	if err := sw.WriteHeader(); err != nil {
		return err
	}
	for _, gc := range counts {
		if err := sw.Write(gc); err != nil {
			return err
		}
	}
	return nil
}

// Flush flushes any buffered data to the underlying writer.
func (sw *SummaryWriter) Flush() error {
	return sw.w.Flush()
}

// WriteStats writes a human-readable description of the unit size
// distribution.
func WriteStats(w io.Writer, s unit.Stats) {
	fmt.Fprintf(w, "\nAggregate Summary (%d groups, %d variants):\n", s.Groups, s.Variants)
	if s.Groups == 0 {
		return
	}
	fmt.Fprintf(w, "  %-20s%d\n", "min variants", s.Min)
	fmt.Fprintf(w, "  %-20s%d\n", "max variants", s.Max)
	fmt.Fprintf(w, "  %-20s%.2f\n", "mean variants", s.Mean)
}
