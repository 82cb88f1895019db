// Package output writes aggregate units, per-unit counts and gene regions as
// tab-delimited text.
package output

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/inodb/vibe-burden/internal/table"
	"github.com/inodb/vibe-burden/internal/unit"
)

// UnitColumns is the header of the units table read by the burden test.
var UnitColumns = []string{"group_id", "chr", "pos", "ref", "alt"}

// UnitWriter writes one row per variant of each aggregate unit.
type UnitWriter struct {
	w *bufio.Writer
}

// NewUnitWriter creates a new units writer.
func NewUnitWriter(w io.Writer) *UnitWriter {
	return &UnitWriter{w: bufio.NewWriter(w)}
}

// WriteHeader writes the header line.
func (uw *UnitWriter) WriteHeader() error {
	_, err := uw.w.WriteString(strings.Join(UnitColumns, "\t") + "\n")
	return err
}

// Write writes the variants of a single unit.
func (uw *UnitWriter) Write(u *unit.Unit) error {
	for _, v := range u.Variants {
		values := []string{u.GroupID, v.Chrom, strconv.FormatInt(v.Pos, 10), v.Ref, v.Alt}
		if _, err := uw.w.WriteString(strings.Join(values, "\t") + "\n"); err != nil {
			return err
		}
	}
	return nil
}

// WriteCollection writes the header and every unit of c in collection order.
func (uw *UnitWriter) WriteCollection(c *unit.Collection) error {
	if err := uw.WriteHeader(); err != nil {
		return err
	}
	for u := range c.All() {
		if err := uw.Write(u); err != nil {
			return err
		}
	}
	return nil
}

// Flush flushes any buffered data to the underlying writer.
func (uw *UnitWriter) Flush() error {
	return uw.w.Flush()
}

// ReadUnits loads units tables written by UnitWriter.
func ReadUnits(paths []string) (*unit.Collection, error) {
	t, err := table.Load(paths, "")
	if err != nil {
		return nil, err
	}
	if err := t.RequireColumns(UnitColumns...); err != nil {
		return nil, err
	}

	b := unit.NewBuilder()
	for i := range t.Len() {
		r := t.Row(i)
		pos, ok, err := r.Get("pos").Int()
		if err != nil || !ok || pos < 1 {
			return nil, &table.MalformedInputError{
				Path:   r.Source(),
				Column: "pos",
				Group:  r.Get("group_id").String(),
				Msg:    fmt.Sprintf("invalid position %q", r.Get("pos").String()),
			}
		}
		b.Add(r.Get("group_id").String(), unit.Variant{
			Chrom: r.Get("chr").String(),
			Pos:   pos,
			Ref:   r.Get("ref").String(),
			Alt:   r.Get("alt").String(),
		})
	}
	return b.Build(), nil
}
