// Package unit defines aggregate units: named groups of variants that an
// association test evaluates jointly.
package unit

import (
	"context"
	"fmt"
	"iter"
)

// Variant identifies a single variant by position and alleles.
type Variant struct {
	Chrom string // Chromosome as written in the input (e.g., "1", "chr1")
	Pos   int64  // 1-based position
	Ref   string // Reference allele
	Alt   string // Alternate allele
}

// String returns the variant as chrom:pos:ref:alt.
func (v Variant) String() string {
	return fmt.Sprintf("%s:%d:%s:%s", v.Chrom, v.Pos, v.Ref, v.Alt)
}

// Unit is one aggregate test unit.
type Unit struct {
	GroupID  string
	Variants []Variant
}

// Len returns the number of variants in the unit.
func (u *Unit) Len() int { return len(u.Variants) }

// Collection is the ordered, read-only set of units produced by one run.
// Each group id appears at most once and no unit is empty.
type Collection struct {
	units []*Unit
	index map[string]int
}

// Builder accumulates variants into units in first-seen group order.
type Builder struct {
	c *Collection
}

// NewBuilder returns an empty builder.
func NewBuilder() *Builder {
	return &Builder{c: &Collection{index: make(map[string]int)}}
}

// Add appends v to the unit named groupID, creating the unit if needed.
func (b *Builder) Add(groupID string, v Variant) {
	i, ok := b.c.index[groupID]
	if !ok {
		i = len(b.c.units)
		b.c.index[groupID] = i
		b.c.units = append(b.c.units, &Unit{GroupID: groupID})
	}
	b.c.units[i].Variants = append(b.c.units[i].Variants, v)
}

// Build returns the collection. The builder must not be used afterwards.
func (b *Builder) Build() *Collection {
	c := b.c
	b.c = nil
	return c
}

// Len returns the number of units.
func (c *Collection) Len() int { return len(c.units) }

// GroupIDs returns the group ids in collection order.
func (c *Collection) GroupIDs() []string {
	ids := make([]string, len(c.units))
	for i, u := range c.units {
		ids[i] = u.GroupID
	}
	return ids
}

// Variants returns a copy of the variants of a group, or nil if the group
// does not exist.
func (c *Collection) Variants(groupID string) []Variant {
	i, ok := c.index[groupID]
	if !ok {
		return nil
	}
	vs := make([]Variant, len(c.units[i].Variants))
	copy(vs, c.units[i].Variants)
	return vs
}

// All yields a copy of every unit in collection order.
func (c *Collection) All() iter.Seq[*Unit] {
	return func(yield func(*Unit) bool) {
		for _, u := range c.units {
			cp := &Unit{GroupID: u.GroupID, Variants: make([]Variant, len(u.Variants))}
			copy(cp.Variants, u.Variants)
			if !yield(cp) {
				return
			}
		}
	}
}

// VariantCount returns the total number of variants across all units.
func (c *Collection) VariantCount() int {
	n := 0
	for _, u := range c.units {
		n += len(u.Variants)
	}
	return n
}

// Provider produces the aggregate units of one run. Units may come from
// pre-annotated gene ids or from merged gene regions of a coordinate database.
type Provider interface {
	Units(ctx context.Context) (*Collection, error)
}
