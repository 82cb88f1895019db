// Package table provides an immutable in-memory table of per-variant
// annotation records loaded from tab-separated files.
package table

import (
	"fmt"
	"strconv"
)

// Value is a single cell. A cell equal to the loader's missing token is
// absent; every other cell holds its literal text.
type Value struct {
	s       string
	present bool
}

// Absent is the value of a missing cell.
var Absent = Value{}

// Of returns a present value holding s.
func Of(s string) Value {
	return Value{s: s, present: true}
}

// Present reports whether the cell holds a value.
func (v Value) Present() bool { return v.present }

// String returns the cell text, or "" if the cell is absent.
func (v Value) String() string { return v.s }

// Float parses the cell as a float64. ok is false for absent cells.
func (v Value) Float() (f float64, ok bool, err error) {
	if !v.present {
		return 0, false, nil
	}
	f, err = strconv.ParseFloat(v.s, 64)
	if err != nil {
		return 0, false, err
	}
	return f, true, nil
}

// Int parses the cell as an int64. ok is false for absent cells.
func (v Value) Int() (n int64, ok bool, err error) {
	if !v.present {
		return 0, false, nil
	}
	n, err = strconv.ParseInt(v.s, 10, 64)
	if err != nil {
		return 0, false, err
	}
	return n, true, nil
}

// Table is an ordered sequence of rows with named columns. Tables are never
// modified after construction; Filter returns a new table.
type Table struct {
	columns []string
	index   map[string]int
	rows    [][]Value
	source  []string // source path of each row, for error context
}

// New creates a table with the given header. It fails on duplicate column names.
func New(columns []string) (*Table, error) {
	index := make(map[string]int, len(columns))
	for i, c := range columns {
		if _, dup := index[c]; dup {
			return nil, fmt.Errorf("duplicate column %q", c)
		}
		index[c] = i
	}
	cols := make([]string, len(columns))
	copy(cols, columns)
	return &Table{columns: cols, index: index}, nil
}

// append adds a row during construction. It must not be called once the
// table has been handed to a caller.
func (t *Table) append(source string, cells []Value) {
	t.rows = append(t.rows, cells)
	t.source = append(t.source, source)
}

// Columns returns a copy of the column names in header order.
func (t *Table) Columns() []string {
	cols := make([]string, len(t.columns))
	copy(cols, t.columns)
	return cols
}

// Column returns the index of a named column.
func (t *Table) Column(name string) (int, bool) {
	i, ok := t.index[name]
	return i, ok
}

// RequireColumns returns a MalformedInputError naming the first column that
// is not present in the table.
func (t *Table) RequireColumns(names ...string) error {
	for _, n := range names {
		if _, ok := t.index[n]; !ok {
			return &MalformedInputError{Column: n, Msg: "required column not found in header"}
		}
	}
	return nil
}

// Len returns the number of rows.
func (t *Table) Len() int { return len(t.rows) }

// Row returns the i-th row.
func (t *Table) Row(i int) Row {
	return Row{t: t, i: i}
}

// Filter returns a new table holding the rows for which keep returns true.
// Row order is preserved.
func (t *Table) Filter(keep func(Row) bool) *Table {
	out := &Table{columns: t.columns, index: t.index}
	for i := range t.rows {
		if keep(t.Row(i)) {
			out.append(t.source[i], t.rows[i])
		}
	}
	return out
}

// Row is a read-only view of one table row.
type Row struct {
	t *Table
	i int
}

// Get returns the cell in the named column, or Absent if the table has no
// such column.
func (r Row) Get(column string) Value {
	j, ok := r.t.index[column]
	if !ok {
		return Absent
	}
	return r.t.rows[r.i][j]
}

// Source returns the path of the file the row was loaded from.
func (r Row) Source() string {
	return r.t.source[r.i]
}

// Partition splits the table by the distinct text of column. Keys are
// returned in first-seen order and parts[i] holds the rows of keys[i] in
// table order. Every row lands in exactly one part.
func (t *Table) Partition(column string) (keys []string, parts []*Table) {
	j, ok := t.index[column]
	if !ok {
		return nil, nil
	}

	byKey := make(map[string]int)
	for i, row := range t.rows {
		k := row[j].s
		p, ok := byKey[k]
		if !ok {
			p = len(parts)
			byKey[k] = p
			keys = append(keys, k)
			parts = append(parts, &Table{columns: t.columns, index: t.index})
		}
		parts[p].append(t.source[i], row)
	}
	return keys, parts
}
