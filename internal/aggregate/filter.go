package aggregate

import (
	"fmt"

	"github.com/inodb/vibe-burden/internal/table"
)

// rowFilter reports whether a row passes. A non-nil error means the row
// holds a value the filter cannot interpret.
type rowFilter func(r table.Row) (bool, *table.MalformedInputError)

// compile checks the filter columns against t and returns the combined
// score and consequence filter.
func (f Filter) compile(t *table.Table) (rowFilter, error) {
	var filters []rowFilter

	if f.ScoreColumn != "" {
		if err := t.RequireColumns(f.ScoreColumn); err != nil {
			return nil, err
		}
		filters = append(filters, scoreFilter(f.ScoreColumn, f.ScoreThreshold))
	}

	if f.ConsequenceColumn != "" && f.ConsequencePattern != "" {
		if err := t.RequireColumns(f.ConsequenceColumn); err != nil {
			return nil, err
		}
		m, err := newMatcher(f.Match, f.ConsequencePattern)
		if err != nil {
			return nil, err
		}
		filters = append(filters, consequenceFilter(f.ConsequenceColumn, m))
	}

	return func(r table.Row) (bool, *table.MalformedInputError) {
		for _, keep := range filters {
			ok, err := keep(r)
			if err != nil || !ok {
				return false, err
			}
		}
		return true, nil
	}, nil
}

// Apply returns the rows of t that pass the filter, preserving order.
func (f Filter) Apply(t *table.Table) (*table.Table, error) {
	keep, err := f.compile(t)
	if err != nil {
		return nil, err
	}
	return filterPartition(group{rows: t}, keep)
}

// scoreFilter keeps rows whose score is strictly greater than threshold.
// Absent scores fail.
func scoreFilter(column string, threshold float64) rowFilter {
	return func(r table.Row) (bool, *table.MalformedInputError) {
		score, ok, err := r.Get(column).Float()
		if err != nil {
			return false, &table.MalformedInputError{
				Path:   r.Source(),
				Column: column,
				Msg:    fmt.Sprintf("invalid score %q", r.Get(column).String()),
			}
		}
		return ok && score > threshold, nil
	}
}

// consequenceFilter keeps rows whose consequence matches. Absent
// consequences fail.
func consequenceFilter(column string, m matcher) rowFilter {
	return func(r table.Row) (bool, *table.MalformedInputError) {
		v := r.Get(column)
		return v.Present() && m(v.String()), nil
	}
}
