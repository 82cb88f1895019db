package table

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTable(t *testing.T, columns []string, rows ...[]Value) *Table {
	t.Helper()
	tbl, err := New(columns)
	require.NoError(t, err)
	for _, r := range rows {
		tbl.append("test", r)
	}
	return tbl
}

func TestValue(t *testing.T) {
	v := Of("3.5")
	assert.True(t, v.Present())
	f, ok, err := v.Float()
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, 3.5, f)

	f, ok, err = Absent.Float()
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Zero(t, f)

	n, ok, err := Of("12").Int()
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, int64(12), n)

	_, _, err = Of("twelve").Int()
	assert.Error(t, err)
}

func TestTable_FilterDoesNotModifyOriginal(t *testing.T) {
	tbl := newTable(t, []string{"gene"},
		[]Value{Of("G1")},
		[]Value{Absent},
		[]Value{Of("G2")},
	)

	filtered := tbl.Filter(func(r Row) bool { return r.Get("gene").Present() })

	assert.Equal(t, 3, tbl.Len())
	require.Equal(t, 2, filtered.Len())
	assert.Equal(t, "G1", filtered.Row(0).Get("gene").String())
	assert.Equal(t, "G2", filtered.Row(1).Get("gene").String())
}

func TestTable_RequireColumns(t *testing.T) {
	tbl := newTable(t, []string{"Chrom", "Pos"})

	assert.NoError(t, tbl.RequireColumns("Chrom", "Pos"))

	err := tbl.RequireColumns("Chrom", "CADD_PHRED")
	require.Error(t, err)
	var mi *MalformedInputError
	require.ErrorAs(t, err, &mi)
	assert.Equal(t, "CADD_PHRED", mi.Column)
}

func TestTable_GetUnknownColumn(t *testing.T) {
	tbl := newTable(t, []string{"a"}, []Value{Of("x")})
	assert.Equal(t, Absent, tbl.Row(0).Get("b"))
}

func TestTable_ColumnsIsCopy(t *testing.T) {
	tbl := newTable(t, []string{"a", "b"})
	cols := tbl.Columns()
	cols[0] = "changed"
	assert.Equal(t, []string{"a", "b"}, tbl.Columns())
}

func TestTable_Partition(t *testing.T) {
	tbl := newTable(t, []string{"gene", "pos"},
		[]Value{Of("B"), Of("1")},
		[]Value{Of("A"), Of("2")},
		[]Value{Of("B"), Of("3")},
	)

	keys, parts := tbl.Partition("gene")
	assert.Equal(t, []string{"B", "A"}, keys)
	require.Len(t, parts, 2)
	require.Equal(t, 2, parts[0].Len())
	assert.Equal(t, "1", parts[0].Row(0).Get("pos").String())
	assert.Equal(t, "3", parts[0].Row(1).Get("pos").String())
	assert.Equal(t, 1, parts[1].Len())

	keys, parts = tbl.Partition("missing")
	assert.Nil(t, keys)
	assert.Nil(t, parts)
}
