package aggregate

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/inodb/vibe-burden/internal/table"
	"github.com/inodb/vibe-burden/internal/unit"
)

const header = "Chrom\tPos\tRef\tAlt\tGeneName\tCADD_PHRED\tConsequence\n"

func loadRows(t *testing.T, rows ...string) *table.Table {
	t.Helper()
	path := filepath.Join(t.TempDir(), "ann.tsv")
	content := header + strings.Join(rows, "\n") + "\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	tbl, err := table.Load([]string{path}, table.DefaultMissingToken)
	require.NoError(t, err)
	return tbl
}

func intronOptions(threshold float64) Options {
	opts := DefaultOptions()
	opts.ScoreThreshold = threshold
	opts.ConsequencePattern = "intron_variant"
	return opts
}

func TestAggregate_EndToEndExample(t *testing.T) {
	tbl := loadRows(t,
		"1\t1000\tA\tG\tG1\t5.0\tintron_variant", // Row A
		"1\t1010\tC\tT\tG1\t2.0\tintron_variant", // Row B
	)

	c, err := Aggregate(tbl, intronOptions(3))
	require.NoError(t, err)

	assert.Equal(t, []string{"G1"}, c.GroupIDs())
	assert.Equal(t, []unit.Variant{{Chrom: "1", Pos: 1000, Ref: "A", Alt: "G"}}, c.Variants("G1"))
	assert.Equal(t, 1, unit.UniqueGroupCount(c))
	assert.Equal(t, map[string]int{"G1": 1}, unit.Summarize(c))
}

func TestAggregate_SentinelGeneDropped(t *testing.T) {
	tbl := loadRows(t,
		"1\t2000\tC\tT\t.\t10.0\tintron_variant", // Row C
		"1\t3000\tG\tA\tG2\t10.0\tintron_variant",
	)

	c, err := Aggregate(tbl, intronOptions(3))
	require.NoError(t, err)

	assert.Equal(t, []string{"G2"}, c.GroupIDs())
	for u := range c.All() {
		for _, v := range u.Variants {
			assert.NotEqual(t, int64(2000), v.Pos, "row with sentinel gene must not appear")
		}
	}
}

func TestAggregate_ThresholdBoundary(t *testing.T) {
	tbl := loadRows(t,
		"1\t100\tA\tG\tG1\t3.0\tintron_variant",
		"1\t101\tA\tG\tG1\t.\tintron_variant",
		"1\t102\tA\tG\tG1\t3.0001\tintron_variant",
	)

	c, err := Aggregate(tbl, intronOptions(3))
	require.NoError(t, err)

	vs := c.Variants("G1")
	require.Len(t, vs, 1, "equal and absent scores are excluded")
	assert.Equal(t, int64(102), vs[0].Pos)
}

func TestAggregate_EmptyGroupOmitted(t *testing.T) {
	tbl := loadRows(t,
		"1\t100\tA\tG\tG1\t1.0\tintron_variant",
		"1\t200\tA\tG\tG2\t9.0\tmissense_variant",
		"1\t300\tA\tG\tG3\t9.0\tintron_variant",
	)

	c, err := Aggregate(tbl, intronOptions(3))
	require.NoError(t, err)

	assert.Equal(t, []string{"G3"}, c.GroupIDs())
	_, ok := unit.Summarize(c)["G1"]
	assert.False(t, ok)
	_, ok = unit.Summarize(c)["G2"]
	assert.False(t, ok)
}

func TestAggregate_EmptyResultIsNotAnError(t *testing.T) {
	tbl := loadRows(t, "1\t100\tA\tG\tG1\t1.0\tintron_variant")

	c, err := Aggregate(tbl, intronOptions(30))
	require.NoError(t, err)
	require.NotNil(t, c)
	assert.Equal(t, 0, c.Len())
	assert.Equal(t, 0, unit.UniqueGroupCount(c))
}

func TestAggregate_PartitionIsExhaustiveAndDisjoint(t *testing.T) {
	tbl := loadRows(t,
		"1\t100\tA\tG\tG1\t9\tintron_variant",
		"1\t110\tA\tG\tG2\t9\tintron_variant",
		"1\t120\tA\tG\t.\t9\tintron_variant",
		"1\t130\tA\tG\tG1\t1\tintron_variant",
		"1\t140\tA\tG\tG2\t9\tsplice_region_variant,intron_variant",
		"1\t150\tA\tG\tG1\t9\tmissense_variant",
		"1\t160\tA\tG\tG3\t9\tintron_variant",
	)

	c, err := Aggregate(tbl, intronOptions(3))
	require.NoError(t, err)

	// Expected survivors: 100 (G1), 110 (G2), 140 (G2), 160 (G3).
	seen := map[int64]string{}
	for u := range c.All() {
		for _, v := range u.Variants {
			prev, dup := seen[v.Pos]
			assert.False(t, dup, "variant %d in %s and %s", v.Pos, prev, u.GroupID)
			seen[v.Pos] = u.GroupID
		}
	}
	assert.Equal(t, map[int64]string{100: "G1", 110: "G2", 140: "G2", 160: "G3"}, seen)
	assert.Equal(t, []string{"G1", "G2", "G3"}, c.GroupIDs(), "first-seen order")
	assert.Equal(t, 4, c.VariantCount())
}

func TestAggregate_NoConsequencePattern(t *testing.T) {
	tbl := loadRows(t,
		"1\t100\tA\tG\tG1\t9\tmissense_variant",
		"1\t110\tA\tG\tG1\t9\t.",
	)

	opts := DefaultOptions()
	c, err := Aggregate(tbl, opts)
	require.NoError(t, err)
	assert.Len(t, c.Variants("G1"), 2, "empty pattern disables the consequence filter")
}

func TestAggregate_AbsentConsequenceFails(t *testing.T) {
	tbl := loadRows(t, "1\t110\tA\tG\tG1\t9\t.")

	c, err := Aggregate(tbl, intronOptions(3))
	require.NoError(t, err)
	assert.Equal(t, 0, c.Len())
}

func TestAggregate_MatchModes(t *testing.T) {
	tbl := loadRows(t,
		"1\t100\tA\tG\tG1\t9\tintron_variant",
		"1\t110\tA\tG\tG1\t9\tsplice_region_variant&intron_variant",
		"1\t120\tA\tG\tG1\t9\tnon_coding_transcript_intron_variant",
		"1\t130\tA\tG\tG1\t9\tINTRON_VARIANT",
	)

	tests := []struct {
		name    string
		mode    MatchMode
		pattern string
		want    []int64
	}{
		{"substring", MatchSubstring, "intron_variant", []int64{100, 110, 120}},
		{"term", MatchTerm, "intron_variant", []int64{100, 110}},
		{"regexp", MatchRegexp, "(?i)^intron_variant$", []int64{100, 130}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts := intronOptions(3)
			opts.Match = tt.mode
			opts.ConsequencePattern = tt.pattern

			c, err := Aggregate(tbl, opts)
			require.NoError(t, err)

			var got []int64
			for _, v := range c.Variants("G1") {
				got = append(got, v.Pos)
			}
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestAggregate_InvalidRegexp(t *testing.T) {
	tbl := loadRows(t, "1\t100\tA\tG\tG1\t9\tintron_variant")

	opts := intronOptions(3)
	opts.Match = MatchRegexp
	opts.ConsequencePattern = "("
	_, err := Aggregate(tbl, opts)
	assert.Error(t, err)
}

func TestAggregate_MissingColumn(t *testing.T) {
	tbl := loadRows(t, "1\t100\tA\tG\tG1\t9\tintron_variant")

	opts := intronOptions(3)
	opts.ScoreColumn = "CADD_RAW"
	_, err := Aggregate(tbl, opts)
	require.Error(t, err)

	var mi *table.MalformedInputError
	require.True(t, errors.As(err, &mi))
	assert.Equal(t, "CADD_RAW", mi.Column)
}

func TestAggregate_InvalidScoreReportsGroup(t *testing.T) {
	tbl := loadRows(t, "1\t100\tA\tG\tBRCA2\thigh\tintron_variant")

	_, err := Aggregate(tbl, intronOptions(3))
	require.Error(t, err)

	var mi *table.MalformedInputError
	require.True(t, errors.As(err, &mi))
	assert.Equal(t, "CADD_PHRED", mi.Column)
	assert.Equal(t, "BRCA2", mi.Group)
	assert.NotEmpty(t, mi.Path)
}

func TestAggregate_InvalidPosition(t *testing.T) {
	tbl := loadRows(t, "1\tabc\tA\tG\tG1\t9\tintron_variant")

	_, err := Aggregate(tbl, intronOptions(3))
	var mi *table.MalformedInputError
	require.True(t, errors.As(err, &mi))
	assert.Equal(t, "Pos", mi.Column)
	assert.Equal(t, "G1", mi.Group)
}

func TestAggregate_Deterministic(t *testing.T) {
	tbl := loadRows(t,
		"1\t100\tA\tG\tZ\t9\tintron_variant",
		"1\t110\tA\tG\tA\t9\tintron_variant",
		"1\t120\tA\tG\tM\t9\tintron_variant",
	)

	first, err := Aggregate(tbl, intronOptions(3))
	require.NoError(t, err)
	for range 5 {
		again, err := Aggregate(tbl, intronOptions(3))
		require.NoError(t, err)
		assert.Equal(t, first.GroupIDs(), again.GroupIDs())
	}
}

func TestProvider_Units(t *testing.T) {
	tbl := loadRows(t, "1\t100\tA\tG\tG1\t9\tintron_variant")

	var p unit.Provider = NewProvider(tbl, New(intronOptions(3)))
	c, err := p.Units(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"G1"}, c.GroupIDs())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = p.Units(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestFilter_Apply(t *testing.T) {
	tbl := loadRows(t,
		"1\t100\tA\tG\tG1\t9\tintron_variant",
		"1\t110\tA\tG\t.\t1\tintron_variant",
		"1\t120\tA\tG\t.\t9\tmissense_variant",
	)

	f := intronOptions(3).Filter
	out, err := f.Apply(tbl)
	require.NoError(t, err)
	require.Equal(t, 1, out.Len())
	assert.Equal(t, "100", out.Row(0).Get("Pos").String())
}

func TestParseMatchMode(t *testing.T) {
	for _, s := range []string{"substring", "term", "regexp", "TERM"} {
		m, err := ParseMatchMode(s)
		require.NoError(t, err, s)
		assert.Equal(t, strings.ToLower(s), m.String())
	}
	_, err := ParseMatchMode("glob")
	assert.Error(t, err)
}

func TestHasTerm(t *testing.T) {
	assert.True(t, hasTerm("intron_variant", "intron_variant"))
	assert.True(t, hasTerm("splice_region_variant,intron_variant", "intron_variant"))
	assert.True(t, hasTerm("a&intron_variant&b", "intron_variant"))
	assert.False(t, hasTerm("non_coding_transcript_intron_variant", "intron_variant"))
	assert.False(t, hasTerm("", "intron_variant"))
}

func TestVariants(t *testing.T) {
	tbl := loadRows(t,
		"1\t100\tA\tG\t.\t.\t.",
		"X\t200\tC\tT\tG1\t1\tintron_variant",
	)

	vs, err := Variants(tbl, DefaultVariantColumns())
	require.NoError(t, err)
	assert.Equal(t, []unit.Variant{
		{Chrom: "1", Pos: 100, Ref: "A", Alt: "G"},
		{Chrom: "X", Pos: 200, Ref: "C", Alt: "T"},
	}, vs)

	_, err = Variants(tbl, VariantColumns{Chrom: "CHROM", Pos: "Pos", Ref: "Ref", Alt: "Alt"})
	assert.Error(t, err)
}
