package output

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/inodb/vibe-burden/internal/region"
	"github.com/inodb/vibe-burden/internal/table"
	"github.com/inodb/vibe-burden/internal/unit"
)

func sampleUnits() *unit.Collection {
	b := unit.NewBuilder()
	b.Add("TP53", unit.Variant{Chrom: "17", Pos: 7675088, Ref: "C", Alt: "T"})
	b.Add("KRAS", unit.Variant{Chrom: "12", Pos: 25245350, Ref: "C", Alt: "A"})
	b.Add("TP53", unit.Variant{Chrom: "17", Pos: 7674220, Ref: "C", Alt: "T"})
	return b.Build()
}

func TestUnitWriter(t *testing.T) {
	var buf bytes.Buffer
	w := NewUnitWriter(&buf)
	require.NoError(t, w.WriteCollection(sampleUnits()))
	require.NoError(t, w.Flush())

	want := "group_id\tchr\tpos\tref\talt\n" +
		"TP53\t17\t7675088\tC\tT\n" +
		"TP53\t17\t7674220\tC\tT\n" +
		"KRAS\t12\t25245350\tC\tA\n"
	assert.Equal(t, want, buf.String())
}

func TestUnitWriter_EmptyCollection(t *testing.T) {
	var buf bytes.Buffer
	w := NewUnitWriter(&buf)
	require.NoError(t, w.WriteCollection(unit.NewBuilder().Build()))
	require.NoError(t, w.Flush())
	assert.Equal(t, "group_id\tchr\tpos\tref\talt\n", buf.String())
}

func TestReadUnits_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "units.tsv")
	f, err := os.Create(path)
	require.NoError(t, err)
	w := NewUnitWriter(f)
	require.NoError(t, w.WriteCollection(sampleUnits()))
	require.NoError(t, w.Flush())
	require.NoError(t, f.Close())

	c, err := ReadUnits([]string{path})
	require.NoError(t, err)
	assert.Equal(t, []string{"TP53", "KRAS"}, c.GroupIDs())
	assert.Equal(t, unit.Counts(sampleUnits()), unit.Counts(c))
}

func TestReadUnits_Errors(t *testing.T) {
	dir := t.TempDir()

	missing := filepath.Join(dir, "missing.tsv")
	require.NoError(t, os.WriteFile(missing, []byte("group_id\tchr\tpos\nG\t1\t5\n"), 0644))
	_, err := ReadUnits([]string{missing})
	var mi *table.MalformedInputError
	require.ErrorAs(t, err, &mi)
	assert.Equal(t, "ref", mi.Column)

	badPos := filepath.Join(dir, "bad.tsv")
	require.NoError(t, os.WriteFile(badPos, []byte("group_id\tchr\tpos\tref\talt\nG\t1\tx\tA\tC\n"), 0644))
	_, err = ReadUnits([]string{badPos})
	require.ErrorAs(t, err, &mi)
	assert.Equal(t, "pos", mi.Column)
	assert.Equal(t, "G", mi.Group)
}

func TestSummaryWriter(t *testing.T) {
	var buf bytes.Buffer
	w := NewSummaryWriter(&buf)
	require.NoError(t, w.WriteCounts(unit.Counts(sampleUnits())))
	require.NoError(t, w.Flush())
	assert.Equal(t, "group_id\tcount\nTP53\t2\nKRAS\t1\n", buf.String())
}

func TestWriteStats(t *testing.T) {
	var buf bytes.Buffer
	WriteStats(&buf, unit.SizeStats(sampleUnits()))
	out := buf.String()
	assert.Contains(t, out, "2 groups, 3 variants")
	assert.Contains(t, out, "1.50")

	buf.Reset()
	WriteStats(&buf, unit.SizeStats(unit.NewBuilder().Build()))
	assert.Contains(t, buf.String(), "0 groups")
	assert.NotContains(t, buf.String(), "mean")
}

func TestRegionWriter(t *testing.T) {
	var buf bytes.Buffer
	w := NewRegionWriter(&buf)
	require.NoError(t, w.WriteHeader())
	require.NoError(t, w.Write(region.GeneRegion{Chrom: "12", Start: 100, End: 300, Transcripts: []string{"T1", "T2"}}))
	require.NoError(t, w.Write(region.GeneRegion{Chrom: "12", Start: 500, End: 500}))
	require.NoError(t, w.Flush())

	assert.Equal(t, "chrom\tstart\tend\ttranscripts\n12\t100\t300\tT1,T2\n12\t500\t500\t.\n", buf.String())
}
