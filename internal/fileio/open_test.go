package fileio

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/klauspost/compress/gzip"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpen_Plain(t *testing.T) {
	path := filepath.Join(t.TempDir(), "plain.tsv")
	require.NoError(t, os.WriteFile(path, []byte("a\tb\n1\t2\n"), 0644))

	rc, err := Open(path)
	require.NoError(t, err)
	defer rc.Close()

	data, err := io.ReadAll(rc)
	require.NoError(t, err)
	assert.Equal(t, "a\tb\n1\t2\n", string(data))
}

func TestOpen_Gzip(t *testing.T) {
	var buf bytes.Buffer
	gz := gzip.NewWriter(&buf)
	_, err := gz.Write([]byte("a\tb\n1\t2\n"))
	require.NoError(t, err)
	require.NoError(t, gz.Close())

	// No .gz extension: detection is by magic bytes.
	path := filepath.Join(t.TempDir(), "compressed.tsv")
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0644))

	rc, err := Open(path)
	require.NoError(t, err)

	data, err := io.ReadAll(rc)
	require.NoError(t, err)
	assert.Equal(t, "a\tb\n1\t2\n", string(data))
	assert.NoError(t, rc.Close())
}

func TestOpen_Empty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.tsv")
	require.NoError(t, os.WriteFile(path, nil, 0644))

	rc, err := Open(path)
	require.NoError(t, err)
	data, err := io.ReadAll(rc)
	require.NoError(t, err)
	assert.Empty(t, data)
	assert.NoError(t, rc.Close())
}

func TestOpen_NotFound(t *testing.T) {
	_, err := Open("/nonexistent/file.tsv")
	require.Error(t, err)
	assert.ErrorIs(t, err, os.ErrNotExist)
}
