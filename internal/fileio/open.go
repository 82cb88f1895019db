// Package fileio opens plain or gzip-compressed input files.
package fileio

import (
	"bufio"
	"fmt"
	"io"
	"os"

	"github.com/klauspost/compress/gzip"
	"go.uber.org/multierr"
)

// Open opens path for reading. "-" reads standard input. Gzip input is
// detected by its magic bytes (0x1f, 0x8b), not by file extension.
func Open(path string) (io.ReadCloser, error) {
	if path == "-" {
		return wrap(os.Stdin, nil)
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	rc, err := wrap(f, f)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	return rc, nil
}

// wrap peeks at r and returns a decompressing reader when r holds gzip data.
// closer, if non-nil, is closed together with the returned reader.
func wrap(r io.Reader, closer io.Closer) (io.ReadCloser, error) {
	br := bufio.NewReader(r)
	magic, err := br.Peek(2)
	if err != nil && err != io.EOF {
		return nil, fmt.Errorf("read header: %w", err)
	}

	if len(magic) == 2 && magic[0] == 0x1f && magic[1] == 0x8b {
		gz, err := gzip.NewReader(br)
		if err != nil {
			return nil, fmt.Errorf("create gzip reader: %w", err)
		}
		return &readCloser{Reader: gz, closers: []io.Closer{gz, closer}}, nil
	}
	return &readCloser{Reader: br, closers: []io.Closer{closer}}, nil
}

type readCloser struct {
	io.Reader
	closers []io.Closer
}

// Close closes the decompressor, if any, and then the underlying file.
func (rc *readCloser) Close() error {
	var err error
	for _, c := range rc.closers {
		if c != nil {
			err = multierr.Append(err, c.Close())
		}
	}
	return err
}
