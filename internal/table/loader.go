package table

import (
	"bufio"
	"fmt"
	"io"
	"slices"
	"strings"

	"go.uber.org/multierr"

	"github.com/inodb/vibe-burden/internal/fileio"
)

// DefaultMissingToken is the cell text that marks a missing value.
const DefaultMissingToken = "."

// Load reads one or more tab-separated files into a single table. The first
// non-comment line of each file is its header; all files must share the same
// header. Cells equal to missingToken are loaded as Absent. Either the whole
// table is returned or an error; there is no partial load.
func Load(paths []string, missingToken string) (t *Table, err error) {
	if len(paths) == 0 {
		return nil, &MalformedInputError{Msg: "no input files"}
	}

	for _, path := range paths {
		if t, err = loadFile(t, path, missingToken); err != nil {
			return nil, err
		}
	}
	return t, nil
}

// loadFile appends the rows of path to t, creating t from the header if it is nil.
func loadFile(t *Table, path, missingToken string) (_ *Table, err error) {
	rc, err := fileio.Open(path)
	if err != nil {
		return nil, err
	}
	defer multierr.AppendInvoke(&err, multierr.Close(rc))

	p := &parser{reader: bufio.NewReader(rc), path: path, missing: missingToken}

	header, err := p.readHeader()
	if err != nil {
		return nil, err
	}

	if t == nil {
		t, err = New(header)
		if err != nil {
			return nil, &MalformedInputError{Path: path, Line: p.lineNumber, Msg: err.Error()}
		}
	} else if !slices.Equal(t.columns, header) {
		return nil, &SchemaMismatchError{Path: path, Want: t.Columns(), Got: header}
	}

	for {
		cells, err := p.next(len(header))
		if err != nil {
			return nil, err
		}
		if cells == nil {
			return t, nil
		}
		t.append(path, cells)
	}
}

type parser struct {
	reader     *bufio.Reader
	path       string
	missing    string
	lineNumber int
}

// readLine returns the next line without its terminator. ok is false at EOF.
func (p *parser) readLine() (line string, ok bool, err error) {
	line, err = p.reader.ReadString('\n')
	if err != nil && err != io.EOF {
		return "", false, fmt.Errorf("read %s: %w", p.path, err)
	}
	if err == io.EOF && line == "" {
		return "", false, nil
	}
	p.lineNumber++
	return strings.TrimRight(line, "\r\n"), true, nil
}

// readHeader skips leading comment and blank lines and splits the header.
func (p *parser) readHeader() ([]string, error) {
	for {
		line, ok, err := p.readLine()
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, &MalformedInputError{Path: p.path, Line: p.lineNumber, Msg: "no header line found"}
		}
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		return strings.Split(line, "\t"), nil
	}
}

// next parses the next data row. It returns nil, nil at end of input.
func (p *parser) next(width int) ([]Value, error) {
	for {
		line, ok, err := p.readLine()
		if err != nil || !ok {
			return nil, err
		}
		if line == "" {
			continue
		}

		fields := strings.Split(line, "\t")
		if len(fields) != width {
			return nil, &MalformedInputError{
				Path: p.path,
				Line: p.lineNumber,
				Msg:  fmt.Sprintf("expected %d columns, found %d", width, len(fields)),
			}
		}

		cells := make([]Value, len(fields))
		for i, f := range fields {
			if f != p.missing {
				cells[i] = Of(f)
			}
		}
		return cells, nil
	}
}
