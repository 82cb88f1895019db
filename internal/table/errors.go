package table

import (
	"fmt"
	"strings"
)

// MalformedInputError reports input that cannot be read as a header-bearing
// tab-separated table, or that lacks a column the caller requires.
type MalformedInputError struct {
	Path   string
	Line   int
	Column string
	Group  string
	Msg    string
}

func (e *MalformedInputError) Error() string {
	var b strings.Builder
	b.WriteString("malformed input")
	if e.Path != "" {
		b.WriteString(" ")
		b.WriteString(e.Path)
	}
	if e.Line > 0 {
		fmt.Fprintf(&b, " at line %d", e.Line)
	}
	if e.Column != "" {
		fmt.Fprintf(&b, " column %q", e.Column)
	}
	if e.Group != "" {
		fmt.Fprintf(&b, " group %q", e.Group)
	}
	b.WriteString(": ")
	b.WriteString(e.Msg)
	return b.String()
}

// SchemaMismatchError reports a file whose header differs from the header of
// the first file loaded.
type SchemaMismatchError struct {
	Path string
	Want []string
	Got  []string
}

func (e *SchemaMismatchError) Error() string {
	return fmt.Sprintf("schema mismatch in %s: expected columns [%s], found [%s]",
		e.Path, strings.Join(e.Want, ", "), strings.Join(e.Got, ", "))
}
