package aggregate

import (
	"fmt"
	"regexp"
	"strings"
)

// MatchMode selects how the consequence pattern is compared with the
// consequence column.
type MatchMode int

const (
	// MatchSubstring keeps rows whose consequence contains the pattern (case-sensitive).
	MatchSubstring MatchMode = iota
	// MatchTerm splits the consequence on ',' and '&' and requires one term to equal the pattern.
	MatchTerm
	// MatchRegexp treats the pattern as a regular expression.
	MatchRegexp
)

var matchModeNames = map[string]MatchMode{
	"substring": MatchSubstring,
	"term":      MatchTerm,
	"regexp":    MatchRegexp,
}

// ParseMatchMode parses "substring", "term" or "regexp".
func ParseMatchMode(s string) (MatchMode, error) {
	m, ok := matchModeNames[strings.ToLower(s)]
	if !ok {
		return 0, fmt.Errorf("unknown consequence match mode %q (want substring, term or regexp)", s)
	}
	return m, nil
}

func (m MatchMode) String() string {
	for name, mode := range matchModeNames {
		if mode == m {
			return name
		}
	}
	return fmt.Sprintf("MatchMode(%d)", int(m))
}

// matcher reports whether a consequence string matches.
type matcher func(consequence string) bool

func newMatcher(mode MatchMode, pattern string) (matcher, error) {
	switch mode {
	case MatchSubstring:
		return func(c string) bool { return strings.Contains(c, pattern) }, nil
	case MatchTerm:
		return func(c string) bool { return hasTerm(c, pattern) }, nil
	case MatchRegexp:
		re, err := regexp.Compile(pattern)
		if err != nil {
			return nil, fmt.Errorf("compile consequence pattern: %w", err)
		}
		return re.MatchString, nil
	}
	return nil, fmt.Errorf("unknown consequence match mode %d", int(mode))
}

// hasTerm returns true if one of the ',' or '&' separated terms equals term.
func hasTerm(consequence, term string) bool {
	for rest := consequence; rest != ""; {
		t := rest
		if i := strings.IndexAny(rest, ",&"); i >= 0 {
			t = rest[:i]
			rest = rest[i+1:]
		} else {
			rest = ""
		}
		if t == term {
			return true
		}
	}
	return false
}
