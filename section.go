package statement

import (
	"fmt"
	"regexp"
)

// Values holds the named captures of a matched section.
type Values map[string]string

// Get returns the capture, or an empty string when the group did not participate.
func (v Values) Get(name string) string { return v[name] }

// Section is one matching rule of a transaction pipeline.
//
// All Patterns must match consecutive lines, in order. Each pattern is a full line expression,
// named groups use the (?P<name>...) syntax. When the section matches, Assign receives the merged
// captures. An Assign error makes the section count as unmatched, so assignments must validate
// every capture before mutating the builder.
type Section[T Builder] struct {
	Name     string
	Optional bool
	Patterns []string
	Assign   func(b T, v Values, ctx *Context) error

	re []*regexp.Regexp
}

// CompileLinePattern compiles p so that it must match a whole line.
func CompileLinePattern(p string) (*regexp.Regexp, error) {
	re, err := regexp.Compile(`^(?:` + p + `)$`)
	if err != nil {
		return nil, fmt.Errorf("invalid pattern %q: %w", p, err)
	}
	return re, nil
}

// compile prepares the patterns. It is called once, when the section is added to a Transaction.
func (s *Section[T]) compile() error {
	if len(s.Patterns) == 0 {
		return fmt.Errorf("section %q has no pattern", s.Name)
	}
	s.re = make([]*regexp.Regexp, len(s.Patterns))
	for i, p := range s.Patterns {
		re, err := CompileLinePattern(p)
		if err != nil {
			return fmt.Errorf("section %q: %w", s.Name, err)
		}
		s.re[i] = re
	}
	return nil
}

// Match searches lines, starting at from, for the first line matching the first pattern and
// checks the following patterns against the immediately following lines.
// It returns the merged captures and the index of the line after the match.
func (s *Section[T]) Match(lines []string, from int) (Values, int, bool) {
	if s.re == nil {
		if err := s.compile(); err != nil {
			return nil, from, false
		}
	}
	for start := max(from, 0); start+len(s.re) <= len(lines); start++ {
		if v, ok := s.matchAt(lines, start); ok {
			return v, start + len(s.re), true
		}
	}
	return nil, from, false
}

func (s *Section[T]) matchAt(lines []string, start int) (Values, bool) {
	v := make(Values)
	for i, re := range s.re {
		m := re.FindStringSubmatchIndex(lines[start+i])
		if m == nil {
			return nil, false
		}
		for g, name := range re.SubexpNames() {
			if name == "" || m[2*g] < 0 {
				continue
			}
			v[name] = lines[start+i][m[2*g]:m[2*g+1]]
		}
	}
	return v, true
}

// label names the section in logs and errors.
func (s *Section[T]) label() string {
	if s.Name != "" {
		return s.Name
	}
	if len(s.Patterns) > 0 {
		return s.Patterns[0]
	}
	return "?"
}
