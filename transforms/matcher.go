package transforms

import (
	"regexp"
	"strings"

	"github.com/juju/errors"
	"github.com/sqlpub/qin-mask/config"
)

type namedPattern struct {
	name string
	re   *regexp.Regexp
}

// Matcher answers whether a string names a configured column or matches a
// configured pattern. Values and column names go through the same test.
type Matcher struct {
	columns         map[string]struct{}
	caseInsensitive bool
	patterns        []namedPattern
}

func NewMatcher(c *config.MaskingConfig) (*Matcher, error) {
	m := &Matcher{columns: make(map[string]struct{}, len(c.Columns)), caseInsensitive: c.CaseInsensitive}
	for _, column := range c.Columns {
		m.columns[m.fold(column)] = struct{}{}
	}
	for i, p := range c.Patterns {
		re, err := regexp.Compile(p.Regex)
		if err != nil {
			return nil, errors.Annotatef(err, "patterns[%d] %s", i, p.Name)
		}
		m.patterns = append(m.patterns, namedPattern{name: p.Name, re: re})
	}
	return m, nil
}

func (m *Matcher) fold(s string) string {
	if m.caseInsensitive {
		return strings.ToLower(s)
	}
	return s
}

func (m *Matcher) MatchColumn(s string) bool {
	_, ok := m.columns[m.fold(s)]
	return ok
}

// MatchPattern returns the name of the first pattern matching s. Unnamed
// patterns match with an empty name.
func (m *Matcher) MatchPattern(s string) (string, bool) {
	for _, p := range m.patterns {
		if p.re.MatchString(s) {
			return p.name, true
		}
	}
	return "", false
}

func (m *Matcher) Filter(s string) bool {
	if m.MatchColumn(s) {
		return true
	}
	_, ok := m.MatchPattern(s)
	return ok
}
