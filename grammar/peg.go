package grammar

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

// matcher tries to match at pos. It returns the end offset and the rule
// nodes produced by the match.
type matcher func(p *parser, pos int) (int, []*Node, bool)

type parser struct {
	input    string
	stack    []Rule
	maxPos   int
	maxRule  Rule
	expected []string
}

const maxExpected = 8

func (p *parser) fail(pos int, want string) {
	if pos < p.maxPos {
		return
	}
	if pos > p.maxPos || p.maxRule == "" {
		p.maxPos = pos
		p.expected = p.expected[:0]
		if len(p.stack) > 0 {
			p.maxRule = p.stack[len(p.stack)-1]
		}
	}
	for _, e := range p.expected {
		if e == want {
			return
		}
	}
	if len(p.expected) < maxExpected {
		p.expected = append(p.expected, want)
	}
}

func (p *parser) error(start Rule) *ParseError {
	r := p.maxRule
	if r == "" {
		r = start
	}
	line, col := 1, 1
	for _, c := range p.input[:p.maxPos] {
		if c == '\n' {
			line++
			col = 1
		} else {
			col++
		}
	}
	near := p.input[p.maxPos:]
	if len(near) > 32 {
		near = near[:32]
		for !utf8.ValidString(near) {
			near = near[:len(near)-1]
		}
	}
	expected := append([]string(nil), p.expected...)
	if len(expected) == 0 {
		expected = []string{string(r)}
	}
	return &ParseError{Rule: r, Pos: p.maxPos, Line: line, Column: col, Expected: expected, Near: near}
}

// skip moves past whitespace and comments: "-- ", "#" and "/* */".
func (p *parser) skip(pos int) int {
	in := p.input
	for pos < len(in) {
		switch c := in[pos]; {
		case c == ' ' || c == '\t' || c == '\n' || c == '\r' || c == '\f' || c == '\v':
			pos++
		case c == '#':
			pos = lineEnd(in, pos)
		case c == '-' && strings.HasPrefix(in[pos:], "--") &&
			(pos+2 == len(in) || isSpace(in[pos+2])):
			pos = lineEnd(in, pos)
		case c == '/' && strings.HasPrefix(in[pos:], "/*"):
			end := strings.Index(in[pos+2:], "*/")
			if end < 0 {
				return len(in)
			}
			pos += end + 4
		default:
			return pos
		}
	}
	return pos
}

func lineEnd(in string, pos int) int {
	if i := strings.IndexByte(in[pos:], '\n'); i >= 0 {
		return pos + i + 1
	}
	return len(in)
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r'
}

func isWordByte(c byte) bool {
	return c == '_' || c == '$' || c >= '0' && c <= '9' || c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' || c >= 0x80
}

// lit matches s exactly.
func lit(s string) matcher {
	return func(p *parser, pos int) (int, []*Node, bool) {
		pos = p.skip(pos)
		if strings.HasPrefix(p.input[pos:], s) {
			return pos + len(s), nil, true
		}
		p.fail(pos, `"`+s+`"`)
		return pos, nil, false
	}
}

// kw matches a sequence of case-insensitive words, each ending on a word boundary.
func kw(words ...string) matcher {
	return func(p *parser, pos int) (int, []*Node, bool) {
		for _, w := range words {
			pos = p.skip(pos)
			end := pos + len(w)
			if end > len(p.input) || !strings.EqualFold(p.input[pos:end], w) ||
				end < len(p.input) && isWordByte(p.input[end]) {
				p.fail(pos, w)
				return pos, nil, false
			}
			pos = end
		}
		return pos, nil, true
	}
}

// re matches a regular expression anchored at the current position.
func re(name, pattern string) matcher {
	rx := regexp.MustCompile(`\A(?:` + pattern + `)`)
	return func(p *parser, pos int) (int, []*Node, bool) {
		pos = p.skip(pos)
		loc := rx.FindStringIndex(p.input[pos:])
		if loc == nil || loc[1] == 0 {
			p.fail(pos, name)
			return pos, nil, false
		}
		return pos + loc[1], nil, true
	}
}

func eoi(p *parser, pos int) (int, []*Node, bool) {
	pos = p.skip(pos)
	if pos == len(p.input) {
		return pos, nil, true
	}
	p.fail(pos, "end of input")
	return pos, nil, false
}

func seq(ms ...matcher) matcher {
	return func(p *parser, pos int) (int, []*Node, bool) {
		var nodes []*Node
		for _, m := range ms {
			end, ns, ok := m(p, pos)
			if !ok {
				return pos, nil, false
			}
			pos = end
			nodes = append(nodes, ns...)
		}
		return pos, nodes, true
	}
}

// choice is PEG ordered choice: the first alternative that matches wins.
func choice(ms ...matcher) matcher {
	return func(p *parser, pos int) (int, []*Node, bool) {
		for _, m := range ms {
			if end, nodes, ok := m(p, pos); ok {
				return end, nodes, true
			}
		}
		return pos, nil, false
	}
}

func opt(m matcher) matcher {
	return func(p *parser, pos int) (int, []*Node, bool) {
		if end, nodes, ok := m(p, pos); ok {
			return end, nodes, true
		}
		return pos, nil, true
	}
}

// many matches m greedily zero or more times.
func many(m matcher) matcher {
	return func(p *parser, pos int) (int, []*Node, bool) {
		var nodes []*Node
		for {
			end, ns, ok := m(p, pos)
			if !ok || end == pos {
				return pos, nodes, true
			}
			pos = end
			nodes = append(nodes, ns...)
		}
	}
}

func many1(m matcher) matcher {
	return seq(m, many(m))
}

// list matches one or more m separated by sep.
func list(m, sep matcher) matcher {
	return seq(m, many(seq(sep, m)))
}

// not succeeds without consuming input when m does not match.
func not(m matcher) matcher {
	return func(p *parser, pos int) (int, []*Node, bool) {
		saved := p.maxPos
		savedRule := p.maxRule
		savedExpected := append([]string(nil), p.expected...)
		_, _, ok := m(p, pos)
		p.maxPos, p.maxRule, p.expected = saved, savedRule, savedExpected
		return pos, nil, !ok
	}
}

// rule wraps the nodes produced by m into a single node tagged r.
func rule(r Rule, m matcher) matcher {
	return func(p *parser, pos int) (int, []*Node, bool) {
		start := p.skip(pos)
		p.stack = append(p.stack, r)
		end, children, ok := m(p, start)
		p.stack = p.stack[:len(p.stack)-1]
		if !ok {
			return pos, nil, false
		}
		return end, []*Node{{Rule: r, Pos: start, Text: p.input[start:end], Children: children}}, true
	}
}

// ref defers resolution of a matcher that is defined later, for recursive rules.
func ref(m *matcher) matcher {
	return func(p *parser, pos int) (int, []*Node, bool) {
		return (*m)(p, pos)
	}
}
