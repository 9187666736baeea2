package metas

import (
	"strings"

	"github.com/go-mysql-org/go-mysql/mysql"
)

type ValueKind string

const (
	ValueText   ValueKind = "text"
	ValueNumber ValueKind = "number"
	ValueNull   ValueKind = "null"
	ValueRaw    ValueKind = "raw" // keywords, function calls, hex and bit literals
)

// Value is a literal from a dump. Text values hold the decoded string
// without quotes.
type Value struct {
	Kind ValueKind
	Text string
}

func TextValue(s string) Value   { return Value{Kind: ValueText, Text: s} }
func NumberValue(s string) Value { return Value{Kind: ValueNumber, Text: s} }
func RawValue(s string) Value    { return Value{Kind: ValueRaw, Text: s} }

var NullValue = Value{Kind: ValueNull, Text: "NULL"}

func (v Value) IsNull() bool {
	return v.Kind == ValueNull
}

func (v Value) String() string {
	return v.Text
}

// SQL renders the value as a literal.
func (v Value) SQL() string {
	switch v.Kind {
	case ValueText:
		return "'" + mysql.Escape(v.Text) + "'"
	case ValueNull:
		return "NULL"
	default:
		return v.Text
	}
}

type Insert struct {
	Table   string
	Ignore  bool
	Columns []string // empty when the statement has no column list
	Rows    [][]Value
}

func (i *Insert) Clone() *Insert {
	c := &Insert{Table: i.Table, Ignore: i.Ignore, Columns: append([]string(nil), i.Columns...)}
	c.Rows = make([][]Value, len(i.Rows))
	for n, row := range i.Rows {
		c.Rows[n] = append([]Value(nil), row...)
	}
	return c
}

// Update keeps the SET assignments. The WHERE clause is not retained.
type Update struct {
	Table   string
	Columns []string // assignment order
	Values  map[string]Value
}

func (u *Update) Clone() *Update {
	c := &Update{Table: u.Table, Columns: append([]string(nil), u.Columns...), Values: make(map[string]Value, len(u.Values))}
	for k, v := range u.Values {
		c.Values[k] = v
	}
	return c
}

// Delete records the target table only. The WHERE clause is not retained.
type Delete struct {
	Table string
}

// unquoteIdent strips backtick quoting.
func unquoteIdent(s string) string {
	if len(s) >= 2 && s[0] == '`' && s[len(s)-1] == '`' {
		return strings.ReplaceAll(s[1:len(s)-1], "``", "`")
	}
	return s
}

// unquoteString decodes a quoted string literal, including backslash escapes
// and doubled quotes.
func unquoteString(s string) string {
	if len(s) < 2 || (s[0] != '\'' && s[0] != '"') || s[len(s)-1] != s[0] {
		return s
	}
	quote := s[0]
	body := s[1 : len(s)-1]
	if strings.IndexByte(body, '\\') < 0 && strings.IndexByte(body, quote) < 0 {
		return body
	}
	var b strings.Builder
	b.Grow(len(body))
	for i := 0; i < len(body); i++ {
		c := body[i]
		switch {
		case c == '\\' && i+1 < len(body):
			i++
			switch body[i] {
			case '0':
				b.WriteByte(0)
			case 'b':
				b.WriteByte('\b')
			case 'n':
				b.WriteByte('\n')
			case 'r':
				b.WriteByte('\r')
			case 't':
				b.WriteByte('\t')
			case 'Z':
				b.WriteByte(0x1a)
			case '%', '_':
				b.WriteByte('\\')
				b.WriteByte(body[i])
			default:
				b.WriteByte(body[i])
			}
		case c == quote && i+1 < len(body) && body[i+1] == quote:
			b.WriteByte(quote)
			i++
		default:
			b.WriteByte(c)
		}
	}
	return b.String()
}
