package metas

import (
	"bytes"
	"embed"
	"strings"
	"text/template"

	"github.com/juju/errors"
)

//go:embed templates/*.tmpl
var templateFS embed.FS

func quoteIdent(name string) string {
	return "`" + strings.ReplaceAll(name, "`", "``") + "`"
}

var templateFuncs = template.FuncMap{
	"ident": quoteIdent,
	"idents": func(names []string) string {
		quoted := make([]string, len(names))
		for i, name := range names {
			quoted[i] = quoteIdent(name)
		}
		return strings.Join(quoted, ",")
	},
	"values": func(values []Value) string {
		rendered := make([]string, len(values))
		for i, v := range values {
			rendered[i] = v.SQL()
		}
		return strings.Join(rendered, ",")
	},
	"quote": func(s string) string {
		return TextValue(s).SQL()
	},
}

// Renderer turns model entities back into SQL text. Build one with
// NewRenderer and share it; rendering has no side effects.
type Renderer struct {
	tmpl *template.Template
}

func NewRenderer() (*Renderer, error) {
	tmpl, err := template.New("sql").Funcs(templateFuncs).ParseFS(templateFS, "templates/*.tmpl")
	if err != nil {
		return nil, errors.Trace(err)
	}
	return &Renderer{tmpl: tmpl}, nil
}

func (r *Renderer) render(name string, data interface{}) (string, error) {
	var buf bytes.Buffer
	if err := r.tmpl.ExecuteTemplate(&buf, name, data); err != nil {
		return "", errors.Annotatef(err, "render %s", name)
	}
	return strings.TrimSpace(buf.String()), nil
}

func (r *Renderer) ForeignKey(fk ForeignKey) (string, error) {
	return r.render("foreign_key", fk)
}

func (r *Renderer) DatabaseOption(o DatabaseOption) (string, error) {
	return r.render("database_option", o)
}

func (r *Renderer) CreateDatabase(db *Database) (string, error) {
	return r.render("create_database", db)
}

func (r *Renderer) Column(c Column) (string, error) {
	return r.render("column", c)
}

func (r *Renderer) PrimaryKey(pk PrimaryKey) (string, error) {
	return r.render("primary_key", pk)
}

func (r *Renderer) Index(index Index) (string, error) {
	return r.render("index", index)
}

func (r *Renderer) CreateTable(t *Table) (string, error) {
	return r.render("create_table", t)
}

func (r *Renderer) Insert(i *Insert) (string, error) {
	return r.render("insert", i)
}

func (r *Renderer) Update(u *Update) (string, error) {
	return r.render("update", u)
}

func (r *Renderer) Delete(d *Delete) (string, error) {
	return r.render("delete", d)
}

// Schema renders a database and its tables. Parsing the result with a
// DumpParser rebuilds the same schema.
func (r *Renderer) Schema(db *Database) (string, error) {
	var b strings.Builder
	s, err := r.CreateDatabase(db)
	if err != nil {
		return "", err
	}
	b.WriteString(s)
	b.WriteString("\n")
	for _, t := range db.Tables() {
		s, err := r.CreateTable(t)
		if err != nil {
			return "", err
		}
		b.WriteString(s)
		b.WriteString("\n")
	}
	return b.String(), nil
}
