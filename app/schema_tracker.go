package app

import (
	"regexp"
	"strings"

	"github.com/siddontang/go-log/log"
	"github.com/sqlpub/qin-mask/metas"
)

var (
	ddlStart      = regexp.MustCompile(`(?i)^(create|alter|drop|use)\b`)
	databaseStart = regexp.MustCompile(`(?i)^(use|(create|drop)\s+(database|schema))\b`)
)

// unnamedDatabase holds the tables of a dump that never names its database.
const unnamedDatabase = "unnamed"

// schemaTracker feeds the schema statements seen among raw lines to a
// DumpParser, so inserts without a column list can still be matched by
// column name.
type schemaTracker struct {
	parser   *metas.DumpParser
	buf      strings.Builder
	skipping bool
}

func newSchemaTracker() *schemaTracker {
	return &schemaTracker{parser: metas.NewDumpParser()}
}

func (t *schemaTracker) feed(line string) {
	trimmed := strings.TrimSpace(line)
	if t.buf.Len() == 0 && !t.skipping {
		if trimmed == "" || strings.HasPrefix(trimmed, "--") || strings.HasPrefix(trimmed, "/*") {
			return
		}
		t.skipping = !ddlStart.MatchString(trimmed)
	}
	if !t.skipping {
		t.buf.WriteString(line)
	}
	if strings.HasSuffix(trimmed, ";") {
		if !t.skipping {
			t.apply(t.buf.String())
		}
		t.buf.Reset()
		t.skipping = false
	}
}

func (t *schemaTracker) apply(stmt string) {
	if t.parser.CurrentDatabase() == "" && !databaseStart.MatchString(strings.TrimSpace(stmt)) {
		_ = t.parser.Parse("USE `" + unnamedDatabase + "`;")
	}
	if err := t.parser.Parse(stmt); err != nil {
		log.Warnf("schema statement not tracked: %v", err)
	}
}

func (t *schemaTracker) database() string {
	if db := t.parser.CurrentDatabase(); db != unnamedDatabase {
		return db
	}
	return ""
}

// columns returns the column names of a tracked table, or nil.
func (t *schemaTracker) columns(table string) []string {
	db := t.parser.CurrentDatabase()
	if db == "" {
		return nil
	}
	tab, err := t.parser.Get(db, table)
	if err != nil {
		return nil
	}
	return tab.ColumnNames()
}
