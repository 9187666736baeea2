package metas

import (
	"strings"

	"github.com/goccy/go-json"
)

type ColumnMatch struct {
	Database string `json:"db_name"`
	Table    string `json:"table_name"`
	Column   string `json:"column_name"`
}

// FindColumns reports, per table, the first column whose name contains
// query, ignoring case.
func FindColumns(dbs []*Database, query string) []ColumnMatch {
	query = strings.ToLower(query)
	matches := make([]ColumnMatch, 0)
	for _, db := range dbs {
		for _, t := range db.Tables() {
			for _, c := range t.Columns {
				if strings.Contains(strings.ToLower(c.Name), query) {
					matches = append(matches, ColumnMatch{Database: db.Name, Table: t.Name, Column: c.Name})
					break
				}
			}
		}
	}
	return matches
}

func ColumnMatchesJSON(matches []ColumnMatch) ([]byte, error) {
	return json.MarshalIndent(matches, "", "  ")
}
