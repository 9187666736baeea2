package metas

import (
	"github.com/juju/errors"
	"github.com/pingcap/tidb/pkg/parser"
	"github.com/pingcap/tidb/pkg/parser/ast"
	_ "github.com/pingcap/tidb/pkg/parser/test_driver"
)

// Verifier re-parses rendered statements with the TiDB parser. It is not
// safe for concurrent use.
type Verifier struct {
	p *parser.Parser
}

func NewVerifier() *Verifier {
	return &Verifier{p: parser.New()}
}

// Verify checks that sql is one statement MySQL would accept. For inserts it
// also checks every row has one value per listed column.
func (v *Verifier) Verify(sql string) error {
	stmt, err := v.p.ParseOneStmt(sql, "", "")
	if err != nil {
		return errors.Annotatef(err, "verify %.64q", sql)
	}
	if insert, ok := stmt.(*ast.InsertStmt); ok && len(insert.Columns) > 0 {
		for i, row := range insert.Lists {
			if len(row) != len(insert.Columns) {
				return errors.NotValidf("row %d has %d values for %d columns", i+1, len(row), len(insert.Columns))
			}
		}
	}
	return nil
}
