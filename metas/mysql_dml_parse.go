package metas

import (
	"github.com/juju/errors"
	"github.com/sqlpub/qin-mask/grammar"
)

// NewInsert parses a single INSERT statement.
func NewInsert(sql string) (*Insert, error) {
	n, err := grammar.Parse(grammar.InsertStatement, sql)
	if err != nil {
		return nil, errors.Trace(err)
	}
	return newInsert(n)
}

func newInsert(n *grammar.Node) (*Insert, error) {
	tableName, err := child(n, grammar.TableName)
	if err != nil {
		return nil, err
	}
	insert := &Insert{Table: nodeName(tableName), Ignore: n.Child(grammar.Ignore) != nil}
	if list := n.Child(grammar.ColumnList); list != nil {
		for _, c := range list.All(grammar.ColumnName) {
			insert.Columns = append(insert.Columns, nodeName(c))
		}
	}
	for _, row := range n.All(grammar.ValueRow) {
		values := make([]Value, 0, len(row.Children))
		for i := range row.Children {
			v, err := newValue(row.Children[i : i+1])
			if err != nil {
				return nil, err
			}
			values = append(values, v)
		}
		insert.Rows = append(insert.Rows, values)
	}
	if len(insert.Rows) == 0 {
		return nil, errors.NotValidf("%s without rows", n.Rule)
	}
	return insert, nil
}

func newUpdate(n *grammar.Node) (*Update, error) {
	tableName, err := child(n, grammar.TableName)
	if err != nil {
		return nil, err
	}
	update := &Update{Table: nodeName(tableName), Values: make(map[string]Value)}
	for _, assignment := range n.All(grammar.Assignment) {
		column, err := child(assignment, grammar.ColumnName)
		if err != nil {
			return nil, err
		}
		v, err := newValue(assignment.Children[1:])
		if err != nil {
			return nil, err
		}
		name := nodeName(column)
		if _, ok := update.Values[name]; !ok {
			update.Columns = append(update.Columns, name)
		}
		update.Values[name] = v
	}
	return update, nil
}

func newDelete(n *grammar.Node) (*Delete, error) {
	tableName, err := child(n, grammar.TableName)
	if err != nil {
		return nil, err
	}
	return &Delete{Table: nodeName(tableName)}, nil
}
