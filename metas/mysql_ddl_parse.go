package metas

import (
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/juju/errors"
	"github.com/sqlpub/qin-mask/grammar"
)

// nodeName returns the unquoted identifier held by a name node. For
// qualified table names it is the last part.
func nodeName(n *grammar.Node) string {
	if n == nil {
		return ""
	}
	if len(n.Children) > 0 {
		return unquoteIdent(n.Children[len(n.Children)-1].Text)
	}
	return unquoteIdent(n.Text)
}

func child(n *grammar.Node, r grammar.Rule) (*grammar.Node, error) {
	c := n.Child(r)
	if c == nil {
		return nil, errors.NotValidf("%s without %s", n.Rule, r)
	}
	return c, nil
}

// words normalizes keyword text: upper case, single spaces.
func words(s string) string {
	return strings.Join(strings.Fields(strings.ToUpper(s)), " ")
}

func ParseTable(sql string) (*Table, error) {
	n, err := grammar.Parse(grammar.CreateTable, sql)
	if err != nil {
		return nil, errors.Trace(err)
	}
	return newTable(n)
}

// TableDdlHandle applies an ALTER TABLE statement to tab.
func TableDdlHandle(tab *Table, sql string) error {
	n, err := grammar.Parse(grammar.AlterTable, sql)
	if err != nil {
		return errors.Trace(err)
	}
	if name := nodeName(n.Child(grammar.TableName)); name != tab.Name {
		return errors.Errorf("operation object do not match error: table: %s and sql: %s", tab.Name, sql)
	}
	return alterTable(tab, n)
}

func newTable(n *grammar.Node) (*Table, error) {
	nameNode, err := child(n, grammar.TableName)
	if err != nil {
		return nil, err
	}
	tab := NewTable(nodeName(nameNode))
	for _, element := range n.Children[1:] {
		switch element.Rule {
		case grammar.ColumnDefinition:
			column, err := newColumn(element)
			if err != nil {
				return nil, err
			}
			tab.Columns = append(tab.Columns, column)
			inlineKeys(tab, element, column.Name)
		case grammar.PrimaryKey:
			tab.PrimaryKey = newPrimaryKey(element)
		case grammar.IndexDefinition:
			tab.Indexes = append(tab.Indexes, newIndex(element))
		case grammar.ForeignKey:
			fk, err := newForeignKey(element)
			if err != nil {
				return nil, err
			}
			tab.ForeignKeys = append(tab.ForeignKeys, fk)
		case grammar.TableOption:
			tab.SetOption(newTableOption(element))
		case grammar.CheckConstraint:
		}
	}
	return tab, nil
}

// inlineKeys handles PRIMARY KEY and UNIQUE written on a column definition.
func inlineKeys(tab *Table, def *grammar.Node, column string) {
	if def.Child(grammar.InlinePrimaryKey) != nil && tab.PrimaryKey == nil {
		tab.PrimaryKey = &PrimaryKey{Columns: []string{column}}
	}
	if def.Child(grammar.InlineUnique) != nil {
		tab.Indexes = append(tab.Indexes, Index{Name: column, Kind: IndexUniqueKey, Columns: []string{column}, Unique: true})
	}
}

func newColumn(n *grammar.Node) (Column, error) {
	nameNode, err := child(n, grammar.ColumnName)
	if err != nil {
		return Column{}, err
	}
	typeNode, err := child(n, grammar.DataType)
	if err != nil {
		return Column{}, err
	}
	dataType, err := newDataType(typeNode)
	if err != nil {
		return Column{}, err
	}
	column := NewColumn(nodeName(nameNode), dataType)
	for _, modifier := range n.Children {
		switch modifier.Rule {
		case grammar.NotNull:
			column.Nullable = false
		case grammar.Nullable:
			column.Nullable = true
		case grammar.DefaultValue:
			v, err := newValue(modifier.Children)
			if err != nil {
				return Column{}, err
			}
			column.Default = &v
		case grammar.AutoIncrement:
			column.AutoIncrement = true
		case grammar.OnUpdateValue:
			v, err := newValue(modifier.Children)
			if err != nil {
				return Column{}, err
			}
			column.OnUpdate = &v
		case grammar.ColumnComment:
			column.Comment = unquoteString(modifier.Children[0].Text)
		case grammar.ColumnCharset:
			column.Charset = modifier.Children[0].Text
		case grammar.ColumnCollate:
			column.Collate = modifier.Children[0].Text
		}
	}
	return column, nil
}

func newValue(nodes []*grammar.Node) (Value, error) {
	if len(nodes) == 0 {
		return Value{}, errors.NotValidf("missing literal")
	}
	n := nodes[0]
	switch n.Rule {
	case grammar.StringLiteral:
		return TextValue(unquoteString(n.Text)), nil
	case grammar.NumberLiteral:
		return NumberValue(n.Text), nil
	case grammar.NullLiteral:
		return NullValue, nil
	case grammar.RawLiteral:
		return RawValue(n.Text), nil
	}
	return Value{}, errors.NotValidf("literal %s", n.Rule)
}

func typeParams(n *grammar.Node) ([]uint32, error) {
	var params []uint32
	for _, p := range n.All(grammar.TypeParam) {
		v, err := strconv.ParseUint(p.Text, 10, 32)
		if err != nil {
			return nil, errors.NotValidf("type parameter %q", p.Text)
		}
		params = append(params, uint32(v))
	}
	return params, nil
}

func newDataType(n *grammar.Node) (DataType, error) {
	typeName := strings.ToUpper(n.Child(grammar.TypeName).Text)
	var unsigned, zerofill bool
	for _, attr := range n.All(grammar.TypeAttribute) {
		switch words(attr.Text) {
		case "UNSIGNED":
			unsigned = true
		case "ZEROFILL":
			zerofill = true
		}
	}
	first := func(params []uint32) *uint32 {
		if len(params) == 0 {
			return nil
		}
		return &params[0]
	}

	switch typeName {
	case "TINYINT", "SMALLINT", "MEDIUMINT", "INT", "INTEGER", "BIGINT", "BIT", "BOOL", "BOOLEAN":
		params, err := typeParams(n)
		if err != nil {
			return nil, err
		}
		t := IntegerType{Width: first(params), Unsigned: unsigned, Zerofill: zerofill}
		switch typeName {
		case "TINYINT":
			t.Kind = TypeTinyInt
		case "SMALLINT":
			t.Kind = TypeSmallInt
		case "MEDIUMINT":
			t.Kind = TypeMediumInt
		case "INT", "INTEGER":
			t.Kind = TypeInt
		case "BIGINT":
			t.Kind = TypeBigInt
		case "BIT":
			t.Kind = TypeBit
		case "BOOL", "BOOLEAN":
			one := uint32(1)
			t.Kind, t.Width = TypeTinyInt, &one
		}
		return t, nil
	case "DECIMAL", "DEC", "NUMERIC", "FIXED", "FLOAT", "DOUBLE", "REAL":
		params, err := typeParams(n)
		if err != nil {
			return nil, err
		}
		t := FixedPointType{Unsigned: unsigned}
		if len(params) >= 2 {
			t.Precision = &Precision{Precision: params[0], Scale: params[1]}
		}
		switch typeName {
		case "DECIMAL", "DEC", "NUMERIC", "FIXED":
			t.Kind = TypeDecimal
		case "FLOAT":
			t.Kind = TypeFloat
		default:
			t.Kind = TypeDouble
		}
		return t, nil
	case "DATE":
		return TemporalType{Kind: TypeDate}, nil
	case "DATETIME", "TIMESTAMP", "TIME", "YEAR":
		params, err := typeParams(n)
		if err != nil {
			return nil, err
		}
		return TemporalType{Kind: TypeKind(strings.ToLower(typeName)), Fsp: first(params)}, nil
	case "CHAR", "VARCHAR", "BINARY", "VARBINARY":
		params, err := typeParams(n)
		if err != nil {
			return nil, err
		}
		if len(params) == 0 {
			return nil, errors.NotValidf("%s without size", typeName)
		}
		return StringType{Kind: TypeKind(strings.ToLower(typeName)), Size: params[0]}, nil
	case "TINYBLOB", "BLOB", "MEDIUMBLOB", "LONGBLOB", "TINYTEXT", "TEXT", "MEDIUMTEXT", "LONGTEXT":
		return LobType{Kind: TypeKind(strings.ToLower(typeName))}, nil
	case "ENUM", "SET":
		t := EnumType{Kind: TypeKind(strings.ToLower(typeName))}
		for _, p := range n.All(grammar.TypeParam) {
			t.Values = append(t.Values, unquoteString(p.Text))
		}
		return t, nil
	case "GEOMETRY", "POINT", "LINESTRING", "POLYGON", "MULTIPOINT", "MULTILINESTRING", "MULTIPOLYGON", "GEOMETRYCOLLECTION":
		return SpatialType{Kind: TypeKind(strings.ToLower(typeName))}, nil
	case "JSON":
		return JSONType{}, nil
	}
	return nil, errors.NotImplementedf("data type %s", typeName)
}

func keyColumns(n *grammar.Node) []string {
	var columns []string
	for _, part := range n.All(grammar.KeyPart) {
		columns = append(columns, nodeName(part.Child(grammar.ColumnName)))
	}
	return columns
}

func newPrimaryKey(n *grammar.Node) *PrimaryKey {
	pk := &PrimaryKey{Columns: keyColumns(n)}
	if c := n.Child(grammar.ConstraintName); c != nil {
		pk.Name = nodeName(c)
	} else if c := n.Child(grammar.IndexName); c != nil {
		pk.Name = nodeName(c)
	}
	return pk
}

func newIndex(n *grammar.Node) Index {
	index := Index{Columns: keyColumns(n)}
	kind := words(n.Child(grammar.IndexType).Text)
	switch {
	case kind == IndexPrimaryKey:
		index.Kind = IndexPrimaryKey
	case strings.HasPrefix(kind, "UNIQUE"):
		index.Kind = IndexUniqueKey
	case strings.HasPrefix(kind, "FULLTEXT"):
		index.Kind = IndexFulltext
	case strings.HasPrefix(kind, "SPATIAL"):
		index.Kind = IndexSpatial
	default:
		index.Kind = IndexKey
	}
	index.Unique = strings.Contains(kind, "UNIQUE") || kind == IndexPrimaryKey
	if c := n.Child(grammar.IndexName); c != nil {
		index.Name = nodeName(c)
	} else if c := n.Child(grammar.ConstraintName); c != nil {
		index.Name = nodeName(c)
	} else {
		index.Name = "index_" + uuid.NewString()
	}
	return index
}

func NewForeignKey(sql string) (ForeignKey, error) {
	n, err := grammar.Parse(grammar.ForeignKey, sql)
	if err != nil {
		return ForeignKey{}, errors.Trace(err)
	}
	return newForeignKey(n)
}

func newForeignKey(n *grammar.Node) (ForeignKey, error) {
	lists := n.All(grammar.ColumnList)
	if len(lists) != 2 {
		return ForeignKey{}, errors.NotValidf("%s with %d column lists", n.Rule, len(lists))
	}
	refTable, err := child(n, grammar.TableName)
	if err != nil {
		return ForeignKey{}, err
	}
	fk := ForeignKey{RefTable: nodeName(refTable)}
	for _, c := range lists[0].All(grammar.ColumnName) {
		fk.Columns = append(fk.Columns, nodeName(c))
	}
	for _, c := range lists[1].All(grammar.ColumnName) {
		fk.RefColumns = append(fk.RefColumns, nodeName(c))
	}
	if c := n.Child(grammar.ConstraintName); c != nil {
		fk.Name = nodeName(c)
	} else if c := n.Child(grammar.IndexName); c != nil {
		fk.Name = nodeName(c)
	}
	if c := n.Child(grammar.FkOnUpdate); c != nil {
		fk.OnUpdate = words(c.Children[0].Text)
	}
	if c := n.Child(grammar.FkOnDelete); c != nil {
		fk.OnDelete = words(c.Children[0].Text)
	}
	return fk, nil
}

func newDatabaseOption(n *grammar.Node) DatabaseOption {
	name := words(n.Child(grammar.OptionName).Text)
	if name == "CHARSET" {
		name = "CHARACTER SET"
	}
	return DatabaseOption{Name: name, Value: n.Child(grammar.OptionValue).Text}
}

func newTableOption(n *grammar.Node) TableOption {
	name := words(n.Child(grammar.OptionName).Text)
	switch name {
	case "DEFAULT CHARACTER SET", "CHARACTER SET", "CHARSET":
		name = "DEFAULT CHARSET"
	case "COLLATE":
		name = "DEFAULT COLLATE"
	}
	return TableOption{Name: name, Value: n.Child(grammar.OptionValue).Text}
}

// placeColumn inserts column at the position requested by spec, or appends it.
func placeColumn(tab *Table, column Column, spec *grammar.Node) {
	if spec.Child(grammar.PositionFirst) != nil {
		tab.Columns = append([]Column{column}, tab.Columns...)
		return
	}
	if after := spec.Child(grammar.PositionAfter); after != nil {
		if i := tab.Column(nodeName(after.Child(grammar.ColumnName))); i >= 0 {
			tab.Columns = append(tab.Columns[:i+1], append([]Column{column}, tab.Columns[i+1:]...)...)
			return
		}
	}
	tab.Columns = append(tab.Columns, column)
}

func hasPosition(spec *grammar.Node) bool {
	return spec.Child(grammar.PositionFirst) != nil || spec.Child(grammar.PositionAfter) != nil
}

func removeColumn(tab *Table, name string) {
	if i := tab.Column(name); i >= 0 {
		tab.Columns = append(tab.Columns[:i], tab.Columns[i+1:]...)
	}
}

// replaceColumn swaps the column called oldName for column, moving it when
// the alter clause carries FIRST or AFTER. Missing columns are left alone.
func replaceColumn(tab *Table, oldName string, column Column, spec *grammar.Node) {
	i := tab.Column(oldName)
	if i < 0 {
		return
	}
	if !hasPosition(spec) {
		tab.Columns[i] = column
		return
	}
	removeColumn(tab, oldName)
	placeColumn(tab, column, spec)
}

func alterTable(tab *Table, n *grammar.Node) error {
	for _, spec := range n.Children[1:] {
		switch spec.Rule {
		case grammar.AlterAdd:
			if def := spec.Child(grammar.ColumnDefinition); def != nil {
				column, err := newColumn(def)
				if err != nil {
					return err
				}
				removeColumn(tab, column.Name)
				placeColumn(tab, column, spec)
				inlineKeys(tab, def, column.Name)
			} else if def := spec.Child(grammar.ForeignKey); def != nil {
				fk, err := newForeignKey(def)
				if err != nil {
					return err
				}
				tab.ForeignKeys = append(tab.ForeignKeys, fk)
			} else if def := spec.Child(grammar.IndexDefinition); def != nil {
				index := newIndex(def)
				if index.Kind == IndexPrimaryKey && tab.PrimaryKey == nil {
					tab.PrimaryKey = &PrimaryKey{Columns: append([]string(nil), index.Columns...)}
				}
				tab.Indexes = append(tab.Indexes, index)
			} else {
				return errors.NotValidf("%s without definition", spec.Rule)
			}
		case grammar.AlterModify:
			def, err := child(spec, grammar.ColumnDefinition)
			if err != nil {
				return err
			}
			column, err := newColumn(def)
			if err != nil {
				return err
			}
			replaceColumn(tab, column.Name, column, spec)
		case grammar.AlterChange:
			oldName, err := child(spec, grammar.ColumnName)
			if err != nil {
				return err
			}
			def, err := child(spec, grammar.ColumnDefinition)
			if err != nil {
				return err
			}
			column, err := newColumn(def)
			if err != nil {
				return err
			}
			replaceColumn(tab, nodeName(oldName), column, spec)
		case grammar.AlterDrop:
			alterDrop(tab, spec)
		case grammar.AlterRenameColumn:
			names := spec.All(grammar.ColumnName)
			if len(names) != 2 {
				return errors.NotValidf("%s with %d names", spec.Rule, len(names))
			}
			if i := tab.Column(nodeName(names[0])); i >= 0 {
				tab.Columns[i].Name = nodeName(names[1])
			}
		case grammar.AlterRenameIndex:
			names := spec.All(grammar.IndexName)
			if len(names) != 2 {
				return errors.NotValidf("%s with %d names", spec.Rule, len(names))
			}
			for i := range tab.Indexes {
				if tab.Indexes[i].Name == nodeName(names[0]) {
					tab.Indexes[i].Name = nodeName(names[1])
				}
			}
		case grammar.AlterRenameTable:
			tab.Name = nodeName(spec.Child(grammar.TableName))
		case grammar.AlterOptions:
			for _, o := range spec.All(grammar.TableOption) {
				tab.SetOption(newTableOption(o))
			}
		case grammar.AlterKeys:
		}
	}
	return nil
}

func alterDrop(tab *Table, spec *grammar.Node) {
	target := spec.Children[0]
	switch target.Rule {
	case grammar.DropColumn:
		removeColumn(tab, nodeName(target.Child(grammar.ColumnName)))
	case grammar.DropIndex:
		name := nodeName(target.Child(grammar.IndexName))
		indexes := tab.Indexes[:0]
		for _, index := range tab.Indexes {
			if index.Name != name {
				indexes = append(indexes, index)
			}
		}
		tab.Indexes = indexes
	case grammar.DropPrimaryKey:
		tab.PrimaryKey = nil
		indexes := tab.Indexes[:0]
		for _, index := range tab.Indexes {
			if index.Kind != IndexPrimaryKey {
				indexes = append(indexes, index)
			}
		}
		tab.Indexes = indexes
	case grammar.DropForeignKey:
		name := nodeName(target.Child(grammar.ConstraintName))
		fks := tab.ForeignKeys[:0]
		for _, fk := range tab.ForeignKeys {
			if fk.Name != name {
				fks = append(fks, fk)
			}
		}
		tab.ForeignKeys = fks
	}
}
