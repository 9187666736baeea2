package metas

type DatabaseOption struct {
	Name  string // CHARACTER SET, COLLATE
	Value string
}

type Database struct {
	Name    string
	Options []DatabaseOption
	tables  map[string]*Table
	order   []string
}

func NewDatabase(name string) *Database {
	return &Database{Name: name, tables: make(map[string]*Table)}
}

// Table returns the named table or nil.
func (d *Database) Table(name string) *Table {
	return d.tables[name]
}

// Tables returns the tables in the order they were first created.
func (d *Database) Tables() []*Table {
	tables := make([]*Table, 0, len(d.order))
	for _, name := range d.order {
		tables = append(tables, d.tables[name])
	}
	return tables
}

func (d *Database) TableNames() []string {
	return append([]string(nil), d.order...)
}

// PutTable stores t, replacing a table of the same name in place.
func (d *Database) PutTable(t *Table) {
	if d.tables == nil {
		d.tables = make(map[string]*Table)
	}
	if _, ok := d.tables[t.Name]; !ok {
		d.order = append(d.order, t.Name)
	}
	d.tables[t.Name] = t
}

func (d *Database) DropTable(name string) bool {
	if _, ok := d.tables[name]; !ok {
		return false
	}
	delete(d.tables, name)
	for i, n := range d.order {
		if n == name {
			d.order = append(d.order[:i], d.order[i+1:]...)
			break
		}
	}
	return true
}

// RenameTable re-keys a table, keeping its position. An existing table
// under the new name is replaced.
func (d *Database) RenameTable(oldName, newName string) bool {
	t, ok := d.tables[oldName]
	if !ok {
		return false
	}
	if oldName == newName {
		return true
	}
	d.DropTable(newName)
	delete(d.tables, oldName)
	t.Name = newName
	d.tables[newName] = t
	for i, n := range d.order {
		if n == oldName {
			d.order[i] = newName
			break
		}
	}
	return true
}

func (d *Database) Clone() *Database {
	c := NewDatabase(d.Name)
	c.Options = append([]DatabaseOption(nil), d.Options...)
	for _, t := range d.Tables() {
		c.PutTable(t.Clone())
	}
	return c
}

type TableOption struct {
	Name  string // ENGINE, DEFAULT CHARSET, AUTO_INCREMENT ...
	Value string
}

type Table struct {
	Name        string
	Columns     []Column
	PrimaryKey  *PrimaryKey
	Indexes     []Index
	ForeignKeys []ForeignKey
	Options     []TableOption
	Inserts     []*Insert
	Updates     []*Update
	Deletes     []*Delete
}

func NewTable(name string) *Table {
	return &Table{Name: name}
}

// Column returns the index of the named column, or -1.
func (t *Table) Column(name string) int {
	for i, column := range t.Columns {
		if column.Name == name {
			return i
		}
	}
	return -1
}

func (t *Table) ColumnNames() []string {
	names := make([]string, 0, len(t.Columns))
	for _, column := range t.Columns {
		names = append(names, column.Name)
	}
	return names
}

// SetOption replaces an option with the same name or appends it.
func (t *Table) SetOption(o TableOption) {
	for i := range t.Options {
		if t.Options[i].Name == o.Name {
			t.Options[i] = o
			return
		}
	}
	t.Options = append(t.Options, o)
}

func (t *Table) Clone() *Table {
	c := &Table{
		Name:        t.Name,
		Columns:     make([]Column, len(t.Columns)),
		Indexes:     make([]Index, len(t.Indexes)),
		ForeignKeys: make([]ForeignKey, len(t.ForeignKeys)),
		Options:     append([]TableOption(nil), t.Options...),
	}
	for i, column := range t.Columns {
		c.Columns[i] = column.Clone()
	}
	if t.PrimaryKey != nil {
		pk := *t.PrimaryKey
		pk.Columns = append([]string(nil), t.PrimaryKey.Columns...)
		c.PrimaryKey = &pk
	}
	for i, index := range t.Indexes {
		index.Columns = append([]string(nil), index.Columns...)
		c.Indexes[i] = index
	}
	for i, fk := range t.ForeignKeys {
		fk.Columns = append([]string(nil), fk.Columns...)
		fk.RefColumns = append([]string(nil), fk.RefColumns...)
		c.ForeignKeys[i] = fk
	}
	for _, insert := range t.Inserts {
		c.Inserts = append(c.Inserts, insert.Clone())
	}
	for _, update := range t.Updates {
		c.Updates = append(c.Updates, update.Clone())
	}
	for _, del := range t.Deletes {
		d := *del
		c.Deletes = append(c.Deletes, &d)
	}
	return c
}

type Column struct {
	Name          string
	DataType      DataType
	Nullable      bool
	Default       *Value
	AutoIncrement bool
	OnUpdate      *Value
	Charset       string
	Collate       string
	Comment       string
}

func NewColumn(name string, dataType DataType) Column {
	return Column{Name: name, DataType: dataType, Nullable: true}
}

func (c Column) Clone() Column {
	if c.Default != nil {
		v := *c.Default
		c.Default = &v
	}
	if c.OnUpdate != nil {
		v := *c.OnUpdate
		c.OnUpdate = &v
	}
	if e, ok := c.DataType.(EnumType); ok {
		e.Values = append([]string(nil), e.Values...)
		c.DataType = e
	}
	return c
}

type PrimaryKey struct {
	Name    string
	Columns []string
}

const (
	IndexKey        = "KEY"
	IndexUniqueKey  = "UNIQUE KEY"
	IndexFulltext   = "FULLTEXT KEY"
	IndexSpatial    = "SPATIAL KEY"
	IndexPrimaryKey = "PRIMARY KEY"
)

type Index struct {
	Name    string
	Kind    string
	Columns []string
	Unique  bool
}

type ForeignKey struct {
	Name       string
	Columns    []string
	RefTable   string
	RefColumns []string
	OnUpdate   string
	OnDelete   string
}
