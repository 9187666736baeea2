package metas

import (
	"github.com/juju/errors"
	"github.com/siddontang/go-log/log"
	"github.com/sqlpub/qin-mask/grammar"
)

type dumpState struct {
	databases map[string]*Database
	order     []string
	current   *Database
}

func (s *dumpState) clone() *dumpState {
	c := &dumpState{databases: make(map[string]*Database, len(s.databases)), order: append([]string(nil), s.order...)}
	for name, db := range s.databases {
		if db == s.current {
			continue
		}
		c.databases[name] = db.Clone()
	}
	if s.current != nil {
		c.current = s.current.Clone()
		if s.databases[s.current.Name] == s.current {
			c.databases[s.current.Name] = c.current
		}
	}
	return c
}

func (s *dumpState) commit(db *Database) {
	if _, ok := s.databases[db.Name]; !ok {
		s.order = append(s.order, db.Name)
	}
	s.databases[db.Name] = db
}

// DumpParser builds databases from dump text. State carries over between
// Parse calls, so a dump can be fed in pieces.
type DumpParser struct {
	state *dumpState
}

func NewDumpParser() *DumpParser {
	return &DumpParser{state: &dumpState{databases: make(map[string]*Database)}}
}

// Parse applies every statement in input. On error the parser is left as it
// was before the call.
func (d *DumpParser) Parse(input string) error {
	root, err := grammar.Parse(grammar.Dump, input)
	if err != nil {
		return errors.Trace(err)
	}
	return d.ParseNode(root)
}

func (d *DumpParser) ParseNode(root *grammar.Node) error {
	st := d.state.clone()
	for _, stmt := range root.Children {
		if err := st.apply(stmt); err != nil {
			return errors.Annotatef(err, "statement at offset %d", stmt.Pos)
		}
	}
	if st.current != nil {
		st.commit(st.current)
	}
	d.state = st
	return nil
}

// SetCurrentDatabase reopens a committed database. Unknown names close the
// current database.
func (d *DumpParser) SetCurrentDatabase(name string) {
	d.state.current = d.state.databases[name]
}

func (d *DumpParser) CurrentDatabase() string {
	if d.state.current == nil {
		return ""
	}
	return d.state.current.Name
}

// Databases returns copies of every committed database in commit order.
func (d *DumpParser) Databases() []*Database {
	dbs := make([]*Database, 0, len(d.state.order))
	for _, name := range d.state.order {
		dbs = append(dbs, d.state.databases[name].Clone())
	}
	return dbs
}

func (d *DumpParser) Database(name string) *Database {
	db, ok := d.state.databases[name]
	if !ok {
		return nil
	}
	return db.Clone()
}

// Get returns a copy of one table.
func (d *DumpParser) Get(schema string, tableName string) (*Table, error) {
	db, ok := d.state.databases[schema]
	if !ok {
		return nil, errors.NotFoundf("database %s", schema)
	}
	t := db.Table(tableName)
	if t == nil {
		return nil, errors.NotFoundf("table %s.%s", schema, tableName)
	}
	return t.Clone(), nil
}

func (s *dumpState) apply(stmt *grammar.Node) error {
	switch stmt.Rule {
	case grammar.CreateDatabase:
		db := NewDatabase(nodeName(stmt.Child(grammar.DatabaseName)))
		for _, o := range stmt.All(grammar.DatabaseOption) {
			db.Options = append(db.Options, newDatabaseOption(o))
		}
		if s.current != nil && s.current.Name != db.Name {
			s.commit(s.current)
		}
		s.current = db
	case grammar.UseDatabase:
		name := nodeName(stmt.Child(grammar.DatabaseName))
		if s.current != nil && s.current.Name != name {
			s.commit(s.current)
		}
		s.current = NewDatabase(name)
	case grammar.DropDatabase:
		name := nodeName(stmt.Child(grammar.DatabaseName))
		if _, ok := s.databases[name]; ok {
			delete(s.databases, name)
			for i, n := range s.order {
				if n == name {
					s.order = append(s.order[:i], s.order[i+1:]...)
					break
				}
			}
		}
		if s.current != nil && s.current.Name == name {
			s.current = nil
		}
	case grammar.CreateTable:
		if s.current == nil {
			log.Debugf("create table without database, skipped: %.64s", stmt.Text)
			return nil
		}
		tab, err := newTable(stmt)
		if err != nil {
			return err
		}
		s.current.PutTable(tab)
	case grammar.AlterTable:
		if s.current == nil {
			return nil
		}
		name := nodeName(stmt.Child(grammar.TableName))
		tab := s.current.Table(name)
		if tab == nil {
			log.Debugf("alter table %s.%s not found, skipped", s.current.Name, name)
			return nil
		}
		if err := alterTable(tab, stmt); err != nil {
			return err
		}
		if tab.Name != name {
			newName := tab.Name
			tab.Name = name
			s.current.RenameTable(name, newName)
		}
	case grammar.DropTable:
		if s.current == nil {
			return nil
		}
		for _, t := range stmt.All(grammar.TableName) {
			s.current.DropTable(nodeName(t))
		}
	case grammar.InsertStatement:
		insert, err := newInsert(stmt)
		if err != nil {
			return err
		}
		if tab := s.table(insert.Table); tab != nil {
			tab.Inserts = append(tab.Inserts, insert)
		}
	case grammar.UpdateStatement:
		update, err := newUpdate(stmt)
		if err != nil {
			return err
		}
		if tab := s.table(update.Table); tab != nil {
			tab.Updates = append(tab.Updates, update)
		}
	case grammar.DeleteStatement:
		del, err := newDelete(stmt)
		if err != nil {
			return err
		}
		if tab := s.table(del.Table); tab != nil {
			tab.Deletes = append(tab.Deletes, del)
		}
	case grammar.SetStatement, grammar.LockStatement, grammar.TransactionStatement:
	default:
		return errors.NotValidf("statement %s", stmt.Rule)
	}
	return nil
}

// table resolves a DML target in the current database. Unknown targets are
// dropped silently.
func (s *dumpState) table(name string) *Table {
	if s.current == nil {
		log.Debugf("dml on %s without database, dropped", name)
		return nil
	}
	tab := s.current.Table(name)
	if tab == nil {
		log.Debugf("dml on unknown table %s.%s, dropped", s.current.Name, name)
	}
	return tab
}
