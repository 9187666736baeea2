package core

import (
	"github.com/sqlpub/qin-mask/metas"
)

// Meta is a schema snapshot store.
type Meta interface {
	Load() ([]*metas.Database, error)
	Save(dbs []*metas.Database) error
	Get(schema string, tableName string) (*metas.Table, error)
	Close()
}

type Metas struct {
	// Schema is optional; nil means no snapshot is kept.
	Schema   Meta
	Renderer *metas.Renderer
}

func NewMetas(schema Meta) (*Metas, error) {
	renderer, err := metas.NewRenderer()
	if err != nil {
		return nil, err
	}
	return &Metas{Schema: schema, Renderer: renderer}, nil
}

func (m *Metas) Close() {
	if m.Schema != nil {
		m.Schema.Close()
	}
}
