package metas

import (
	"fmt"
	"time"

	"github.com/goccy/go-json"
	"github.com/juju/errors"
	"github.com/siddontang/go-log/log"
	bolt "go.etcd.io/bbolt"
)

const (
	schemaBucket = "schema"
	stateBucket  = "state"
)

type snapshotInfo struct {
	Databases []string  `json:"databases"`
	SavedAt   time.Time `json:"saved_at"`
}

// BoltMeta keeps a schema snapshot in a bbolt file. Each database is stored
// as its rendered DDL and rebuilt through a DumpParser on load.
type BoltMeta struct {
	path     string
	metaDb   *bolt.DB
	renderer *Renderer
}

func OpenBoltMeta(path string, renderer *Renderer) (*BoltMeta, error) {
	metaDb, err := bolt.Open(path, 0600, &bolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, errors.Annotatef(err, "open meta db %s", path)
	}
	err = metaDb.Update(func(tx *bolt.Tx) error {
		for _, name := range []string{schemaBucket, stateBucket} {
			if _, err := tx.CreateBucketIfNotExists([]byte(name)); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		_ = metaDb.Close()
		return nil, errors.Trace(err)
	}
	return &BoltMeta{path: path, metaDb: metaDb, renderer: renderer}, nil
}

// Save replaces the stored snapshot with dbs.
func (m *BoltMeta) Save(dbs []*Database) error {
	err := m.metaDb.Update(func(tx *bolt.Tx) error {
		if err := tx.DeleteBucket([]byte(schemaBucket)); err != nil && err != bolt.ErrBucketNotFound {
			return err
		}
		b, err := tx.CreateBucket([]byte(schemaBucket))
		if err != nil {
			return err
		}
		info := snapshotInfo{SavedAt: time.Now()}
		for _, db := range dbs {
			ddl, err := m.renderer.Schema(db)
			if err != nil {
				return err
			}
			if err = b.Put([]byte(db.Name), []byte(ddl)); err != nil {
				return err
			}
			info.Databases = append(info.Databases, db.Name)
		}
		v, err := json.Marshal(info)
		if err != nil {
			return err
		}
		state := tx.Bucket([]byte(stateBucket))
		if state == nil {
			return fmt.Errorf("bucket:%s does not exist", stateBucket)
		}
		return state.Put([]byte("snapshot"), v)
	})
	if err != nil {
		return errors.Trace(err)
	}
	log.Infof("saved schema snapshot of %d databases to %s", len(dbs), m.path)
	return nil
}

// Load rebuilds the stored databases in the order they were saved.
func (m *BoltMeta) Load() ([]*Database, error) {
	dp := NewDumpParser()
	err := m.metaDb.View(func(tx *bolt.Tx) error {
		info, err := readSnapshotInfo(tx)
		if err != nil {
			return err
		}
		b := tx.Bucket([]byte(schemaBucket))
		for _, name := range info.Databases {
			ddl := b.Get([]byte(name))
			if ddl == nil {
				return errors.NotFoundf("snapshot of database %s", name)
			}
			if err := dp.Parse(string(ddl)); err != nil {
				return errors.Annotatef(err, "snapshot of database %s", name)
			}
		}
		return nil
	})
	if err != nil {
		return nil, errors.Trace(err)
	}
	return dp.Databases(), nil
}

func readSnapshotInfo(tx *bolt.Tx) (snapshotInfo, error) {
	var info snapshotInfo
	state := tx.Bucket([]byte(stateBucket))
	if state == nil {
		return info, nil
	}
	v := state.Get([]byte("snapshot"))
	if v == nil {
		return info, nil
	}
	err := json.Unmarshal(v, &info)
	return info, err
}

func (m *BoltMeta) Get(schema string, tableName string) (*Table, error) {
	dbs, err := m.Load()
	if err != nil {
		return nil, err
	}
	for _, db := range dbs {
		if db.Name != schema {
			continue
		}
		if t := db.Table(tableName); t != nil {
			return t, nil
		}
	}
	return nil, errors.NotFoundf("table %s.%s", schema, tableName)
}

func (m *BoltMeta) Close() {
	if m.metaDb != nil {
		if err := m.metaDb.Close(); err != nil {
			log.Errorf("close metaDb conn failed: %s", err.Error())
		}
	}
}
