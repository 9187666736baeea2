package metas

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRenderer(t *testing.T) *Renderer {
	t.Helper()
	r, err := NewRenderer()
	require.NoError(t, err)
	return r
}

func TestRenderForeignKey(t *testing.T) {
	r := newTestRenderer(t)

	fk := ForeignKey{Name: "fk_user", Columns: []string{"user_id"}, RefTable: "users", RefColumns: []string{"id"}, OnUpdate: "CASCADE"}
	s, err := r.ForeignKey(fk)
	require.NoError(t, err)
	assert.Equal(t, "CONSTRAINT `fk_user` FOREIGN KEY (`user_id`) REFERENCES `users` (`id`) ON UPDATE CASCADE", s)

	parsed, err := NewForeignKey(s)
	require.NoError(t, err)
	assert.Equal(t, fk, parsed)

	s, err = r.ForeignKey(ForeignKey{Columns: []string{"a", "b"}, RefTable: "p", RefColumns: []string{"x", "y"}})
	require.NoError(t, err)
	assert.Equal(t, "FOREIGN KEY (`a`,`b`) REFERENCES `p` (`x`,`y`)", s)
}

func TestRenderDatabase(t *testing.T) {
	r := newTestRenderer(t)

	s, err := r.DatabaseOption(DatabaseOption{Name: "CHARACTER SET", Value: "utf8mb4"})
	require.NoError(t, err)
	assert.Equal(t, "CHARACTER SET utf8mb4", s)

	db := NewDatabase("shop")
	db.Options = []DatabaseOption{{Name: "CHARACTER SET", Value: "utf8mb4"}, {Name: "COLLATE", Value: "utf8mb4_bin"}}
	s, err = r.CreateDatabase(db)
	require.NoError(t, err)
	assert.Equal(t, "CREATE DATABASE `shop` CHARACTER SET utf8mb4 COLLATE utf8mb4_bin;", s)
}

func TestRenderColumn(t *testing.T) {
	r := newTestRenderer(t)
	tab, err := ParseTable("CREATE TABLE t (`note` varchar(32) CHARACTER SET utf8mb4 NOT NULL DEFAULT 'n/a' COMMENT 'it''s')")
	require.NoError(t, err)

	s, err := r.Column(tab.Columns[0])
	require.NoError(t, err)
	assert.Equal(t, "`note` varchar(32) CHARACTER SET utf8mb4 NOT NULL DEFAULT 'n/a' COMMENT 'it\\'s'", s)
}

func TestRenderInsert(t *testing.T) {
	r := newTestRenderer(t)
	insert, err := NewInsert(`INSERT INTO users (id, email) VALUES (1,'O\'Brien'),(2,NULL);`)
	require.NoError(t, err)

	s, err := r.Insert(insert)
	require.NoError(t, err)
	assert.Equal(t, "INSERT INTO `users` (`id`,`email`) VALUES (1,'O\\'Brien'),(2,NULL);", s)

	again, err := NewInsert(s)
	require.NoError(t, err)
	assert.Equal(t, insert, again)
}

func TestRenderUpdateDelete(t *testing.T) {
	r := newTestRenderer(t)

	u := &Update{Table: "users", Columns: []string{"email", "age"}, Values: map[string]Value{
		"email": TextValue("x@y.z"),
		"age":   NumberValue("3"),
	}}
	s, err := r.Update(u)
	require.NoError(t, err)
	assert.Equal(t, "UPDATE `users` SET `email`='x@y.z',`age`=3;", s)

	s, err = r.Delete(&Delete{Table: "users"})
	require.NoError(t, err)
	assert.Equal(t, "DELETE FROM `users`;", s)
}

func TestRenderSchemaRoundTrip(t *testing.T) {
	r := newTestRenderer(t)
	dp := parseDump(t, `
CREATE DATABASE shop DEFAULT CHARACTER SET utf8mb4;
CREATE TABLE users (
  id BIGINT UNSIGNED NOT NULL AUTO_INCREMENT,
  email VARCHAR(255) NOT NULL COMMENT 'login',
  kind ENUM('a','b') DEFAULT 'a',
  updated TIMESTAMP NULL DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP,
  PRIMARY KEY (id),
  KEY idx_email (email)
) ENGINE=InnoDB AUTO_INCREMENT=7 DEFAULT CHARSET=utf8mb4;
CREATE TABLE orders (
  id INT NOT NULL,
  user_id BIGINT UNSIGNED,
  CONSTRAINT fk_user FOREIGN KEY (user_id) REFERENCES users (id) ON DELETE CASCADE
);
`)
	dbs := dp.Databases()
	require.Len(t, dbs, 1)

	ddl, err := r.Schema(dbs[0])
	require.NoError(t, err)

	again := parseDump(t, ddl)
	assert.Equal(t, dbs, again.Databases())
}

func TestRenderPrimaryIndexOnce(t *testing.T) {
	r := newTestRenderer(t)
	tab, err := ParseTable("CREATE TABLE t (a INT)")
	require.NoError(t, err)
	require.NoError(t, TableDdlHandle(tab, "ALTER TABLE t ADD PRIMARY KEY (a)"))

	s, err := r.CreateTable(tab)
	require.NoError(t, err)
	assert.Equal(t, "CREATE TABLE `t` (\n  `a` int,\n  PRIMARY KEY (`a`)\n);", s)
}
