package app

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/sqlpub/qin-mask/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const schemaDump = `CREATE DATABASE shop;
USE shop;
CREATE TABLE users (id INT, email VARCHAR(255), backup_email VARCHAR(255));
CREATE TABLE orders (id INT, total DECIMAL(10,2));
INSERT INTO users VALUES (1, 'a@b.c', NULL);
`

func writeTemp(t *testing.T, name string, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestDescribe(t *testing.T) {
	help := &utils.Help{SqlFile: writeTemp(t, "dump.sql", schemaDump), Set: map[string]bool{}}

	var buf bytes.Buffer
	require.NoError(t, Describe(help, &buf))
	assert.JSONEq(t, `[{"name":"shop","tables":{
  "users":{"name":"users","columns":[{"name":"id","type":"Int"},{"name":"email","type":"String"},{"name":"backup_email","type":"String"}]},
  "orders":{"name":"orders","columns":[{"name":"id","type":"Int"},{"name":"total","type":"Decimal"}]}}}]`, buf.String())

	help.Query = "mail"
	help.Set["query"] = true
	buf.Reset()
	require.NoError(t, Describe(help, &buf))
	assert.JSONEq(t, `[{"db_name":"shop","table_name":"users","column_name":"email"}]`, buf.String())
}

func TestDescribeSnapshot(t *testing.T) {
	metaDb := filepath.Join(t.TempDir(), "meta.db")
	help := &utils.Help{SqlFile: writeTemp(t, "dump.sql", schemaDump), MetaDb: metaDb, Set: map[string]bool{}}
	var first bytes.Buffer
	require.NoError(t, Describe(help, &first))

	// a later run answers from the snapshot alone
	help = &utils.Help{MetaDb: metaDb, Set: map[string]bool{}}
	var second bytes.Buffer
	require.NoError(t, Describe(help, &second))
	assert.JSONEq(t, first.String(), second.String())

	assert.Error(t, Describe(&utils.Help{Set: map[string]bool{}}, &second))
}

func TestDescribeParseError(t *testing.T) {
	help := &utils.Help{SqlFile: writeTemp(t, "dump.sql", "CREATE TABLE (;"), Set: map[string]bool{}}
	var buf bytes.Buffer
	assert.Error(t, Describe(help, &buf))
	assert.Empty(t, buf.String())
}

func TestMaskConfigFromFlags(t *testing.T) {
	help := &utils.Help{
		SqlFile:       "/data/dump.sql",
		MaskingConfig: "/etc/masking.yml",
		Output:        "file",
		OutputFile:    "/data/masked.sql",
		Detector:      "^insert",
		Verify:        true,
		Set:           map[string]bool{"output": true, "verify": true},
	}
	conf, err := MaskConfig(help)
	require.NoError(t, err)

	assert.Equal(t, "file", conf.InputConfig.Type)
	assert.Equal(t, "/data/dump.sql", conf.InputConfig.Config["path"])
	assert.Equal(t, "^insert", conf.InputConfig.Config["detector"])
	assert.Equal(t, "file", conf.OutputConfig.Type)
	assert.Equal(t, "/data/masked.sql", conf.OutputConfig.Config["path"])
	require.Len(t, conf.TransformsConfig, 1)
	assert.Equal(t, "/etc/masking.yml", conf.TransformsConfig[0].Config["masking-config"])
	assert.True(t, conf.Verify)
	assert.False(t, conf.SkipInvalid)
}

func TestMaskConfigFromFile(t *testing.T) {
	path := writeTemp(t, "qin-mask.toml", `
skip-invalid = true

[input.config]
path = "/data/from-config.sql"
detector = "(?i)^insert"

[output]
type = "kafka"

[[transforms]]
type = "mask-pii"
[transforms.config]
columns = ["email"]
`)
	help := &utils.Help{ConfigFile: path, Output: "stdout", Detector: "^insert", Set: map[string]bool{}}
	conf, err := MaskConfig(help)
	require.NoError(t, err)

	assert.Equal(t, "/data/from-config.sql", conf.InputConfig.Config["path"])
	assert.Equal(t, "(?i)^insert", conf.InputConfig.Config["detector"])
	assert.Equal(t, "kafka", conf.OutputConfig.Type)
	assert.True(t, conf.SkipInvalid)

	_, err = MaskConfig(&utils.Help{Output: "stdout", Set: map[string]bool{}})
	assert.Error(t, err)
}
