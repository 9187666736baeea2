package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/juju/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, name string, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestNewConfig(t *testing.T) {
	path := writeFile(t, "qin-mask.toml", `
name = "nightly"
verify = true
skip-invalid = true
meta-db = "/tmp/meta.db"

[input]
type = "file"
[input.config]
path = "/data/dump.sql"
detector = "^INSERT"

[output]
type = "mysql"
[output.config.target]
host = "127.0.0.1"
port = 3307

[[transforms]]
type = "mask-pii"
[transforms.config]
masking-config = "/etc/masking.yml"

[[transforms]]
type = "delete-column"
[transforms.config]
match-table = "users"
columns = ["password"]
`)
	c, err := NewConfig(path)
	require.NoError(t, err)
	require.NoError(t, c.Validate())

	assert.Equal(t, "nightly", c.Name)
	assert.True(t, c.Verify)
	assert.True(t, c.SkipInvalid)
	assert.Equal(t, "/tmp/meta.db", c.MetaDb)
	assert.Equal(t, path, *c.FileName)
	assert.Equal(t, "file", c.InputConfig.Type)
	assert.Equal(t, "/data/dump.sql", c.InputConfig.Config["path"])
	assert.Equal(t, "mysql", c.OutputConfig.Type)
	require.Len(t, c.TransformsConfig, 2)
	assert.Equal(t, "mask-pii", c.TransformsConfig[0].Type)
	assert.Equal(t, "/etc/masking.yml", c.TransformsConfig[0].Config["masking-config"])
	assert.Equal(t, []interface{}{"password"}, c.TransformsConfig[1].Config["columns"])
}

func TestConfigValidateDefaults(t *testing.T) {
	c := &Config{}
	require.NoError(t, c.Validate())
	assert.Equal(t, "qin-mask", c.Name)
	assert.Equal(t, "file", c.InputConfig.Type)
	assert.Equal(t, "stdout", c.OutputConfig.Type)
	assert.NotNil(t, c.InputConfig.Config)
	assert.NotNil(t, c.OutputConfig.Config)

	c.TransformsConfig = []TransformConfig{{}}
	assert.True(t, errors.IsNotValid(c.Validate()))
}

func TestNewConfigMissingFile(t *testing.T) {
	_, err := NewConfig(filepath.Join(t.TempDir(), "absent.toml"))
	assert.Error(t, err)
}

func TestLoadMaskingConfigYaml(t *testing.T) {
	path := writeFile(t, "masking.yml", `
columns:
  - account
  - Phone
patterns:
  - name: email
    regex: '^[^@\s]+@[^@\s]+$'
rules:
  account: email
case_insensitive: true
salt: pepper
`)
	c, err := LoadMaskingConfig(path)
	require.NoError(t, err)

	assert.Equal(t, []string{"account", "Phone"}, c.Columns)
	assert.Equal(t, []Pattern{{Name: "email", Regex: `^[^@\s]+@[^@\s]+$`}}, c.Patterns)
	assert.Equal(t, map[string]string{"account": "email"}, c.Rules)
	assert.True(t, c.CaseInsensitive)
	assert.Equal(t, "pepper", c.Salt)
}

func TestLoadMaskingConfigToml(t *testing.T) {
	path := writeFile(t, "masking.toml", `
columns = ["ssn"]
case_insensitive = false

[[patterns]]
name = "card"
regex = '^\d{16}$'

[rules]
ssn = "ssn"
`)
	c, err := LoadMaskingConfig(path)
	require.NoError(t, err)

	assert.Equal(t, []string{"ssn"}, c.Columns)
	assert.Equal(t, []Pattern{{Name: "card", Regex: `^\d{16}$`}}, c.Patterns)
	assert.Equal(t, "ssn", c.Rules["ssn"])
	assert.False(t, c.CaseInsensitive)
}

func TestLoadMaskingConfigInvalid(t *testing.T) {
	cases := map[string]string{
		"bad-regex.yml":  "patterns:\n  - name: broken\n    regex: '(['\n",
		"no-regex.yml":   "patterns:\n  - name: empty\n",
		"empty-rule.yml": "rules:\n  email: ''\n",
		"garbage.yml":    "columns: [unterminated\n",
	}
	for name, content := range cases {
		_, err := LoadMaskingConfig(writeFile(t, name, content))
		assert.Error(t, err, name)
	}

	_, err := LoadMaskingConfig(filepath.Join(t.TempDir(), "absent.yml"))
	assert.Error(t, err)
}
