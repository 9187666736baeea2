package utils

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/juju/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInputParamHandle(t *testing.T) {
	dir := t.TempDir()
	dump := filepath.Join(dir, "dump.sql")
	require.NoError(t, os.WriteFile(dump, []byte("USE shop;\n"), 0o644))
	wd, err := os.Getwd()
	require.NoError(t, err)
	t.Cleanup(func() { _ = os.Chdir(wd) })
	require.NoError(t, os.Chdir(dir))

	help := &Help{SqlFile: "dump.sql", MetaDb: "meta.db", OutputFile: "-"}
	require.NoError(t, InputParamHandle(help))
	assert.True(t, filepath.IsAbs(help.SqlFile))
	assert.Equal(t, "dump.sql", filepath.Base(help.SqlFile))
	assert.True(t, filepath.IsAbs(help.MetaDb))
	assert.Equal(t, "-", help.OutputFile)
	assert.Empty(t, help.ConfigFile)
}

func TestInputParamHandleErrors(t *testing.T) {
	err := InputParamHandle(&Help{MaskingConfig: filepath.Join(t.TempDir(), "missing.yml")})
	assert.True(t, errors.IsNotFound(err), err)

	err = InputParamHandle(&Help{Daemon: true})
	assert.True(t, errors.IsNotValid(err), err)

	assert.NoError(t, InputParamHandle(&Help{Daemon: true, LogFile: "qin-mask.log"}))
}
