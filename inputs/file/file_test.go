package file

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/juju/errors"
	"github.com/sqlpub/qin-mask/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func readAll(t *testing.T, conf map[string]interface{}) []*core.Msg {
	t.Helper()
	i := &InputPlugin{}
	require.NoError(t, i.Configure(conf))
	require.NoError(t, i.NewInput(nil))
	defer i.Close()

	in := make(chan *core.Msg, 64)
	require.NoError(t, i.Start(context.Background(), in))
	close(in)

	var msgs []*core.Msg
	for msg := range in {
		msgs = append(msgs, msg)
	}
	return msgs
}

func writeDump(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "dump.sql")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestInputJoinsInsertLines(t *testing.T) {
	path := writeDump(t, "-- header\r\n"+
		"insert into `users` (`id`,`email`) values\n"+
		"(1,'a@b.c');\n"+
		"INSERT INTO `users` VALUES (2,'d@e.f');\n"+
		"\n"+
		"insert into `t` values\n")

	msgs := readAll(t, map[string]interface{}{"path": path})
	require.Len(t, msgs, 5)

	assert.Equal(t, core.MsgRaw, msgs[0].Type)
	assert.Equal(t, "-- header\r\n", msgs[0].Raw)
	assert.Equal(t, 1, msgs[0].InputContext.Line)

	assert.Equal(t, core.MsgDML, msgs[1].Type)
	assert.Equal(t, "insert into `users` (`id`,`email`) values\n(1,'a@b.c');\n", msgs[1].Raw)
	assert.Equal(t, "insert into `users` (`id`,`email`) values(1,'a@b.c');", msgs[1].Statement)
	assert.Equal(t, 2, msgs[1].InputContext.Line)

	// the default detector is case sensitive
	assert.Equal(t, core.MsgRaw, msgs[2].Type)
	assert.Equal(t, "INSERT INTO `users` VALUES (2,'d@e.f');\n", msgs[2].Raw)
	assert.Equal(t, 4, msgs[2].InputContext.Line)

	assert.Equal(t, "\n", msgs[3].Raw)

	// a detected line at the end has nothing to join
	assert.Equal(t, core.MsgDML, msgs[4].Type)
	assert.Equal(t, "insert into `t` values\n", msgs[4].Raw)
}

func TestInputCustomDetector(t *testing.T) {
	path := writeDump(t, "INSERT INTO `t` VALUES\n(1);\nSELECT 1;")

	msgs := readAll(t, map[string]interface{}{"path": path, "detector": "(?i)^insert"})
	require.Len(t, msgs, 2)
	assert.Equal(t, core.MsgDML, msgs[0].Type)
	assert.Equal(t, "INSERT INTO `t` VALUES(1);", msgs[0].Statement)
	assert.Equal(t, "SELECT 1;", msgs[1].Raw)
}

func TestInputErrors(t *testing.T) {
	assert.True(t, errors.IsNotValid((&InputPlugin{}).Configure(map[string]interface{}{})))

	i := &InputPlugin{}
	require.NoError(t, i.Configure(map[string]interface{}{"path": filepath.Join(t.TempDir(), "absent.sql")}))
	assert.True(t, errors.IsNotFound(i.NewInput(nil)))

	i = &InputPlugin{}
	require.NoError(t, i.Configure(map[string]interface{}{"path": writeDump(t, ""), "detector": "(["}))
	assert.Error(t, i.NewInput(nil))
}

func TestInputStopsOnCancel(t *testing.T) {
	i := &InputPlugin{}
	require.NoError(t, i.Configure(map[string]interface{}{"path": writeDump(t, "a\nb\n")}))
	require.NoError(t, i.NewInput(nil))
	defer i.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := i.Start(ctx, make(chan *core.Msg))
	assert.ErrorIs(t, err, context.Canceled)
}
