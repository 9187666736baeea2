package app

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"testing"

	"github.com/sqlpub/qin-mask/config"
	"github.com/sqlpub/qin-mask/core"
	infile "github.com/sqlpub/qin-mask/inputs/file"
	outfile "github.com/sqlpub/qin-mask/outputs/file"
	"github.com/sqlpub/qin-mask/transforms"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const usersDump = "-- MySQL dump 10.13\n" +
	"/*!40101 SET NAMES utf8mb4 */;\n" +
	"DROP TABLE IF EXISTS `users`;\n" +
	"CREATE TABLE `users` (\n" +
	"  `id` int NOT NULL,\n" +
	"  `account` varchar(255) DEFAULT NULL,\n" +
	"  `note` text,\n" +
	"  PRIMARY KEY (`id`)\n" +
	") ENGINE=InnoDB DEFAULT CHARSET=utf8mb4;\n" +
	"\n" +
	"LOCK TABLES `users` WRITE;\r\n" +
	"insert into `users` values\n" +
	"(1,'john@corp.com','likes tea');\n" +
	"insert into `users` (`id`,`note`) values\n" +
	"(2,'mail x@y.io');\n" +
	"UNLOCK TABLES;\n"

var maskedLine = regexp.MustCompile("^INSERT INTO `users` VALUES \\(1,'[a-z0-9._+-]+@[a-z0-9.-]+','likes tea'\\);$")

func maskConf() *config.Config {
	return &config.Config{TransformsConfig: []config.TransformConfig{{
		Type: transforms.MaskPIITransName,
		Config: map[string]interface{}{
			"columns":  []interface{}{"account"},
			"patterns": []interface{}{map[string]interface{}{"name": "email", "regex": `[^@\s]+@[^@\s]+\.[a-z]+`}},
			"rules":    map[string]interface{}{"account": "email"},
			"salt":     "test",
		},
	}}}
}

func newTestServer(t *testing.T, dump string, conf *config.Config) (*Server, *bytes.Buffer) {
	t.Helper()
	require.NoError(t, conf.Validate())
	path := filepath.Join(t.TempDir(), "dump.sql")
	require.NoError(t, os.WriteFile(path, []byte(dump), 0o644))

	input := &infile.InputPlugin{}
	require.NoError(t, input.Configure(map[string]interface{}{"path": path}))
	trans, err := transforms.NewMatcherTransforms(conf.TransformsConfig)
	require.NoError(t, err)
	m, err := core.NewMetas(nil)
	require.NoError(t, err)

	var buf bytes.Buffer
	s, err := newServer(input, outfile.NewWriterOutput(&buf), m, trans, conf)
	require.NoError(t, err)
	t.Cleanup(s.Close)
	return s, &buf
}

func TestServerMasksInserts(t *testing.T) {
	conf := maskConf()
	conf.Verify = true
	s, buf := newTestServer(t, usersDump, conf)
	require.NoError(t, s.Run(context.Background()))

	lines := strings.SplitAfter(buf.String(), "\n")
	in := strings.SplitAfter(usersDump, "\n")

	// everything up to the first insert is copied byte for byte
	assert.Equal(t, strings.Join(in[:11], ""), strings.Join(lines[:11], ""))

	assert.Regexp(t, maskedLine, strings.TrimSuffix(lines[11], "\n"))
	assert.NotContains(t, buf.String(), "john@corp.com")

	second := strings.TrimSuffix(lines[12], "\n")
	assert.True(t, strings.HasPrefix(second, "INSERT INTO `users` (`id`,`note`) VALUES (2,'"), second)
	assert.NotContains(t, second, "x@y.io")

	assert.Equal(t, "UNLOCK TABLES;\n", lines[13])
	assert.Len(t, lines, 15)
	assert.Empty(t, lines[14])
}

func TestServerInvalidInsert(t *testing.T) {
	dump := "insert into `t` values\n(1,'unterminated);\nUNLOCK TABLES;\n"

	s, _ := newTestServer(t, dump, maskConf())
	err := s.Run(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "line 1")

	conf := maskConf()
	conf.SkipInvalid = true
	s, buf := newTestServer(t, dump, conf)
	require.NoError(t, s.Run(context.Background()))
	assert.Equal(t, dump, buf.String())
}

func TestSchemaTracker(t *testing.T) {
	tr := newSchemaTracker()
	for _, line := range strings.SplitAfter(usersDump, "\n") {
		tr.feed(line)
	}
	assert.Empty(t, tr.database())
	assert.Equal(t, []string{"id", "account", "note"}, tr.columns("users"))
	assert.Nil(t, tr.columns("orders"))

	tr.feed("CREATE DATABASE `shop`;\n")
	tr.feed("USE `shop`;\n")
	tr.feed("CREATE TABLE `orders` (`id` int, `email` varchar(64));\n")
	assert.Equal(t, "shop", tr.database())
	assert.Equal(t, []string{"id", "email"}, tr.columns("orders"))
	assert.Nil(t, tr.columns("users"))

	// broken statements are logged and skipped
	tr.feed("CREATE TABLE `broken` (\n")
	tr.feed("  `id` sometype\n")
	tr.feed(");\n")
	assert.Nil(t, tr.columns("broken"))
	assert.Equal(t, "shop", tr.database())
}

func TestServerKeepsCRLF(t *testing.T) {
	dump := "insert into `t` values\r\n(1,'likes tea');\r\nUNLOCK TABLES;\r\n"
	s, buf := newTestServer(t, dump, maskConf())
	require.NoError(t, s.Run(context.Background()))
	assert.Equal(t, "INSERT INTO `t` VALUES (1,'likes tea');\r\nUNLOCK TABLES;\r\n", buf.String())
}
