package mysql

import (
	"errors"
	"testing"

	"github.com/go-sql-driver/mysql"
	jujuerrors "github.com/juju/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatementBuffer(t *testing.T) {
	var s statementBuffer

	assert.Empty(t, s.add("-- MySQL dump\n"))
	assert.Empty(t, s.add("\n"))
	assert.Empty(t, s.add("# note\n"))
	assert.Equal(t, []string{"/*!40101 SET NAMES utf8mb4 */;"}, s.add("/*!40101 SET NAMES utf8mb4 */;\n"))

	assert.Empty(t, s.add("CREATE TABLE `t` (\n"))
	assert.Empty(t, s.add("  `id` int\n"))
	assert.Equal(t, []string{"CREATE TABLE `t` (\n  `id` int\n);"}, s.add(");\n"))

	got := s.add("INSERT INTO `t` VALUES (1);\nINSERT INTO `t` VALUES (2);\n")
	assert.Equal(t, []string{"INSERT INTO `t` VALUES (1);", "INSERT INTO `t` VALUES (2);"}, got)

	assert.Empty(t, s.add("INSERT INTO `t` VALUES\n"))
	assert.Equal(t, "INSERT INTO `t` VALUES", s.pending())
}

func TestConfigure(t *testing.T) {
	o := &OutputPlugin{}
	require.NoError(t, o.Configure(map[string]interface{}{
		"target": map[string]interface{}{"host": "127.0.0.1", "username": "root", "database": "shop"},
	}))
	assert.Equal(t, 3306, o.Port)
	assert.Equal(t, "root", o.UserName)
	assert.Equal(t, RetryCount, o.Options.RetryCount)

	err := (&OutputPlugin{}).Configure(map[string]interface{}{})
	assert.True(t, jujuerrors.IsNotValid(err))
}

func TestRetryable(t *testing.T) {
	assert.False(t, retryable(&mysql.MySQLError{Number: 1064, Message: "syntax"}))
	assert.True(t, retryable(errors.New("connection refused")))
}
