package mysql

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/go-sql-driver/mysql"
	"github.com/sqlpub/qin-mask/config"
)

const (
	PluginName        = "mysql"
	RetryCount    int = 3
	RetryInterval int = 5
)

func getConn(conf *config.MysqlConfig) (db *sql.DB, err error) {
	dsn := mysql.NewConfig()
	dsn.User = conf.UserName
	dsn.Passwd = conf.Password
	dsn.Net = "tcp"
	dsn.Addr = fmt.Sprintf("%s:%d", conf.Host, conf.Port)
	dsn.DBName = conf.Database
	dsn.Timeout = 3 * time.Second
	dsn.Params = map[string]string{"charset": "utf8mb4"}
	db, err = sql.Open("mysql", dsn.FormatDSN())
	if err != nil {
		return db, err
	}
	db.SetConnMaxLifetime(time.Hour)
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	return db, err
}

func closeConn(db *sql.DB) {
	if db != nil {
		_ = db.Close()
	}
}

// retryable reports whether err is a connection problem rather than a
// statement the server refused.
func retryable(err error) bool {
	if _, ok := err.(*mysql.MySQLError); ok {
		return false
	}
	return true
}
