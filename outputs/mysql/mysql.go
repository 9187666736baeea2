package mysql

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/juju/errors"
	"github.com/mitchellh/mapstructure"
	"github.com/siddontang/go-log/log"
	"github.com/sqlpub/qin-mask/config"
	"github.com/sqlpub/qin-mask/core"
	"github.com/sqlpub/qin-mask/metrics"
)

// OutputPlugin replays the masked dump into a MySQL server over a single
// session, so USE and SET statements carry over.
type OutputPlugin struct {
	*config.MysqlConfig
	client *sql.DB
	conn   *sql.Conn
	stmt   statementBuffer
}

func (o *OutputPlugin) Configure(conf map[string]interface{}) error {
	o.MysqlConfig = &config.MysqlConfig{}
	var targetConf = conf["target"]
	if err := mapstructure.Decode(targetConf, o.MysqlConfig); err != nil {
		return errors.Trace(err)
	}
	if o.Host == "" {
		return errors.NotValidf("output mysql target host %q", o.Host)
	}
	if o.Port == 0 {
		o.Port = 3306
	}
	if o.Options.RetryCount == 0 {
		o.Options.RetryCount = RetryCount
	}
	return nil
}

func (o *OutputPlugin) NewOutput(_ *core.Metas) (err error) {
	o.client, err = getConn(o.MysqlConfig)
	if err != nil {
		return errors.Annotatef(err, "output %s client", PluginName)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	o.conn, err = o.client.Conn(ctx)
	if err != nil {
		closeConn(o.client)
		return errors.Annotatef(err, "output %s session", PluginName)
	}
	return nil
}

func (o *OutputPlugin) Start(ctx context.Context, out <-chan *core.Msg) error {
	for {
		select {
		case msg, ok := <-out:
			if !ok {
				if pending := o.stmt.pending(); pending != "" {
					log.Warnf("output %s: unterminated statement at end of input dropped: %.64q", PluginName, pending)
				}
				return nil
			}
			for _, sqlCmd := range o.stmt.add(msg.Text()) {
				if err := o.executeSQL(ctx, sqlCmd); err != nil {
					return errors.Annotatef(err, "line %d", msg.InputContext.Line)
				}
				log.Debugf("output %s sql: %.128s", PluginName, sqlCmd)
			}
			metrics.OpsWriteProcessed.Inc()
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

func (o *OutputPlugin) executeSQL(ctx context.Context, sqlCmd string) error {
	var err error
	for i := 0; i < o.Options.RetryCount; i++ {
		_, err = o.conn.ExecContext(ctx, sqlCmd)
		if err == nil || !retryable(err) {
			break
		}
		log.Warnf("exec data failed, err: %v, execute retry...", err.Error())
		if i+1 == o.Options.RetryCount {
			break
		}
		select {
		case <-time.After(time.Duration(RetryInterval*(i+1)) * time.Second):
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return errors.Trace(err)
}

func (o *OutputPlugin) Close() {
	log.Infof("output is closing...")
	if o.conn != nil {
		_ = o.conn.Close()
	}
	closeConn(o.client)
	log.Infof("output is closed")
}

// statementBuffer joins lines until one ends a statement.
type statementBuffer struct {
	b strings.Builder
}

func (s *statementBuffer) add(text string) []string {
	var stmts []string
	for _, line := range strings.SplitAfter(text, "\n") {
		trimmed := strings.TrimSpace(line)
		if s.b.Len() == 0 && (trimmed == "" || strings.HasPrefix(trimmed, "--") || strings.HasPrefix(trimmed, "#")) {
			continue
		}
		s.b.WriteString(line)
		if strings.HasSuffix(trimmed, ";") {
			stmts = append(stmts, strings.TrimSpace(s.b.String()))
			s.b.Reset()
		}
	}
	return stmts
}

func (s *statementBuffer) pending() string {
	return strings.TrimSpace(s.b.String())
}
