package file

import (
	"bufio"
	"context"
	"io"
	"os"

	"github.com/juju/errors"
	"github.com/mitchellh/mapstructure"
	"github.com/siddontang/go-log/log"
	"github.com/sqlpub/qin-mask/config"
	"github.com/sqlpub/qin-mask/core"
	"github.com/sqlpub/qin-mask/metrics"
)

const (
	PluginName       = "file"
	StdoutPluginName = "stdout"
)

// OutputPlugin writes every message's text to a file or to stdout.
type OutputPlugin struct {
	*config.OutputFileConfig
	stdout bool
	w      io.Writer
	buf    *bufio.Writer
	file   *os.File
}

func NewStdoutPlugin() *OutputPlugin {
	return &OutputPlugin{stdout: true}
}

// NewWriterOutput writes to w instead of a named file.
func NewWriterOutput(w io.Writer) *OutputPlugin {
	return &OutputPlugin{OutputFileConfig: &config.OutputFileConfig{}, w: w}
}

func (o *OutputPlugin) Configure(conf map[string]interface{}) error {
	o.OutputFileConfig = &config.OutputFileConfig{}
	if err := mapstructure.Decode(conf, o.OutputFileConfig); err != nil {
		return errors.Trace(err)
	}
	if !o.stdout && o.Path == "" {
		return errors.NotValidf("output file path %q", o.Path)
	}
	return nil
}

func (o *OutputPlugin) NewOutput(_ *core.Metas) error {
	switch {
	case o.w != nil:
	case o.stdout || o.Path == "-":
		o.w = os.Stdout
	default:
		flag := os.O_CREATE | os.O_WRONLY | os.O_TRUNC
		if o.Append {
			flag = os.O_CREATE | os.O_WRONLY | os.O_APPEND
		}
		f, err := os.OpenFile(o.Path, flag, 0644)
		if err != nil {
			return errors.Annotatef(err, "open output file %s", o.Path)
		}
		o.file = f
		o.w = f
	}
	o.buf = bufio.NewWriterSize(o.w, 1<<20)
	return nil
}

func (o *OutputPlugin) Start(ctx context.Context, out <-chan *core.Msg) error {
	for {
		select {
		case msg, ok := <-out:
			if !ok {
				return errors.Trace(o.buf.Flush())
			}
			if _, err := o.buf.WriteString(msg.Text()); err != nil {
				return errors.Trace(err)
			}
			metrics.OpsWriteProcessed.Inc()
		case <-ctx.Done():
			_ = o.buf.Flush()
			return ctx.Err()
		}
	}
}

func (o *OutputPlugin) Close() {
	if o.buf != nil {
		if err := o.buf.Flush(); err != nil {
			log.Warnf("flush output failed: %s", err.Error())
		}
	}
	if o.file != nil {
		if err := o.file.Close(); err != nil {
			log.Warnf("close output file failed: %s", err.Error())
		}
	}
}
