package file

import (
	"bufio"
	"context"
	"io"
	"os"
	"regexp"
	"strings"
	"time"

	"github.com/juju/errors"
	"github.com/mitchellh/mapstructure"
	"github.com/siddontang/go-log/log"
	"github.com/sqlpub/qin-mask/config"
	"github.com/sqlpub/qin-mask/core"
	"github.com/sqlpub/qin-mask/metrics"
)

const (
	PluginName      = "file"
	DefaultDetector = "^insert"
	readerBufSize   = 1 << 20
)

// InputPlugin streams a dump file line by line. A line matching the detector
// is joined with exactly the next line into one insert message.
type InputPlugin struct {
	*config.FileConfig
	metas    *core.Metas
	detector *regexp.Regexp
	file     *os.File
	reader   *bufio.Reader
	line     int
}

func (i *InputPlugin) Configure(conf map[string]interface{}) error {
	i.FileConfig = &config.FileConfig{}
	if err := mapstructure.Decode(conf, i.FileConfig); err != nil {
		return errors.Trace(err)
	}
	if i.Path == "" {
		return errors.NotValidf("input file path %q", i.Path)
	}
	if i.Detector == "" {
		i.Detector = DefaultDetector
	}
	return nil
}

func (i *InputPlugin) NewInput(metas *core.Metas) (err error) {
	i.metas = metas
	if i.detector, err = regexp.Compile(i.Detector); err != nil {
		return errors.Annotatef(err, "input detector %s", i.Detector)
	}
	if i.Path == "-" {
		i.reader = bufio.NewReaderSize(os.Stdin, readerBufSize)
		return nil
	}
	i.file, err = os.Open(i.Path)
	if err != nil {
		if os.IsNotExist(err) {
			return errors.NewNotFound(err, "input file "+i.Path)
		}
		return errors.Trace(err)
	}
	i.reader = bufio.NewReaderSize(i.file, readerBufSize)
	return nil
}

func (i *InputPlugin) Start(ctx context.Context, in chan<- *core.Msg) error {
	for {
		line, err := i.readLine()
		if err != nil && err != io.EOF {
			return err
		}
		if line == "" {
			return nil
		}
		msg := &core.Msg{Type: core.MsgRaw, Raw: line, Timestamp: time.Now()}
		msg.InputContext.Line = i.line
		if i.detector.MatchString(line) {
			next, nextErr := i.readLine()
			if nextErr != nil && nextErr != io.EOF {
				return nextErr
			}
			msg.Type = core.MsgDML
			msg.Raw = line + next
			msg.Statement = strings.NewReplacer("\r", "", "\n", "").Replace(msg.Raw)
			err = nextErr
		}
		select {
		case in <- msg:
		case <-ctx.Done():
			return ctx.Err()
		}
		if err == io.EOF {
			return nil
		}
	}
}

// readLine returns one physical line with its terminator.
func (i *InputPlugin) readLine() (string, error) {
	line, err := i.reader.ReadString('\n')
	if err != nil && err != io.EOF {
		return line, errors.Annotatef(err, "read %s line %d", i.Path, i.line+1)
	}
	if line != "" {
		i.line++
		metrics.OpsReadLines.Inc()
	}
	return line, err
}

func (i *InputPlugin) Close() {
	if i.file != nil {
		if err := i.file.Close(); err != nil {
			log.Warnf("close input file failed: %s", err.Error())
		}
	}
}
