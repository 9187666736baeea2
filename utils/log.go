package utils

import (
	"os"

	"github.com/juju/errors"
	"github.com/siddontang/go-log/log"
)

// InitLog points the default logger at the log file, or at stderr so that
// stdout stays free for masked output.
func InitLog(level string, logFile string) error {
	var handler log.Handler
	var err error
	if logFile != "" {
		handler, err = log.NewFileHandler(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND)
	} else {
		handler, err = log.NewStreamHandler(os.Stderr)
	}
	if err != nil {
		return errors.Annotatef(err, "init log")
	}
	log.SetDefaultLogger(log.NewDefault(handler))
	log.SetLevelByName(level)
	return nil
}
