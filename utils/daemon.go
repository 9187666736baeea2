package utils

import (
	"github.com/juju/errors"
	"github.com/sevlyar/go-daemon"
)

// Daemon re-executes the process in the background. It reports true in the
// parent, which should exit; the child calls release before it exits.
func Daemon(help *Help) (parent bool, release func(), err error) {
	if !help.Daemon {
		return false, func() {}, nil
	}
	cntxt := &daemon.Context{
		PidFileName: GetExecPath() + "/qin-mask.pid",
		PidFilePerm: 0644,
		LogFileName: help.LogFile,
		LogFilePerm: 0640,
		WorkDir:     "./",
		Umask:       027,
	}
	d, err := cntxt.Reborn()
	if err != nil {
		return false, nil, errors.Annotatef(err, "daemon mode run failed")
	}
	if d != nil {
		return true, func() {}, nil
	}
	return false, func() {
		_ = cntxt.Release()
	}, nil
}
