package utils

import (
	"os"
	"path/filepath"

	"github.com/juju/errors"
)

// InputParamHandle checks the paths given on the command line and makes
// them absolute, since daemon mode changes the working directory.
func InputParamHandle(help *Help) error {
	for _, p := range []*string{&help.SqlFile, &help.ConfigFile, &help.MaskingConfig} {
		if *p == "" || *p == "-" {
			continue
		}
		abs, err := filepath.Abs(*p)
		if err != nil {
			return errors.Annotatef(err, "%s abs", *p)
		}
		if _, err = os.Stat(abs); err != nil {
			if os.IsNotExist(err) {
				return errors.NewNotFound(err, "file "+*p)
			}
			return errors.Trace(err)
		}
		*p = abs
	}
	for _, p := range []*string{&help.MetaDb, &help.OutputFile, &help.LogFile} {
		if *p == "" || *p == "-" {
			continue
		}
		abs, err := filepath.Abs(*p)
		if err != nil {
			return errors.Annotatef(err, "%s abs", *p)
		}
		*p = abs
	}
	if help.Daemon && help.LogFile == "" {
		return errors.NotValidf("daemon mode without -log-file")
	}
	return nil
}

func GetExecPath() string {
	exec, err := os.Executable()
	if err != nil {
		return "."
	}
	return filepath.Dir(exec)
}
