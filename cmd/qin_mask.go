package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/juju/errors"
	"github.com/siddontang/go-log/log"
	"github.com/sqlpub/qin-mask/app"
	"github.com/sqlpub/qin-mask/utils"
)

func main() {
	cliApp := utils.NewApp(schema, mask)
	if err := cliApp.Run(os.Args); err != nil {
		log.Errorf("%v", err)
		log.Debugf("%s", errors.ErrorStack(err))
		os.Exit(1)
	}
}

func setup(help *utils.Help) error {
	if err := utils.InitLog(help.LogLevel, ""); err != nil {
		return err
	}
	// input param handle
	if err := utils.InputParamHandle(help); err != nil {
		return err
	}
	return utils.InitLog(help.LogLevel, help.LogFile)
}

func schema(help *utils.Help) error {
	if err := setup(help); err != nil {
		return err
	}
	return app.Describe(help, os.Stdout)
}

func mask(help *utils.Help) error {
	if err := setup(help); err != nil {
		return err
	}
	conf, err := app.MaskConfig(help)
	if err != nil {
		return err
	}
	// daemon mode handle
	parent, release, err := utils.Daemon(help)
	if err != nil {
		return err
	}
	if parent {
		return nil
	}
	defer release()

	ctx, stop := signal.NotifyContext(context.Background(),
		os.Interrupt,
		syscall.SIGHUP,
		syscall.SIGTERM,
		syscall.SIGQUIT)
	defer stop()

	utils.StartHttp(help)
	if err = app.Mask(ctx, conf); err != nil {
		return err
	}
	log.Infof("qin-mask is stopped.")
	return nil
}
