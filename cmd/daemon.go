package cmd

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/afero"
	"github.com/urfave/cli"

	"github.com/grabtube/grabtube/cmd/common"
	gdaemon "github.com/grabtube/grabtube/internal/daemon"
	"github.com/grabtube/grabtube/pkg/logger"
)

func daemonCmd(ctx *cli.Context) error {
	dir, err := gdaemon.DefaultConfigDir()
	if err != nil {
		common.PrintRuntimeErr(ctx, "daemon", "config_dir", err)
		return nil
	}
	cfg, err := gdaemon.LoadConfig(afero.NewOsFs(), dir)
	if err != nil {
		common.PrintRuntimeErr(ctx, "daemon", "load_config", err)
		return nil
	}
	cfg.Version = currentBuildArgs.Version

	lg := newDaemonLogger(cfg.LogPath)
	defer lg.Close()

	comps, err := gdaemon.Init(cfg, lg, prometheus.DefaultRegisterer)
	if err != nil {
		common.PrintRuntimeErr(ctx, "daemon", "init", err)
		return nil
	}

	runCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return comps.Run(runCtx)
}

// newDaemonLogger logs to stderr, and additionally to the configured
// file when it can be opened.
func newDaemonLogger(path string) logger.Logger {
	std := logger.NewStandardLogger(log.Default())
	if path == "" {
		return std
	}
	fl, err := logger.NewFileLogger(path)
	if err != nil {
		return std
	}
	return logger.NewMultiLogger(fl, std)
}
