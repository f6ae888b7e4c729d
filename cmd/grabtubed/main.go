package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/afero"

	"github.com/grabtube/grabtube/internal/daemon"
	"github.com/grabtube/grabtube/pkg/logger"
)

// Populated at build time via -ldflags.
var version = "dev"

func main() {
	dir, err := daemon.DefaultConfigDir()
	if err != nil {
		fatal(err)
	}
	cfg, err := daemon.LoadConfig(afero.NewOsFs(), dir)
	if err != nil {
		fatal(err)
	}
	cfg.Version = version

	var lg logger.Logger = logger.NewStandardLogger(log.Default())
	if cfg.LogPath != "" {
		if fl, err := logger.NewFileLogger(cfg.LogPath); err == nil {
			lg = logger.NewMultiLogger(fl, lg)
		}
	}
	defer lg.Close()

	comps, err := daemon.Init(cfg, lg, prometheus.DefaultRegisterer)
	if err != nil {
		fatal(err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if err := comps.Run(ctx); err != nil {
		fatal(err)
	}
}

func fatal(err error) {
	fmt.Println("grabtubed:", err.Error())
	os.Exit(1)
}
