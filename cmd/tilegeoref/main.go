package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/pkg/errors"

	"tilegeoref/internal/config"
	"tilegeoref/internal/gdal"
	"tilegeoref/internal/logger"
)

func main() {
	os.Exit(run())
}

func run() int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if _, err := config.Load(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}

	opts, err := parseFlags(os.Args[1:])
	if errors.Is(err, flag.ErrHelp) {
		return 0
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 2
	}

	log := logger.NewStdErrLogger(opts.logLevel)

	if gdal.CurrentMode() == gdal.ModeDocker {
		if err := gdal.Initialize(ctx); err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 1
		}
		defer gdal.Shutdown()
	}

	failed, err := runGeoref(ctx, os.Stdout, log, opts)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	if failed > 0 {
		log.Errorf("%d image(s) failed", failed)
		return 1
	}
	return 0
}
