package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/preston-bernstein/hockey-tournament-sim/internal/cli"
	"github.com/preston-bernstein/hockey-tournament-sim/internal/config"
	"github.com/preston-bernstein/hockey-tournament-sim/internal/domain"
	"github.com/preston-bernstein/hockey-tournament-sim/internal/logging"
)

const appVersion = "dev"

func main() {
	if os.Getenv("SKIP_SIMULATOR_RUN") == "1" {
		return
	}
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "config:", err)
		return 2
	}
	logger := logging.NewLogger(logging.Config{
		Level:   cfg.Log.Level,
		Format:  cfg.Log.Format,
		Service: cfg.Metrics.ServiceName,
		Version: appVersion,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app, err := cli.New(ctx, cfg, logger)
	if err != nil {
		logger.Error("startup failed", "err", err)
		return 1
	}
	defer func() {
		if err := app.Close(context.Background()); err != nil {
			logger.Warn("telemetry shutdown failed", "err", err)
		}
	}()

	if err := cli.Run(ctx, app, args, os.Stdout); err != nil {
		if ut, ok := domain.AsUnknownTeamError(err); ok {
			fmt.Fprintf(os.Stderr, "unknown team %q\n", ut.Team)
			return 2
		}
		logger.Error("command failed", "err", err)
		if errors.Is(err, cli.ErrUsage) {
			return 2
		}
		return 1
	}
	return 0
}
