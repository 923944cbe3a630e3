package main

import (
	"os"
	"time"

	"subtrack/internal/cli"
	applog "subtrack/internal/log"
	"subtrack/internal/services"
	"subtrack/internal/worker"
)

func main() {
	cli.LoadEnvFile()
	logger := cli.SetupLogger(applog.ComponentWorker)
	logger.Info("Starting alerts-worker")

	cfg := cli.LoadAndValidateConfig(logger)
	if cfg.DataBackend == "memory" {
		logger.Warn("The memory backend is private to this process; alerts will only reflect its own data")
	}

	engine := cli.NewEngine(logger, cfg)

	ctx, done := cli.GracefulShutdown(logger, 30*time.Second, nil)
	backend := cli.InitBackend(ctx, logger, cfg, true)
	defer func() {
		if err := backend.Cleanup(); err != nil {
			logger.Error("Backend cleanup error", applog.FieldError, err)
		}
	}()

	// No insights cache: writes happen in another process, so every
	// evaluation reads the store.
	tracker := services.NewTracker(backend.Store, engine,
		services.WithLogger(logger.WithComponent(applog.ComponentTracker)))

	w := worker.NewAlertWorker(tracker, backend.Events, nil, logger)
	if err := w.Run(ctx, cfg.AlertSchedule, backend.Events); err != nil {
		logger.Error("Alert worker failed", applog.FieldError, err)
		os.Exit(1)
	}

	cli.WaitForShutdown(ctx, done)
}
