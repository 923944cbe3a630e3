package main

import (
	"context"
	"os"
	"time"

	"subtrack/internal/cli"
	"subtrack/internal/export/sheets"
	applog "subtrack/internal/log"
	"subtrack/internal/services"
)

func main() {
	cli.LoadEnvFile()
	logger := cli.SetupLogger(applog.ComponentExport)
	cfg := cli.LoadAndValidateConfig(logger)

	if !cfg.SheetsConfigured() {
		logger.Error("GOOGLE_SPREADSHEET_ID and service account credentials are required")
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	backend := cli.InitBackend(ctx, logger, cfg, false)
	defer backend.Cleanup()

	tracker := services.NewTracker(backend.Store, cli.NewEngine(logger, cfg),
		services.WithLogger(logger.WithComponent(applog.ComponentTracker)))

	exporter, err := sheets.NewClient(ctx, sheets.Config{
		SpreadsheetID:   cfg.GoogleSpreadsheetID,
		CredentialsJSON: cfg.GoogleServiceAccountJSON,
		CredentialsFile: cfg.GoogleServiceAccountFile,
	}, logger)
	if err != nil {
		logger.Error("Failed to initialize Google Sheets client", applog.FieldError, err)
		os.Exit(1)
	}

	export, err := tracker.Export(ctx)
	if err != nil {
		logger.Error("Failed to read records", applog.FieldError, err)
		os.Exit(1)
	}
	rows, err := exporter.WriteExport(ctx, export)
	if err != nil {
		logger.Error("Export failed", applog.FieldError, err)
		os.Exit(1)
	}
	logger.Info("Export complete", "rows", rows, "spreadsheet_id", cfg.GoogleSpreadsheetID)
}
