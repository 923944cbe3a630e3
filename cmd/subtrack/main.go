package main

import (
	"context"
	"net/http"
	"os"
	"time"

	"subtrack/internal/cache"
	"subtrack/internal/cli"
	"subtrack/internal/export/sheets"
	apphttp "subtrack/internal/http"
	applog "subtrack/internal/log"
	"subtrack/internal/services"
)

func main() {
	cli.LoadEnvFile()
	logger := cli.SetupLogger(applog.ComponentApp)
	cfg := cli.LoadAndValidateConfig(logger)

	ctx := context.Background()
	engine := cli.NewEngine(logger, cfg)
	backend := cli.InitBackend(ctx, logger, cfg, false)

	trackerOpts := []services.Option{services.WithLogger(logger.WithComponent(applog.ComponentTracker))}
	if backend.Events != nil {
		trackerOpts = append(trackerOpts, services.WithPublisher(backend.Events))
	}

	cacheManager := cache.NewManager(logger.WithComponent(applog.ComponentCache))
	if cfg.DashboardCacheTTL > 0 {
		insights := cache.NewLRU[services.Insights](8, cfg.DashboardCacheTTL)
		cacheManager.Register(insights)
		cacheManager.StartCleanup(time.Minute)
		trackerOpts = append(trackerOpts, services.WithInsightsCache(insights))
	}
	tracker := services.NewTracker(backend.Store, engine, trackerOpts...)

	var serverOpts []apphttp.Option
	if cfg.SheetsConfigured() {
		exporter, err := sheets.NewClient(ctx, sheets.Config{
			SpreadsheetID:   cfg.GoogleSpreadsheetID,
			CredentialsJSON: cfg.GoogleServiceAccountJSON,
			CredentialsFile: cfg.GoogleServiceAccountFile,
		}, logger.WithComponent(applog.ComponentExport))
		if err != nil {
			logger.Error("Failed to initialize Google Sheets client, export disabled", applog.FieldError, err)
		} else {
			serverOpts = append(serverOpts, apphttp.WithSheetsExporter(exporter))
			logger.Info("Google Sheets export enabled", "spreadsheet_id", cfg.GoogleSpreadsheetID)
		}
	}

	srv := apphttp.NewServer(apphttp.Config{
		Addr:               ":" + cfg.Port,
		AllowedOrigins:     cfg.CORSAllowedOrigins,
		RateLimitPerMinute: cfg.RateLimitPerMinute,
	}, tracker, logger.WithComponent(applog.ComponentHTTP), serverOpts...)

	// Configure server timeouts and limits
	srv.ReadTimeout = 10 * time.Second
	srv.WriteTimeout = 35 * time.Second
	srv.IdleTimeout = 60 * time.Second
	srv.MaxHeaderBytes = 1 << 16 // 64KB

	shutdownCtx, done := cli.GracefulShutdown(logger, 30*time.Second, func(ctx context.Context) {
		if err := srv.Shutdown(ctx); err != nil {
			logger.Error("Server shutdown error", applog.FieldError, err)
		}
		cacheManager.Stop()
		if err := backend.Cleanup(); err != nil {
			logger.Error("Backend cleanup error", applog.FieldError, err)
		}
	})

	logger.Info("Starting subtrack server", "port", cfg.Port, "backend", cfg.DataBackend, "events", backend.Events != nil)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error("Server error", applog.FieldError, err, "port", cfg.Port)
		os.Exit(1)
	}

	cli.WaitForShutdown(shutdownCtx, done)
	logger.Info("Server stopped gracefully")
}
