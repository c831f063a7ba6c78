package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"time"

	"bikeshare/internal/backend"
	"bikeshare/internal/cli"
	"bikeshare/internal/dataset"
	apphttp "bikeshare/internal/http"
	"bikeshare/internal/services"
)

// loadGrace is added to the fetch timeout for parsing and sorting.
const loadGrace = 30 * time.Second

func main() {
	cli.LoadEnvFile()
	cfg, logger := cli.LoadAndValidateConfig()

	backendCfg, err := backend.FromAppConfig(cfg)
	if err != nil {
		logger.Error("Invalid data source configuration", "error", err)
		os.Exit(1)
	}

	// The dataset is loaded once; the server cannot start without it.
	loadCtx, cancelLoad := context.WithTimeout(context.Background(), cfg.FetchTimeout+loadGrace)
	src, err := backend.NewFactory(logger).CreateSource(loadCtx, backendCfg)
	if err != nil {
		cancelLoad()
		logger.Error("Failed to create data source", "error", err, "source_type", backendCfg.Type)
		os.Exit(1)
	}
	ds, err := dataset.Load(loadCtx, src.Source)
	cancelLoad()
	if err != nil {
		_ = src.Close()
		logger.Error("Failed to load dataset", "error", err, "source", src.Source.Name())
		os.Exit(1)
	}
	logger.Info("Dataset loaded",
		"source", ds.Source(),
		"records", ds.Len(),
		"min_date", ds.MinDate().String(),
		"max_date", ds.MaxDate().String())

	dashboards := services.NewDashboardService(ds, services.DashboardOptions{
		CacheSize: cfg.CacheSize,
		CacheTTL:  cfg.CacheTTL,
	})

	srv := apphttp.NewServer(":"+cfg.Port, dashboards, apphttp.Options{
		RateLimitPerMinute:   cfg.RateLimitPerMinute,
		CacheCleanupInterval: cfg.CacheTTL,
	})
	srv.MaxHeaderBytes = 1 << 16 // 64KB

	ctx, done := cli.GracefulShutdown(logger, cli.ShutdownTimeout, func(ctx context.Context) {
		if err := srv.Shutdown(ctx); err != nil {
			logger.Error("Server shutdown error", "error", err)
		}
		if err := src.Close(); err != nil {
			logger.Error("Data source close error", "error", err)
		}
	})

	go func() {
		logger.Info("Starting bikeshare server", "port", cfg.Port, "source_type", backendCfg.Type)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("Server error", "error", err, "port", cfg.Port)
			os.Exit(1)
		}
	}()

	cli.WaitForShutdown(ctx, done)
	logger.Info("Server stopped gracefully")
}
