package main

import (
	"context"
	"errors"
	"os"

	"golang.org/x/sync/errgroup"

	"bikeshare/internal/amqp"
	"bikeshare/internal/cli"
	"bikeshare/internal/dataset"
	"bikeshare/internal/services"
	"bikeshare/internal/worker"
)

func main() {
	cli.LoadEnvFile()
	cfg, logger := cli.LoadAndValidateConfig()

	logger.Info("Starting bikeshare-worker")

	repo := cli.InitSQLite(logger, cfg.SQLiteDBPath)

	amqpClient, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
	if err != nil {
		_ = repo.Close()
		logger.Error("Failed to initialize AMQP client", "error", err)
		os.Exit(1)
	}

	importer := services.NewImportService(repo, amqpClient)

	var refreshSource dataset.Source
	if cfg.DatasetURL != "" {
		refreshSource = dataset.NewHTTPSource(cfg.DatasetURL, cfg.FetchTimeout)
	}
	importWorker := worker.NewImportWorker(importer, refreshSource, cfg.FetchTimeout, cfg.RefreshInterval)

	ctx, done := cli.GracefulShutdown(logger, cli.ShutdownTimeout, func(context.Context) {
		if err := amqpClient.Close(); err != nil {
			logger.Error("AMQP close error", "error", err)
		}
		if err := repo.Close(); err != nil {
			logger.Error("SQLite close error", "error", err)
		}
	})

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return amqpClient.ConsumeImportRequests(gctx, importWorker.HandleImportMessage)
	})
	g.Go(func() error {
		return importWorker.RunRefreshLoop(gctx)
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("Worker stopped", "error", err)
		_ = amqpClient.Close()
		_ = repo.Close()
		os.Exit(1)
	}

	cli.WaitForShutdown(ctx, done)
	logger.Info("Worker stopped gracefully")
}
