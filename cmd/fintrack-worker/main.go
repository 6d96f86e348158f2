package main

import (
	"context"
	"errors"
	"os"
	"time"

	"fintrack/internal/backend"
	"fintrack/internal/cache"
	"fintrack/internal/cli"
	applog "fintrack/internal/log"
	"fintrack/internal/services"
	"fintrack/internal/worker"
)

func main() {
	cfg, logger := cli.LoadAndValidateConfig(applog.ComponentWorker)
	logger.Info("Starting fintrack-worker")

	if cfg.AMQPURL == "" {
		logger.Error("AMQP_URL is required for the worker")
		os.Exit(1)
	}
	if backend.BackendType(cfg.DataBackend) != backend.SQLiteBackend {
		logger.Error("The worker only updates goals in SQLite", applog.FieldBackend, cfg.DataBackend)
		os.Exit(1)
	}

	res := cli.OpenBackend(context.Background(), logger, cfg)
	defer func() {
		if res.Cleanup != nil {
			_ = res.Cleanup()
		}
	}()

	client := cli.ConnectAMQP(logger, cfg, true)
	defer client.Close()

	seen := cache.NewRecentSet(10000, 24*time.Hour)
	progress := worker.NewProgressWorker(services.NewGoalProgressProcessor(res.Store), seen)

	ctx, done := cli.GracefulShutdown(logger, cfg.ShutdownTimeout, func(context.Context) {
		logger.Info("Shutting down worker...")
	})

	go cache.RunJanitor(ctx, 10*time.Minute, seen)

	logger.Info("Consuming transaction events", "queue", cfg.AMQPQueue)
	if err := client.ConsumeTransactionEvents(ctx, progress.HandleEvent); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("Message consumption failed", applog.FieldError, err)
		os.Exit(1)
	}

	cli.WaitForShutdown(ctx, done)
	logger.Info("Worker shutdown complete")
}
