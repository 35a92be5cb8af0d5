package main

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/hibiken/asynq"

	"github.com/agritrack/agritrack/internal/app"
	"github.com/agritrack/agritrack/internal/inventory"
	"github.com/agritrack/agritrack/internal/platform/db"
	"github.com/agritrack/agritrack/internal/weather"
	"github.com/agritrack/agritrack/jobs"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := app.LoadConfig()
	if err != nil {
		slog.Default().Error("load config", slog.Any("error", err))
		os.Exit(1)
	}

	logger := app.NewLogger(cfg)

	dbpool, err := db.New(ctx, cfg.PGDSN)
	if err != nil {
		logger.Error("connect postgres", slog.Any("error", err))
		os.Exit(1)
	}
	defer dbpool.Close()

	weatherClient := weather.NewClient(cfg.WeatherAPIURL, cfg.WeatherAPIKey)
	weatherRepo := weather.NewRepository(dbpool)
	weatherService := weather.NewService(weatherClient, weatherRepo, logger, cfg.WeatherMaxAge)
	purgeJob := jobs.NewWeatherPurgeJob(weatherService, logger)

	inventoryRepo := inventory.NewRepository(dbpool)
	inventoryService := inventory.NewService(inventoryRepo)
	scanJob := jobs.NewInventoryAlertScanJob(inventoryService, logger)

	worker, err := jobs.NewWorker(jobs.WorkerConfig{
		RedisOpts: asynq.RedisClientOpt{Addr: cfg.RedisAddr},
		Logger:    logger,
		Handlers: []jobs.TaskHandler{
			{Type: jobs.TaskWeatherPurge, Handler: purgeJob.Handle},
			{Type: jobs.TaskInventoryAlertScan, Handler: scanJob.Handle},
		},
		Cron: []jobs.CronRegistration{
			{Spec: jobs.CronWeatherPurge, Task: jobs.NewWeatherPurgeTask(), Options: []asynq.Option{asynq.Queue(jobs.QueueDefault)}},
			{Spec: jobs.CronInventoryAlertScan, Task: jobs.NewInventoryAlertScanTask(), Options: []asynq.Option{asynq.Queue(jobs.QueueDefault)}},
		},
	})
	if err != nil {
		logger.Error("build worker", slog.Any("error", err))
		os.Exit(1)
	}

	logger.Info("starting worker")
	if err := worker.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("worker", slog.Any("error", err))
		os.Exit(1)
	}
}
