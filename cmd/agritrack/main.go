package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/agritrack/agritrack/internal/analytics"
	analytichttp "github.com/agritrack/agritrack/internal/analytics/http"
	"github.com/agritrack/agritrack/internal/app"
	"github.com/agritrack/agritrack/internal/auth"
	"github.com/agritrack/agritrack/internal/crops"
	"github.com/agritrack/agritrack/internal/farms"
	"github.com/agritrack/agritrack/internal/inventory"
	"github.com/agritrack/agritrack/internal/observability"
	"github.com/agritrack/agritrack/internal/platform/cache"
	"github.com/agritrack/agritrack/internal/platform/db"
	"github.com/agritrack/agritrack/internal/shared"
	"github.com/agritrack/agritrack/internal/users"
	"github.com/agritrack/agritrack/internal/weather"
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

	redisClient, err := cache.New(ctx, cfg.RedisAddr)
	if err != nil {
		logger.Warn("redis ping", slog.Any("error", err))
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logger.Warn("redis close", slog.Any("error", err))
		}
	}()

	sessionManager := shared.NewSessionManager(redisClient, "agritrack_session", cfg.SessionTTL, cfg.IsProduction())

	authRepo := auth.NewRepository(dbpool)
	authService := auth.NewService(authRepo)
	authHandler := auth.NewHandler(logger, authService, sessionManager)

	farmsRepo := farms.NewRepository(dbpool)
	farmsService := farms.NewService(farmsRepo)
	farmsHandler := farms.NewHandler(logger, farmsService)

	cropsRepo := crops.NewRepository(dbpool)
	cropsService := crops.NewService(cropsRepo)
	cropsHandler := crops.NewHandler(logger, cropsService)

	inventoryRepo := inventory.NewRepository(dbpool)
	inventoryService := inventory.NewService(inventoryRepo)
	inventoryHandler := inventory.NewHandler(logger, inventoryService)

	weatherClient := weather.NewClient(cfg.WeatherAPIURL, cfg.WeatherAPIKey)
	weatherRepo := weather.NewRepository(dbpool)
	weatherService := weather.NewService(weatherClient, weatherRepo, logger, cfg.WeatherMaxAge)
	weatherHandler := weather.NewHandler(logger, weatherService)

	analyticsRepo := analytics.NewRepository(dbpool)
	analyticsCache := analytics.NewCache(redisClient, cfg.AnalyticsCacheTTL)
	analyticsService := analytics.NewService(analyticsRepo, analyticsCache)
	analyticsHandler := analytichttp.NewHandler(logger, analyticsService)

	invalidateReports := func(ctx context.Context) {
		if err := analyticsService.Invalidate(ctx); err != nil {
			logger.Warn("invalidate analytics cache", slog.Any("error", err))
		}
	}
	farmsService.NotifyChange(invalidateReports)
	cropsService.NotifyChange(invalidateReports)

	usersRepo := users.NewRepository(dbpool)
	usersService := users.NewService(usersRepo)
	usersHandler := users.NewHandler(logger, usersService)

	metrics := observability.NewMetrics()

	router := app.NewRouter(app.RouterParams{
		Logger:           logger,
		Config:           cfg,
		SessionManager:   sessionManager,
		AuthHandler:      authHandler,
		FarmsHandler:     farmsHandler,
		CropsHandler:     cropsHandler,
		InventoryHandler: inventoryHandler,
		WeatherHandler:   weatherHandler,
		UsersHandler:     usersHandler,
		AnalyticsHandler: analyticsHandler,
		Metrics:          metrics,
	})

	server := &http.Server{
		Addr:         cfg.AppAddr,
		Handler:      router,
		ReadTimeout:  cfg.AppReadTimeout,
		WriteTimeout: cfg.AppWriteTimeout,
	}

	go func() {
		logger.Info("starting http server", slog.String("addr", cfg.AppAddr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server", slog.Any("error", err))
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown", slog.Any("error", err))
	}
}
