package jobs

import (
	"context"
	"errors"
	"log/slog"

	"github.com/hibiken/asynq"

	"github.com/agritrack/agritrack/internal/weather"
)

// WeatherPurgeJob enforces snapshot retention.
type WeatherPurgeJob struct {
	Weather *weather.Service
	Logger  *slog.Logger
}

// NewWeatherPurgeJob wires dependencies for the purge handler.
func NewWeatherPurgeJob(weatherSvc *weather.Service, logger *slog.Logger) *WeatherPurgeJob {
	return &WeatherPurgeJob{Weather: weatherSvc, Logger: logger}
}

// Handle processes TaskWeatherPurge tasks.
func (j *WeatherPurgeJob) Handle(ctx context.Context, _ *asynq.Task) error {
	if j == nil || j.Weather == nil {
		return errors.New("weather purge: handler not configured")
	}
	removed, err := j.Weather.Purge(ctx)
	if err != nil {
		j.Logger.Error("weather purge", slog.Any("error", err))
		return err
	}
	j.Logger.Info("weather purge complete", slog.Int64("removed", removed))
	return nil
}
