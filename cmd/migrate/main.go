package main

import (
	"context"
	"database/sql"
	"log/slog"
	"os"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"

	"github.com/agritrack/agritrack/internal/app"
	"github.com/agritrack/agritrack/migrations"
)

// Applies the embedded schema migrations. Usage: migrate [up|down|status]
func main() {
	command := "up"
	if len(os.Args) > 1 {
		command = os.Args[1]
	}

	cfg, err := app.LoadConfig()
	if err != nil {
		slog.Default().Error("load config", slog.Any("error", err))
		os.Exit(1)
	}
	logger := app.NewLogger(cfg)

	db, err := sql.Open("pgx", cfg.PGDSN)
	if err != nil {
		logger.Error("open postgres", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() { _ = db.Close() }()

	provider, err := goose.NewProvider(goose.DialectPostgres, db, migrations.FS)
	if err != nil {
		logger.Error("build migration provider", slog.Any("error", err))
		os.Exit(1)
	}

	ctx := context.Background()
	switch command {
	case "up":
		results, err := provider.Up(ctx)
		if err != nil {
			logger.Error("migrate up", slog.Any("error", err))
			os.Exit(1)
		}
		for _, res := range results {
			logger.Info("applied migration", slog.String("source", res.Source.Path))
		}
	case "down":
		res, err := provider.Down(ctx)
		if err != nil {
			logger.Error("migrate down", slog.Any("error", err))
			os.Exit(1)
		}
		logger.Info("rolled back migration", slog.String("source", res.Source.Path))
	case "status":
		statuses, err := provider.Status(ctx)
		if err != nil {
			logger.Error("migration status", slog.Any("error", err))
			os.Exit(1)
		}
		for _, st := range statuses {
			state := "pending"
			if st.State == goose.StateApplied {
				state = "applied"
			}
			logger.Info("migration", slog.String("source", st.Source.Path), slog.String("state", state))
		}
	default:
		logger.Error("unknown command", slog.String("command", command))
		os.Exit(1)
	}
}
