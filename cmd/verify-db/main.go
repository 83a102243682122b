// verify-db applies pending schema migrations and reports what it did.
//
// Usage: go run ./cmd/verify-db
package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"sales-assistant/internal/config"
	"sales-assistant/internal/db"
	"sales-assistant/migrations"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		slog.Default().Error("load config", slog.Any("error", err))
		os.Exit(1)
	}
	logger := config.NewLogger(cfg)

	pool, err := db.NewPool(ctx, cfg.DatabaseURL)
	if err != nil {
		logger.Error("connect postgres", slog.Any("error", err))
		os.Exit(1)
	}
	defer pool.Close()

	applied, err := db.Migrate(ctx, pool, migrations.FS, logger)
	if err != nil {
		logger.Error("migrate", slog.Any("error", err), slog.Int("applied", applied))
		os.Exit(1)
	}
	logger.Info("all migrations processed", slog.Int("applied", applied))
}
