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

	webAdapter "sales-assistant/internal/adapters/web"
	"sales-assistant/internal/ai"
	"sales-assistant/internal/app"
	"sales-assistant/internal/cache"
	"sales-assistant/internal/config"
	"sales-assistant/internal/core"
	"sales-assistant/internal/db"
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
	slog.SetDefault(logger)

	pool, err := db.NewPool(ctx, cfg.DatabaseURL)
	if err != nil {
		logger.Error("connect postgres", slog.Any("error", err))
		os.Exit(1)
	}
	defer pool.Close()

	var agent *ai.Agent
	if cfg.AIEnabled() {
		agent = ai.NewAgent(cfg.OpenAIAPIKey, cfg.OpenAIModel, logger)
	} else {
		logger.Warn("OPENAI_API_KEY is not set; chat is disabled")
	}

	svc := app.NewAppService(
		core.NewFinancingService(pool),
		core.NewPaymentService(pool),
		core.NewOrderService(pool),
		core.NewCashRegisterService(pool),
		agent,
		logger,
	)

	// Pending confirmations live in Redis; without it the chat routes stay unmounted.
	var pending *webAdapter.PendingStore
	if agent != nil {
		rdb, err := cache.New(ctx, cfg.RedisAddr)
		if err != nil {
			logger.Warn("redis unavailable; chat is disabled", slog.Any("error", err))
		} else {
			defer func() {
				if err := rdb.Close(); err != nil {
					logger.Warn("redis close", slog.Any("error", err))
				}
			}()
			pending = webAdapter.NewPendingStore(rdb, cfg.PendingTTL)
		}
	}

	handler := webAdapter.NewHandler(svc, pending, webAdapter.Options{
		AllowedOrigins:     cfg.AllowedOrigins,
		RateLimitPerMinute: cfg.RateLimitPerMinute,
		RequestTimeout:     cfg.RequestTimeout,
		Development:        !cfg.IsProduction(),
		Logger:             logger,
	})

	server := &http.Server{
		Addr:              cfg.ServerAddr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       cfg.RequestTimeout,
		WriteTimeout:      cfg.RequestTimeout + 5*time.Second,
	}

	go func() {
		logger.Info("starting http server", slog.String("addr", cfg.ServerAddr), slog.Bool("chat", pending != nil))
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
