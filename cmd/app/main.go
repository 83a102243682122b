// app is the operator console: one-shot ledger commands, or an interactive REPL when
// started without arguments.
//
// Usage:
//
//	go run ./cmd/app balance 150
//	go run ./cmd/app pay -installment 41 -order 150 -client 1 -amount 500000 -method Cash
//	go run ./cmd/app            # REPL
package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"sales-assistant/internal/adapters/cli"
	"sales-assistant/internal/adapters/repl"
	"sales-assistant/internal/ai"
	"sales-assistant/internal/app"
	"sales-assistant/internal/config"
	"sales-assistant/internal/core"
	"sales-assistant/internal/db"
)

func main() {
	os.Exit(run())
}

func run() int {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		return 1
	}
	// Console output belongs to the operator; service logs go to stderr.
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))

	pool, err := db.NewPool(ctx, cfg.DatabaseURL)
	if err != nil {
		fmt.Fprintf(os.Stderr, "database: %v\n", err)
		return 1
	}
	defer pool.Close()

	var agent *ai.Agent
	if cfg.AIEnabled() {
		agent = ai.NewAgent(cfg.OpenAIAPIKey, cfg.OpenAIModel, logger)
	}

	svc := app.NewAppService(
		core.NewFinancingService(pool),
		core.NewPaymentService(pool),
		core.NewOrderService(pool),
		core.NewCashRegisterService(pool),
		agent,
		logger,
	)

	if len(os.Args) < 2 {
		if agent == nil {
			fmt.Println("Warning: OPENAI_API_KEY is not set; only /commands are available.")
		}
		repl.Run(ctx, svc, bufio.NewReader(os.Stdin), os.Stdout)
		return 0
	}

	if err := cli.Run(ctx, svc, os.Stdout, os.Args[1:]); err != nil {
		if errors.Is(err, cli.ErrUsage) {
			return 2
		}
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	return 0
}
