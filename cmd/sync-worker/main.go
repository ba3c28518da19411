package main

import (
	"context"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/Rakshita-04/smart-expense-tracker/internal/amqp"
	"github.com/Rakshita-04/smart-expense-tracker/internal/cli"
	"github.com/Rakshita-04/smart-expense-tracker/internal/core"
	"github.com/Rakshita-04/smart-expense-tracker/internal/store/jsonfile"
	"github.com/Rakshita-04/smart-expense-tracker/internal/store/sqlite"
	"github.com/Rakshita-04/smart-expense-tracker/internal/worker"
)

const resyncInterval = 5 * time.Minute

func main() {
	cli.LoadEnvFile()
	logger := cli.SetupLogger()
	cfg := cli.LoadAndValidateConfig(logger)

	logger.Info("Starting sync-worker")

	if cfg.AMQPURL == "" {
		logger.Error("AMQP_URL is required for the sync worker")
		os.Exit(1)
	}

	srcUsers := jsonfile.New[core.User](filepath.Join(cfg.DataDir, "users.json"))
	srcExpenses := jsonfile.New[core.Expense](filepath.Join(cfg.DataDir, "expenses.json"))

	replica, err := sqlite.Open(cfg.SQLiteDBPath)
	if err != nil {
		logger.Error("Failed to open SQLite replica", "error", err, "path", cfg.SQLiteDBPath)
		os.Exit(1)
	}
	defer replica.Close()

	amqpClient, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
	if err != nil {
		logger.Error("Failed to initialize AMQP client", "error", err)
		os.Exit(1)
	}
	defer amqpClient.Close()

	mirror := worker.NewMirrorWorker(srcUsers, srcExpenses, replica.Users(), replica.Expenses())

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Recover the replica before consuming events, in case messages
	// were missed while the worker was down.
	if err := mirror.StartupSync(ctx); err != nil {
		logger.Error("Startup sync failed", "error", err)
	}

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return amqpClient.ConsumeExpenseEvents(ctx, func(msg *amqp.ExpenseEventMessage) error {
			return mirror.HandleEvent(ctx, msg)
		})
	})

	// Periodic full re-sync as a backup for lost events.
	g.Go(func() error {
		ticker := time.NewTicker(resyncInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-ticker.C:
				if err := mirror.StartupSync(ctx); err != nil {
					logger.Error("Periodic sync failed", "error", err)
				}
			}
		}
	})

	if err := g.Wait(); err != nil && err != context.Canceled {
		logger.Error("Worker stopped with error", "error", err)
		os.Exit(1)
	}
	logger.Info("Worker shutdown complete")
}
