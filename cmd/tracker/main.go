package main

import (
	"context"
	"net/http"
	"os"
	"time"

	"github.com/Rakshita-04/smart-expense-tracker/internal/amqp"
	"github.com/Rakshita-04/smart-expense-tracker/internal/backend"
	"github.com/Rakshita-04/smart-expense-tracker/internal/cli"
	apphttp "github.com/Rakshita-04/smart-expense-tracker/internal/http"
	"github.com/Rakshita-04/smart-expense-tracker/internal/services"
)

func main() {
	cli.LoadEnvFile()
	logger := cli.SetupLogger()
	cfg := cli.LoadAndValidateConfig(logger)

	backendCfg, err := backend.FromAppConfig(cfg)
	if err != nil {
		logger.Error("Invalid backend configuration", "error", err)
		os.Exit(1)
	}

	factory := backend.NewFactory(logger)
	stores, err := factory.CreateBackend(context.Background(), backendCfg)
	if err != nil {
		logger.Error("Failed to initialize record stores", "error", err, "backend", cfg.DataBackend)
		os.Exit(1)
	}
	defer func() {
		if stores.Cleanup != nil {
			if err := stores.Cleanup(); err != nil {
				logger.Error("Store cleanup error", "error", err)
			}
		}
	}()

	// Event publishing is optional; the API works without a broker.
	var events services.EventPublisher
	if cfg.AMQPURL != "" {
		amqpClient, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
		if err != nil {
			logger.Warn("AMQP unavailable, continuing without event publishing", "error", err)
		} else {
			defer amqpClient.Close()
			events = amqpClient
			logger.Info("AMQP event publishing enabled", "exchange", cfg.AMQPExchange)
		}
	}

	userService := services.NewUserService(stores.Users)
	expenseService := services.NewExpenseService(stores.Expenses, events)

	srv := apphttp.NewServer(":"+cfg.Port, userService, expenseService)
	srv.ReadTimeout = 10 * time.Second
	srv.WriteTimeout = 10 * time.Second
	srv.IdleTimeout = 60 * time.Second
	srv.MaxHeaderBytes = 1 << 16 // 64KB

	ctx, done := cli.GracefulShutdown(logger, 30*time.Second, func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("Server shutdown error", "error", err)
		}
	})

	logger.Info("Starting tracker server", "port", cfg.Port, "backend", cfg.DataBackend)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error("Server error", "error", err, "port", cfg.Port)
		os.Exit(1)
	}

	cli.WaitForShutdown(ctx, done)
	logger.Info("Server stopped gracefully")
}
