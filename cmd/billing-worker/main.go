package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"

	"smartexpense/internal/config"
	"smartexpense/internal/log"
	"smartexpense/internal/services"
	"smartexpense/internal/storage"
)

func main() {
	// Load .env file for local development (ignore errors in production/docker)
	_ = godotenv.Load()

	logger := log.New(log.Config{Level: slog.LevelInfo, Component: log.ComponentBilling})
	log.SetDefault(logger)

	logger.Info("Starting billing-worker")

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		logger.Error("Configuration validation failed", "error", err)
		os.Exit(1)
	}

	repo, err := storage.NewSQLiteRepository(cfg.SQLiteDBPath)
	if err != nil {
		logger.Error("Failed to initialize SQLite repository", "error", err, "path", cfg.SQLiteDBPath)
		os.Exit(1)
	}
	defer repo.Close()

	processor := services.NewBillingProcessor(repo)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	run := func() {
		count, err := processor.RollDueSubscriptions(ctx, time.Now().UTC())
		if err != nil {
			logger.Error("Subscription billing run failed", "error", err)
			return
		}
		logger.Info("Subscription billing run complete", "advanced", count)
	}

	// Catch up on anything that came due while the worker was down.
	run()

	c := cron.New()
	if _, err := c.AddFunc(cfg.BillingSchedule, run); err != nil {
		logger.Error("Failed to schedule billing job", "error", err, "schedule", cfg.BillingSchedule)
		os.Exit(1)
	}
	c.Start()
	logger.Info("Billing worker scheduled", "schedule", cfg.BillingSchedule)

	<-ctx.Done()

	cronCtx := c.Stop()
	<-cronCtx.Done()
	logger.Info("Billing worker stopped gracefully")
}
