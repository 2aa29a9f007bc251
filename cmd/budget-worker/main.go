package main

import (
	"context"
	"errors"
	"os"
	"time"

	"budgetly/internal/cli"
	applog "budgetly/internal/log"
	"budgetly/internal/worker"
)

func main() {
	cli.LoadEnvFile()

	cfg, err := cli.LoadConfig()
	if err != nil {
		applog.FromContext(context.Background()).Error("Configuration validation failed", applog.FieldError, err)
		os.Exit(1)
	}

	logger, err := cli.SetupLogger(cfg, applog.ComponentWorker)
	if err != nil {
		applog.FromContext(context.Background()).Error("Logger setup failed", applog.FieldError, err)
		os.Exit(1)
	}
	if cfg.AMQPURL == "" {
		logger.Error("budget-worker needs AMQP_URL")
		os.Exit(1)
	}

	logger.Info("Starting budget-worker")

	startCtx, cancelStart := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancelStart()

	res, err := cli.OpenBackend(startCtx, cfg, logger)
	if err != nil {
		logger.Error("Failed to initialize data backend", applog.FieldError, err, applog.FieldBackend, cfg.DataBackend)
		os.Exit(1)
	}

	amqpClient, err := cli.ConnectAMQP(startCtx, cfg, 10)
	if err != nil {
		logger.Error("Failed to connect to AMQP", applog.FieldError, err)
		os.Exit(1)
	}

	reports := cli.NewReportService(cfg, res.Backend)
	alerts := worker.NewAlertWorker(reports, res.Backend, amqpClient, cfg.AMQPAlertQueue)

	scheduler, err := worker.NewDigestScheduler(alerts, cfg.DigestSchedule, cfg.Location())
	if err != nil {
		logger.Error("Invalid digest schedule", applog.FieldError, err)
		os.Exit(1)
	}

	runCtx, stop := context.WithCancel(context.Background())
	defer stop()

	ctx, done := cli.GracefulShutdown(runCtx, logger, 30*time.Second, func(ctx context.Context) {
		if err := scheduler.Stop(ctx); err != nil {
			logger.Warn("Digest scheduler stop error", applog.FieldError, err)
		}
		if err := amqpClient.Close(); err != nil {
			logger.Warn("AMQP close error", applog.FieldError, err)
		}
		if res.Cleanup != nil {
			if err := res.Cleanup(); err != nil {
				logger.Warn("Backend close error", applog.FieldError, err)
			}
		}
	})

	if err := scheduler.Start(ctx); err != nil {
		logger.Error("Failed to start digest scheduler", applog.FieldError, err)
		os.Exit(1)
	}
	logger.Info("Digest scheduled", "schedule", cfg.DigestSchedule, "timezone", cfg.ReportTimezone)

	go func() {
		err := amqpClient.ConsumeExpenseRecorded(ctx, alerts.HandleExpenseRecorded)
		if err != nil && !errors.Is(err, context.Canceled) {
			logger.Error("Message consumption failed", applog.FieldError, err)
			stop()
		}
	}()

	cli.WaitForShutdown(ctx, done)
	logger.Info("budget-worker stopped")
}
