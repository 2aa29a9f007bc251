package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"time"

	"budgetly/internal/cache"
	"budgetly/internal/cli"
	apphttp "budgetly/internal/http"
	applog "budgetly/internal/log"
	"budgetly/internal/services"
)

func main() {
	cli.LoadEnvFile()

	cfg, err := cli.LoadConfig()
	if err != nil {
		applog.FromContext(context.Background()).Error("Configuration validation failed", applog.FieldError, err)
		os.Exit(1)
	}

	logger, err := cli.SetupLogger(cfg, applog.ComponentApp)
	if err != nil {
		applog.FromContext(context.Background()).Error("Logger setup failed", applog.FieldError, err)
		os.Exit(1)
	}

	startCtx, cancelStart := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancelStart()

	res, err := cli.OpenBackend(startCtx, cfg, logger)
	if err != nil {
		logger.Error("Failed to initialize data backend", applog.FieldError, err, applog.FieldBackend, cfg.DataBackend)
		os.Exit(1)
	}

	reports := cli.NewReportService(cfg, res.Backend)
	cacheManager := cache.NewManager()
	if c := reports.Cleaner(); c != nil {
		cacheManager.Register(c)
		cacheManager.StartCleanup(cfg.ReportCacheTTL)
	}

	// AMQP is optional for the server: expenses are still stored when the
	// broker is unreachable, they just do not raise alerts.
	var publisher services.Publisher
	amqpClient, err := cli.ConnectAMQP(startCtx, cfg, 3)
	switch {
	case err != nil:
		logger.Warn("AMQP unavailable, expense events disabled", applog.FieldError, err)
	case amqpClient != nil:
		publisher = amqpClient
		logger.Info("AMQP publisher ready", applog.FieldQueue, cfg.AMQPQueue)
	default:
		logger.Info("AMQP disabled - no AMQP_URL provided")
	}

	ledger := services.NewLedgerService(res.Backend, reports, publisher)

	srv, err := apphttp.NewServer(":"+cfg.Port, apphttp.Deps{
		Reports: reports,
		Ledger:  ledger,
		Ready:   res.Backend,
		Logger:  logger,
	})
	if err != nil {
		logger.Error("Failed to build HTTP server", applog.FieldError, err)
		os.Exit(1)
	}

	ctx, done := cli.GracefulShutdown(context.Background(), logger, 30*time.Second, func(ctx context.Context) {
		if err := srv.Shutdown(ctx); err != nil {
			logger.Error("Server shutdown error", applog.FieldError, err)
		}
		cacheManager.Stop()
		if amqpClient != nil {
			if err := amqpClient.Close(); err != nil {
				logger.Warn("AMQP close error", applog.FieldError, err)
			}
		}
		if res.Cleanup != nil {
			if err := res.Cleanup(); err != nil {
				logger.Warn("Backend close error", applog.FieldError, err)
			}
		}
	})

	logger.Info("Starting budgetly server",
		"port", cfg.Port,
		applog.FieldBackend, cfg.DataBackend,
		"timezone", cfg.ReportTimezone)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("Server error", applog.FieldError, err, "port", cfg.Port)
		os.Exit(1)
	}

	cli.WaitForShutdown(ctx, done)
	logger.Info("Server stopped gracefully")
}
