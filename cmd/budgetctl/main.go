package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"budgetly/internal/cli"
	applog "budgetly/internal/log"
	"budgetly/internal/report"
	"budgetly/internal/sheets"
)

// session is what a command needs; tests swap openSession for an in-memory one.
type session struct {
	reports  *report.Service
	exporter func(ctx context.Context) (sheets.ReportExporter, error)
	close    func() error
}

var openSession = func(ctx context.Context) (*session, error) {
	cli.LoadEnvFile()
	cfg, err := cli.LoadConfig()
	if err != nil {
		return nil, err
	}
	logger, err := cli.SetupLogger(cfg, applog.ComponentCLI)
	if err != nil {
		return nil, err
	}

	res, err := cli.OpenBackend(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}

	closeFn := func() error { return nil }
	if res.Cleanup != nil {
		closeFn = res.Cleanup
	}
	return &session{
		reports: cli.NewReportService(cfg, res.Backend),
		exporter: func(ctx context.Context) (sheets.ReportExporter, error) {
			return cli.NewSheetsExporter(ctx, cfg)
		},
		close: closeFn,
	}, nil
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "budgetctl",
		Short:         "Budget reports from the command line",
		Long:          `budgetctl prints budget, category and monthly expense reports for a user and exports them to Google Sheets.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(reportCmd())
	root.AddCommand(exportCmd())
	return root
}

// withSession opens a session for the duration of fn.
func withSession(cmd *cobra.Command, fn func(*session) error) error {
	s, err := openSession(cmd.Context())
	if err != nil {
		return err
	}
	defer func() {
		if cerr := s.close(); cerr != nil {
			slog.Warn("Failed to close backend", applog.FieldError, cerr)
		}
	}()
	return fn(s)
}

func main() {
	ctx, cancel := context.WithCancel(context.Background())

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigChan
		slog.Info("Received interrupt signal, shutting down")
		cancel()
	}()

	err := newRootCmd().ExecuteContext(ctx)
	cancel()

	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
