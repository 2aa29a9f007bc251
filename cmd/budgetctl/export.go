package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"budgetly/internal/sheets"
)

func exportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write a user's reports to Google Sheets",
		Long: `Export replaces the user's tab in the configured spreadsheet with the
monthly budgets, the current month's categories and the monthly expense totals.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			user, err := requireUser(cmd)
			if err != nil {
				return err
			}

			return withSession(cmd, func(s *session) error {
				ctx := cmd.Context()
				exporter, err := s.exporter(ctx)
				if err != nil {
					return err
				}

				period := s.reports.CurrentPeriod()
				r := sheets.Report{
					UserID:        user,
					GeneratedAt:   time.Now(),
					CategoryYear:  period.Year,
					CategoryMonth: period.Month,
				}

				g, gctx := errgroup.WithContext(ctx)
				g.Go(func() error {
					var err error
					r.Summaries, err = s.reports.MonthlyBudgets(gctx, user)
					return err
				})
				g.Go(func() error {
					var err error
					r.Categories, err = s.reports.CurrentCategoryBreakdown(gctx, user)
					return err
				})
				g.Go(func() error {
					var err error
					r.Months, err = s.reports.MonthlyExpenses(gctx, user)
					return err
				})
				if err := g.Wait(); err != nil {
					return fmt.Errorf("build report: %w", err)
				}

				ref, err := exporter.Export(ctx, r)
				if err != nil {
					return fmt.Errorf("export: %w", err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Exported %d periods, %d categories and %d months to %s\n",
					len(r.Summaries), len(r.Categories), len(r.Months), ref)
				return nil
			})
		},
	}
	cmd.Flags().String("user", "", "user id")
	return cmd
}
