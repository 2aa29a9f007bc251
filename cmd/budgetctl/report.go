package main

import (
	"errors"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"budgetly/internal/core"
)

func reportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "report",
		Short: "Print reports for a user",
	}
	cmd.AddCommand(reportBudgetsCmd())
	cmd.AddCommand(reportCategoriesCmd())
	cmd.AddCommand(reportMonthsCmd())
	return cmd
}

func requireUser(cmd *cobra.Command) (string, error) {
	user, _ := cmd.Flags().GetString("user")
	if user == "" {
		return "", errors.New("--user is required")
	}
	return user, nil
}

func reportBudgetsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "budgets",
		Short: "Budget vs spend per month, current month first",
		RunE: func(cmd *cobra.Command, _ []string) error {
			user, err := requireUser(cmd)
			if err != nil {
				return err
			}
			return withSession(cmd, func(s *session) error {
				summaries, err := s.reports.MonthlyBudgets(cmd.Context(), user)
				if err != nil {
					return fmt.Errorf("monthly budgets: %w", err)
				}
				writeSummaries(cmd.OutOrStdout(), summaries)
				return nil
			})
		},
	}
	cmd.Flags().String("user", "", "user id")
	return cmd
}

func reportCategoriesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "categories",
		Short: "Spend per category for one month (default: current)",
		RunE: func(cmd *cobra.Command, _ []string) error {
			user, err := requireUser(cmd)
			if err != nil {
				return err
			}
			year, _ := cmd.Flags().GetInt("year")
			month, _ := cmd.Flags().GetInt("month")

			return withSession(cmd, func(s *session) error {
				current := s.reports.CurrentPeriod()
				if year == 0 {
					year = current.Year
				}
				if month == 0 {
					month = current.Month
				}
				shares, err := s.reports.CategoryBreakdown(cmd.Context(), user, year, month)
				if err != nil {
					return fmt.Errorf("category breakdown: %w", err)
				}
				writeCategories(cmd.OutOrStdout(), year, month, shares)
				return nil
			})
		},
	}
	cmd.Flags().String("user", "", "user id")
	cmd.Flags().Int("year", 0, "year (default: current)")
	cmd.Flags().Int("month", 0, "month 1-12 (default: current)")
	return cmd
}

func reportMonthsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "months",
		Short: "Expense totals per month, newest first",
		RunE: func(cmd *cobra.Command, _ []string) error {
			user, err := requireUser(cmd)
			if err != nil {
				return err
			}
			return withSession(cmd, func(s *session) error {
				months, err := s.reports.MonthlyExpenses(cmd.Context(), user)
				if err != nil {
					return fmt.Errorf("monthly expenses: %w", err)
				}
				writeMonths(cmd.OutOrStdout(), months)
				return nil
			})
		},
	}
	cmd.Flags().String("user", "", "user id")
	return cmd
}

func writeSummaries(out io.Writer, summaries []core.PeriodSummary) {
	if len(summaries) == 0 {
		fmt.Fprintln(out, "No budgets found.")
		return
	}
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', tabwriter.AlignRight)
	defer w.Flush()

	fmt.Fprintln(w, "PERIOD\tBUDGET\tSPEND\tREMAINING\tSPEND %\t\t")
	for _, s := range summaries {
		flag := ""
		switch {
		case s.IsCurrentPeriod && s.Overspent():
			flag = "current, over"
		case s.IsCurrentPeriod:
			flag = "current"
		case s.Overspent():
			flag = "over"
		}
		fmt.Fprintf(w, "%04d-%02d\t%s\t%s\t%s\t%.2f\t%s\t\n",
			s.Year, s.Month, s.Budget, s.Spend, s.Remaining, s.SpendPercent(), flag)
	}
}

func writeCategories(out io.Writer, year, month int, shares []core.CategoryShare) {
	if len(shares) == 0 {
		fmt.Fprintf(out, "No expenses in %04d-%02d.\n", year, month)
		return
	}
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', tabwriter.AlignRight)
	defer w.Flush()

	fmt.Fprintln(w, "CATEGORY\tTOTAL\tSHARE %\t")
	for _, c := range shares {
		fmt.Fprintf(w, "%s\t%s\t%.2f\t\n", c.Category, c.Total, c.Percentage)
	}
}

func writeMonths(out io.Writer, months []core.MonthTotal) {
	if len(months) == 0 {
		fmt.Fprintln(out, "No expenses found.")
		return
	}
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', tabwriter.AlignRight)
	defer w.Flush()

	fmt.Fprintln(w, "PERIOD\tTOTAL\tEXPENSES\t")
	for _, m := range months {
		fmt.Fprintf(w, "%04d-%02d\t%s\t%d\t\n", m.Year, m.Month, m.Total, m.Count)
	}
}
