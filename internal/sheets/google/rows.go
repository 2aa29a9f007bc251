package google

import (
	"fmt"
	"time"

	ports "budgetly/internal/sheets"
)

var (
	budgetHeader   = []any{"Year", "Month", "Budget", "Spend", "Remaining", "Spend %", "Overspent", "Current"}
	categoryHeader = []any{"Category", "Total", "Percentage"}
	monthHeader    = []any{"Year", "Month", "Total", "Expenses"}
)

// buildRows lays out the report as three blocks separated by blank rows.
// Amounts are written in major units so the sheet can format them.
func buildRows(r ports.Report) [][]any {
	rows := [][]any{
		{"Report for", r.UserID},
		{"Generated", r.GeneratedAt.UTC().Format(time.RFC3339)},
		{},
		{"Monthly budgets"},
		budgetHeader,
	}
	for _, s := range r.Summaries {
		rows = append(rows, []any{
			s.Year,
			s.Month,
			s.Budget.Float(),
			s.Spend.Float(),
			s.Remaining.Float(),
			s.SpendPercent(),
			s.Overspent(),
			s.IsCurrentPeriod,
		})
	}

	rows = append(rows, []any{}, []any{categoryTitle(r)}, categoryHeader)
	for _, c := range r.Categories {
		rows = append(rows, []any{c.Category, c.Total.Float(), c.Percentage})
	}

	rows = append(rows, []any{}, []any{"Monthly expenses"}, monthHeader)
	for _, m := range r.Months {
		rows = append(rows, []any{m.Year, m.Month, m.Total.Float(), m.Count})
	}
	return rows
}

func categoryTitle(r ports.Report) string {
	if r.CategoryMonth < 1 || r.CategoryMonth > 12 {
		return "Categories"
	}
	return fmt.Sprintf("Categories %04d-%02d", r.CategoryYear, r.CategoryMonth)
}
