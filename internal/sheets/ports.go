package sheets

import (
	"context"
	"time"

	"budgetly/internal/core"
)

// Report is the snapshot of one user's reports written by an exporter.
type Report struct {
	UserID      string
	GeneratedAt time.Time
	Summaries   []core.PeriodSummary
	// Categories cover the month named by CategoryYear/CategoryMonth.
	CategoryYear  int
	CategoryMonth int
	Categories    []core.CategoryShare
	Months        []core.MonthTotal
}

// Ports for outbound adapters.
type (
	ReportExporter interface {
		// Export replaces the user's report tab and returns the written range.
		Export(ctx context.Context, r Report) (rangeRef string, err error)
	}
)
