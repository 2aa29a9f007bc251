// Package worker reacts to recorded expenses and runs the scheduled digest.
package worker

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"golang.org/x/sync/errgroup"

	"budgetly/internal/amqp"
	"budgetly/internal/core"
	applog "budgetly/internal/log"
	"budgetly/internal/report"
)

// Reports is the part of report.Service the worker uses.
type Reports interface {
	SummaryFor(ctx context.Context, userID string, year, month int) (core.PeriodSummary, bool, error)
	CurrentPeriod() report.Period
	Invalidate(userID string)
}

// AlertPublisher sends overspend alerts.
type AlertPublisher interface {
	PublishBudgetExceeded(ctx context.Context, queue string, msg *amqp.BudgetExceededMessage) error
}

// UserLister enumerates users with budgets.
type UserLister interface {
	ListUserIDs(ctx context.Context) ([]string, error)
}

const digestConcurrency = 4

// AlertWorker recomputes summaries for recorded expenses and raises alerts.
type AlertWorker struct {
	reports    Reports
	users      UserLister
	publisher  AlertPublisher
	alertQueue string
}

func NewAlertWorker(reports Reports, users UserLister, publisher AlertPublisher, alertQueue string) *AlertWorker {
	return &AlertWorker{
		reports:    reports,
		users:      users,
		publisher:  publisher,
		alertQueue: alertQueue,
	}
}

// HandleExpenseRecorded checks the expense's month and publishes a
// BudgetExceeded alert when its remaining budget is negative. Messages naming
// no user or an impossible month are logged and acknowledged.
func (w *AlertWorker) HandleExpenseRecorded(ctx context.Context, msg *amqp.ExpenseRecordedMessage) error {
	if msg.UserID == "" || msg.Month < 1 || msg.Month > 12 {
		slog.WarnContext(ctx, "Ignoring malformed expense recorded message",
			applog.FieldRecordID, msg.ExpenseID,
			applog.FieldUserID, msg.UserID,
			applog.FieldMonth, msg.Month)
		return nil
	}

	w.reports.Invalidate(msg.UserID)
	summary, ok, err := w.reports.SummaryFor(ctx, msg.UserID, msg.Year, msg.Month)
	if err != nil {
		return fmt.Errorf("load summary: %w", err)
	}
	if !ok {
		slog.DebugContext(ctx, "No budget for expense period",
			applog.FieldUserID, msg.UserID,
			applog.FieldYear, msg.Year,
			applog.FieldMonth, msg.Month)
		return nil
	}
	if !summary.Overspent() {
		return nil
	}

	fields := applog.NewFields().
		WithOperation(applog.OpPublish).
		WithUser(summary.UserID).
		WithPeriod(summary.Year, summary.Month)
	fields[applog.FieldRemaining] = summary.Remaining.Cents
	slog.WarnContext(ctx, "Budget exceeded", fields.ToSlice()...)

	if w.publisher == nil {
		return nil
	}
	if err := w.publisher.PublishBudgetExceeded(ctx, w.alertQueue, amqp.NewBudgetExceededMessage(summary)); err != nil {
		return fmt.Errorf("publish budget alert: %w", err)
	}
	return nil
}

// RunDigest logs every user's summary for period and returns the summaries
// found. Users without a budget for the period are skipped.
func (w *AlertWorker) RunDigest(ctx context.Context, period report.Period) ([]core.PeriodSummary, error) {
	users, err := w.users.ListUserIDs(ctx)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}

	var (
		mu  sync.Mutex
		out []core.PeriodSummary
	)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(digestConcurrency)
	for _, userID := range users {
		g.Go(func() error {
			s, ok, err := w.reports.SummaryFor(gctx, userID, period.Year, period.Month)
			if err != nil {
				return fmt.Errorf("summary for %s: %w", userID, err)
			}
			if !ok {
				return nil
			}
			slog.InfoContext(gctx, "Monthly digest",
				applog.FieldUserID, userID,
				applog.FieldYear, s.Year,
				applog.FieldMonth, s.Month,
				"budget", s.Budget.String(),
				"spend", s.Spend.String(),
				"remaining", s.Remaining.String(),
				"spend_percent", s.SpendPercent(),
				"overspent", s.Overspent())
			mu.Lock()
			out = append(out, s)
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return out, err
	}

	slog.InfoContext(ctx, "Digest completed",
		applog.FieldOperation, applog.OpDigest,
		"period", period.Key(),
		"users", len(users),
		"summaries", len(out))
	return out, nil
}
