package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"budgetly/internal/amqp"
	"budgetly/internal/core"
	applog "budgetly/internal/log"
)

// LedgerWriter persists budgets and expenses.
type LedgerWriter interface {
	AddBudget(ctx context.Context, b core.Budget) (string, error)
	AddExpense(ctx context.Context, e core.Expense) (string, error)
}

// Publisher announces recorded expenses.
type Publisher interface {
	PublishExpenseRecorded(ctx context.Context, msg *amqp.ExpenseRecordedMessage) error
}

// Invalidator drops cached reports of a user.
type Invalidator interface {
	Invalidate(userID string)
}

// LedgerService orchestrates writes across the store, the report cache and AMQP.
type LedgerService struct {
	store     LedgerWriter
	reports   Invalidator
	publisher Publisher
}

// NewLedgerService builds the service. reports and publisher may be nil.
func NewLedgerService(store LedgerWriter, reports Invalidator, publisher Publisher) *LedgerService {
	return &LedgerService{
		store:     store,
		reports:   reports,
		publisher: publisher,
	}
}

// CreateBudget validates and stores a budget.
func (s *LedgerService) CreateBudget(ctx context.Context, b core.Budget) (core.Budget, error) {
	if err := b.Validate(); err != nil {
		return core.Budget{}, err
	}

	id, err := s.store.AddBudget(ctx, b)
	if err != nil {
		return core.Budget{}, fmt.Errorf("save budget: %w", err)
	}
	b.ID = id

	s.invalidate(b.UserID)
	slog.InfoContext(ctx, "Budget created",
		applog.FieldComponent, applog.ComponentLedger,
		applog.FieldOperation, applog.OpCreate,
		applog.FieldUserID, b.UserID,
		applog.FieldRecordID, id,
		applog.FieldYear, b.Year,
		applog.FieldMonth, b.Month,
		applog.FieldAmountCents, b.Amount.Cents)
	return b, nil
}

// CreateExpense validates and stores an expense, then publishes an
// ExpenseRecorded message. A publish failure does not fail the write.
func (s *LedgerService) CreateExpense(ctx context.Context, e core.Expense) (core.Expense, error) {
	e.Category = strings.TrimSpace(e.Category)
	e.Note = strings.TrimSpace(e.Note)
	if err := e.Validate(); err != nil {
		return core.Expense{}, err
	}

	id, err := s.store.AddExpense(ctx, e)
	if err != nil {
		return core.Expense{}, fmt.Errorf("save expense: %w", err)
	}
	e.ID = id

	s.invalidate(e.UserID)
	slog.InfoContext(ctx, "Expense created",
		applog.NewFields().
			WithComponent(applog.ComponentLedger).
			WithOperation(applog.OpCreate).
			WithUser(e.UserID).
			WithExpense(id, e.Category, e.Amount.Cents).
			ToSlice()...)

	if err := s.publish(ctx, e); err != nil {
		slog.ErrorContext(ctx, "Failed to publish expense recorded message",
			applog.FieldRecordID, id,
			applog.FieldError, err)
	}
	return e, nil
}

func (s *LedgerService) invalidate(userID string) {
	if s.reports != nil {
		s.reports.Invalidate(userID)
	}
}

func (s *LedgerService) publish(ctx context.Context, e core.Expense) error {
	if s.publisher == nil {
		slog.DebugContext(ctx, "AMQP publisher not available, skipping expense recorded message")
		return nil
	}
	return s.publisher.PublishExpenseRecorded(ctx, amqp.NewExpenseRecordedMessage(e))
}
