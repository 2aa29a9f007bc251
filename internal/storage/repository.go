package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"budgetly/internal/core"
	applog "budgetly/internal/log"

	_ "modernc.org/sqlite"
)

type SQLiteRepository struct {
	db *sql.DB
}

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if _, err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteRepository{db: db}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

func (r *SQLiteRepository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

// AddBudget inserts a budget. No uniqueness is enforced per user and month.
func (r *SQLiteRepository) AddBudget(ctx context.Context, b core.Budget) (string, error) {
	if err := b.Validate(); err != nil {
		return "", err
	}
	if b.ID == "" {
		b.ID = uuid.NewString()
	}

	_, err := r.db.ExecContext(ctx,
		`INSERT INTO budgets (id, user_id, amount_cents, month, year) VALUES (?, ?, ?, ?, ?)`,
		b.ID, b.UserID, b.Amount.Cents, b.Month, b.Year)
	if err != nil {
		return "", fmt.Errorf("insert budget: %w", err)
	}

	slog.InfoContext(ctx, "Budget saved to SQLite",
		applog.FieldComponent, applog.ComponentStorage,
		"id", b.ID,
		"user_id", b.UserID,
		"amount_cents", b.Amount.Cents,
		"month", b.Month,
		"year", b.Year)

	return b.ID, nil
}

// AddExpense inserts an expense. The date is stored as unix seconds.
func (r *SQLiteRepository) AddExpense(ctx context.Context, e core.Expense) (string, error) {
	if err := e.Validate(); err != nil {
		return "", err
	}
	if e.ID == "" {
		e.ID = uuid.NewString()
	}

	_, err := r.db.ExecContext(ctx,
		`INSERT INTO expenses (id, user_id, category, amount_cents, spent_at, note) VALUES (?, ?, ?, ?, ?, ?)`,
		e.ID, e.UserID, e.Category, e.Amount.Cents, e.Date.Unix(), e.Note)
	if err != nil {
		return "", fmt.Errorf("insert expense: %w", err)
	}

	slog.InfoContext(ctx, "Expense saved to SQLite",
		applog.FieldComponent, applog.ComponentStorage,
		"id", e.ID,
		"user_id", e.UserID,
		"category", e.Category,
		"amount_cents", e.Amount.Cents)

	return e.ID, nil
}

func (r *SQLiteRepository) ListBudgetsForUser(ctx context.Context, userID string) ([]core.Budget, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, user_id, amount_cents, month, year FROM budgets WHERE user_id = ? ORDER BY year, month, created_at, rowid`,
		userID)
	if err != nil {
		return nil, fmt.Errorf("query budgets: %w", err)
	}
	defer rows.Close()

	var out []core.Budget
	for rows.Next() {
		var b core.Budget
		if err := rows.Scan(&b.ID, &b.UserID, &b.Amount.Cents, &b.Month, &b.Year); err != nil {
			return nil, fmt.Errorf("scan budget: %w", err)
		}
		out = append(out, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate budgets: %w", err)
	}
	return out, nil
}

func (r *SQLiteRepository) ListExpensesForUser(ctx context.Context, userID string) ([]core.Expense, error) {
	return r.queryExpenses(ctx,
		`SELECT id, user_id, category, amount_cents, spent_at, note FROM expenses WHERE user_id = ? ORDER BY spent_at, rowid`,
		userID)
}

// ListExpensesInRange returns the user's expenses with start <= date < end.
func (r *SQLiteRepository) ListExpensesInRange(ctx context.Context, userID string, start, end time.Time) ([]core.Expense, error) {
	return r.queryExpenses(ctx,
		`SELECT id, user_id, category, amount_cents, spent_at, note FROM expenses
		 WHERE user_id = ? AND spent_at >= ? AND spent_at < ? ORDER BY spent_at, rowid`,
		userID, start.Unix(), end.Unix())
}

// ListUserIDs returns every user that owns at least one budget.
func (r *SQLiteRepository) ListUserIDs(ctx context.Context) ([]string, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT DISTINCT user_id FROM budgets ORDER BY user_id`)
	if err != nil {
		return nil, fmt.Errorf("query user ids: %w", err)
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan user id: %w", err)
		}
		out = append(out, id)
	}
	return out, rows.Err()
}

func (r *SQLiteRepository) queryExpenses(ctx context.Context, query string, args ...any) ([]core.Expense, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query expenses: %w", err)
	}
	defer rows.Close()

	var out []core.Expense
	for rows.Next() {
		var (
			e       core.Expense
			spentAt int64
		)
		if err := rows.Scan(&e.ID, &e.UserID, &e.Category, &e.Amount.Cents, &spentAt, &e.Note); err != nil {
			return nil, fmt.Errorf("scan expense: %w", err)
		}
		e.Date = time.Unix(spentAt, 0).UTC()
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate expenses: %w", err)
	}
	return out, nil
}
