// Package memory is an in-process store for development and tests.
package memory

import (
	"context"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"

	"budgetly/internal/core"
)

type Store struct {
	mu       sync.RWMutex
	budgets  []core.Budget
	expenses []core.Expense
}

func New() *Store {
	return &Store{}
}

// AddBudget stores the budget and returns its id.
func (s *Store) AddBudget(_ context.Context, b core.Budget) (string, error) {
	if err := b.Validate(); err != nil {
		return "", err
	}
	if b.ID == "" {
		b.ID = uuid.NewString()
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.budgets = append(s.budgets, b)
	return b.ID, nil
}

// AddExpense stores the expense and returns its id.
func (s *Store) AddExpense(_ context.Context, e core.Expense) (string, error) {
	if err := e.Validate(); err != nil {
		return "", err
	}
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.expenses = append(s.expenses, e)
	return e.ID, nil
}

// Seed loads records without validation, so tests can exercise malformed data.
func (s *Store) Seed(budgets []core.Budget, expenses []core.Expense) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.budgets = append(s.budgets, budgets...)
	s.expenses = append(s.expenses, expenses...)
}

func (s *Store) ListBudgetsForUser(_ context.Context, userID string) ([]core.Budget, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []core.Budget
	for _, b := range s.budgets {
		if b.UserID == userID {
			out = append(out, b)
		}
	}
	return out, nil
}

func (s *Store) ListExpensesForUser(_ context.Context, userID string) ([]core.Expense, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []core.Expense
	for _, e := range s.expenses {
		if e.UserID == userID {
			out = append(out, e)
		}
	}
	return out, nil
}

// ListExpensesInRange returns the user's expenses dated in [start, end).
func (s *Store) ListExpensesInRange(_ context.Context, userID string, start, end time.Time) ([]core.Expense, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []core.Expense
	for _, e := range s.expenses {
		if e.UserID == userID && !e.Date.Before(start) && e.Date.Before(end) {
			out = append(out, e)
		}
	}
	return out, nil
}

// ListUserIDs returns every user that owns a budget, sorted.
func (s *Store) ListUserIDs(_ context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	seen := make(map[string]struct{})
	var out []string
	for _, b := range s.budgets {
		if _, ok := seen[b.UserID]; !ok && b.UserID != "" {
			seen[b.UserID] = struct{}{}
			out = append(out, b.UserID)
		}
	}
	slices.Sort(out)
	return out, nil
}

func (s *Store) Ping(context.Context) error { return nil }

func (s *Store) Close() error { return nil }
