package memory

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"budgetly/internal/core"
)

func TestStoreAddAndList(t *testing.T) {
	ctx := context.Background()
	s := New()

	id, err := s.AddBudget(ctx, core.Budget{UserID: "u1", Month: 3, Year: 2024, Amount: core.Money{Cents: 5000}})
	if err != nil {
		t.Fatalf("AddBudget: %v", err)
	}
	if id == "" {
		t.Fatal("expected generated id")
	}
	if _, err := s.AddBudget(ctx, core.Budget{UserID: "u2", Month: 3, Year: 2024}); err != nil {
		t.Fatalf("AddBudget: %v", err)
	}

	march := time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC)
	for _, e := range []core.Expense{
		{UserID: "u1", Category: "Food", Amount: core.Money{Cents: 100}, Date: march},
		{UserID: "u1", Category: "Food", Amount: core.Money{Cents: 200}, Date: march.AddDate(0, 1, 0)},
		{UserID: "u2", Category: "Food", Amount: core.Money{Cents: 300}, Date: march},
	} {
		if _, err := s.AddExpense(ctx, e); err != nil {
			t.Fatalf("AddExpense: %v", err)
		}
	}

	budgets, _ := s.ListBudgetsForUser(ctx, "u1")
	if len(budgets) != 1 || budgets[0].ID != id {
		t.Errorf("ListBudgetsForUser = %+v", budgets)
	}

	expenses, _ := s.ListExpensesForUser(ctx, "u1")
	if len(expenses) != 2 {
		t.Errorf("ListExpensesForUser returned %d", len(expenses))
	}

	start := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	inRange, _ := s.ListExpensesInRange(ctx, "u1", start, start.AddDate(0, 1, 0))
	if len(inRange) != 1 || inRange[0].Amount.Cents != 100 {
		t.Errorf("ListExpensesInRange = %+v", inRange)
	}

	users, _ := s.ListUserIDs(ctx)
	if len(users) != 2 || users[0] != "u1" || users[1] != "u2" {
		t.Errorf("ListUserIDs = %v", users)
	}
}

func TestStoreRejectsInvalid(t *testing.T) {
	ctx := context.Background()
	s := New()

	if _, err := s.AddBudget(ctx, core.Budget{UserID: "u1", Month: 13, Year: 2024}); !errors.Is(err, core.ErrInvalidMonth) {
		t.Errorf("expected ErrInvalidMonth, got %v", err)
	}
	if _, err := s.AddExpense(ctx, core.Expense{UserID: "u1", Amount: core.Money{Cents: 1}, Date: time.Now()}); !errors.Is(err, core.ErrEmptyCategory) {
		t.Errorf("expected ErrEmptyCategory, got %v", err)
	}
}

func TestStoreConcurrentWrites(t *testing.T) {
	ctx := context.Background()
	s := New()
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = s.AddExpense(ctx, core.Expense{UserID: "u1", Category: "Misc", Amount: core.Money{Cents: 1}, Date: time.Now()})
		}()
	}
	wg.Wait()

	got, _ := s.ListExpensesForUser(ctx, "u1")
	if len(got) != 50 {
		t.Errorf("expected 50 expenses, got %d", len(got))
	}
}
