package core

import (
	"errors"
	"strings"
	"testing"
	"time"
)

func TestBudgetValidate(t *testing.T) {
	good := Budget{UserID: "u1", Amount: Money{Cents: 500000}, Month: 3, Year: 2024}
	if err := good.Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}
	if err := (Budget{UserID: "u1", Month: 1, Year: 2024}).Validate(); err != nil {
		t.Fatalf("zero budget should be valid, got %v", err)
	}

	cases := []struct {
		name string
		b    Budget
		want error
	}{
		{"missing user", Budget{Amount: Money{Cents: 1}, Month: 1, Year: 2024}, ErrEmptyUserID},
		{"negative amount", Budget{UserID: "u1", Amount: Money{Cents: -1}, Month: 1, Year: 2024}, ErrInvalidAmount},
		{"amount above max", Budget{UserID: "u1", Amount: Money{Cents: MaxAmountCents + 1}, Month: 1, Year: 2024}, ErrInvalidAmount},
		{"month zero", Budget{UserID: "u1", Month: 0, Year: 2024}, ErrInvalidMonth},
		{"month thirteen", Budget{UserID: "u1", Month: 13, Year: 2024}, ErrInvalidMonth},
		{"missing year", Budget{UserID: "u1", Month: 5}, ErrInvalidYear},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if err := tc.b.Validate(); !errors.Is(err, tc.want) {
				t.Fatalf("expected %v, got %v", tc.want, err)
			}
		})
	}
}

func TestExpenseValidate(t *testing.T) {
	date := time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC)
	good := Expense{UserID: "u1", Category: "Food", Amount: Money{Cents: 100}, Date: date}
	if err := good.Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}

	cases := []struct {
		name string
		e    Expense
		want error
	}{
		{"missing user", Expense{Category: "Food", Amount: Money{Cents: 1}, Date: date}, ErrEmptyUserID},
		{"missing category", Expense{UserID: "u1", Category: "  ", Amount: Money{Cents: 1}, Date: date}, ErrEmptyCategory},
		{"negative amount", Expense{UserID: "u1", Category: "Food", Amount: Money{Cents: -5}, Date: date}, ErrInvalidAmount},
		{"amount above max", Expense{UserID: "u1", Category: "Food", Amount: Money{Cents: MaxAmountCents + 1}, Date: date}, ErrInvalidAmount},
		{"zero date", Expense{UserID: "u1", Category: "Food", Amount: Money{Cents: 1}}, ErrInvalidDate},
		{"long note", Expense{UserID: "u1", Category: "Food", Amount: Money{Cents: 1}, Date: date, Note: strings.Repeat("x", MaxNoteLength+1)}, ErrNoteTooLong},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if err := tc.e.Validate(); !errors.Is(err, tc.want) {
				t.Fatalf("expected %v, got %v", tc.want, err)
			}
		})
	}
}

func TestExpenseMonthIsOneIndexed(t *testing.T) {
	e := Expense{Date: time.Date(2024, time.January, 31, 23, 0, 0, 0, time.UTC)}
	if e.Month() != 1 || e.Year() != 2024 {
		t.Fatalf("expected 1/2024, got %d/%d", e.Month(), e.Year())
	}
}

func TestPeriodSummarySpendPercent(t *testing.T) {
	cases := []struct {
		budget, spend int64
		want          float64
	}{
		{500000, 35000, 7},
		{30000, 10000, 33.33},
		{10000, 15000, 150},
		{0, 1000, 0},
	}
	for _, tc := range cases {
		s := PeriodSummary{Budget: Money{Cents: tc.budget}, Spend: Money{Cents: tc.spend}}
		if got := s.SpendPercent(); got != tc.want {
			t.Fatalf("budget=%d spend=%d: expected %v, got %v", tc.budget, tc.spend, tc.want, got)
		}
	}
}
