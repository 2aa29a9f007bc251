package core

import "github.com/shopspring/decimal"

// PeriodSummary is one budget month reconciled against the user's spend.
type PeriodSummary struct {
	UserID          string
	Month           int // 1-12
	Year            int
	Budget          Money
	Spend           Money
	Remaining       Money // Budget - Spend, negative when overspent
	IsCurrentPeriod bool
}

// Overspent reports whether spend exceeded the budget.
func (s PeriodSummary) Overspent() bool {
	return s.Remaining.Cents < 0
}

// SpendPercent returns spend as a percentage of the budget, rounded to two decimals.
// A zero budget yields zero.
func (s PeriodSummary) SpendPercent() float64 {
	if s.Budget.Cents <= 0 {
		return 0
	}
	return decimal.NewFromInt(s.Spend.Cents).
		Mul(decimal.NewFromInt(100)).
		DivRound(decimal.NewFromInt(s.Budget.Cents), 2).
		InexactFloat64()
}

// CategoryShare is a category's slice of a period's total spend.
type CategoryShare struct {
	Category   string
	Total      Money
	Percentage float64 // 0-100, two decimals
}

// MonthTotal is the expense-only view of a calendar month.
type MonthTotal struct {
	Month int
	Year  int
	Total Money
	Count int
}
