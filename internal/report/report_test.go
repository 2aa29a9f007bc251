package report

import (
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"budgetly/internal/core"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 12, 0, 0, 0, time.UTC)
}

func cents(c int64) core.Money { return core.Money{Cents: c} }

func exp(user, cat string, amount int64, at time.Time) core.Expense {
	return core.Expense{UserID: user, Category: cat, Amount: cents(amount), Date: at}
}

func TestResolveCurrentPeriod(t *testing.T) {
	rome, err := time.LoadLocation("Europe/Rome")
	require.NoError(t, err)

	tests := []struct {
		name      string
		now       time.Time
		wantMonth int
		wantYear  int
		wantStart time.Time
		wantEnd   time.Time
	}{
		{
			name:      "mid month",
			now:       time.Date(2024, 3, 15, 10, 30, 0, 0, time.UTC),
			wantMonth: 3, wantYear: 2024,
			wantStart: time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC),
			wantEnd:   time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC),
		},
		{
			name:      "december rolls year",
			now:       time.Date(2024, 12, 31, 23, 59, 59, 0, time.UTC),
			wantMonth: 12, wantYear: 2024,
			wantStart: time.Date(2024, 12, 1, 0, 0, 0, 0, time.UTC),
			wantEnd:   time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
		},
		{
			name:      "location of now decides",
			now:       time.Date(2024, 4, 1, 0, 30, 0, 0, rome),
			wantMonth: 4, wantYear: 2024,
			wantStart: time.Date(2024, 4, 1, 0, 0, 0, 0, rome),
			wantEnd:   time.Date(2024, 5, 1, 0, 0, 0, 0, rome),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := ResolveCurrentPeriod(tt.now)
			assert.Equal(t, tt.wantMonth, p.Month)
			assert.Equal(t, tt.wantYear, p.Year)
			assert.True(t, p.Start.Equal(tt.wantStart), "start %v", p.Start)
			assert.True(t, p.End.Equal(tt.wantEnd), "end %v", p.End)
			assert.True(t, p.Contains(tt.now))
		})
	}
}

func TestPeriodNavigation(t *testing.T) {
	p := PeriodFor(2024, 1, nil)
	prev := p.Previous()
	assert.Equal(t, 12, prev.Month)
	assert.Equal(t, 2023, prev.Year)
	assert.Equal(t, "2023-12", prev.Key())

	next := PeriodFor(2024, 12, time.UTC).Next()
	assert.Equal(t, 1, next.Month)
	assert.Equal(t, 2025, next.Year)

	assert.True(t, prev.End.Equal(p.Start), "adjacent periods must touch")
	assert.Equal(t, 1, PeriodFor(2024, 13, time.UTC).Month)
}

func TestPeriodContainsIsHalfOpen(t *testing.T) {
	p := PeriodFor(2024, 3, time.UTC)
	assert.True(t, p.Contains(p.Start))
	assert.False(t, p.Contains(p.End))
	assert.True(t, p.Contains(p.End.Add(-time.Nanosecond)))
	assert.False(t, p.Contains(p.Start.Add(-time.Nanosecond)))
}

func TestReconcileScenario(t *testing.T) {
	budgets := []core.Budget{{UserID: "u1", Month: 3, Year: 2024, Amount: cents(500000)}}
	expenses := []core.Expense{
		exp("u1", "Food", 10000, day(2024, 3, 5)),
		exp("u1", "Food", 25000, day(2024, 3, 20)),
		exp("u1", "Food", 99900, time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC)),
	}

	got := Reconcile(budgets, expenses)
	require.Len(t, got, 1)
	assert.Equal(t, int64(35000), got[0].Spend.Cents)
	assert.Equal(t, int64(465000), got[0].Remaining.Cents)
	assert.Equal(t, 7.0, got[0].SpendPercent())
	assert.False(t, got[0].Overspent())
}

func TestReconcileZeroMatch(t *testing.T) {
	budgets := []core.Budget{
		{UserID: "u1", Month: 5, Year: 2024, Amount: cents(1000)},
		{UserID: "u1", Month: 6, Year: 2024, Amount: cents(0)},
	}
	expenses := []core.Expense{
		exp("u2", "Food", 500, day(2024, 5, 10)),  // other user
		exp("u1", "Food", 500, day(2023, 5, 10)),  // other year
		exp("u1", "Food", 500, day(2024, 7, 10)),  // month with no budget
	}

	got := Reconcile(budgets, expenses)
	require.Len(t, got, 2, "one row per budget, none for expense-only months")
	for _, s := range got {
		assert.Zero(t, s.Spend.Cents)
		assert.Equal(t, s.Budget, s.Remaining)
	}
	assert.Zero(t, got[1].SpendPercent(), "zero budget never divides")
}

func TestReconcileOverspentIsNotClamped(t *testing.T) {
	budgets := []core.Budget{{UserID: "u1", Month: 2, Year: 2024, Amount: cents(10000)}}
	expenses := []core.Expense{
		exp("u1", "Rent", 12000, day(2024, 2, 1)),
		exp("u1", "Food", 3000, day(2024, 2, 29)),
	}

	got := Reconcile(budgets, expenses)
	require.Len(t, got, 1)
	assert.Equal(t, int64(-5000), got[0].Remaining.Cents)
	assert.True(t, got[0].Overspent())
	assert.Equal(t, 150.0, got[0].SpendPercent())
}

func TestReconcileSkipsMalformed(t *testing.T) {
	budgets := []core.Budget{
		{UserID: "u1", Month: 0, Year: 2024, Amount: cents(100)},
		{UserID: "", Month: 1, Year: 2024, Amount: cents(100)},
		{UserID: "u1", Month: 1, Year: 2024, Amount: cents(-1)},
		{UserID: "u1", Month: 1, Year: 2024, Amount: cents(100)},
	}
	expenses := []core.Expense{
		exp("u1", "", 40, day(2024, 1, 2)),
		exp("u1", "Food", -40, day(2024, 1, 2)),
		{UserID: "u1", Category: "Food", Amount: cents(40)},
		exp("u1", "Food", 30, day(2024, 1, 2)),
	}

	got := Reconcile(budgets, expenses)
	require.Len(t, got, 1)
	assert.Equal(t, int64(30), got[0].Spend.Cents)
}

func TestReconcileOrderIndependent(t *testing.T) {
	budgets := []core.Budget{
		{UserID: "u1", Month: 1, Year: 2024, Amount: cents(100000)},
		{UserID: "u1", Month: 2, Year: 2024, Amount: cents(100000)},
		{UserID: "u2", Month: 1, Year: 2024, Amount: cents(100000)},
	}
	var expenses []core.Expense
	for i := 0; i < 60; i++ {
		user := []string{"u1", "u2"}[i%2]
		expenses = append(expenses, exp(user, "Misc", int64(i*37+1), day(2024, time.Month(i%3+1), i%28+1)))
	}

	want := Reconcile(budgets, expenses)
	rng := rand.New(rand.NewSource(7))
	for i := 0; i < 5; i++ {
		shuffled := append([]core.Expense(nil), expenses...)
		rng.Shuffle(len(shuffled), func(a, b int) { shuffled[a], shuffled[b] = shuffled[b], shuffled[a] })
		assert.Equal(t, want, Reconcile(budgets, shuffled))
	}

	var total int64
	for _, e := range expenses {
		if e.UserID == "u1" && e.Date.Month() == time.January {
			total += e.Amount.Cents
		}
	}
	assert.Equal(t, total, want[0].Spend.Cents)
}

func TestRank(t *testing.T) {
	in := []core.PeriodSummary{
		{UserID: "a", Month: 1, Year: 2023},
		{UserID: "b", Month: 3, Year: 2024},
		{UserID: "c", Month: 11, Year: 2023},
		{UserID: "d", Month: 5, Year: 2024},
		{UserID: "e", Month: 3, Year: 2024},
	}

	got := Rank(in, 3, 2024)
	ids := make([]string, len(got))
	for i, s := range got {
		ids[i] = s.UserID
	}
	assert.Equal(t, []string{"b", "e", "d", "c", "a"}, ids)
	assert.True(t, got[0].IsCurrentPeriod)
	assert.True(t, got[1].IsCurrentPeriod)
	assert.False(t, got[2].IsCurrentPeriod)

	assert.False(t, in[1].IsCurrentPeriod, "input must not be modified")
	assert.Empty(t, Rank(nil, 3, 2024))
}

func TestRankWithoutCurrent(t *testing.T) {
	in := []core.PeriodSummary{
		{Month: 2, Year: 2024},
		{Month: 12, Year: 2023},
		{Month: 4, Year: 2024},
	}
	got := Rank(in, 6, 2024)
	assert.Equal(t, 4, got[0].Month)
	assert.Equal(t, 2, got[1].Month)
	assert.Equal(t, 12, got[2].Month)
	for _, s := range got {
		assert.False(t, s.IsCurrentPeriod)
	}
}

func TestAggregateByCategoryScenario(t *testing.T) {
	april := PeriodFor(2024, 4, time.UTC)
	expenses := []core.Expense{
		exp("u1", "Food", 10000, day(2024, 4, 2)),
		exp("u1", "Food", 5000, day(2024, 4, 9)),
		exp("u1", "Travel", 20000, day(2024, 4, 15)),
	}

	got := AggregateByCategory(expenses, april.Start, april.End)
	require.Len(t, got, 2)
	assert.Equal(t, core.CategoryShare{Category: "Travel", Total: cents(20000), Percentage: 57.14}, got[0])
	assert.Equal(t, core.CategoryShare{Category: "Food", Total: cents(15000), Percentage: 42.86}, got[1])
}

func TestAggregateByCategoryClosure(t *testing.T) {
	p := PeriodFor(2024, 1, time.UTC)
	tests := []struct {
		name    string
		amounts []int64
	}{
		{"thirds", []int64{100, 100, 100}},
		{"sevenths", []int64{1, 1, 1, 1, 1, 1, 1}},
		{"skewed", []int64{999999, 1, 1}},
		{"single", []int64{4242}},
		{"primes", []int64{2, 3, 5, 7, 11, 13, 17, 19, 23}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var expenses []core.Expense
			for i, a := range tt.amounts {
				expenses = append(expenses, exp("u1", string(rune('A'+i)), a, day(2024, 1, 10)))
			}
			got := AggregateByCategory(expenses, p.Start, p.End)
			require.Len(t, got, len(tt.amounts))

			var bp int64
			for _, s := range got {
				bp += int64(s.Percentage*100 + 0.5)
				assert.GreaterOrEqual(t, s.Percentage, 0.0)
				assert.LessOrEqual(t, s.Percentage, 100.0)
			}
			assert.Equal(t, int64(10000), bp)
		})
	}
}

func TestAggregateByCategoryLargeTotals(t *testing.T) {
	p := PeriodFor(2024, 4, time.UTC)
	maxCents := core.MaxAmountCents

	// Category totals of 1e15 and 5e14 cents: total*10000 no longer fits in int64.
	var expenses []core.Expense
	for i := 0; i < 1000; i++ {
		expenses = append(expenses, exp("u1", "Big", maxCents, day(2024, 4, 2)))
	}
	for i := 0; i < 500; i++ {
		expenses = append(expenses, exp("u1", "Medium", maxCents, day(2024, 4, 3)))
	}
	expenses = append(expenses, exp("u1", "Small", 1, day(2024, 4, 4)))

	got := AggregateByCategory(expenses, p.Start, p.End)
	require.Len(t, got, 3)
	assert.Equal(t, "Big", got[0].Category)
	assert.Equal(t, 1000*maxCents, got[0].Total.Cents)
	assert.Equal(t, 66.67, got[0].Percentage)
	assert.Equal(t, 33.33, got[1].Percentage)
	assert.Equal(t, 0.0, got[2].Percentage)

	var bp int64
	for _, s := range got {
		bp += int64(s.Percentage*100 + 0.5)
	}
	assert.Equal(t, int64(10000), bp)

	t.Run("maxCents amount next to one cent", func(t *testing.T) {
		got := AggregateByCategory([]core.Expense{
			exp("u1", "Big", maxCents, day(2024, 4, 2)),
			exp("u1", "Small", 1, day(2024, 4, 2)),
		}, p.Start, p.End)
		require.Len(t, got, 2)
		assert.Equal(t, 100.0, got[0].Percentage)
		assert.Equal(t, 0.0, got[1].Percentage)
	})

	t.Run("reconcile sums large spend exactly", func(t *testing.T) {
		budgets := []core.Budget{{UserID: "u1", Amount: cents(maxCents), Month: 4, Year: 2024}}
		rows := Reconcile(budgets, expenses)
		require.Len(t, rows, 1)
		assert.Equal(t, 1500*maxCents+1, rows[0].Spend.Cents)
		assert.Equal(t, maxCents-(1500*maxCents+1), rows[0].Remaining.Cents)
	})
}

func TestAggregateByCategoryTiesAndCase(t *testing.T) {
	p := PeriodFor(2024, 1, time.UTC)
	expenses := []core.Expense{
		exp("u1", "food", 100, day(2024, 1, 3)),
		exp("u1", "Food", 100, day(2024, 1, 4)),
		exp("u1", "Fun", 100, day(2024, 1, 5)),
	}

	got := AggregateByCategory(expenses, p.Start, p.End)
	require.Len(t, got, 3, "categories are case sensitive")
	assert.Equal(t, "food", got[0].Category)
	assert.Equal(t, "Food", got[1].Category)
	assert.Equal(t, "Fun", got[2].Category)
	assert.Equal(t, 33.34, got[0].Percentage, "first seen wins the leftover point")
	assert.Equal(t, 33.33, got[1].Percentage)
	assert.Equal(t, 33.33, got[2].Percentage)
}

func TestAggregateByCategoryBoundariesAndEmpty(t *testing.T) {
	p := PeriodFor(2024, 3, time.UTC)
	expenses := []core.Expense{
		exp("u1", "In", 100, p.Start),
		exp("u1", "Out", 100, p.End),
		exp("u1", "Before", 100, p.Start.Add(-time.Second)),
	}

	got := AggregateByCategory(expenses, p.Start, p.End)
	require.Len(t, got, 1)
	assert.Equal(t, "In", got[0].Category)
	assert.Equal(t, 100.0, got[0].Percentage)

	assert.Empty(t, AggregateByCategory(nil, p.Start, p.End))
	zero := []core.Expense{exp("u1", "Free", 0, day(2024, 3, 3))}
	assert.Empty(t, AggregateByCategory(zero, p.Start, p.End), "zero grand total yields no shares")
}

func TestMonthlyTotals(t *testing.T) {
	expenses := []core.Expense{
		exp("u1", "Food", 100, day(2024, 1, 3)),
		exp("u1", "Food", 250, day(2023, 12, 30)),
		exp("u1", "Rent", 900, day(2024, 1, 1)),
		exp("u1", "", 999, day(2024, 2, 1)),
		exp("u1", "Rent", 50, day(2024, 3, 1)),
	}

	got := MonthlyTotals(expenses)
	require.Len(t, got, 3)
	assert.Equal(t, core.MonthTotal{Month: 3, Year: 2024, Total: cents(50), Count: 1}, got[0])
	assert.Equal(t, core.MonthTotal{Month: 1, Year: 2024, Total: cents(1000), Count: 2}, got[1])
	assert.Equal(t, core.MonthTotal{Month: 12, Year: 2023, Total: cents(250), Count: 1}, got[2])
	assert.Empty(t, MonthlyTotals(nil))
}
