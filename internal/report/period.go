// Package report computes budget-vs-spend summaries, period rankings and
// category breakdowns over already-fetched budgets and expenses.
//
// The computations in this package are pure: they perform no I/O, hold no
// state between calls and are safe for concurrent use. Service wraps them
// with store access and an optional cache.
package report

import "time"

// Period is a calendar month with its half-open instant range [Start, End).
type Period struct {
	Month int // 1-12
	Year  int
	Start time.Time
	End   time.Time
}

// ResolveCurrentPeriod returns the calendar month containing now, in now's location.
// Callers pick the timezone by converting now with In before calling.
func ResolveCurrentPeriod(now time.Time) Period {
	return PeriodFor(now.Year(), int(now.Month()), now.Location())
}

// PeriodFor returns the period for a 1-indexed month. Out-of-range months are
// normalised the way time.Date does (month 13 of 2024 is January 2025).
func PeriodFor(year, month int, loc *time.Location) Period {
	if loc == nil {
		loc = time.UTC
	}
	start := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, loc)
	return Period{
		Month: int(start.Month()),
		Year:  start.Year(),
		Start: start,
		End:   start.AddDate(0, 1, 0),
	}
}

// Contains reports whether t falls inside [Start, End).
func (p Period) Contains(t time.Time) bool {
	return !t.Before(p.Start) && t.Before(p.End)
}

// Next returns the following calendar month.
func (p Period) Next() Period {
	return PeriodFor(p.Year, p.Month+1, p.Start.Location())
}

// Previous returns the preceding calendar month.
func (p Period) Previous() Period {
	return PeriodFor(p.Year, p.Month-1, p.Start.Location())
}

// Key identifies the period as "YYYY-MM".
func (p Period) Key() string {
	return p.Start.Format("2006-01")
}
