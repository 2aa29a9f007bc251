package report

import (
	"cmp"
	"slices"

	"budgetly/internal/core"
)

// Rank orders summaries with the current period first, then newest year and
// month first. Equal keys keep their input order. The input is not modified;
// every returned row has IsCurrentPeriod set.
func Rank(summaries []core.PeriodSummary, currentMonth, currentYear int) []core.PeriodSummary {
	out := make([]core.PeriodSummary, len(summaries))
	for i, s := range summaries {
		s.IsCurrentPeriod = s.Month == currentMonth && s.Year == currentYear
		out[i] = s
	}

	slices.SortStableFunc(out, func(a, b core.PeriodSummary) int {
		if a.IsCurrentPeriod != b.IsCurrentPeriod {
			if a.IsCurrentPeriod {
				return -1
			}
			return 1
		}
		if c := cmp.Compare(b.Year, a.Year); c != 0 {
			return c
		}
		return cmp.Compare(b.Month, a.Month)
	})
	return out
}
