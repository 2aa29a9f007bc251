package report

import (
	"cmp"
	"slices"

	"budgetly/internal/core"
)

// MonthlyTotals sums valid expenses per calendar month, newest month first.
// Months without expenses are absent; budgets play no part in this view.
func MonthlyTotals(expenses []core.Expense) []core.MonthTotal {
	type ym struct{ year, month int }
	idx := make(map[ym]int)
	var out []core.MonthTotal
	for _, e := range expenses {
		if e.Validate() != nil {
			continue
		}
		k := ym{year: e.Year(), month: e.Month()}
		i, ok := idx[k]
		if !ok {
			i = len(out)
			idx[k] = i
			out = append(out, core.MonthTotal{Year: k.year, Month: k.month})
		}
		out[i].Total = out[i].Total.Add(e.Amount)
		out[i].Count++
	}

	slices.SortFunc(out, func(a, b core.MonthTotal) int {
		if c := cmp.Compare(b.Year, a.Year); c != 0 {
			return c
		}
		return cmp.Compare(b.Month, a.Month)
	})
	return out
}
