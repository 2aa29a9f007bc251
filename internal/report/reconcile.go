package report

import "budgetly/internal/core"

// periodKey joins a budget and the expenses of the same user and month.
type periodKey struct {
	userID string
	year   int
	month  int
}

// Reconcile produces one summary per valid budget with the summed spend of the
// matching expenses. Malformed budgets and expenses are skipped. A budget with
// no matching expense still yields a row with zero spend; months that have
// expenses but no budget produce nothing.
//
// Expense months are taken from each expense date in its own location, so
// callers must normalise dates to the reporting timezone first.
func Reconcile(budgets []core.Budget, expenses []core.Expense) []core.PeriodSummary {
	spend := make(map[periodKey]int64)
	for _, e := range expenses {
		if e.Validate() != nil {
			continue
		}
		spend[periodKey{userID: e.UserID, year: e.Year(), month: e.Month()}] += e.Amount.Cents
	}

	out := make([]core.PeriodSummary, 0, len(budgets))
	for _, b := range budgets {
		if b.Validate() != nil {
			continue
		}
		spent := core.Money{Cents: spend[periodKey{userID: b.UserID, year: b.Year, month: b.Month}]}
		out = append(out, core.PeriodSummary{
			UserID:    b.UserID,
			Month:     b.Month,
			Year:      b.Year,
			Budget:    b.Amount,
			Spend:     spent,
			Remaining: b.Amount.Sub(spent),
		})
	}
	return out
}
