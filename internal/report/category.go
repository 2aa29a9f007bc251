package report

import (
	"cmp"
	"slices"
	"time"

	"github.com/shopspring/decimal"

	"budgetly/internal/core"
)

// basisPoints is 100% expressed in hundredths of a percent.
const basisPoints = 10000

type categoryGroup struct {
	name      string
	total     int64
	firstSeen int
	bp        int64 // share in hundredths of a percent
	remainder int64 // numerator left over by the floor division, for largest-remainder rounding
}

// AggregateByCategory groups the expenses dated in [rangeStart, rangeEnd) by
// exact category name and returns each group's total and share of the range
// total, largest first with ties in first-seen order.
//
// Shares are rounded to two decimals with the largest-remainder method so they
// always add up to exactly 100. An empty or zero-total range returns nil.
func AggregateByCategory(expenses []core.Expense, rangeStart, rangeEnd time.Time) []core.CategoryShare {
	var (
		groups     []*categoryGroup
		byName     = make(map[string]*categoryGroup)
		grandTotal int64
	)
	for _, e := range expenses {
		if e.Validate() != nil || e.Date.Before(rangeStart) || !e.Date.Before(rangeEnd) {
			continue
		}
		g, ok := byName[e.Category]
		if !ok {
			g = &categoryGroup{name: e.Category, firstSeen: len(groups)}
			byName[e.Category] = g
			groups = append(groups, g)
		}
		g.total += e.Amount.Cents
		grandTotal += e.Amount.Cents
	}
	if grandTotal == 0 {
		return nil
	}

	distributeShares(groups, grandTotal)

	slices.SortStableFunc(groups, func(a, b *categoryGroup) int {
		return cmp.Compare(b.total, a.total)
	})

	out := make([]core.CategoryShare, len(groups))
	for i, g := range groups {
		out[i] = core.CategoryShare{
			Category:   g.name,
			Total:      core.Money{Cents: g.total},
			Percentage: decimal.New(g.bp, -2).InexactFloat64(),
		}
	}
	return out
}

// distributeShares floors every share to a basis point, then hands the missing
// points to the groups with the largest remainders (first-seen wins ties).
// total*basisPoints can exceed int64, so the division runs on decimals.
func distributeShares(groups []*categoryGroup, grandTotal int64) {
	var (
		assigned int64
		divisor  = decimal.NewFromInt(grandTotal)
	)
	for _, g := range groups {
		q, r := decimal.NewFromInt(g.total).Mul(decimal.NewFromInt(basisPoints)).QuoRem(divisor, 0)
		g.bp = q.IntPart()
		g.remainder = r.IntPart() // < grandTotal
		assigned += g.bp
	}

	order := slices.Clone(groups)
	slices.SortStableFunc(order, func(a, b *categoryGroup) int {
		if c := cmp.Compare(b.remainder, a.remainder); c != 0 {
			return c
		}
		return cmp.Compare(a.firstSeen, b.firstSeen)
	})
	for i := 0; assigned < basisPoints && i < len(order); i++ {
		order[i].bp++
		assigned++
	}
}
