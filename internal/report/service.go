package report

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"time"

	"golang.org/x/sync/errgroup"

	"budgetly/internal/cache"
	"budgetly/internal/core"
	applog "budgetly/internal/log"
)

// BudgetStore lists every budget a user owns.
type BudgetStore interface {
	ListBudgetsForUser(ctx context.Context, userID string) ([]core.Budget, error)
}

// ExpenseStore lists every expense a user recorded.
type ExpenseStore interface {
	ListExpensesForUser(ctx context.Context, userID string) ([]core.Expense, error)
}

// RangeExpenseStore is implemented by stores that can filter by date server side.
// The range is half-open: start <= date < end.
type RangeExpenseStore interface {
	ListExpensesInRange(ctx context.Context, userID string, start, end time.Time) ([]core.Expense, error)
}

// Report kinds used in cache keys.
const (
	kindBudgets    = "budgets"
	kindCategories = "categories"
	kindMonths     = "months"
)

// cachedReport holds whichever report kind was computed.
type cachedReport struct {
	summaries  []core.PeriodSummary
	categories []core.CategoryShare
	months     []core.MonthTotal
}

// clone copies the slices so callers never share memory with the cache.
func (r cachedReport) clone() cachedReport {
	return cachedReport{
		summaries:  slices.Clone(r.summaries),
		categories: slices.Clone(r.categories),
		months:     slices.Clone(r.months),
	}
}

// Service answers report queries for one user at a time.
type Service struct {
	budgets  BudgetStore
	expenses ExpenseStore
	loc      *time.Location
	now      func() time.Time
	cache    cache.Cache[cachedReport]
}

// Option configures a Service.
type Option func(*Service)

// WithLocation sets the timezone used to assign expenses to months.
func WithLocation(loc *time.Location) Option {
	return func(s *Service) {
		if loc != nil {
			s.loc = loc
		}
	}
}

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// WithCache enables report caching. Writers must call Invalidate.
func WithCache(size int, ttl time.Duration) Option {
	return func(s *Service) {
		if size > 0 && ttl > 0 {
			s.cache = cache.NewLRUCache[cachedReport](size, ttl)
		}
	}
}

// NewService creates a report service reading from the given stores.
func NewService(budgets BudgetStore, expenses ExpenseStore, opts ...Option) *Service {
	s := &Service{
		budgets:  budgets,
		expenses: expenses,
		loc:      time.UTC,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Location returns the reporting timezone.
func (s *Service) Location() *time.Location { return s.loc }

// CurrentPeriod returns the period containing now in the reporting timezone.
func (s *Service) CurrentPeriod() Period {
	return ResolveCurrentPeriod(s.now().In(s.loc))
}

// Cleaner exposes the cache for periodic expiry, or nil when caching is off.
func (s *Service) Cleaner() cache.Cleaner {
	if c, ok := s.cache.(cache.Cleaner); ok {
		return c
	}
	return nil
}

// MonthlyBudgets reconciles every budget of the user and ranks the result,
// current period first.
func (s *Service) MonthlyBudgets(ctx context.Context, userID string) ([]core.PeriodSummary, error) {
	current := s.CurrentPeriod()
	key := cacheKey(userID, kindBudgets, current)
	if r, ok := s.lookup(key); ok {
		return r.summaries, nil
	}

	budgets, expenses, err := s.load(ctx, userID)
	if err != nil {
		return nil, err
	}
	ranked := Rank(Reconcile(budgets, expenses), current.Month, current.Year)

	s.store(key, cachedReport{summaries: ranked})
	return ranked, nil
}

// CurrentSummary returns the summary for the current period. The boolean is
// false when the user has no budget for it.
func (s *Service) CurrentSummary(ctx context.Context, userID string) (core.PeriodSummary, bool, error) {
	summaries, err := s.MonthlyBudgets(ctx, userID)
	if err != nil {
		return core.PeriodSummary{}, false, err
	}
	if len(summaries) == 0 || !summaries[0].IsCurrentPeriod {
		return core.PeriodSummary{}, false, nil
	}
	return summaries[0], true, nil
}

// SummaryFor returns the reconciled summary of a specific month.
func (s *Service) SummaryFor(ctx context.Context, userID string, year, month int) (core.PeriodSummary, bool, error) {
	summaries, err := s.MonthlyBudgets(ctx, userID)
	if err != nil {
		return core.PeriodSummary{}, false, err
	}
	for _, sum := range summaries {
		if sum.Year == year && sum.Month == month {
			return sum, true, nil
		}
	}
	return core.PeriodSummary{}, false, nil
}

// CategoryBreakdown aggregates the user's expenses of one month by category.
func (s *Service) CategoryBreakdown(ctx context.Context, userID string, year, month int) ([]core.CategoryShare, error) {
	if month < 1 || month > 12 {
		return nil, core.ErrInvalidMonth
	}
	if year < 1 || year > 9999 {
		return nil, core.ErrInvalidYear
	}
	p := PeriodFor(year, month, s.loc)
	key := cacheKey(userID, kindCategories, p) + "|" + s.CurrentPeriod().Key()
	if r, ok := s.lookup(key); ok {
		return r.categories, nil
	}

	expenses, err := s.loadRange(ctx, userID, p)
	if err != nil {
		return nil, err
	}
	shares := AggregateByCategory(expenses, p.Start, p.End)

	s.store(key, cachedReport{categories: shares})
	return shares, nil
}

// CurrentCategoryBreakdown is CategoryBreakdown for the current period.
func (s *Service) CurrentCategoryBreakdown(ctx context.Context, userID string) ([]core.CategoryShare, error) {
	p := s.CurrentPeriod()
	return s.CategoryBreakdown(ctx, userID, p.Year, p.Month)
}

// MonthlyExpenses returns the user's spend per month, newest first.
func (s *Service) MonthlyExpenses(ctx context.Context, userID string) ([]core.MonthTotal, error) {
	key := cacheKey(userID, kindMonths, s.CurrentPeriod())
	if r, ok := s.lookup(key); ok {
		return r.months, nil
	}

	raw, err := s.expenses.ListExpensesForUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list expenses: %w", err)
	}
	totals := MonthlyTotals(s.sanitizeExpenses(ctx, userID, raw))

	s.store(key, cachedReport{months: totals})
	return totals, nil
}

// Invalidate drops every cached report of the user.
func (s *Service) Invalidate(userID string) {
	if s.cache == nil {
		return
	}
	if n := s.cache.DeletePrefix(userID + "|"); n > 0 {
		slog.Debug("Report cache invalidated", applog.FieldUserID, userID, "entries", n)
	}
}

func (s *Service) load(ctx context.Context, userID string) ([]core.Budget, []core.Expense, error) {
	var (
		budgets  []core.Budget
		expenses []core.Expense
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		budgets, err = s.budgets.ListBudgetsForUser(gctx, userID)
		if err != nil {
			return fmt.Errorf("list budgets: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		expenses, err = s.expenses.ListExpensesForUser(gctx, userID)
		if err != nil {
			return fmt.Errorf("list expenses: %w", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}
	return s.sanitizeBudgets(ctx, userID, budgets), s.sanitizeExpenses(ctx, userID, expenses), nil
}

func (s *Service) loadRange(ctx context.Context, userID string, p Period) ([]core.Expense, error) {
	var (
		raw []core.Expense
		err error
	)
	if rs, ok := s.expenses.(RangeExpenseStore); ok {
		raw, err = rs.ListExpensesInRange(ctx, userID, p.Start, p.End)
	} else {
		raw, err = s.expenses.ListExpensesForUser(ctx, userID)
	}
	if err != nil {
		return nil, fmt.Errorf("list expenses: %w", err)
	}
	return s.sanitizeExpenses(ctx, userID, raw), nil
}

// sanitizeBudgets keeps the user's valid budgets.
func (s *Service) sanitizeBudgets(ctx context.Context, userID string, in []core.Budget) []core.Budget {
	out := make([]core.Budget, 0, len(in))
	for _, b := range in {
		if b.UserID != userID {
			continue
		}
		if err := b.Validate(); err != nil {
			slog.WarnContext(ctx, "Skipping malformed budget",
				applog.FieldComponent, applog.ComponentReport,
				applog.FieldUserID, userID,
				applog.FieldRecordID, b.ID,
				applog.FieldError, err)
			continue
		}
		out = append(out, b)
	}
	return out
}

// sanitizeExpenses keeps the user's valid expenses with dates moved into the
// reporting timezone, so month extraction matches the period boundaries.
func (s *Service) sanitizeExpenses(ctx context.Context, userID string, in []core.Expense) []core.Expense {
	out := make([]core.Expense, 0, len(in))
	for _, e := range in {
		if e.UserID != userID {
			continue
		}
		if err := e.Validate(); err != nil {
			slog.WarnContext(ctx, "Skipping malformed expense",
				applog.FieldComponent, applog.ComponentReport,
				applog.FieldUserID, userID,
				applog.FieldRecordID, e.ID,
				applog.FieldError, err)
			continue
		}
		e.Date = e.Date.In(s.loc)
		out = append(out, e)
	}
	return out
}

func (s *Service) lookup(key string) (cachedReport, bool) {
	if s.cache == nil {
		return cachedReport{}, false
	}
	r, ok := s.cache.Get(key)
	if !ok {
		return cachedReport{}, false
	}
	return r.clone(), true
}

func (s *Service) store(key string, r cachedReport) {
	if s.cache != nil {
		s.cache.Set(key, r.clone())
	}
}

// cacheKey starts with the user id so Invalidate can drop a user's entries by prefix.
func cacheKey(userID, kind string, p Period) string {
	return userID + "|" + kind + "|" + p.Key()
}
