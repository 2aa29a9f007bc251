package http

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"time"

	"budgetly/internal/core"
	applog "budgetly/internal/log"
	"budgetly/internal/middleware/ratelimit"
	"budgetly/internal/middleware/security"
	"budgetly/internal/middleware/trace"
	"budgetly/internal/report"
)

// HeaderUserID carries the caller's identity, set by the identity proxy in front of the API.
const HeaderUserID = "X-User-ID"

// ReportService is the read side consumed by the report handlers.
type ReportService interface {
	CurrentPeriod() report.Period
	MonthlyBudgets(ctx context.Context, userID string) ([]core.PeriodSummary, error)
	CurrentSummary(ctx context.Context, userID string) (core.PeriodSummary, bool, error)
	CategoryBreakdown(ctx context.Context, userID string, year, month int) ([]core.CategoryShare, error)
	MonthlyExpenses(ctx context.Context, userID string) ([]core.MonthTotal, error)
}

// LedgerService is the write side consumed by the budget and expense handlers.
type LedgerService interface {
	CreateBudget(ctx context.Context, b core.Budget) (core.Budget, error)
	CreateExpense(ctx context.Context, e core.Expense) (core.Expense, error)
}

// Pinger reports whether a dependency is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Deps are the collaborators of the server. Ready may be nil.
type Deps struct {
	Reports ReportService
	Ledger  LedgerService
	Ready   Pinger
	Logger  *applog.Logger

	TrustedProxies         []string
	WriteRequestsPerMinute int
}

type Server struct {
	http.Server
	reports ReportService
	ledger  LedgerService
	ready   Pinger

	rateLimiter     *ratelimit.Limiter
	traceMiddleware *trace.Middleware
	started         time.Time

	shutdownOnce sync.Once
}

// NewServer wires routes and middleware, returning a ready-to-run server.
func NewServer(addr string, deps Deps) (*Server, error) {
	if deps.Reports == nil || deps.Ledger == nil {
		return nil, errors.New("http server needs report and ledger services")
	}

	ipExtractor, err := security.NewClientIPExtractor(deps.TrustedProxies...)
	if err != nil {
		return nil, err
	}

	s := &Server{
		reports:         deps.Reports,
		ledger:          deps.Ledger,
		ready:           deps.Ready,
		rateLimiter:     ratelimit.NewLimiter(ratelimit.Config{RequestsPerMinute: deps.WriteRequestsPerMinute}),
		traceMiddleware: trace.NewMiddleware(deps.Logger, ipExtractor.ExtractClientIP),
		started:         time.Now(),
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("GET /readyz", s.handleReady)

	mux.Handle("GET /api/reports/monthly-budgets", requireUser(s.handleMonthlyBudgets))
	mux.Handle("GET /api/reports/current", requireUser(s.handleCurrentSummary))
	mux.Handle("GET /api/reports/categories", requireUser(s.handleCategories))
	mux.Handle("GET /api/reports/monthly-expenses", requireUser(s.handleMonthlyExpenses))
	mux.Handle("POST /api/budgets", requireUser(s.handleCreateBudget))
	mux.Handle("POST /api/expenses", requireUser(s.handleCreateExpense))

	limited := s.rateLimiter.Middleware(ipExtractor.ExtractClientIP, func(w http.ResponseWriter, r *http.Request) {
		ErrorResponse(http.StatusTooManyRequests, "rate limit exceeded, try again later").Write(w)
	}, http.MethodPost)

	headers := security.NewHeadersMiddleware(security.DefaultHeadersConfig())

	s.Server = http.Server{
		Addr:              addr,
		Handler:           s.traceMiddleware.Middleware(headers.Middleware(limited(mux))),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	return s, nil
}

// Shutdown stops background routines and drains the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error
	s.shutdownOnce.Do(func() {
		s.rateLimiter.Stop()
		shutdownErr = s.Server.Shutdown(ctx)
	})
	return shutdownErr
}

type userHandler func(w http.ResponseWriter, r *http.Request, userID string)

// requireUser rejects requests without a caller identity.
func requireUser(next userHandler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		userID := sanitizeInput(r.Header.Get(HeaderUserID))
		if userID == "" {
			ErrorResponse(http.StatusUnauthorized, "missing "+HeaderUserID+" header").Write(w)
			return
		}
		next(w, r, userID)
	})
}
