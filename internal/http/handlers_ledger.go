package http

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"budgetly/internal/core"
)

func (s *Server) handleCreateBudget(w http.ResponseWriter, r *http.Request, userID string) {
	p := NewRequestBodyParser(r)
	if err := p.Parse(); err != nil {
		BadRequestError(bodyError(err)).Write(w)
		return
	}

	cents, err := core.ParseDecimalToCents(p.Get("amount"))
	if err != nil {
		UnprocessableEntityError(core.ErrInvalidAmount.Error()).Write(w)
		return
	}
	month, err := p.Int("month")
	if err != nil {
		UnprocessableEntityError(err.Error()).Write(w)
		return
	}
	year, err := p.Int("year")
	if err != nil {
		UnprocessableEntityError(err.Error()).Write(w)
		return
	}

	b, err := s.ledger.CreateBudget(r.Context(), core.Budget{
		UserID: userID,
		Amount: core.Money{Cents: cents},
		Month:  month,
		Year:   year,
	})
	if err != nil {
		s.logFailure(r, "Create budget failed", userID, err)
		ErrorFromDomain(err).Write(w)
		return
	}
	NewJSONResponse().Status(http.StatusCreated).Body(toBudgetDTO(b)).Write(w)
}

func (s *Server) handleCreateExpense(w http.ResponseWriter, r *http.Request, userID string) {
	p := NewRequestBodyParser(r)
	if err := p.Parse(); err != nil {
		BadRequestError(bodyError(err)).Write(w)
		return
	}

	cents, err := core.ParseDecimalToCents(p.Get("amount"))
	if err != nil {
		UnprocessableEntityError(core.ErrInvalidAmount.Error()).Write(w)
		return
	}

	loc := s.reports.CurrentPeriod().Start.Location()
	date, err := parseDate(p.Get("date"), loc, time.Now())
	if err != nil {
		UnprocessableEntityError("date must be YYYY-MM-DD").Write(w)
		return
	}

	e, err := s.ledger.CreateExpense(r.Context(), core.Expense{
		UserID:   userID,
		Category: p.Get("category"),
		Amount:   core.Money{Cents: cents},
		Date:     date,
		Note:     p.Get("note"),
	})
	if err != nil {
		s.logFailure(r, "Create expense failed", userID, err)
		ErrorFromDomain(err).Write(w)
		return
	}
	NewJSONResponse().Status(http.StatusCreated).Body(toExpenseDTO(e)).Write(w)
}

func bodyError(err error) string {
	if errors.Is(err, errBodyTooLarge) {
		return errBodyTooLarge.Error()
	}
	return "malformed request body"
}

// levelFor logs validation failures as warnings and the rest as errors.
func levelFor(err error) slog.Level {
	for _, target := range validationErrors {
		if errors.Is(err, target) {
			return slog.LevelWarn
		}
	}
	return slog.LevelError
}
