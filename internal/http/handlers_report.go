package http

import (
	"net/http"

	applog "budgetly/internal/log"
)

func (s *Server) handleMonthlyBudgets(w http.ResponseWriter, r *http.Request, userID string) {
	summaries, err := s.reports.MonthlyBudgets(r.Context(), userID)
	if err != nil {
		s.logFailure(r, "Monthly budgets report failed", userID, err)
		ErrorFromDomain(err).Write(w)
		return
	}
	NewJSONResponse().Body(toSummaryDTOs(summaries)).Write(w)
}

func (s *Server) handleCurrentSummary(w http.ResponseWriter, r *http.Request, userID string) {
	summary, ok, err := s.reports.CurrentSummary(r.Context(), userID)
	if err != nil {
		s.logFailure(r, "Current summary failed", userID, err)
		ErrorFromDomain(err).Write(w)
		return
	}
	if !ok {
		NotFoundError("no budget for the current period").Write(w)
		return
	}
	NewJSONResponse().Body(toSummaryDTO(summary)).Write(w)
}

func (s *Server) handleCategories(w http.ResponseWriter, r *http.Request, userID string) {
	current := s.reports.CurrentPeriod()
	params, err := ParseMonthParams(r.URL.Query(), MonthParams{Year: current.Year, Month: current.Month})
	if err != nil {
		BadRequestError(err.Error()).Write(w)
		return
	}

	shares, err := s.reports.CategoryBreakdown(r.Context(), userID, params.Year, params.Month)
	if err != nil {
		s.logFailure(r, "Category breakdown failed", userID, err)
		ErrorFromDomain(err).Write(w)
		return
	}
	NewJSONResponse().Body(categoryReportDTO{
		Month:      params.Month,
		Year:       params.Year,
		Categories: toCategoryDTOs(shares),
	}).Write(w)
}

func (s *Server) handleMonthlyExpenses(w http.ResponseWriter, r *http.Request, userID string) {
	months, err := s.reports.MonthlyExpenses(r.Context(), userID)
	if err != nil {
		s.logFailure(r, "Monthly expenses report failed", userID, err)
		ErrorFromDomain(err).Write(w)
		return
	}
	NewJSONResponse().Body(toMonthDTOs(months)).Write(w)
}

func (s *Server) logFailure(r *http.Request, msg, userID string, err error) {
	applog.FromContext(r.Context()).LogFields(r.Context(), levelFor(err), msg,
		applog.NewFields().WithOperation(applog.OpReport).WithUser(userID).WithError(err))
}
