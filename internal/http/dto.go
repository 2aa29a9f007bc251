package http

import "budgetly/internal/core"

// Amounts are serialised in major units; the domain keeps cents.

type periodSummaryDTO struct {
	Month           int     `json:"month"`
	Year            int     `json:"year"`
	Budget          float64 `json:"budget"`
	Spend           float64 `json:"spend"`
	Remaining       float64 `json:"remaining"`
	SpendPercent    float64 `json:"spendPercent"`
	Overspent       bool    `json:"overspent"`
	IsCurrentPeriod bool    `json:"isCurrentPeriod"`
}

type categoryShareDTO struct {
	Category    string  `json:"category"`
	TotalAmount float64 `json:"totalAmount"`
	Percentage  float64 `json:"percentage"`
}

type monthTotalDTO struct {
	Month       int     `json:"month"`
	Year        int     `json:"year"`
	TotalAmount float64 `json:"totalAmount"`
	Count       int     `json:"count"`
}

type categoryReportDTO struct {
	Month      int                `json:"month"`
	Year       int                `json:"year"`
	Categories []categoryShareDTO `json:"categories"`
}

type budgetDTO struct {
	ID     string  `json:"id"`
	Month  int     `json:"month"`
	Year   int     `json:"year"`
	Amount float64 `json:"amount"`
}

type expenseDTO struct {
	ID       string  `json:"id"`
	Category string  `json:"category"`
	Amount   float64 `json:"amount"`
	Date     string  `json:"date"`
	Note     string  `json:"note,omitempty"`
}

func toSummaryDTO(s core.PeriodSummary) periodSummaryDTO {
	return periodSummaryDTO{
		Month:           s.Month,
		Year:            s.Year,
		Budget:          s.Budget.Float(),
		Spend:           s.Spend.Float(),
		Remaining:       s.Remaining.Float(),
		SpendPercent:    s.SpendPercent(),
		Overspent:       s.Overspent(),
		IsCurrentPeriod: s.IsCurrentPeriod,
	}
}

func toSummaryDTOs(in []core.PeriodSummary) []periodSummaryDTO {
	out := make([]periodSummaryDTO, 0, len(in))
	for _, s := range in {
		out = append(out, toSummaryDTO(s))
	}
	return out
}

func toCategoryDTOs(in []core.CategoryShare) []categoryShareDTO {
	out := make([]categoryShareDTO, 0, len(in))
	for _, c := range in {
		out = append(out, categoryShareDTO{Category: c.Category, TotalAmount: c.Total.Float(), Percentage: c.Percentage})
	}
	return out
}

func toMonthDTOs(in []core.MonthTotal) []monthTotalDTO {
	out := make([]monthTotalDTO, 0, len(in))
	for _, m := range in {
		out = append(out, monthTotalDTO{Month: m.Month, Year: m.Year, TotalAmount: m.Total.Float(), Count: m.Count})
	}
	return out
}

func toBudgetDTO(b core.Budget) budgetDTO {
	return budgetDTO{ID: b.ID, Month: b.Month, Year: b.Year, Amount: b.Amount.Float()}
}

func toExpenseDTO(e core.Expense) expenseDTO {
	return expenseDTO{
		ID:       e.ID,
		Category: e.Category,
		Amount:   e.Amount.Float(),
		Date:     e.Date.Format(dateLayout),
		Note:     e.Note,
	}
}
