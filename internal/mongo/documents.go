package mongo

import (
	"errors"
	"fmt"
	"math"
	"time"

	"go.mongodb.org/mongo-driver/bson"

	"budgetly/internal/core"
)

var errMissingField = errors.New("missing field")

// Pointer fields tell an absent value apart from a zero one. Amount holds
// major units as written by other tools; amountCents wins when both exist.
type budgetDoc struct {
	ID          string   `bson:"_id"`
	UserID      *string  `bson:"userId"`
	AmountCents *int64   `bson:"amountCents"`
	Amount      *float64 `bson:"amount,omitempty"`
	Month       *int     `bson:"month"`
	Year        *int     `bson:"year"`
}

type expenseDoc struct {
	ID          string     `bson:"_id"`
	UserID      *string    `bson:"userId"`
	Category    *string    `bson:"category"`
	AmountCents *int64     `bson:"amountCents"`
	Amount      *float64   `bson:"amount,omitempty"`
	Date        *time.Time `bson:"date"`
	Note        string     `bson:"note,omitempty"`
}

func budgetToDoc(b core.Budget) budgetDoc {
	return budgetDoc{
		ID:          b.ID,
		UserID:      &b.UserID,
		AmountCents: &b.Amount.Cents,
		Month:       &b.Month,
		Year:        &b.Year,
	}
}

func expenseToDoc(e core.Expense) expenseDoc {
	date := e.Date.UTC()
	return expenseDoc{
		ID:          e.ID,
		UserID:      &e.UserID,
		Category:    &e.Category,
		AmountCents: &e.Amount.Cents,
		Date:        &date,
		Note:        e.Note,
	}
}

func decodeBudget(raw bson.Raw) (core.Budget, error) {
	var d budgetDoc
	if err := bson.Unmarshal(raw, &d); err != nil {
		return core.Budget{}, fmt.Errorf("decode budget: %w", err)
	}
	switch {
	case d.UserID == nil:
		return core.Budget{}, fmt.Errorf("budget %s: %w userId", d.ID, errMissingField)
	case d.Month == nil:
		return core.Budget{}, fmt.Errorf("budget %s: %w month", d.ID, errMissingField)
	case d.Year == nil:
		return core.Budget{}, fmt.Errorf("budget %s: %w year", d.ID, errMissingField)
	}
	amount, err := docAmount(d.AmountCents, d.Amount)
	if err != nil {
		return core.Budget{}, fmt.Errorf("budget %s: %w", d.ID, err)
	}
	return core.Budget{
		ID:     d.ID,
		UserID: *d.UserID,
		Amount: amount,
		Month:  *d.Month,
		Year:   *d.Year,
	}, nil
}

func decodeExpense(raw bson.Raw) (core.Expense, error) {
	var d expenseDoc
	if err := bson.Unmarshal(raw, &d); err != nil {
		return core.Expense{}, fmt.Errorf("decode expense: %w", err)
	}
	switch {
	case d.UserID == nil:
		return core.Expense{}, fmt.Errorf("expense %s: %w userId", d.ID, errMissingField)
	case d.Category == nil:
		return core.Expense{}, fmt.Errorf("expense %s: %w category", d.ID, errMissingField)
	case d.Date == nil:
		return core.Expense{}, fmt.Errorf("expense %s: %w date", d.ID, errMissingField)
	}
	amount, err := docAmount(d.AmountCents, d.Amount)
	if err != nil {
		return core.Expense{}, fmt.Errorf("expense %s: %w", d.ID, err)
	}
	return core.Expense{
		ID:       d.ID,
		UserID:   *d.UserID,
		Category: *d.Category,
		Amount:   amount,
		Date:     d.Date.UTC(),
		Note:     d.Note,
	}, nil
}

// docAmount prefers exact cents and falls back to a major-unit float.
func docAmount(cents *int64, major *float64) (core.Money, error) {
	switch {
	case cents != nil:
		return core.Money{Cents: *cents}, nil
	case major == nil:
		return core.Money{}, fmt.Errorf("%w amountCents", errMissingField)
	case math.IsNaN(*major) || math.IsInf(*major, 0) || math.Abs(*major) > float64(core.MaxAmountCents)/100:
		return core.Money{}, fmt.Errorf("amount %v: %w", *major, core.ErrInvalidAmount)
	}
	return core.MoneyFromFloat(*major), nil
}
