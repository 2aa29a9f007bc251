package core

import (
	"errors"
	"strings"
	"time"
)

// MaxNoteLength bounds the free-text note attached to an expense.
const MaxNoteLength = 500

type (
	Money struct {
		Cents int64
	}

	// Budget is a user's spending ceiling for one calendar month.
	Budget struct {
		ID     string
		UserID string
		Amount Money
		Month  int // 1-12
		Year   int
	}

	// Expense is a single spending transaction.
	Expense struct {
		ID       string
		UserID   string
		Category string // free text, case-sensitive
		Amount   Money
		Date     time.Time
		Note     string
	}
)

var (
	ErrInvalidAmount = errors.New("invalid amount")
	ErrInvalidMonth  = errors.New("invalid month")
	ErrInvalidYear   = errors.New("invalid year")
	ErrInvalidDate   = errors.New("invalid date")
	ErrEmptyUserID   = errors.New("empty user id")
	ErrEmptyCategory = errors.New("empty category")
	ErrNoteTooLong   = errors.New("note too long")
)

// Validate accepts zero up to MaxAmountCents.
func (m Money) Validate() error {
	if m.Cents < 0 || m.Cents > MaxAmountCents {
		return ErrInvalidAmount
	}
	return nil
}

func (b Budget) Validate() error {
	if strings.TrimSpace(b.UserID) == "" {
		return ErrEmptyUserID
	}
	if err := b.Amount.Validate(); err != nil {
		return err
	}
	if b.Month < 1 || b.Month > 12 {
		return ErrInvalidMonth
	}
	if b.Year < 1 || b.Year > 9999 {
		return ErrInvalidYear
	}
	return nil
}

func (e Expense) Validate() error {
	if strings.TrimSpace(e.UserID) == "" {
		return ErrEmptyUserID
	}
	if strings.TrimSpace(e.Category) == "" {
		return ErrEmptyCategory
	}
	if err := e.Amount.Validate(); err != nil {
		return err
	}
	if e.Date.IsZero() {
		return ErrInvalidDate
	}
	if len(e.Note) > MaxNoteLength {
		return ErrNoteTooLong
	}
	return nil
}

// Month returns the 1-indexed month of the expense date, in the date's own location.
func (e Expense) Month() int {
	return int(e.Date.Month())
}

// Year returns the year of the expense date.
func (e Expense) Year() int {
	return e.Date.Year()
}
