package amqp

import (
	"encoding/json"
	"time"

	"budgetly/internal/core"
)

// ExpenseRecordedMessage announces a stored expense. The worker reloads the
// user's data, so only the keys travel.
type ExpenseRecordedMessage struct {
	ExpenseID   string    `json:"expenseId"`
	UserID      string    `json:"userId"`
	Year        int       `json:"year"`
	Month       int       `json:"month"`
	AmountCents int64     `json:"amountCents"`
	Timestamp   time.Time `json:"timestamp"`
}

// NewExpenseRecordedMessage builds the message for e using the month of its date.
func NewExpenseRecordedMessage(e core.Expense) *ExpenseRecordedMessage {
	return &ExpenseRecordedMessage{
		ExpenseID:   e.ID,
		UserID:      e.UserID,
		Year:        e.Year(),
		Month:       e.Month(),
		AmountCents: e.Amount.Cents,
		Timestamp:   time.Now(),
	}
}

// ToJSON converts the message to JSON bytes
func (m *ExpenseRecordedMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// ExpenseRecordedMessageFromJSON parses a message body.
func ExpenseRecordedMessageFromJSON(data []byte) (*ExpenseRecordedMessage, error) {
	var msg ExpenseRecordedMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}

// BudgetExceededMessage is the alert sent when a month's spend passes its budget.
type BudgetExceededMessage struct {
	UserID         string    `json:"userId"`
	Year           int       `json:"year"`
	Month          int       `json:"month"`
	BudgetCents    int64     `json:"budgetCents"`
	SpendCents     int64     `json:"spendCents"`
	RemainingCents int64     `json:"remainingCents"`
	SpendPercent   float64   `json:"spendPercent"`
	Timestamp      time.Time `json:"timestamp"`
}

// NewBudgetExceededMessage builds the alert for an overspent summary.
func NewBudgetExceededMessage(s core.PeriodSummary) *BudgetExceededMessage {
	return &BudgetExceededMessage{
		UserID:         s.UserID,
		Year:           s.Year,
		Month:          s.Month,
		BudgetCents:    s.Budget.Cents,
		SpendCents:     s.Spend.Cents,
		RemainingCents: s.Remaining.Cents,
		SpendPercent:   s.SpendPercent(),
		Timestamp:      time.Now(),
	}
}

// ToJSON converts the message to JSON bytes
func (m *BudgetExceededMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// BudgetExceededMessageFromJSON parses an alert body.
func BudgetExceededMessageFromJSON(data []byte) (*BudgetExceededMessage, error) {
	var msg BudgetExceededMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
