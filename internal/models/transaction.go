package models

import (
	"fmt"
	"strings"
	"time"
)

// TransactionType classifies a transaction
type TransactionType string

const (
	TransactionIncome  TransactionType = "INCOME"
	TransactionExpense TransactionType = "EXPENSE"
	TransactionSavings TransactionType = "SAVINGS"
)

// ParseTransactionType accepts any casing of INCOME, EXPENSE or SAVINGS
func ParseTransactionType(s string) (TransactionType, error) {
	switch t := TransactionType(strings.ToUpper(strings.TrimSpace(s))); t {
	case TransactionIncome, TransactionExpense, TransactionSavings:
		return t, nil
	default:
		return "", fmt.Errorf("unknown transaction type %q", s)
	}
}

// Transaction represents a financial transaction. Date is a calendar date;
// the time-of-day part is always midnight.
type Transaction struct {
	ID          int64           `json:"id"`
	UserID      int64           `json:"user_id"`
	Type        TransactionType `json:"type"`
	Amount      float64         `json:"amount"`
	Category    string          `json:"category"`
	Description string          `json:"description"`
	Date        time.Time       `json:"date"`
	CreatedAt   time.Time       `json:"created_at"`
}

// DateOnly truncates t to midnight of its calendar day in t's location
func DateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
