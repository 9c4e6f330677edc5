// Package model defines the core records of the household ledger.
package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Transaction is a single expense row. A row whose Recurrence is active is a
// template rather than an event.
type Transaction struct {
	Date       time.Time // Calendar date at 00:00 UTC
	Recurrence *Recurrence
	ID         string
	Item       string
	Category   string // CategoryBudget.Category
	PaidBy     string // Household member
	Notes      string
	Amount     decimal.Decimal
}

// IsTemplate reports whether the transaction is an active recurring template.
func (t *Transaction) IsTemplate() bool {
	return t.Recurrence != nil && t.Recurrence.Active
}

// Instance builds the concrete transaction generated by a template for the
// given occurrence date. Instances are plain expenses with no recurrence.
func (t *Transaction) Instance(date time.Time) Transaction {
	return Transaction{
		ID:       NewID(),
		Date:     date,
		Item:     t.Item,
		Category: t.Category,
		Amount:   t.Amount,
		PaidBy:   t.PaidBy,
		Notes:    t.Notes,
	}
}

// NewID returns a fresh opaque identifier.
func NewID() string {
	return uuid.NewString()
}
