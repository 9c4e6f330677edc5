package testutil

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/Veraticus/household-ledger/internal/model"
	"github.com/Veraticus/household-ledger/internal/service"
)

// Date parses a YYYY-MM-DD literal and panics on malformed input.
func Date(s string) time.Time {
	d, err := model.ParseDate(s)
	if err != nil {
		panic(err)
	}
	return d
}

// Expense returns a plain, non-recurring expense.
func Expense(id, day, item, category, amount string) model.Transaction {
	return model.Transaction{
		ID:       id,
		Date:     Date(day),
		Item:     item,
		Category: category,
		Amount:   decimal.RequireFromString(amount),
		PaidBy:   "Sam",
	}
}

// Template returns an active recurring template.
func Template(id, day, nextDue string, freq model.Frequency, amount string) model.Transaction {
	txn := Expense(id, day, "Rent", "Monthly Rent", amount)
	due := Date(nextDue)
	txn.Recurrence = &model.Recurrence{Frequency: freq, NextDue: &due, Active: true}
	return txn
}

// Ledger is a fluent builder for seeding a store with fixture records.
//
// Example:
//
//	db := testutil.SetupTestDBWithOptions(t, testutil.TestDBOptions{
//		Fixture: testutil.NewLedger().
//			WithExpense(testutil.Expense("e1", "2024-01-05", "Milk", "Groceries & Food", "120")).
//			WithBudget("Groceries & Food", "FOOD", "8000"),
//	})
type Ledger struct {
	Expenses []model.Transaction
	Income   []model.Income
	Budgets  []model.CategoryBudget
}

// NewLedger returns an empty fixture.
func NewLedger() *Ledger {
	return &Ledger{}
}

// WithExpense adds expenses or templates.
func (l *Ledger) WithExpense(txns ...model.Transaction) *Ledger {
	l.Expenses = append(l.Expenses, txns...)
	return l
}

// WithIncome adds an income record.
func (l *Ledger) WithIncome(id, day, source, amount string) *Ledger {
	l.Income = append(l.Income, model.Income{
		ID:     id,
		Date:   Date(day),
		Source: source,
		Amount: decimal.RequireFromString(amount),
	})
	return l
}

// WithBudget adds a category budget.
func (l *Ledger) WithBudget(category, group, limit string) *Ledger {
	l.Budgets = append(l.Budgets, model.CategoryBudget{
		Category:    category,
		GroupName:   group,
		LimitAmount: decimal.RequireFromString(limit),
	})
	return l
}

// Insert writes every fixture record into store.
func (l *Ledger) Insert(ctx context.Context, store service.Collections) error {
	for i := range l.Budgets {
		if err := store.InsertBudget(ctx, &l.Budgets[i]); err != nil {
			return fmt.Errorf("budget %s: %w", l.Budgets[i].Category, err)
		}
	}
	for i := range l.Expenses {
		if err := store.InsertExpense(ctx, &l.Expenses[i]); err != nil {
			return fmt.Errorf("expense %s: %w", l.Expenses[i].ID, err)
		}
	}
	for i := range l.Income {
		if err := store.InsertIncome(ctx, &l.Income[i]); err != nil {
			return fmt.Errorf("income %s: %w", l.Income[i].ID, err)
		}
	}
	return nil
}
