// Package storage provides the data persistence layer for the ledger.
package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/Veraticus/household-ledger/internal/model"
)

// Validation errors.
var (
	ErrNilContext     = errors.New("context cannot be nil")
	ErrEmptyString    = errors.New("string parameter cannot be empty")
	ErrNilParameter   = errors.New("parameter cannot be nil")
	ErrInvalidExpense = errors.New("invalid expense")
	ErrInvalidIncome  = errors.New("invalid income")
	ErrInvalidBudget  = errors.New("invalid category budget")
)

// validateContext ensures the context is not nil.
func validateContext(ctx context.Context) error {
	if ctx == nil {
		return ErrNilContext
	}
	return nil
}

// validateString ensures a string parameter is not empty.
func validateString(s string, paramName string) error {
	if strings.TrimSpace(s) == "" {
		return fmt.Errorf("%w: %s", ErrEmptyString, paramName)
	}
	return nil
}

// validateExpense validates a single expense row.
func validateExpense(txn *model.Transaction) error {
	if txn == nil {
		return fmt.Errorf("%w: expense", ErrNilParameter)
	}
	if strings.TrimSpace(txn.ID) == "" {
		return fmt.Errorf("%w: missing ID", ErrInvalidExpense)
	}
	if txn.Date.IsZero() {
		return fmt.Errorf("%w: missing date", ErrInvalidExpense)
	}
	if strings.TrimSpace(txn.Item) == "" {
		return fmt.Errorf("%w: missing item", ErrInvalidExpense)
	}
	if strings.TrimSpace(txn.Category) == "" {
		return fmt.Errorf("%w: missing category", ErrInvalidExpense)
	}
	if txn.Amount.IsNegative() {
		return fmt.Errorf("%w: amount cannot be negative", ErrInvalidExpense)
	}
	if err := txn.Recurrence.Validate(); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidExpense, err)
	}
	return nil
}

// validateIncome validates a single income row.
func validateIncome(income *model.Income) error {
	if income == nil {
		return fmt.Errorf("%w: income", ErrNilParameter)
	}
	if strings.TrimSpace(income.ID) == "" {
		return fmt.Errorf("%w: missing ID", ErrInvalidIncome)
	}
	if income.Date.IsZero() {
		return fmt.Errorf("%w: missing date", ErrInvalidIncome)
	}
	if strings.TrimSpace(income.Source) == "" {
		return fmt.Errorf("%w: missing source", ErrInvalidIncome)
	}
	if income.Amount.IsNegative() {
		return fmt.Errorf("%w: amount cannot be negative", ErrInvalidIncome)
	}
	return nil
}

// validateBudget validates a category budget.
func validateBudget(budget *model.CategoryBudget) error {
	if budget == nil {
		return fmt.Errorf("%w: budget", ErrNilParameter)
	}
	if strings.TrimSpace(budget.Category) == "" {
		return fmt.Errorf("%w: missing category", ErrInvalidBudget)
	}
	if budget.LimitAmount.IsNegative() {
		return fmt.Errorf("%w: limit cannot be negative", ErrInvalidBudget)
	}
	return nil
}
