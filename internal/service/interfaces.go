// Package service defines the contracts shared by the ledger's components.
package service

import (
	"context"
	"time"

	"github.com/Veraticus/household-ledger/internal/model"
)

// ExpenseStore is the keyed expense collection.
type ExpenseStore interface {
	ListExpenses(ctx context.Context) ([]model.Transaction, error)
	ListDueTemplates(ctx context.Context, today time.Time) ([]model.Transaction, error)
	GetExpense(ctx context.Context, id string) (*model.Transaction, error)
	InsertExpense(ctx context.Context, txn *model.Transaction) error
	UpdateExpense(ctx context.Context, txn *model.Transaction) error
	DeleteExpense(ctx context.Context, id string) error
	DeleteAllExpenses(ctx context.Context) error
}

// IncomeStore is the keyed income collection.
type IncomeStore interface {
	ListIncome(ctx context.Context) ([]model.Income, error)
	InsertIncome(ctx context.Context, income *model.Income) error
	UpdateIncome(ctx context.Context, income *model.Income) error
	DeleteIncome(ctx context.Context, id string) error
	DeleteAllIncome(ctx context.Context) error
}

// BudgetStore is the category budget collection, keyed by category name.
type BudgetStore interface {
	ListBudgets(ctx context.Context) ([]model.CategoryBudget, error)
	InsertBudget(ctx context.Context, budget *model.CategoryBudget) error
	UpdateBudget(ctx context.Context, budget *model.CategoryBudget) error
	DeleteBudget(ctx context.Context, category string) error
	DeleteAllBudgets(ctx context.Context) error
}

// SettingsStore is the flat key/value settings table.
type SettingsStore interface {
	GetSetting(ctx context.Context, key string) (string, bool, error)
	PutSetting(ctx context.Context, key, value string) error
}

// Collections groups the three ledger collections.
type Collections interface {
	ExpenseStore
	IncomeStore
	BudgetStore
}

// ReplaceSet holds replacement contents for a full-collection replace.
// A nil slice leaves that collection untouched; an empty non-nil slice empties it.
// Settings are upserted in the same transaction.
type ReplaceSet struct {
	Settings map[string]string
	Expenses []model.Transaction
	Income   []model.Income
	Budgets  []model.CategoryBudget
}

// Storage defines the contract for our persistence layer.
type Storage interface {
	Collections
	SettingsStore

	// ReplaceAll atomically replaces every collection present in set.
	ReplaceAll(ctx context.Context, set ReplaceSet) error
	SeedDefaultBudgets(ctx context.Context) (int, error)

	// Database management
	Migrate(ctx context.Context) error
	BeginTx(ctx context.Context) (Transaction, error)
	Close() error
}

// Transaction represents a database transaction.
type Transaction interface {
	Collections
	Commit() error
	Rollback() error
}
