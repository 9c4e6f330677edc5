package storage

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Veraticus/household-ledger/internal/model"
)

func createTestStorage(t *testing.T) (*SQLiteStorage, func()) {
	t.Helper()
	tmpDir := t.TempDir()
	dbPath := filepath.Join(tmpDir, "test.db")

	store, err := NewSQLiteStorage(dbPath)
	if err != nil {
		t.Fatalf("Failed to create storage: %v", err)
	}

	ctx := context.Background()
	if err := store.Migrate(ctx); err != nil {
		_ = store.Close()
		t.Fatalf("Failed to migrate: %v", err)
	}

	return store, func() { _ = store.Close() }
}

func date(s string) time.Time {
	d, err := model.ParseDate(s)
	if err != nil {
		panic(err)
	}
	return d
}

func testExpense(id, day string) model.Transaction {
	return model.Transaction{
		ID:       id,
		Date:     date(day),
		Item:     "Groceries run",
		Category: "Groceries & Food",
		Amount:   decimal.RequireFromString("1250.50"),
		PaidBy:   "Sam",
		Notes:    "weekly shop",
	}
}

func testTemplate(id, day, nextDue string, freq model.Frequency) model.Transaction {
	txn := testExpense(id, day)
	due := date(nextDue)
	txn.Item = "Rent"
	txn.Category = "Monthly Rent"
	txn.Amount = decimal.NewFromInt(15000)
	txn.Recurrence = &model.Recurrence{Frequency: freq, NextDue: &due, Active: true}
	return txn
}

func TestNewSQLiteStorage(t *testing.T) {
	t.Run("creates nested directory", func(t *testing.T) {
		dbPath := filepath.Join(t.TempDir(), "nested", "dir", "ledger.db")
		store, err := NewSQLiteStorage(dbPath)
		require.NoError(t, err)
		defer func() { _ = store.Close() }()

		assert.Equal(t, dbPath, store.Path())
	})

	t.Run("rejects empty path", func(t *testing.T) {
		_, err := NewSQLiteStorage("  ")
		assert.ErrorIs(t, err, ErrEmptyString)
	})
}

func TestMigrate(t *testing.T) {
	store, cleanup := createTestStorage(t)
	defer cleanup()
	ctx := context.Background()

	version, err := store.SchemaVersion(ctx)
	require.NoError(t, err)
	assert.Equal(t, ExpectedSchemaVersion, version)

	// Running again is a no-op.
	require.NoError(t, store.Migrate(ctx))

	for _, table := range []string{"expenses", "income", "category_budgets", "settings"} {
		var count int
		err := store.db.QueryRow(`SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name=?`, table).Scan(&count)
		require.NoError(t, err)
		assert.Equal(t, 1, count, "table %s should exist", table)
	}
}

func TestBeginTx_Rollback(t *testing.T) {
	store, cleanup := createTestStorage(t)
	defer cleanup()
	ctx := context.Background()

	tx, err := store.BeginTx(ctx)
	require.NoError(t, err)

	txn := testExpense("exp-1", "2024-01-05")
	require.NoError(t, tx.InsertExpense(ctx, &txn))

	inside, err := tx.ListExpenses(ctx)
	require.NoError(t, err)
	assert.Len(t, inside, 1)

	require.NoError(t, tx.Rollback())

	after, err := store.ListExpenses(ctx)
	require.NoError(t, err)
	assert.Empty(t, after)
}

func TestBeginTx_Commit(t *testing.T) {
	store, cleanup := createTestStorage(t)
	defer cleanup()
	ctx := context.Background()

	tx, err := store.BeginTx(ctx)
	require.NoError(t, err)

	tmpl := testTemplate("tmpl-1", "2024-01-01", "2024-02-01", model.FrequencyMonthly)
	require.NoError(t, tx.InsertExpense(ctx, &tmpl))
	income := model.Income{ID: "inc-1", Date: date("2024-01-01"), Source: "Salary", Amount: decimal.NewFromInt(80000)}
	require.NoError(t, tx.InsertIncome(ctx, &income))
	budget := model.CategoryBudget{Category: "Monthly Rent", GroupName: "HOUSING", LimitAmount: decimal.NewFromInt(15000)}
	require.NoError(t, tx.InsertBudget(ctx, &budget))
	require.NoError(t, tx.Commit())

	expenses, err := store.ListExpenses(ctx)
	require.NoError(t, err)
	assert.Len(t, expenses, 1)

	records, err := store.ListIncome(ctx)
	require.NoError(t, err)
	assert.Len(t, records, 1)

	budgets, err := store.ListBudgets(ctx)
	require.NoError(t, err)
	assert.Len(t, budgets, 1)
}
