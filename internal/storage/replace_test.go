package storage

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Veraticus/household-ledger/internal/model"
	"github.com/Veraticus/household-ledger/internal/service"
)

func seedLedger(t *testing.T, store *SQLiteStorage) {
	t.Helper()
	ctx := context.Background()

	for i, day := range []string{"2024-01-01", "2024-01-02", "2024-01-03", "2024-01-04", "2024-01-05"} {
		txn := testExpense(model.NewID(), day)
		txn.Notes = string(rune('a' + i))
		require.NoError(t, store.InsertExpense(ctx, &txn))
	}
	income := model.Income{ID: "inc-local", Date: date("2024-01-01"), Source: "Salary", Amount: decimal.NewFromInt(1)}
	require.NoError(t, store.InsertIncome(ctx, &income))
	budget := model.CategoryBudget{Category: "Local", GroupName: "OTHERS", LimitAmount: decimal.NewFromInt(1)}
	require.NoError(t, store.InsertBudget(ctx, &budget))
}

func TestReplaceAll_ReplacesPresentCollections(t *testing.T) {
	store, cleanup := createTestStorage(t)
	defer cleanup()
	ctx := context.Background()
	seedLedger(t, store)

	remote := []model.Transaction{testExpense("remote-1", "2024-02-01"), testExpense("remote-2", "2024-02-02")}
	err := store.ReplaceAll(ctx, service.ReplaceSet{
		Expenses: remote,
		Income:   []model.Income{},
	})
	require.NoError(t, err)

	expenses, err := store.ListExpenses(ctx)
	require.NoError(t, err)
	require.Len(t, expenses, 2)
	assert.ElementsMatch(t, []string{"remote-1", "remote-2"}, []string{expenses[0].ID, expenses[1].ID})

	records, err := store.ListIncome(ctx)
	require.NoError(t, err)
	assert.Empty(t, records, "empty non-nil collection empties the table")

	budgets, err := store.ListBudgets(ctx)
	require.NoError(t, err)
	require.Len(t, budgets, 1, "nil collection is untouched")
	assert.Equal(t, "Local", budgets[0].Category)
}

func TestReplaceAll_IsAtomic(t *testing.T) {
	store, cleanup := createTestStorage(t)
	defer cleanup()
	ctx := context.Background()
	seedLedger(t, store)

	bad := testExpense("", "2024-02-01")
	err := store.ReplaceAll(ctx, service.ReplaceSet{
		Budgets:  []model.CategoryBudget{{Category: "Remote", GroupName: "OTHERS"}},
		Expenses: []model.Transaction{testExpense("ok", "2024-02-01"), bad},
	})
	require.ErrorIs(t, err, ErrInvalidExpense)

	expenses, err := store.ListExpenses(ctx)
	require.NoError(t, err)
	assert.Len(t, expenses, 5)

	budgets, err := store.ListBudgets(ctx)
	require.NoError(t, err)
	require.Len(t, budgets, 1)
	assert.Equal(t, "Local", budgets[0].Category)
}

func TestReplaceAll_WritesSettingsWithCollections(t *testing.T) {
	store, cleanup := createTestStorage(t)
	defer cleanup()
	ctx := context.Background()
	seedLedger(t, store)

	err := store.ReplaceAll(ctx, service.ReplaceSet{
		Income:   []model.Income{},
		Settings: map[string]string{model.SettingLastSynced: "2024-03-01T10:00:00Z"},
	})
	require.NoError(t, err)

	value, ok, err := store.GetSetting(ctx, model.SettingLastSynced)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "2024-03-01T10:00:00Z", value)

	// A failed replace leaves settings alone too.
	err = store.ReplaceAll(ctx, service.ReplaceSet{
		Expenses: []model.Transaction{testExpense("", "2024-02-01")},
		Settings: map[string]string{model.SettingLastSynced: "2024-04-01T10:00:00Z"},
	})
	require.Error(t, err)

	value, _, err = store.GetSetting(ctx, model.SettingLastSynced)
	require.NoError(t, err)
	assert.Equal(t, "2024-03-01T10:00:00Z", value)
}
