package storage

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Veraticus/household-ledger/internal/common"
	"github.com/Veraticus/household-ledger/internal/model"
)

func TestExpenses_CRUD(t *testing.T) {
	store, cleanup := createTestStorage(t)
	defer cleanup()
	ctx := context.Background()

	older := testExpense("exp-1", "2024-01-05")
	newer := testExpense("exp-2", "2024-01-20")
	require.NoError(t, store.InsertExpense(ctx, &older))
	require.NoError(t, store.InsertExpense(ctx, &newer))

	expenses, err := store.ListExpenses(ctx)
	require.NoError(t, err)
	require.Len(t, expenses, 2)
	assert.Equal(t, "exp-2", expenses[0].ID, "newest first")
	assert.Equal(t, "exp-1", expenses[1].ID)
	assert.True(t, decimal.RequireFromString("1250.5").Equal(expenses[1].Amount))
	assert.Nil(t, expenses[1].Recurrence)

	older.Item = "Farmers market"
	older.Amount = decimal.NewFromInt(900)
	require.NoError(t, store.UpdateExpense(ctx, &older))

	got, err := store.GetExpense(ctx, "exp-1")
	require.NoError(t, err)
	assert.Equal(t, "Farmers market", got.Item)
	assert.True(t, decimal.NewFromInt(900).Equal(got.Amount))
	assert.Equal(t, date("2024-01-05"), got.Date)

	require.NoError(t, store.DeleteExpense(ctx, "exp-1"))
	_, err = store.GetExpense(ctx, "exp-1")
	assert.ErrorIs(t, err, common.ErrNotFound)

	require.NoError(t, store.DeleteAllExpenses(ctx))
	expenses, err = store.ListExpenses(ctx)
	require.NoError(t, err)
	assert.Empty(t, expenses)
}

func TestExpenses_RecurrenceRoundTrip(t *testing.T) {
	store, cleanup := createTestStorage(t)
	defer cleanup()
	ctx := context.Background()

	tmpl := testTemplate("tmpl-1", "2024-01-31", "2024-02-29", model.FrequencyMonthly)
	inst := tmpl.Instance(date("2024-01-31"))
	stopped := testExpense("stopped-1", "2023-06-01")
	stopped.Recurrence = &model.Recurrence{Frequency: model.FrequencyWeekly}
	require.NoError(t, store.InsertExpense(ctx, &tmpl))
	require.NoError(t, store.InsertExpense(ctx, &inst))
	require.NoError(t, store.InsertExpense(ctx, &stopped))

	got, err := store.GetExpense(ctx, "tmpl-1")
	require.NoError(t, err)
	require.NotNil(t, got.Recurrence)
	assert.True(t, got.Recurrence.Active)
	assert.Equal(t, model.FrequencyMonthly, got.Recurrence.Frequency)
	require.NotNil(t, got.Recurrence.NextDue)
	assert.Equal(t, date("2024-02-29"), *got.Recurrence.NextDue)

	gotInst, err := store.GetExpense(ctx, inst.ID)
	require.NoError(t, err)
	assert.Nil(t, gotInst.Recurrence)

	gotStopped, err := store.GetExpense(ctx, "stopped-1")
	require.NoError(t, err)
	require.NotNil(t, gotStopped.Recurrence)
	assert.False(t, gotStopped.Recurrence.Active)
	assert.Nil(t, gotStopped.Recurrence.NextDue)
	assert.Equal(t, model.FrequencyWeekly, gotStopped.Recurrence.Frequency)
}

func TestListDueTemplates(t *testing.T) {
	store, cleanup := createTestStorage(t)
	defer cleanup()
	ctx := context.Background()

	due := testTemplate("due", "2024-01-01", "2024-03-01", model.FrequencyMonthly)
	dueToday := testTemplate("due-today", "2024-01-01", "2024-03-10", model.FrequencyWeekly)
	future := testTemplate("future", "2024-01-01", "2024-03-11", model.FrequencyWeekly)
	plain := testExpense("plain", "2024-01-01")
	for _, txn := range []model.Transaction{due, dueToday, future, plain} {
		require.NoError(t, store.InsertExpense(ctx, &txn))
	}

	templates, err := store.ListDueTemplates(ctx, date("2024-03-10"))
	require.NoError(t, err)
	require.Len(t, templates, 2)
	assert.Equal(t, "due", templates[0].ID)
	assert.Equal(t, "due-today", templates[1].ID)
}

func TestExpenses_Errors(t *testing.T) {
	store, cleanup := createTestStorage(t)
	defer cleanup()
	ctx := context.Background()

	txn := testExpense("exp-1", "2024-01-05")
	require.NoError(t, store.InsertExpense(ctx, &txn))

	t.Run("duplicate id", func(t *testing.T) {
		err := store.InsertExpense(ctx, &txn)
		assert.ErrorIs(t, err, common.ErrDuplicateEntry)
	})

	t.Run("update missing", func(t *testing.T) {
		missing := testExpense("nope", "2024-01-05")
		err := store.UpdateExpense(ctx, &missing)
		assert.ErrorIs(t, err, common.ErrNotFound)
	})

	t.Run("delete missing", func(t *testing.T) {
		err := store.DeleteExpense(ctx, "nope")
		assert.ErrorIs(t, err, common.ErrNotFound)
	})

	t.Run("negative amount", func(t *testing.T) {
		bad := testExpense("neg", "2024-01-05")
		bad.Amount = decimal.NewFromInt(-1)
		err := store.InsertExpense(ctx, &bad)
		assert.ErrorIs(t, err, ErrInvalidExpense)
	})

	t.Run("active recurrence without next due", func(t *testing.T) {
		bad := testExpense("rec", "2024-01-05")
		bad.Recurrence = &model.Recurrence{Frequency: model.FrequencyWeekly, Active: true}
		err := store.InsertExpense(ctx, &bad)
		assert.ErrorIs(t, err, ErrInvalidExpense)
	})
}
