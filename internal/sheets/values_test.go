package sheets

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Veraticus/household-ledger/internal/cloudsync"
)

func amount(s string) *cloudsync.Amount {
	return cloudsync.NewAmount(decimal.RequireFromString(s))
}

func TestDocumentToValues(t *testing.T) {
	doc := &cloudsync.Document{
		Expenses: []cloudsync.ExpenseRow{
			{ID: "e1", Date: "2024-03-02", Item: "Milk", Category: "Groceries & Food", Amount: amount("120.5"), PaidBy: "Sam"},
			{
				ID: "t1", Date: "2024-01-01", Item: "Rent", Category: "Monthly Rent", Amount: amount("15000"), PaidBy: "Alex",
				Recurrence: &cloudsync.RecurrenceRow{Frequency: "monthly", NextDue: "2024-04-01", Active: true},
			},
		},
		Income:      []cloudsync.IncomeRow{},
		Categories:  []cloudsync.CategoryRow{{Category: "Monthly Rent", Group: "HOUSING", Limit: amount("15000")}},
		BudgetMonth: "March 2024",
		LastUpdated: "2024-03-31T20:00:00Z",
	}

	grids := documentToValues(doc)
	require.Len(t, grids, 4)

	expenses := grids[TabExpenses]
	require.Len(t, expenses, 3)
	assert.Equal(t, "ID", expenses[0][0])
	assert.Equal(t, []any{"e1", "2024-03-02", "Milk", "Groceries & Food", 120.5, "Sam", "", "", "", false}, expenses[1])
	assert.Equal(t, []any{"t1", "2024-01-01", "Rent", "Monthly Rent", 15000.0, "Alex", "", "monthly", "2024-04-01", true}, expenses[2])

	assert.Len(t, grids[TabIncome], 1, "header only")
	assert.Equal(t, []any{"Monthly Rent", "HOUSING", 15000.0, ""}, grids[TabCategories][1])
	assert.Equal(t, []any{"March 2024", "2024-03-31T20:00:00Z"}, grids[TabMeta][1])
}

func TestValuesToDocument(t *testing.T) {
	t.Run("missing tabs leave collections nil", func(t *testing.T) {
		doc := valuesToDocument(map[string][][]any{
			TabCategories: {
				{"Category", "Group", "Limit", "Icon"},
				{"Utilities", "HOUSING", 3000.0, ""},
			},
		})
		assert.Nil(t, doc.Expenses)
		assert.Nil(t, doc.Income)
		require.Len(t, doc.Categories, 1)
		assert.Equal(t, "3000", doc.Categories[0].Limit.String())
		assert.Empty(t, doc.Skipped)
	})

	t.Run("empty tab is an empty collection", func(t *testing.T) {
		doc := valuesToDocument(map[string][][]any{TabIncome: nil})
		assert.NotNil(t, doc.Income)
		assert.Empty(t, doc.Income)
	})

	t.Run("rows are parsed and blank rows ignored", func(t *testing.T) {
		doc := valuesToDocument(map[string][][]any{
			TabExpenses: {
				{"ID", "Date", "Item", "Category", "Amount", "Paid By", "Notes", "Frequency", "Next Due", "Active"},
				{"e1", "2024-03-02", "Milk", "Groceries & Food", "1,250.75", "Sam"},
				{"", "", ""},
				{"t1", "2024-01-01", "Rent", "Monthly Rent", 15000.0, "Alex", "", "monthly", "2024-04-01", "TRUE"},
			},
			TabMeta: {
				{"Budget Month", "Last Updated"},
				{"March 2024", "2024-03-31T20:00:00Z"},
			},
		})
		require.Len(t, doc.Expenses, 2)
		assert.Equal(t, "1250.75", doc.Expenses[0].Amount.String())
		assert.Nil(t, doc.Expenses[0].Recurrence)
		require.NotNil(t, doc.Expenses[1].Recurrence)
		assert.Equal(t, cloudsync.RecurrenceRow{Frequency: "monthly", NextDue: "2024-04-01", Active: true}, *doc.Expenses[1].Recurrence)
		assert.Equal(t, "March 2024", doc.BudgetMonth)
	})

	t.Run("wrong header skips the collection", func(t *testing.T) {
		doc := valuesToDocument(map[string][][]any{
			TabIncome: {{"Who", "When"}, {"x", "y"}},
		})
		assert.Nil(t, doc.Income)
		assert.Equal(t, []string{cloudsync.CollectionIncome}, doc.Skipped)
	})

	t.Run("unparseable amount skips the collection", func(t *testing.T) {
		doc := valuesToDocument(map[string][][]any{
			TabCategories: {{"Category", "Group", "Limit", "Icon"}, {"Food", "FOOD", "lots"}},
		})
		assert.Nil(t, doc.Categories)
		assert.Equal(t, []string{cloudsync.CollectionCategories}, doc.Skipped)
	})
}

func TestCell(t *testing.T) {
	row := []any{" text ", 12.0, 0.1, true, nil}
	assert.Equal(t, "text", cell(row, 0))
	assert.Equal(t, "12", cell(row, 1))
	assert.Equal(t, "0.1", cell(row, 2))
	assert.Equal(t, "true", cell(row, 3))
	assert.Equal(t, "", cell(row, 4))
	assert.Equal(t, "", cell(row, 9))
}
