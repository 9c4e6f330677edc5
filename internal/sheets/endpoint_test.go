package sheets

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Veraticus/household-ledger/internal/cloudsync"
	"github.com/Veraticus/household-ledger/internal/model"
	"github.com/Veraticus/household-ledger/internal/testutil"
)

func newTestEndpoint(t *testing.T, fake *testutil.FakeSheets, cfg Config) *Endpoint {
	t.Helper()
	return NewEndpointWithService(fake.Service(t), cfg, nil)
}

func testDocument() *cloudsync.Document {
	return &cloudsync.Document{
		Expenses: []cloudsync.ExpenseRow{
			{ID: "e1", Date: "2024-03-02", Item: "Milk", Category: "Groceries & Food", Amount: amount("120.50"), PaidBy: "Sam", Notes: "2L"},
			{
				ID: "t1", Date: "2024-01-01", Item: "Rent", Category: "Monthly Rent", Amount: amount("15000"), PaidBy: "Alex",
				Recurrence: &cloudsync.RecurrenceRow{Frequency: "monthly", NextDue: "2024-04-01", Active: true},
			},
		},
		Income:      []cloudsync.IncomeRow{{ID: "i1", Date: "2024-03-01", Source: "Salary", Amount: amount("80000")}},
		Categories:  []cloudsync.CategoryRow{{Category: "Monthly Rent", Group: "HOUSING", Limit: amount("15000"), Icon: "house"}},
		BudgetMonth: "March 2024",
		LastUpdated: "2024-03-31T20:00:00Z",
	}
}

func TestEndpoint_SendThenFetch(t *testing.T) {
	fake := testutil.NewFakeSheets("sheet-1", TabExpenses)
	e := newTestEndpoint(t, fake, Config{SpreadsheetID: "sheet-1", BatchSize: 1})
	ctx := context.Background()

	sent := testDocument()
	require.NoError(t, e.Send(ctx, sent))

	for _, tab := range Tabs {
		_, ok := fake.Grid(tab)
		assert.True(t, ok, "tab %s should have been added", tab)
	}

	got, err := e.Fetch(ctx)
	require.NoError(t, err)
	assert.Empty(t, got.Skipped)

	want, err := json.Marshal(sent)
	require.NoError(t, err)
	have, err := json.Marshal(got)
	require.NoError(t, err)
	assert.JSONEq(t, string(want), string(have))
}

func TestEndpoint_SendReplacesPreviousRows(t *testing.T) {
	fake := testutil.NewFakeSheets("sheet-1", Tabs...)
	e := newTestEndpoint(t, fake, Config{SpreadsheetID: "sheet-1"})
	ctx := context.Background()

	require.NoError(t, e.Send(ctx, testDocument()))

	smaller := testDocument()
	smaller.Expenses = smaller.Expenses[:1]
	require.NoError(t, e.Send(ctx, smaller))

	grid, _ := fake.Grid(TabExpenses)
	assert.Len(t, grid, 2, "header and one row")
}

func TestEndpoint_FetchMissingTabs(t *testing.T) {
	fake := testutil.NewFakeSheets("sheet-1", TabCategories)
	fake.SetGrid(TabCategories, [][]any{
		{"Category", "Group", "Limit", "Icon"},
		{"Utilities", "HOUSING", 3000.0, ""},
	})
	e := newTestEndpoint(t, fake, Config{SpreadsheetID: "sheet-1"})

	doc, err := e.Fetch(context.Background())
	require.NoError(t, err)
	assert.Nil(t, doc.Expenses)
	assert.Nil(t, doc.Income)
	require.Len(t, doc.Categories, 1)
	assert.Equal(t, "Utilities", doc.Categories[0].Category)
}

func TestEndpoint_CreatesSpreadsheetOnFirstSend(t *testing.T) {
	fake := testutil.NewFakeSheets("")
	e := newTestEndpoint(t, fake, Config{SpreadsheetName: "Household Budget"})
	ctx := context.Background()

	_, err := e.Fetch(ctx)
	require.ErrorIs(t, err, ErrNoSpreadsheet)

	require.NoError(t, e.Send(ctx, testDocument()))
	assert.Equal(t, "created-1", e.SpreadsheetID())

	require.NoError(t, e.Send(ctx, testDocument()))
	assert.Equal(t, 1, fake.Creates())
}

func TestEndpoint_UnknownSpreadsheet(t *testing.T) {
	fake := testutil.NewFakeSheets("sheet-1", Tabs...)
	e := newTestEndpoint(t, fake, Config{SpreadsheetID: "other"})

	_, err := e.Fetch(context.Background())
	assert.Error(t, err)
	assert.Error(t, e.Send(context.Background(), testDocument()))
}

func TestEndpoint_WithReconciler(t *testing.T) {
	tmpl := testutil.Template("tmpl-rent", "2024-01-01", "2024-04-01", model.FrequencyMonthly, "15000")
	local := testutil.SetupTestDBWithOptions(t, testutil.TestDBOptions{
		Fixture: testutil.NewLedger().
			WithExpense(testutil.Expense("e1", "2024-03-02", "Milk", "Groceries & Food", "120.50"), tmpl).
			WithIncome("inc-1", "2024-03-01", "Salary", "80000").
			WithBudget("Monthly Rent", "HOUSING", "15000"),
	})
	remote := testutil.SetupTestDB(t)

	fake := testutil.NewFakeSheets("sheet-1")
	e := newTestEndpoint(t, fake, Config{SpreadsheetID: "sheet-1"})
	ctx := context.Background()

	_, err := cloudsync.NewReconciler(local.Storage, e).Push(ctx)
	require.NoError(t, err)

	report, err := cloudsync.NewReconciler(remote.Storage, e).Pull(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, report.Expenses)
	assert.Equal(t, 1, report.Income)
	assert.Equal(t, 1, report.Categories)

	got, err := remote.Storage.GetExpense(ctx, "tmpl-rent")
	require.NoError(t, err)
	require.True(t, got.IsTemplate())
	assert.Equal(t, "2024-04-01", model.FormatDate(*got.Recurrence.NextDue))
}
