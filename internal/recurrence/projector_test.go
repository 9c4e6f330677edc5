package recurrence

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Veraticus/household-ledger/internal/model"
	"github.com/Veraticus/household-ledger/internal/service"
	"github.com/Veraticus/household-ledger/internal/storage"
	"github.com/Veraticus/household-ledger/internal/testutil"
)

var errBoom = errors.New("boom")

// failingStore fails every InsertExpense after the first failAfter calls.
type failingStore struct {
	*storage.SQLiteStorage
	mu        sync.Mutex
	inserts   int
	failAfter int
}

func (f *failingStore) BeginTx(ctx context.Context) (service.Transaction, error) {
	tx, err := f.SQLiteStorage.BeginTx(ctx)
	if err != nil {
		return nil, err
	}
	return &failingTx{Transaction: tx, parent: f}, nil
}

type failingTx struct {
	service.Transaction
	parent *failingStore
}

func (t *failingTx) InsertExpense(ctx context.Context, txn *model.Transaction) error {
	t.parent.mu.Lock()
	t.parent.inserts++
	fail := t.parent.inserts > t.parent.failAfter
	t.parent.mu.Unlock()
	if fail {
		return errBoom
	}
	return t.Transaction.InsertExpense(ctx, txn)
}

func seedTemplates(t *testing.T, txns ...model.Transaction) *testutil.TestDB {
	t.Helper()
	return testutil.SetupTestDBWithOptions(t, testutil.TestDBOptions{
		Fixture: testutil.NewLedger().WithExpense(txns...),
	})
}

func instancesOf(t *testing.T, store service.Storage, tmpl model.Transaction) []model.Transaction {
	t.Helper()
	all, err := store.ListExpenses(context.Background())
	require.NoError(t, err)

	var out []model.Transaction
	for _, txn := range all {
		if txn.ID != tmpl.ID && txn.Item == tmpl.Item && !txn.IsTemplate() {
			out = append(out, txn)
		}
	}
	return out
}

func dates(txns []model.Transaction) []string {
	out := make([]string, 0, len(txns))
	for _, txn := range txns {
		out = append(out, model.FormatDate(txn.Date))
	}
	return out
}

func TestProjectAt_WeeklyCatchUp(t *testing.T) {
	tmpl := testutil.Template("tmpl-weekly", "2024-03-01", "2024-03-01", model.FrequencyWeekly, "500")
	db := seedTemplates(t, tmpl)
	ctx := context.Background()

	p := NewProjector(db.Storage)
	n, err := p.ProjectAt(ctx, day("2024-03-20"))
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	got := instancesOf(t, db.Storage, tmpl)
	assert.ElementsMatch(t, []string{"2024-03-01", "2024-03-08", "2024-03-15"}, dates(got))

	stored, err := db.Storage.GetExpense(ctx, tmpl.ID)
	require.NoError(t, err)
	require.True(t, stored.IsTemplate())
	assert.Equal(t, "2024-03-22", model.FormatDate(*stored.Recurrence.NextDue))
}

func TestProjectAt_DueTodayIsIncluded(t *testing.T) {
	tmpl := testutil.Template("tmpl-weekly", "2024-03-01", "2024-03-01", model.FrequencyWeekly, "500")
	db := seedTemplates(t, tmpl)
	ctx := context.Background()

	n, err := NewProjector(db.Storage).ProjectAt(ctx, day("2024-03-22"))
	require.NoError(t, err)
	assert.Equal(t, 4, n)

	stored, err := db.Storage.GetExpense(ctx, tmpl.ID)
	require.NoError(t, err)
	assert.Equal(t, "2024-03-29", model.FormatDate(*stored.Recurrence.NextDue))
}

func TestProjectAt_MonthlyClamp(t *testing.T) {
	tmpl := testutil.Template("tmpl-monthly", "2024-01-31", "2024-01-31", model.FrequencyMonthly, "15000")
	db := seedTemplates(t, tmpl)
	ctx := context.Background()

	n, err := NewProjector(db.Storage).ProjectAt(ctx, day("2024-03-01"))
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	got := instancesOf(t, db.Storage, tmpl)
	assert.ElementsMatch(t, []string{"2024-01-31", "2024-02-29"}, dates(got))

	stored, err := db.Storage.GetExpense(ctx, tmpl.ID)
	require.NoError(t, err)
	assert.Equal(t, "2024-03-29", model.FormatDate(*stored.Recurrence.NextDue))
}

func TestProjectAt_Idempotent(t *testing.T) {
	tmpl := testutil.Template("tmpl-monthly", "2024-01-15", "2024-01-15", model.FrequencyMonthly, "15000")
	db := seedTemplates(t, tmpl)
	ctx := context.Background()
	p := NewProjector(db.Storage)

	first, err := p.ProjectAt(ctx, day("2024-04-20"))
	require.NoError(t, err)
	assert.Equal(t, 4, first)
	before := db.ExpenseCount()

	second, err := p.ProjectAt(ctx, day("2024-04-20"))
	require.NoError(t, err)
	assert.Zero(t, second)
	assert.Equal(t, before, db.ExpenseCount())
}

func TestProjectAt_InstancesAreNotTemplates(t *testing.T) {
	tmpl := testutil.Template("tmpl-weekly", "2024-03-01", "2024-03-01", model.FrequencyWeekly, "500")
	tmpl.Notes = "cleaner"
	tmpl.PaidBy = "Alex"
	db := seedTemplates(t, tmpl)
	ctx := context.Background()

	_, err := NewProjector(db.Storage).ProjectAt(ctx, day("2024-03-10"))
	require.NoError(t, err)

	got := instancesOf(t, db.Storage, tmpl)
	require.Len(t, got, 2)
	for _, inst := range got {
		assert.NotEqual(t, tmpl.ID, inst.ID)
		assert.False(t, inst.IsTemplate())
		assert.Nil(t, inst.Recurrence)
		assert.Equal(t, tmpl.Category, inst.Category)
		assert.True(t, tmpl.Amount.Equal(inst.Amount))
		assert.Equal(t, "Alex", inst.PaidBy)
		assert.Equal(t, "cleaner", inst.Notes)
	}

	// A second pass never treats instances as templates.
	n, err := NewProjector(db.Storage).ProjectAt(ctx, day("2024-03-10"))
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestProjectAt_SkipsInactiveAndFutureTemplates(t *testing.T) {
	future := testutil.Template("tmpl-future", "2024-01-01", "2024-06-01", model.FrequencyMonthly, "100")
	paused := testutil.Expense("paused", "2024-01-01", "Gym", "Gym & Fitness", "300")
	paused.Recurrence = &model.Recurrence{Frequency: model.FrequencyMonthly}
	db := seedTemplates(t, future, paused)

	n, err := NewProjector(db.Storage).ProjectAt(context.Background(), day("2024-03-01"))
	require.NoError(t, err)
	assert.Zero(t, n)
	assert.Equal(t, 2, db.ExpenseCount())
}

func TestProjectAt_FailureLeavesTemplateUntouched(t *testing.T) {
	tmpl := testutil.Template("tmpl-weekly", "2024-03-01", "2024-03-01", model.FrequencyWeekly, "500")
	db := seedTemplates(t, tmpl)
	ctx := context.Background()

	failing := &failingStore{SQLiteStorage: db.Storage, failAfter: 1}
	n, err := NewProjector(failing).ProjectAt(ctx, day("2024-03-20"))
	require.Error(t, err)
	assert.ErrorIs(t, err, errBoom)
	assert.Zero(t, n)

	assert.Equal(t, 1, db.ExpenseCount())
	stored, err := db.Storage.GetExpense(ctx, tmpl.ID)
	require.NoError(t, err)
	assert.Equal(t, "2024-03-01", model.FormatDate(*stored.Recurrence.NextDue))

	// A later pass against a healthy store converges on the same result.
	n, err = NewProjector(db.Storage).ProjectAt(ctx, day("2024-03-20"))
	require.NoError(t, err)
	assert.Equal(t, 3, n)
	assert.Equal(t, 4, db.ExpenseCount())
}

func TestProjectAt_CatchUpLimit(t *testing.T) {
	tmpl := testutil.Template("tmpl-weekly", "2020-01-01", "2020-01-01", model.FrequencyWeekly, "500")
	db := seedTemplates(t, tmpl)

	_, err := NewProjector(db.Storage, WithMaxCatchUp(5)).ProjectAt(context.Background(), day("2024-01-01"))
	assert.ErrorIs(t, err, ErrCatchUpLimit)
	assert.Equal(t, 1, db.ExpenseCount())
}

func TestProjectAt_StaleTemplateDoesNotBlockOthers(t *testing.T) {
	gym := testutil.Template("tmpl-gym", "2000-01-01", "2000-01-01", model.FrequencyWeekly, "300")
	gym.Item = "Gym"
	rent := testutil.Template("tmpl-rent", "2024-02-01", "2024-02-01", model.FrequencyMonthly, "15000")
	rent.Item = "Rent"
	db := seedTemplates(t, gym, rent)
	ctx := context.Background()

	n, err := NewProjector(db.Storage, WithMaxCatchUp(100)).ProjectAt(ctx, day("2024-03-01"))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrCatchUpLimit)
	assert.Contains(t, err.Error(), "tmpl-gym")
	assert.Equal(t, 2, n)

	assert.ElementsMatch(t, []string{"2024-02-01", "2024-03-01"}, dates(instancesOf(t, db.Storage, rent)))
	assert.Empty(t, instancesOf(t, db.Storage, gym))

	stored, err := db.Storage.GetExpense(ctx, rent.ID)
	require.NoError(t, err)
	assert.Equal(t, "2024-04-01", model.FormatDate(*stored.Recurrence.NextDue))

	stored, err = db.Storage.GetExpense(ctx, gym.ID)
	require.NoError(t, err)
	assert.Equal(t, "2000-01-01", model.FormatDate(*stored.Recurrence.NextDue))
}

func TestProjectAt_JoinsEveryFailure(t *testing.T) {
	a := testutil.Template("tmpl-a", "2024-03-01", "2024-03-01", model.FrequencyWeekly, "1")
	b := testutil.Template("tmpl-b", "2024-03-01", "2024-03-02", model.FrequencyWeekly, "1")
	b.Item = "Water"
	db := seedTemplates(t, a, b)

	var calls int
	failing := &failingStore{SQLiteStorage: db.Storage}
	n, err := NewProjector(failing, WithProgress(func(int, int) { calls++ })).
		ProjectAt(context.Background(), day("2024-03-05"))
	require.Error(t, err)
	assert.ErrorIs(t, err, errBoom)
	assert.Contains(t, err.Error(), "tmpl-a")
	assert.Contains(t, err.Error(), "tmpl-b")
	assert.Zero(t, n)
	assert.Equal(t, 2, calls)
}

func TestProjectAt_ConcurrentPassesDoNotDuplicate(t *testing.T) {
	weekly := testutil.Template("tmpl-weekly", "2024-01-01", "2024-01-01", model.FrequencyWeekly, "500")
	monthly := testutil.Template("tmpl-monthly", "2024-01-10", "2024-01-10", model.FrequencyMonthly, "15000")
	monthly.Item = "Internet"
	db := seedTemplates(t, weekly, monthly)
	ctx := context.Background()
	today := day("2024-03-31")

	var wg sync.WaitGroup
	totals := make([]int, 4)
	errs := make([]error, 4)
	for i := range totals {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			totals[i], errs[i] = NewProjector(db.Storage).ProjectAt(ctx, today)
		}(i)
	}
	wg.Wait()

	sum := 0
	for i := range totals {
		require.NoError(t, errs[i])
		sum += totals[i]
	}

	// 13 weekly occurrences from Jan 1 through Mar 25, 3 monthly on the 10th.
	assert.Equal(t, 16, sum)
	assert.Len(t, instancesOf(t, db.Storage, weekly), 13)
	assert.Len(t, instancesOf(t, db.Storage, monthly), 3)
}

func TestProject_UsesClockInLocation(t *testing.T) {
	tmpl := testutil.Template("tmpl-weekly", "2024-03-01", "2024-03-08", model.FrequencyWeekly, "500")
	db := seedTemplates(t, tmpl)

	dhaka, err := time.LoadLocation("Asia/Dhaka")
	require.NoError(t, err)

	// 20:00 UTC on the 7th is already the 8th in Dhaka.
	clock := func() time.Time { return time.Date(2024, 3, 7, 20, 0, 0, 0, time.UTC) }

	n, err := NewProjector(db.Storage, WithClock(clock)).Project(context.Background())
	require.NoError(t, err)
	assert.Zero(t, n)

	n, err = NewProjector(db.Storage, WithClock(clock), WithLocation(dhaka)).Project(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestProjectAt_ReportsProgress(t *testing.T) {
	a := testutil.Template("a", "2024-03-01", "2024-03-01", model.FrequencyWeekly, "1")
	b := testutil.Template("b", "2024-03-01", "2024-03-02", model.FrequencyWeekly, "1")
	b.Item = "Water"
	db := seedTemplates(t, a, b)

	var calls [][2]int
	p := NewProjector(db.Storage, WithProgress(func(done, total int) {
		calls = append(calls, [2]int{done, total})
	}))
	_, err := p.ProjectAt(context.Background(), day("2024-03-05"))
	require.NoError(t, err)
	assert.Equal(t, [][2]int{{1, 2}, {2, 2}}, calls)
}
