package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/Veraticus/household-ledger/internal/common"
	"github.com/Veraticus/household-ledger/internal/model"
)

const expenseColumns = `id, date, item, category, amount, paid_by, notes,
	recurrence_frequency, recurrence_next_due, recurrence_active`

// ListExpenses returns every expense, newest first.
func (s *SQLiteStorage) ListExpenses(ctx context.Context) ([]model.Transaction, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	return listExpenses(ctx, s.db)
}

// ListDueTemplates returns active templates whose next due date is on or before today.
func (s *SQLiteStorage) ListDueTemplates(ctx context.Context, today time.Time) ([]model.Transaction, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	return listDueTemplates(ctx, s.db, today)
}

// GetExpense returns a single expense by ID.
func (s *SQLiteStorage) GetExpense(ctx context.Context, id string) (*model.Transaction, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(id, "id"); err != nil {
		return nil, err
	}
	return getExpense(ctx, s.db, id)
}

// InsertExpense inserts a new expense row.
func (s *SQLiteStorage) InsertExpense(ctx context.Context, txn *model.Transaction) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	return insertExpense(ctx, s.db, txn)
}

// UpdateExpense replaces the mutable fields of an existing expense.
func (s *SQLiteStorage) UpdateExpense(ctx context.Context, txn *model.Transaction) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	return updateExpense(ctx, s.db, txn)
}

// DeleteExpense removes an expense by ID.
func (s *SQLiteStorage) DeleteExpense(ctx context.Context, id string) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateString(id, "id"); err != nil {
		return err
	}
	return deleteExpense(ctx, s.db, id)
}

// DeleteAllExpenses removes every expense.
func (s *SQLiteStorage) DeleteAllExpenses(ctx context.Context) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	return deleteAll(ctx, s.db, "expenses")
}

func (t *sqliteTransaction) ListExpenses(ctx context.Context) ([]model.Transaction, error) {
	return listExpenses(ctx, t.tx)
}

func (t *sqliteTransaction) ListDueTemplates(ctx context.Context, today time.Time) ([]model.Transaction, error) {
	return listDueTemplates(ctx, t.tx, today)
}

func (t *sqliteTransaction) GetExpense(ctx context.Context, id string) (*model.Transaction, error) {
	if err := validateString(id, "id"); err != nil {
		return nil, err
	}
	return getExpense(ctx, t.tx, id)
}

func (t *sqliteTransaction) InsertExpense(ctx context.Context, txn *model.Transaction) error {
	return insertExpense(ctx, t.tx, txn)
}

func (t *sqliteTransaction) UpdateExpense(ctx context.Context, txn *model.Transaction) error {
	return updateExpense(ctx, t.tx, txn)
}

func (t *sqliteTransaction) DeleteExpense(ctx context.Context, id string) error {
	if err := validateString(id, "id"); err != nil {
		return err
	}
	return deleteExpense(ctx, t.tx, id)
}

func (t *sqliteTransaction) DeleteAllExpenses(ctx context.Context) error {
	return deleteAll(ctx, t.tx, "expenses")
}

func listExpenses(ctx context.Context, q queryable) ([]model.Transaction, error) {
	query := `SELECT ` + expenseColumns + ` FROM expenses ORDER BY date DESC, created_at DESC`
	return queryExpenses(ctx, q, query)
}

func listDueTemplates(ctx context.Context, q queryable, today time.Time) ([]model.Transaction, error) {
	query := `SELECT ` + expenseColumns + ` FROM expenses
		WHERE recurrence_active = 1 AND recurrence_next_due <= ?
		ORDER BY recurrence_next_due ASC`
	return queryExpenses(ctx, q, query, model.FormatDate(today))
}

func getExpense(ctx context.Context, q queryable, id string) (*model.Transaction, error) {
	row := q.QueryRowContext(ctx, `SELECT `+expenseColumns+` FROM expenses WHERE id = ?`, id)
	txn, err := scanExpense(row)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("expense %s: %w", id, common.ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return txn, nil
}

func insertExpense(ctx context.Context, q queryable, txn *model.Transaction) error {
	if err := validateExpense(txn); err != nil {
		return err
	}

	freq, nextDue, active := recurrenceColumns(txn.Recurrence)
	_, err := q.ExecContext(ctx, `
		INSERT INTO expenses (`+expenseColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		txn.ID,
		model.FormatDate(txn.Date),
		txn.Item,
		txn.Category,
		txn.Amount.String(),
		txn.PaidBy,
		txn.Notes,
		freq,
		nextDue,
		active,
	)
	if err != nil {
		return wrapWriteErr(err, "expense", txn.ID)
	}
	return nil
}

func updateExpense(ctx context.Context, q queryable, txn *model.Transaction) error {
	if err := validateExpense(txn); err != nil {
		return err
	}

	freq, nextDue, active := recurrenceColumns(txn.Recurrence)
	res, err := q.ExecContext(ctx, `
		UPDATE expenses
		SET date = ?, item = ?, category = ?, amount = ?, paid_by = ?, notes = ?,
			recurrence_frequency = ?, recurrence_next_due = ?, recurrence_active = ?
		WHERE id = ?`,
		model.FormatDate(txn.Date),
		txn.Item,
		txn.Category,
		txn.Amount.String(),
		txn.PaidBy,
		txn.Notes,
		freq,
		nextDue,
		active,
		txn.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update expense %s: %w", txn.ID, err)
	}
	return requireAffected(res, "expense", txn.ID)
}

func deleteExpense(ctx context.Context, q queryable, id string) error {
	res, err := q.ExecContext(ctx, `DELETE FROM expenses WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete expense %s: %w", id, err)
	}
	return requireAffected(res, "expense", id)
}

// deleteAll empties one of the ledger tables. table is never user input.
func deleteAll(ctx context.Context, q queryable, table string) error {
	if _, err := q.ExecContext(ctx, `DELETE FROM `+table); err != nil {
		return fmt.Errorf("failed to clear %s: %w", table, err)
	}
	return nil
}

func recurrenceColumns(r *model.Recurrence) (sql.NullString, sql.NullString, bool) {
	if r == nil {
		return sql.NullString{}, sql.NullString{}, false
	}
	freq := sql.NullString{String: string(r.Frequency), Valid: r.Frequency != ""}
	var nextDue sql.NullString
	if r.NextDue != nil {
		nextDue = sql.NullString{String: model.FormatDate(*r.NextDue), Valid: true}
	}
	return freq, nextDue, r.Active
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanExpense(row rowScanner) (*model.Transaction, error) {
	var (
		txn       model.Transaction
		date      string
		amount    string
		freq      sql.NullString
		nextDue   sql.NullString
		recActive bool
	)
	if err := row.Scan(&txn.ID, &date, &txn.Item, &txn.Category, &amount, &txn.PaidBy, &txn.Notes,
		&freq, &nextDue, &recActive); err != nil {
		return nil, err
	}

	var err error
	if txn.Date, err = model.ParseDate(date); err != nil {
		return nil, fmt.Errorf("expense %s: %w", txn.ID, err)
	}
	if txn.Amount, err = decimal.NewFromString(amount); err != nil {
		return nil, fmt.Errorf("expense %s: invalid amount %q: %w", txn.ID, amount, err)
	}

	if freq.Valid || recActive {
		rec := &model.Recurrence{Frequency: model.Frequency(freq.String), Active: recActive}
		if nextDue.Valid {
			d, err := model.ParseDate(nextDue.String)
			if err != nil {
				return nil, fmt.Errorf("expense %s next due: %w", txn.ID, err)
			}
			rec.NextDue = &d
		}
		txn.Recurrence = rec
	}

	return &txn, nil
}

func queryExpenses(ctx context.Context, q queryable, query string, args ...any) ([]model.Transaction, error) {
	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query expenses: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var expenses []model.Transaction
	for rows.Next() {
		txn, err := scanExpense(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan expense: %w", err)
		}
		expenses = append(expenses, *txn)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating expenses: %w", err)
	}
	return expenses, nil
}
