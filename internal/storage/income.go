package storage

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/Veraticus/household-ledger/internal/model"
)

// ListIncome returns every income record, newest first.
func (s *SQLiteStorage) ListIncome(ctx context.Context) ([]model.Income, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	return listIncome(ctx, s.db)
}

// InsertIncome inserts a new income record.
func (s *SQLiteStorage) InsertIncome(ctx context.Context, income *model.Income) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	return insertIncome(ctx, s.db, income)
}

// UpdateIncome replaces the mutable fields of an existing income record.
func (s *SQLiteStorage) UpdateIncome(ctx context.Context, income *model.Income) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	return updateIncome(ctx, s.db, income)
}

// DeleteIncome removes an income record by ID.
func (s *SQLiteStorage) DeleteIncome(ctx context.Context, id string) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateString(id, "id"); err != nil {
		return err
	}
	return deleteIncome(ctx, s.db, id)
}

// DeleteAllIncome removes every income record.
func (s *SQLiteStorage) DeleteAllIncome(ctx context.Context) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	return deleteAll(ctx, s.db, "income")
}

func (t *sqliteTransaction) ListIncome(ctx context.Context) ([]model.Income, error) {
	return listIncome(ctx, t.tx)
}

func (t *sqliteTransaction) InsertIncome(ctx context.Context, income *model.Income) error {
	return insertIncome(ctx, t.tx, income)
}

func (t *sqliteTransaction) UpdateIncome(ctx context.Context, income *model.Income) error {
	return updateIncome(ctx, t.tx, income)
}

func (t *sqliteTransaction) DeleteIncome(ctx context.Context, id string) error {
	if err := validateString(id, "id"); err != nil {
		return err
	}
	return deleteIncome(ctx, t.tx, id)
}

func (t *sqliteTransaction) DeleteAllIncome(ctx context.Context) error {
	return deleteAll(ctx, t.tx, "income")
}

func listIncome(ctx context.Context, q queryable) ([]model.Income, error) {
	rows, err := q.QueryContext(ctx, `
		SELECT id, date, source, amount, notes
		FROM income
		ORDER BY date DESC, created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("failed to query income: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var records []model.Income
	for rows.Next() {
		var (
			rec    model.Income
			date   string
			amount string
		)
		if err := rows.Scan(&rec.ID, &date, &rec.Source, &amount, &rec.Notes); err != nil {
			return nil, fmt.Errorf("failed to scan income: %w", err)
		}
		if rec.Date, err = model.ParseDate(date); err != nil {
			return nil, fmt.Errorf("income %s: %w", rec.ID, err)
		}
		if rec.Amount, err = decimal.NewFromString(amount); err != nil {
			return nil, fmt.Errorf("income %s: invalid amount %q: %w", rec.ID, amount, err)
		}
		records = append(records, rec)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating income: %w", err)
	}
	return records, nil
}

func insertIncome(ctx context.Context, q queryable, income *model.Income) error {
	if err := validateIncome(income); err != nil {
		return err
	}

	_, err := q.ExecContext(ctx, `
		INSERT INTO income (id, date, source, amount, notes)
		VALUES (?, ?, ?, ?, ?)`,
		income.ID,
		model.FormatDate(income.Date),
		income.Source,
		income.Amount.String(),
		income.Notes,
	)
	if err != nil {
		return wrapWriteErr(err, "income", income.ID)
	}
	return nil
}

func updateIncome(ctx context.Context, q queryable, income *model.Income) error {
	if err := validateIncome(income); err != nil {
		return err
	}

	res, err := q.ExecContext(ctx, `
		UPDATE income SET date = ?, source = ?, amount = ?, notes = ?
		WHERE id = ?`,
		model.FormatDate(income.Date),
		income.Source,
		income.Amount.String(),
		income.Notes,
		income.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update income %s: %w", income.ID, err)
	}
	return requireAffected(res, "income", income.ID)
}

func deleteIncome(ctx context.Context, q queryable, id string) error {
	res, err := q.ExecContext(ctx, `DELETE FROM income WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete income %s: %w", id, err)
	}
	return requireAffected(res, "income", id)
}
