package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/shopspring/decimal"

	"github.com/Veraticus/household-ledger/internal/model"
)

// ListBudgets returns all category budgets grouped by group name.
func (s *SQLiteStorage) ListBudgets(ctx context.Context) ([]model.CategoryBudget, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	return listBudgets(ctx, s.db)
}

// InsertBudget creates a category budget.
func (s *SQLiteStorage) InsertBudget(ctx context.Context, budget *model.CategoryBudget) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	return insertBudget(ctx, s.db, budget)
}

// UpdateBudget updates the group, limit and icon of an existing category.
func (s *SQLiteStorage) UpdateBudget(ctx context.Context, budget *model.CategoryBudget) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	return updateBudget(ctx, s.db, budget)
}

// DeleteBudget removes a category budget.
func (s *SQLiteStorage) DeleteBudget(ctx context.Context, category string) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateString(category, "category"); err != nil {
		return err
	}
	return deleteBudget(ctx, s.db, category)
}

// DeleteAllBudgets removes every category budget.
func (s *SQLiteStorage) DeleteAllBudgets(ctx context.Context) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	return deleteAll(ctx, s.db, "category_budgets")
}

// SeedDefaultBudgets inserts the default budgets when none exist yet.
// It returns the number of budgets inserted.
func (s *SQLiteStorage) SeedDefaultBudgets(ctx context.Context) (int, error) {
	if err := validateContext(ctx); err != nil {
		return 0, err
	}

	inserted := 0
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		var count int
		if err := tx.QueryRowContext(ctx, `SELECT COUNT(*) FROM category_budgets`).Scan(&count); err != nil {
			return fmt.Errorf("failed to count budgets: %w", err)
		}
		if count > 0 {
			return nil
		}

		for _, budget := range model.DefaultCategoryBudgets() {
			if err := insertBudget(ctx, tx, &budget); err != nil {
				return err
			}
			inserted++
		}
		return nil
	})
	if err != nil {
		return 0, err
	}

	if inserted > 0 {
		slog.Info("seeded default category budgets", "count", inserted)
	}
	return inserted, nil
}

func (t *sqliteTransaction) ListBudgets(ctx context.Context) ([]model.CategoryBudget, error) {
	return listBudgets(ctx, t.tx)
}

func (t *sqliteTransaction) InsertBudget(ctx context.Context, budget *model.CategoryBudget) error {
	return insertBudget(ctx, t.tx, budget)
}

func (t *sqliteTransaction) UpdateBudget(ctx context.Context, budget *model.CategoryBudget) error {
	return updateBudget(ctx, t.tx, budget)
}

func (t *sqliteTransaction) DeleteBudget(ctx context.Context, category string) error {
	if err := validateString(category, "category"); err != nil {
		return err
	}
	return deleteBudget(ctx, t.tx, category)
}

func (t *sqliteTransaction) DeleteAllBudgets(ctx context.Context) error {
	return deleteAll(ctx, t.tx, "category_budgets")
}

func listBudgets(ctx context.Context, q queryable) ([]model.CategoryBudget, error) {
	rows, err := q.QueryContext(ctx, `
		SELECT category, group_name, limit_amount, icon
		FROM category_budgets
		ORDER BY rowid`)
	if err != nil {
		return nil, fmt.Errorf("failed to query budgets: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var budgets []model.CategoryBudget
	for rows.Next() {
		var (
			b     model.CategoryBudget
			limit string
		)
		if err := rows.Scan(&b.Category, &b.GroupName, &limit, &b.Icon); err != nil {
			return nil, fmt.Errorf("failed to scan budget: %w", err)
		}
		if b.LimitAmount, err = decimal.NewFromString(limit); err != nil {
			return nil, fmt.Errorf("budget %s: invalid limit %q: %w", b.Category, limit, err)
		}
		budgets = append(budgets, b)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating budgets: %w", err)
	}

	slog.Debug("retrieved budgets", "count", len(budgets))
	return budgets, nil
}

func insertBudget(ctx context.Context, q queryable, budget *model.CategoryBudget) error {
	if err := validateBudget(budget); err != nil {
		return err
	}

	_, err := q.ExecContext(ctx, `
		INSERT INTO category_budgets (category, group_name, limit_amount, icon)
		VALUES (?, ?, ?, ?)`,
		budget.Category,
		budget.GroupName,
		budget.LimitAmount.String(),
		budget.Icon,
	)
	if err != nil {
		return wrapWriteErr(err, "budget", budget.Category)
	}
	return nil
}

func updateBudget(ctx context.Context, q queryable, budget *model.CategoryBudget) error {
	if err := validateBudget(budget); err != nil {
		return err
	}

	res, err := q.ExecContext(ctx, `
		UPDATE category_budgets SET group_name = ?, limit_amount = ?, icon = ?
		WHERE category = ?`,
		budget.GroupName,
		budget.LimitAmount.String(),
		budget.Icon,
		budget.Category,
	)
	if err != nil {
		return fmt.Errorf("failed to update budget %s: %w", budget.Category, err)
	}
	return requireAffected(res, "budget", budget.Category)
}

func deleteBudget(ctx context.Context, q queryable, category string) error {
	res, err := q.ExecContext(ctx, `DELETE FROM category_budgets WHERE category = ?`, category)
	if err != nil {
		return fmt.Errorf("failed to delete budget %s: %w", category, err)
	}
	return requireAffected(res, "budget", category)
}
