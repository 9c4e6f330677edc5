package storage

import (
	"context"
	"database/sql"
	"log/slog"

	"github.com/Veraticus/household-ledger/internal/service"
)

// ReplaceAll replaces the contents of every collection present in set within
// a single transaction. Either all present collections are replaced or none are.
func (s *SQLiteStorage) ReplaceAll(ctx context.Context, set service.ReplaceSet) error {
	if err := validateContext(ctx); err != nil {
		return err
	}

	return s.withTx(ctx, func(tx *sql.Tx) error {
		if set.Expenses != nil {
			if err := deleteAll(ctx, tx, "expenses"); err != nil {
				return err
			}
			for i := range set.Expenses {
				if err := insertExpense(ctx, tx, &set.Expenses[i]); err != nil {
					return err
				}
			}
			slog.Debug("replaced expenses", "count", len(set.Expenses))
		}

		if set.Income != nil {
			if err := deleteAll(ctx, tx, "income"); err != nil {
				return err
			}
			for i := range set.Income {
				if err := insertIncome(ctx, tx, &set.Income[i]); err != nil {
					return err
				}
			}
			slog.Debug("replaced income", "count", len(set.Income))
		}

		if set.Budgets != nil {
			if err := deleteAll(ctx, tx, "category_budgets"); err != nil {
				return err
			}
			for i := range set.Budgets {
				if err := insertBudget(ctx, tx, &set.Budgets[i]); err != nil {
					return err
				}
			}
			slog.Debug("replaced category budgets", "count", len(set.Budgets))
		}

		for key, value := range set.Settings {
			if err := validateString(key, "key"); err != nil {
				return err
			}
			if err := putSetting(ctx, tx, key, value); err != nil {
				return err
			}
		}

		return nil
	})
}
