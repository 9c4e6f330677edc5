package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Veraticus/household-ledger/internal/cli"
	"github.com/Veraticus/household-ledger/internal/storage"
)

func resetCmd() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "reset",
		Short: "Delete every expense and income record",
		Long: `Reset deletes all expenses (recurring templates included) and all income.
Categories and settings are kept. The shared copy is not touched until the
next push.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			store, err := initStorage(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			expenses, err := store.ListExpenses(ctx)
			if err != nil {
				return fmt.Errorf("failed to count expenses: %w", err)
			}
			income, err := store.ListIncome(ctx)
			if err != nil {
				return fmt.Errorf("failed to count income: %w", err)
			}

			if len(expenses) == 0 && len(income) == 0 {
				printLine(cmd, "No expenses or income found. Nothing to reset.")
				return nil
			}

			if !force {
				printf(cmd, "This will delete %d expenses and %d income records.\n", len(expenses), len(income))
				ok, err := confirm(cmd, "Are you sure you want to continue?")
				if err != nil {
					return err
				}
				if !ok {
					printLine(cmd, "Reset canceled.")
					return nil
				}
			}

			if err := clearLedger(cmd, store); err != nil {
				return err
			}

			printLine(cmd, cli.FormatSuccess(fmt.Sprintf("Deleted %d expenses and %d income records", len(expenses), len(income))))
			return nil
		},
	}

	cmd.Flags().BoolVarP(&force, "force", "f", false, "skip the confirmation prompt")

	return cmd
}

func clearLedger(cmd *cobra.Command, store *storage.SQLiteStorage) error {
	ctx := cmd.Context()

	tx, err := store.BeginTx(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if err := tx.DeleteAllExpenses(ctx); err != nil {
		return fmt.Errorf("failed to delete expenses: %w", err)
	}
	if err := tx.DeleteAllIncome(ctx); err != nil {
		return fmt.Errorf("failed to delete income: %w", err)
	}
	return tx.Commit()
}
