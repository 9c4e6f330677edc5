package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Veraticus/household-ledger/internal/report"
)

func summaryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "summary",
		Short: "Show a month's spending against budget",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			store, err := initStorage(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			if err := runAutoProjection(cmd, store); err != nil {
				return err
			}

			month, err := monthFlag(cmd)
			if err != nil {
				return err
			}

			expenses, err := store.ListExpenses(ctx)
			if err != nil {
				return fmt.Errorf("failed to list expenses: %w", err)
			}
			income, err := store.ListIncome(ctx)
			if err != nil {
				return fmt.Errorf("failed to list income: %w", err)
			}
			budgets, err := store.ListBudgets(ctx)
			if err != nil {
				return fmt.Errorf("failed to list categories: %w", err)
			}

			return report.Render(cmd.OutOrStdout(), report.BuildMonthSummary(month, expenses, income, budgets))
		},
	}

	cmd.Flags().String("month", "", "month to summarize, YYYY-MM (default current month)")

	return cmd
}
