package main

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/Veraticus/household-ledger/internal/cli"
	"github.com/Veraticus/household-ledger/internal/common"
	"github.com/Veraticus/household-ledger/internal/model"
	"github.com/Veraticus/household-ledger/internal/report"
)

func incomeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "income",
		Short: "Record and manage income",
	}

	cmd.AddCommand(addIncomeCmd())
	cmd.AddCommand(listIncomeCmd())
	cmd.AddCommand(deleteIncomeCmd())

	return cmd
}

func addIncomeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "add",
		Short:   "Record income",
		Example: `  ledger income add --source Salary --amount 85000`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			flags := cmd.Flags()

			store, err := initStorage(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			date, err := dateFlag(cmd, "date")
			if err != nil {
				return err
			}
			raw, _ := flags.GetString("amount")
			amount, err := parseAmount(raw)
			if err != nil {
				return err
			}

			income := model.Income{
				ID:     model.NewID(),
				Date:   date,
				Amount: amount,
			}
			income.Source, _ = flags.GetString("source")
			income.Notes, _ = flags.GetString("notes")

			if err := store.InsertIncome(ctx, &income); err != nil {
				return fmt.Errorf("failed to save income: %w", err)
			}
			printLine(cmd, cli.FormatSuccess(fmt.Sprintf("Recorded %s %s (%s)", income.Source, report.FormatMoney(income.Amount), income.ID)))
			return nil
		},
	}

	cmd.Flags().String("date", "", "date received, YYYY-MM-DD (default today)")
	cmd.Flags().String("source", "", "where the money came from")
	cmd.Flags().String("amount", "", "amount received")
	cmd.Flags().String("notes", "", "free-form notes")
	_ = cmd.MarkFlagRequired("source")
	_ = cmd.MarkFlagRequired("amount")

	return cmd
}

func listIncomeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List income for a month",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			store, err := initStorage(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			month, err := monthFlag(cmd)
			if err != nil {
				return err
			}
			all, _ := cmd.Flags().GetBool("all")

			incomes, err := store.ListIncome(ctx)
			if err != nil {
				return fmt.Errorf("failed to list income: %w", err)
			}

			var rows []model.Income
			for _, in := range incomes {
				if all || report.InMonth(in.Date, month) {
					rows = append(rows, in)
				}
			}
			if len(rows) == 0 {
				printLine(cmd, cli.InfoStyle.Render("No income found. Use 'ledger income add' to record some."))
				return nil
			}
			sort.SliceStable(rows, func(i, j int) bool {
				return rows[i].Date.After(rows[j].Date)
			})

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\n",
				cli.HeaderStyle.Render("Date"),
				cli.HeaderStyle.Render("Source"),
				cli.HeaderStyle.Render("Amount"),
				cli.HeaderStyle.Render("ID"))
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\n",
				strings.Repeat("-", 10),
				strings.Repeat("-", 20),
				strings.Repeat("-", 10),
				strings.Repeat("-", 8))
			for _, in := range rows {
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\n",
					model.FormatDate(in.Date),
					in.Source,
					report.FormatMoney(in.Amount),
					cli.MutedStyle.Render(in.ID))
			}
			return w.Flush()
		},
	}

	cmd.Flags().String("month", "", "month to list, YYYY-MM (default current month)")
	cmd.Flags().Bool("all", false, "list all income")

	return cmd
}

func deleteIncomeCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "delete <id>",
		Aliases: []string{"rm"},
		Short:   "Delete an income record",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			store, err := initStorage(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			err = store.DeleteIncome(ctx, args[0])
			if errors.Is(err, common.ErrNotFound) {
				return common.NewUserError(fmt.Sprintf("no income with id %s", args[0]), err)
			}
			if err != nil {
				return fmt.Errorf("failed to delete income: %w", err)
			}
			printLine(cmd, cli.FormatSuccess(fmt.Sprintf("Deleted %s", args[0])))
			return nil
		},
	}
}
