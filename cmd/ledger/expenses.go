package main

import (
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/Veraticus/household-ledger/internal/cli"
	"github.com/Veraticus/household-ledger/internal/common"
	"github.com/Veraticus/household-ledger/internal/config"
	"github.com/Veraticus/household-ledger/internal/model"
	"github.com/Veraticus/household-ledger/internal/recurrence"
	"github.com/Veraticus/household-ledger/internal/report"
	"github.com/Veraticus/household-ledger/internal/storage"
)

func expensesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "expenses",
		Aliases: []string{"expense", "exp"},
		Short:   "Record and manage expenses",
	}

	cmd.AddCommand(addExpenseCmd())
	cmd.AddCommand(listExpensesCmd())
	cmd.AddCommand(editExpenseCmd())
	cmd.AddCommand(deleteExpenseCmd())

	return cmd
}

func addExpenseCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Record an expense",
		Long: `Record an expense. With --recurring the expense becomes a template that
repeats weekly or monthly; its first copy is projected on the next due date.`,
		Example: `  ledger expenses add --item "Rice" --category "Groceries & Food" --amount 1250
  ledger expenses add --item Rent --category "Monthly Rent" --amount 15000 --date 2024-03-01 --recurring monthly`,
		RunE: runAddExpense,
	}

	cmd.Flags().String("date", "", "expense date, YYYY-MM-DD (default today)")
	cmd.Flags().String("item", "", "what was bought")
	cmd.Flags().String("category", "", "budget category")
	cmd.Flags().String("amount", "", "amount spent")
	cmd.Flags().String("paid-by", "", "household member who paid (default the user setting)")
	cmd.Flags().String("notes", "", "free-form notes")
	cmd.Flags().String("recurring", "", "make this a recurring template (weekly or monthly)")
	_ = cmd.MarkFlagRequired("item")
	_ = cmd.MarkFlagRequired("category")
	_ = cmd.MarkFlagRequired("amount")

	return cmd
}

func runAddExpense(cmd *cobra.Command, _ []string) error {
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
	rawAmount, _ := flags.GetString("amount")
	amount, err := parseAmount(rawAmount)
	if err != nil {
		return err
	}

	txn := model.Transaction{
		ID:     model.NewID(),
		Date:   date,
		Amount: amount,
	}
	txn.Item, _ = flags.GetString("item")
	txn.Category, _ = flags.GetString("category")
	txn.Notes, _ = flags.GetString("notes")
	txn.PaidBy, _ = flags.GetString("paid-by")

	if txn.PaidBy == "" {
		if txn.PaidBy, err = defaultPayer(cmd, store); err != nil {
			return err
		}
	}
	if freq, _ := flags.GetString("recurring"); freq != "" {
		if txn.Recurrence, err = startRecurrence(freq, date); err != nil {
			return err
		}
	}
	warnUnknownCategory(cmd, store, txn.Category)

	if err := store.InsertExpense(ctx, &txn); err != nil {
		return fmt.Errorf("failed to save expense: %w", err)
	}

	msg := fmt.Sprintf("Recorded %s %s (%s)", txn.Item, report.FormatMoney(txn.Amount), txn.ID)
	if txn.IsTemplate() {
		msg += fmt.Sprintf(", repeats %s from %s", txn.Recurrence.Frequency, model.FormatDate(*txn.Recurrence.NextDue))
	}
	printLine(cmd, cli.FormatSuccess(msg))
	return nil
}

// defaultPayer is the user setting, else the first configured household member.
func defaultPayer(cmd *cobra.Command, store *storage.SQLiteStorage) (string, error) {
	user, _, err := store.GetSetting(cmd.Context(), model.SettingUser)
	if err != nil {
		return "", err
	}
	if user != "" {
		return user, nil
	}
	if members := config.HouseholdMembers(); len(members) > 0 {
		return members[0], nil
	}
	return "", nil
}

func warnUnknownCategory(cmd *cobra.Command, store *storage.SQLiteStorage, category string) {
	budgets, err := store.ListBudgets(cmd.Context())
	if err != nil {
		slog.Warn("failed to load categories", "error", err)
		return
	}
	for _, b := range budgets {
		if b.Category == category {
			return
		}
	}
	printLine(cmd, cli.FormatWarning(fmt.Sprintf("%q has no budget; it will be reported as unbudgeted", category)))
}

// startRecurrence makes an active recurrence whose first projected copy falls
// one period after date.
func startRecurrence(rawFreq string, date time.Time) (*model.Recurrence, error) {
	freq, err := model.ParseFrequency(rawFreq)
	if err != nil {
		return nil, common.NewUserError("--recurring must be weekly or monthly", err)
	}
	next, err := recurrence.AdvanceDate(date, freq)
	if err != nil {
		return nil, err
	}
	return &model.Recurrence{Frequency: freq, NextDue: &next, Active: true}, nil
}

func listExpensesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List expenses for a month",
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
			all, _ := cmd.Flags().GetBool("all")

			expenses, err := store.ListExpenses(ctx)
			if err != nil {
				return fmt.Errorf("failed to list expenses: %w", err)
			}

			var rows []model.Transaction
			for _, e := range expenses {
				if e.IsTemplate() {
					continue
				}
				if all || report.InMonth(e.Date, month) {
					rows = append(rows, e)
				}
			}

			if len(rows) == 0 {
				printLine(cmd, cli.InfoStyle.Render("No expenses found. Use 'ledger expenses add' to record one."))
				return nil
			}
			return writeExpenses(cmd, rows)
		},
	}

	cmd.Flags().String("month", "", "month to list, YYYY-MM (default current month)")
	cmd.Flags().Bool("all", false, "list every expense")

	return cmd
}

func writeExpenses(cmd *cobra.Command, rows []model.Transaction) error {
	sort.SliceStable(rows, func(i, j int) bool {
		return rows[i].Date.After(rows[j].Date)
	})

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n",
		cli.HeaderStyle.Render("Date"),
		cli.HeaderStyle.Render("Item"),
		cli.HeaderStyle.Render("Category"),
		cli.HeaderStyle.Render("Paid by"),
		cli.HeaderStyle.Render("Amount"),
		cli.HeaderStyle.Render("ID"))
	fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n",
		strings.Repeat("-", 10),
		strings.Repeat("-", 20),
		strings.Repeat("-", 20),
		strings.Repeat("-", 8),
		strings.Repeat("-", 10),
		strings.Repeat("-", 8))

	for _, e := range rows {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n",
			model.FormatDate(e.Date),
			e.Item,
			e.Category,
			e.PaidBy,
			report.FormatMoney(e.Amount),
			cli.MutedStyle.Render(e.ID))
	}
	return w.Flush()
}

func editExpenseCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "edit <id>",
		Short: "Change an expense",
		Long: `Change the fields given as flags. --recurring turns an expense into a
template (or changes a template's frequency) and --stop-recurring stops a
template from generating further copies.`,
		Args: cobra.ExactArgs(1),
		RunE: runEditExpense,
	}

	cmd.Flags().String("date", "", "expense date, YYYY-MM-DD")
	cmd.Flags().String("item", "", "what was bought")
	cmd.Flags().String("category", "", "budget category")
	cmd.Flags().String("amount", "", "amount spent")
	cmd.Flags().String("paid-by", "", "household member who paid")
	cmd.Flags().String("notes", "", "free-form notes")
	cmd.Flags().String("recurring", "", "repeat weekly or monthly")
	cmd.Flags().Bool("stop-recurring", false, "stop a recurring template")
	cmd.MarkFlagsMutuallyExclusive("recurring", "stop-recurring")

	return cmd
}

func runEditExpense(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	flags := cmd.Flags()

	store, err := initStorage(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	txn, err := store.GetExpense(ctx, args[0])
	if errors.Is(err, common.ErrNotFound) {
		return common.NewUserError(fmt.Sprintf("no expense with id %s", args[0]), err)
	}
	if err != nil {
		return err
	}

	if flags.Changed("date") {
		if txn.Date, err = dateFlag(cmd, "date"); err != nil {
			return err
		}
	}
	if flags.Changed("amount") {
		raw, _ := flags.GetString("amount")
		if txn.Amount, err = parseAmount(raw); err != nil {
			return err
		}
	}
	if flags.Changed("item") {
		txn.Item, _ = flags.GetString("item")
	}
	if flags.Changed("category") {
		txn.Category, _ = flags.GetString("category")
		warnUnknownCategory(cmd, store, txn.Category)
	}
	if flags.Changed("paid-by") {
		txn.PaidBy, _ = flags.GetString("paid-by")
	}
	if flags.Changed("notes") {
		txn.Notes, _ = flags.GetString("notes")
	}

	if flags.Changed("recurring") {
		raw, _ := flags.GetString("recurring")
		if txn.IsTemplate() {
			freq, err := model.ParseFrequency(raw)
			if err != nil {
				return common.NewUserError("--recurring must be weekly or monthly", err)
			}
			txn.Recurrence.Frequency = freq
		} else if txn.Recurrence, err = startRecurrence(raw, txn.Date); err != nil {
			return err
		}
	}
	if stop, _ := flags.GetBool("stop-recurring"); stop {
		if !txn.IsTemplate() {
			return common.NewUserError(fmt.Sprintf("expense %s is not recurring", txn.ID), nil)
		}
		txn.Recurrence = nil
	}

	if err := store.UpdateExpense(ctx, txn); err != nil {
		return fmt.Errorf("failed to update expense: %w", err)
	}
	printLine(cmd, cli.FormatSuccess(fmt.Sprintf("Updated %s", txn.ID)))
	return nil
}

func deleteExpenseCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "delete <id>",
		Aliases: []string{"rm"},
		Short:   "Delete an expense",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			store, err := initStorage(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			err = store.DeleteExpense(ctx, args[0])
			if errors.Is(err, common.ErrNotFound) {
				return common.NewUserError(fmt.Sprintf("no expense with id %s", args[0]), err)
			}
			if err != nil {
				return fmt.Errorf("failed to delete expense: %w", err)
			}
			printLine(cmd, cli.FormatSuccess(fmt.Sprintf("Deleted %s", args[0])))
			return nil
		},
	}
}
