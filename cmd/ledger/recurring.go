package main

import (
	"fmt"
	"sort"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/Veraticus/household-ledger/internal/cli"
	"github.com/Veraticus/household-ledger/internal/common"
	"github.com/Veraticus/household-ledger/internal/model"
	"github.com/Veraticus/household-ledger/internal/recurrence"
	"github.com/Veraticus/household-ledger/internal/report"
)

func recurringCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "recurring",
		Short: "Project and inspect recurring expenses",
	}

	cmd.AddCommand(runRecurringCmd())
	cmd.AddCommand(listRecurringCmd())

	return cmd
}

func runRecurringCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Create every recurring expense that has come due",
		Long: `Create a copy of each recurring template for every due date up to and
including today, then move the template's next due date forward. Running it
again creates nothing new.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			store, err := initStorage(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			projector, err := newProjector(store,
				recurrence.WithProgress(cli.ProgressFunc(cmd.ErrOrStderr(), cli.RepeatIcon+" Projecting")))
			if err != nil {
				return err
			}

			day := projector.Today()
			if raw, _ := cmd.Flags().GetString("today"); raw != "" {
				if day, err = model.ParseDate(raw); err != nil {
					return common.NewUserError("--today must be YYYY-MM-DD", err)
				}
			}

			created, err := projector.ProjectAt(ctx, day)
			if err != nil {
				return fmt.Errorf("some recurring expenses were not projected (%d created): %w", created, err)
			}

			if created == 0 {
				printLine(cmd, cli.FormatInfo("Recurring expenses are up to date."))
				return nil
			}
			printLine(cmd, cli.FormatSuccess(fmt.Sprintf("Created %d recurring expenses through %s", created, model.FormatDate(day))))
			return nil
		},
	}

	cmd.Flags().String("today", "", "project as if today were this date, YYYY-MM-DD")

	return cmd
}

func listRecurringCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List recurring templates",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			store, err := initStorage(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			expenses, err := store.ListExpenses(ctx)
			if err != nil {
				return fmt.Errorf("failed to list expenses: %w", err)
			}

			var templates []model.Transaction
			for _, e := range expenses {
				if e.IsTemplate() {
					templates = append(templates, e)
				}
			}
			if len(templates) == 0 {
				printLine(cmd, cli.InfoStyle.Render("No recurring expenses. Use 'ledger expenses add --recurring monthly' to create one."))
				return nil
			}
			sort.SliceStable(templates, func(i, j int) bool {
				return templates[i].Recurrence.NextDue.Before(*templates[j].Recurrence.NextDue)
			})

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n",
				cli.HeaderStyle.Render("Next due"),
				cli.HeaderStyle.Render("Every"),
				cli.HeaderStyle.Render("Item"),
				cli.HeaderStyle.Render("Category"),
				cli.HeaderStyle.Render("Amount"),
				cli.HeaderStyle.Render("ID"))
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n",
				strings.Repeat("-", 10),
				strings.Repeat("-", 7),
				strings.Repeat("-", 20),
				strings.Repeat("-", 20),
				strings.Repeat("-", 10),
				strings.Repeat("-", 8))
			for _, t := range templates {
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n",
					model.FormatDate(*t.Recurrence.NextDue),
					t.Recurrence.Frequency,
					t.Item,
					t.Category,
					report.FormatMoney(t.Amount),
					cli.MutedStyle.Render(t.ID))
			}
			return w.Flush()
		},
	}
}
