package main

import (
	"errors"
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/Veraticus/household-ledger/internal/cli"
	"github.com/Veraticus/household-ledger/internal/common"
	"github.com/Veraticus/household-ledger/internal/model"
	"github.com/Veraticus/household-ledger/internal/report"
)

func categoriesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "categories",
		Aliases: []string{"category", "cat"},
		Short:   "Manage budget categories",
		Long:    `List, add, update, and delete the categories expenses are budgeted against.`,
	}

	cmd.AddCommand(listCategoriesCmd())
	cmd.AddCommand(addCategoryCmd())
	cmd.AddCommand(updateCategoryCmd())
	cmd.AddCommand(deleteCategoryCmd())
	cmd.AddCommand(seedCategoriesCmd())

	return cmd
}

func listCategoriesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List all categories",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			store, err := initStorage(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			budgets, err := store.ListBudgets(ctx)
			if err != nil {
				return fmt.Errorf("failed to get categories: %w", err)
			}

			if len(budgets) == 0 {
				printLine(cmd, cli.InfoStyle.Render("No categories found. Use 'ledger categories seed' for the defaults or 'ledger categories add' to create one."))
				return nil
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintf(w, "%s\t%s\t%s\n",
				cli.HeaderStyle.Render("Group"),
				cli.HeaderStyle.Render("Category"),
				cli.HeaderStyle.Render("Limit"))
			fmt.Fprintf(w, "%s\t%s\t%s\n",
				strings.Repeat("-", 10),
				strings.Repeat("-", 30),
				strings.Repeat("-", 10))

			total := decimal.Zero
			for _, b := range budgets {
				name := b.Category
				if b.Icon != "" {
					name = b.Icon + " " + name
				}
				fmt.Fprintf(w, "%s\t%s\t%s\n", b.GroupName, name, report.FormatMoney(b.LimitAmount))
				total = total.Add(b.LimitAmount)
			}
			fmt.Fprintf(w, "\t%s\t%s\n", cli.BoldStyle.Render("Total"), report.FormatMoney(total))

			return w.Flush()
		},
	}
}

func addCategoryCmd() *cobra.Command {
	var (
		group string
		limit string
		icon  string
	)

	cmd := &cobra.Command{
		Use:     "add <name>",
		Short:   "Add a new category",
		Args:    cobra.ExactArgs(1),
		Example: `  ledger categories add "School Fees" --group EDUCATION --limit 8000 --icon 🎓`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			amount, err := parseAmount(limit)
			if err != nil {
				return err
			}

			store, err := initStorage(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			budget := model.CategoryBudget{
				Category:    strings.TrimSpace(args[0]),
				GroupName:   strings.ToUpper(strings.TrimSpace(group)),
				Icon:        icon,
				LimitAmount: amount,
			}
			err = store.InsertBudget(ctx, &budget)
			if errors.Is(err, common.ErrDuplicateEntry) {
				return common.NewUserError(fmt.Sprintf("category %q already exists", budget.Category), err)
			}
			if err != nil {
				return fmt.Errorf("failed to create category: %w", err)
			}

			printLine(cmd, cli.FormatSuccess(fmt.Sprintf("Created category %q in %s with limit %s",
				budget.Category, budget.GroupName, report.FormatMoney(budget.LimitAmount))))
			return nil
		},
	}

	cmd.Flags().StringVar(&group, "group", "OTHERS", "group the category belongs to")
	cmd.Flags().StringVar(&limit, "limit", "0", "monthly limit")
	cmd.Flags().StringVar(&icon, "icon", "", "icon shown next to the category")

	return cmd
}

func updateCategoryCmd() *cobra.Command {
	var (
		group string
		limit string
		icon  string
	)

	cmd := &cobra.Command{
		Use:   "update <name>",
		Short: "Update a category",
		Long:  `Update the group, monthly limit or icon of an existing category.`,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			flags := cmd.Flags()

			if !flags.Changed("group") && !flags.Changed("limit") && !flags.Changed("icon") {
				return common.NewUserError("specify --group, --limit or --icon to update", nil)
			}

			store, err := initStorage(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			budgets, err := store.ListBudgets(ctx)
			if err != nil {
				return fmt.Errorf("failed to get categories: %w", err)
			}

			var current *model.CategoryBudget
			for i := range budgets {
				if budgets[i].Category == args[0] {
					current = &budgets[i]
					break
				}
			}
			if current == nil {
				return common.NewUserError(fmt.Sprintf("category %q not found", args[0]), common.ErrNotFound)
			}

			if flags.Changed("group") {
				current.GroupName = strings.ToUpper(strings.TrimSpace(group))
			}
			if flags.Changed("limit") {
				if current.LimitAmount, err = parseAmount(limit); err != nil {
					return err
				}
			}
			if flags.Changed("icon") {
				current.Icon = icon
			}

			if err := store.UpdateBudget(ctx, current); err != nil {
				return fmt.Errorf("failed to update category: %w", err)
			}
			printLine(cmd, cli.FormatSuccess(fmt.Sprintf("Updated category %q", current.Category)))
			return nil
		},
	}

	cmd.Flags().StringVar(&group, "group", "", "new group")
	cmd.Flags().StringVar(&limit, "limit", "", "new monthly limit")
	cmd.Flags().StringVar(&icon, "icon", "", "new icon")

	return cmd
}

func deleteCategoryCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <name>",
		Short: "Delete a category",
		Long: `Delete a category budget. Expenses filed under it are kept and are
reported as unbudgeted.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			store, err := initStorage(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			err = store.DeleteBudget(ctx, args[0])
			if errors.Is(err, common.ErrNotFound) {
				return common.NewUserError(fmt.Sprintf("category %q not found", args[0]), err)
			}
			if err != nil {
				return fmt.Errorf("failed to delete category: %w", err)
			}
			printLine(cmd, cli.FormatSuccess(fmt.Sprintf("Deleted category %q", args[0])))
			return nil
		},
	}
}

func seedCategoriesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Create the default categories in an empty ledger",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			store, err := initStorage(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			n, err := store.SeedDefaultBudgets(ctx)
			if err != nil {
				return fmt.Errorf("failed to seed categories: %w", err)
			}
			if n == 0 {
				printLine(cmd, cli.FormatInfo("Categories already exist; nothing seeded."))
				return nil
			}
			printLine(cmd, cli.FormatSuccess(fmt.Sprintf("Created %d default categories", n)))
			return nil
		},
	}
}
