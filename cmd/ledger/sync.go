package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Veraticus/household-ledger/internal/cli"
	"github.com/Veraticus/household-ledger/internal/cloudsync"
	"github.com/Veraticus/household-ledger/internal/common"
	"github.com/Veraticus/household-ledger/internal/sheets"
	"github.com/Veraticus/household-ledger/internal/storage"
)

const noEndpointHelp = "no sync endpoint configured: run 'ledger settings set googleScriptUrl <url>', set sync.url, or configure sheets"

func syncCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sync",
		Short: "Push or pull the whole budget to the shared copy",
		Long: `Sync copies the whole budget (expenses, income and categories) in one
direction. Push overwrites the shared copy with this ledger; pull overwrites
this ledger with the shared copy. Nothing is merged.`,
	}

	cmd.AddCommand(pushCmd())
	cmd.AddCommand(pullCmd())
	cmd.AddCommand(syncStatusCmd())

	return cmd
}

func pushCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "push",
		Short: "Overwrite the shared copy with this ledger",
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

			endpoint, name, err := newEndpoint(ctx, store)
			if err != nil {
				return err
			}
			reconciler, err := newReconciler(store, endpoint)
			if err != nil {
				return err
			}

			printLine(cmd, cli.FormatInfo(fmt.Sprintf("%s Pushing to %s", cli.SyncIcon, displayEndpoint(name))))
			rep, err := reconciler.Push(ctx)
			rememberSpreadsheet(cmd, endpoint)
			if err != nil {
				return syncError(err)
			}

			printLine(cmd, cli.FormatSuccess(fmt.Sprintf("Pushed %d expenses, %d income, %d categories for %s",
				rep.Expenses, rep.Income, rep.Categories, rep.BudgetMonth)))
			return nil
		},
	}
}

func pullCmd() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "pull",
		Short: "Overwrite this ledger with the shared copy",
		Long: `Replace every collection in this ledger with the shared copy. Local
changes made since the last push are lost. Collections missing from the
shared copy, or that cannot be read, are left alone.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			store, err := initStorage(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			endpoint, name, err := newEndpoint(ctx, store)
			if err != nil {
				return err
			}
			reconciler, err := newReconciler(store, endpoint)
			if err != nil {
				return err
			}

			if !force {
				ok, err := confirm(cmd, fmt.Sprintf("Replace local expenses, income and categories with the copy from %s?", displayEndpoint(name)))
				if err != nil {
					return err
				}
				if !ok {
					printLine(cmd, "Pull canceled.")
					return nil
				}
			}

			rep, err := reconciler.Pull(ctx)
			if err != nil {
				return syncError(err)
			}

			printLine(cmd, cli.FormatSuccess(fmt.Sprintf("Pulled %d expenses, %d income, %d categories",
				rep.Expenses, rep.Income, rep.Categories)))
			if len(rep.SkippedCollections) > 0 {
				printLine(cmd, cli.FormatWarning("Kept local "+strings.Join(rep.SkippedCollections, ", ")+": the shared copy could not be read"))
			}
			return nil
		},
	}

	cmd.Flags().BoolVarP(&force, "force", "f", false, "skip the confirmation prompt")

	return cmd
}

func syncStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show the sync endpoint and last successful sync",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			store, err := initStorage(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			return writeSyncStatus(cmd, store)
		},
	}
}

func writeSyncStatus(cmd *cobra.Command, store *storage.SQLiteStorage) error {
	ctx := cmd.Context()

	settings, err := store.LoadSettings(ctx)
	if err != nil {
		return err
	}
	endpoint, name, err := newEndpoint(ctx, store)
	if err != nil {
		return err
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%-12s %s\n", "Endpoint", displayEndpoint(name))
	if endpoint == nil {
		fmt.Fprintf(&b, "%-12s %s\n", "", cli.StyleWarning(noEndpointHelp))
	}
	last := "never"
	if settings.LastSynced != nil {
		loc, err := householdLocation()
		if err != nil {
			return err
		}
		last = settings.LastSynced.In(loc).Format("2006-01-02 15:04 MST")
	}
	fmt.Fprintf(&b, "%-12s %s", "Last synced", last)

	printLine(cmd, cli.RenderBox(cli.SyncIcon+" Sync", b.String()))
	return nil
}

func displayEndpoint(name string) string {
	if name == "" {
		return "(none)"
	}
	return name
}

func syncError(err error) error {
	switch {
	case errors.Is(err, cloudsync.ErrMissingEndpoint):
		return common.NewUserError(noEndpointHelp, err)
	case errors.Is(err, cloudsync.ErrSyncInProgress):
		return common.NewUserError("a sync is already running", err)
	case errors.Is(err, sheets.ErrNoSpreadsheet):
		return common.NewUserError("no spreadsheet yet: run 'ledger sync push' first or set sheets.spreadsheet_id", err)
	case errors.Is(err, cloudsync.ErrRemoteStatus):
		return common.NewUserError("the shared copy rejected the request; nothing was recorded as synced", err)
	default:
		return err
	}
}
