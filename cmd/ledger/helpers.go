package main

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/Veraticus/household-ledger/internal/cli"
	"github.com/Veraticus/household-ledger/internal/cloudsync"
	"github.com/Veraticus/household-ledger/internal/common"
	"github.com/Veraticus/household-ledger/internal/config"
	"github.com/Veraticus/household-ledger/internal/model"
	"github.com/Veraticus/household-ledger/internal/recurrence"
	"github.com/Veraticus/household-ledger/internal/sheets"
	"github.com/Veraticus/household-ledger/internal/storage"
)

// initStorage opens the configured database and brings its schema up to date.
func initStorage(ctx context.Context) (*storage.SQLiteStorage, error) {
	store, err := storage.NewSQLiteStorage(config.DatabasePath())
	if err != nil {
		return nil, err
	}

	if err := store.Migrate(ctx); err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return store, nil
}

// householdLocation is the zone that decides what "today" is.
func householdLocation() (*time.Location, error) {
	cfg, err := config.LoadSyncConfig()
	if err != nil {
		return nil, err
	}
	return cfg.Location, nil
}

func currentDate() (time.Time, error) {
	loc, err := householdLocation()
	if err != nil {
		return time.Time{}, err
	}
	return model.DateOf(time.Now(), loc), nil
}

func newProjector(store *storage.SQLiteStorage, opts ...recurrence.Option) (*recurrence.Projector, error) {
	loc, err := householdLocation()
	if err != nil {
		return nil, err
	}
	rc := config.LoadRecurringConfig()

	opts = append([]recurrence.Option{
		recurrence.WithLocation(loc),
		recurrence.WithMaxCatchUp(rc.MaxCatchUp),
		recurrence.WithLogger(slog.Default()),
	}, opts...)
	return recurrence.NewProjector(store, opts...), nil
}

// runAutoProjection brings recurring templates up to date before a command
// reads the ledger, unless recurring.auto_project is off. Templates that
// cannot be caught up are reported as a warning; the command still runs on
// whatever was projected.
func runAutoProjection(cmd *cobra.Command, store *storage.SQLiteStorage) error {
	if !config.LoadRecurringConfig().AutoProject {
		return nil
	}

	projector, err := newProjector(store)
	if err != nil {
		return err
	}
	if _, err := projector.Project(cmd.Context()); err != nil {
		if cmd.Context().Err() != nil {
			return cmd.Context().Err()
		}
		printLine(cmd, cli.FormatWarning("Some recurring expenses could not be projected; run 'ledger recurring run' for details"))
	}
	return nil
}

// newSheetsEndpoint is replaced in tests to point at a fake Sheets API.
var newSheetsEndpoint = sheets.NewEndpoint

// newEndpoint picks the remote endpoint. The sync URL setting wins over
// sync.url, and both win over Google Sheets. A nil endpoint means nothing is
// configured.
func newEndpoint(ctx context.Context, store *storage.SQLiteStorage) (cloudsync.Endpoint, string, error) {
	syncCfg, err := config.LoadSyncConfig()
	if err != nil {
		return nil, "", err
	}

	url, _, err := store.GetSetting(ctx, model.SettingSyncURL)
	if err != nil {
		return nil, "", err
	}
	if url == "" {
		url = syncCfg.URL
	}
	if url != "" {
		endpoint, err := cloudsync.NewHTTPEndpoint(url, syncCfg.Timeout, cloudsync.WithEndpointLogger(slog.Default()))
		if err != nil {
			return nil, "", common.NewUserError("the sync URL is not valid", err)
		}
		return endpoint, url, nil
	}

	sheetsCfg := config.LoadSheetsConfig()
	if !sheetsCfg.HasAuth() {
		return nil, "", nil
	}
	if err := sheetsCfg.Validate(); err != nil {
		return nil, "", common.NewUserError("the Google Sheets configuration is not valid", err)
	}
	endpoint, err := newSheetsEndpoint(ctx, sheetsCfg, slog.Default())
	if err != nil {
		return nil, "", err
	}
	return endpoint, "Google Sheets (" + sheetsCfg.SpreadsheetName + ")", nil
}

func newReconciler(store *storage.SQLiteStorage, endpoint cloudsync.Endpoint) (*cloudsync.Reconciler, error) {
	loc, err := householdLocation()
	if err != nil {
		return nil, err
	}
	return cloudsync.NewReconciler(store, endpoint,
		cloudsync.WithLocation(loc),
		cloudsync.WithLogger(slog.Default())), nil
}

// rememberSpreadsheet saves the ID of a spreadsheet that a push just created,
// so the next push writes to it and a pull can read it.
func rememberSpreadsheet(cmd *cobra.Command, endpoint cloudsync.Endpoint) {
	sheet, ok := endpoint.(*sheets.Endpoint)
	if !ok {
		return
	}
	id := sheet.SpreadsheetID()
	if id == "" || id == config.LoadSheetsConfig().SpreadsheetID {
		return
	}

	viper.Set("sheets.spreadsheet_id", id)
	path, err := saveConfig()
	if err != nil {
		slog.Warn("failed to save spreadsheet id", "spreadsheet_id", id, "error", err)
		printLine(cmd, cli.FormatWarning("Created a spreadsheet but could not save its ID. Add this to config.yaml:"))
		printf(cmd, "sheets:\n  spreadsheet_id: %q\n", id)
		return
	}
	printLine(cmd, cli.FormatSuccess(fmt.Sprintf("Created spreadsheet %s and saved its ID to %s", id, path)))
}

func parseAmount(s string) (decimal.Decimal, error) {
	amount, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, common.NewUserError(fmt.Sprintf("%q is not an amount", s), err)
	}
	if amount.IsNegative() {
		return decimal.Zero, common.NewUserError("amounts cannot be negative", nil)
	}
	return amount, nil
}

// dateFlag returns the named flag as a date, or today when it is unset.
func dateFlag(cmd *cobra.Command, name string) (time.Time, error) {
	raw, _ := cmd.Flags().GetString(name)
	if raw == "" {
		return currentDate()
	}
	d, err := model.ParseDate(raw)
	if err != nil {
		return time.Time{}, common.NewUserError(fmt.Sprintf("--%s must be YYYY-MM-DD", name), err)
	}
	return d, nil
}

// monthFlag returns the first day of the month named by --month, or of the
// current month.
func monthFlag(cmd *cobra.Command) (time.Time, error) {
	raw, _ := cmd.Flags().GetString("month")
	if raw == "" {
		d, err := currentDate()
		if err != nil {
			return time.Time{}, err
		}
		return time.Date(d.Year(), d.Month(), 1, 0, 0, 0, 0, time.UTC), nil
	}
	m, err := time.Parse("2006-01", raw)
	if err != nil {
		return time.Time{}, common.NewUserError("--month must be YYYY-MM", err)
	}
	return m, nil
}

func printf(cmd *cobra.Command, format string, args ...any) {
	if _, err := fmt.Fprintf(cmd.OutOrStdout(), format, args...); err != nil {
		slog.Error("failed to write output", "error", err)
	}
}

func printLine(cmd *cobra.Command, line string) {
	printf(cmd, "%s\n", line)
}

func confirm(cmd *cobra.Command, question string) (bool, error) {
	return cli.Confirm(cmd.Context(), cli.NewNonBlockingReader(cmd.InOrStdin()), cmd.OutOrStdout(), question)
}
