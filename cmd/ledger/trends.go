package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Veraticus/household-ledger/internal/common"
	"github.com/Veraticus/household-ledger/internal/report"
)

func trendsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "trends",
		Short: "Chart spending over recent days, weeks, months or quarters",
		Long: `Chart spending in buckets ending today: the last 30 days, 12 ISO weeks,
12 months or 4 quarters. The monthly chart also forecasts this month's total
from the average daily spend so far. Recurring templates are not spending;
their generated copies are.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			raw, _ := cmd.Flags().GetString("frame")
			frame, err := report.ParseFrame(raw)
			if err != nil {
				return common.NewUserError("--frame must be daily, weekly, monthly or quarterly", err)
			}
			today, err := dateFlag(cmd, "as-of")
			if err != nil {
				return err
			}

			store, err := initStorage(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			if err := runAutoProjection(cmd, store); err != nil {
				return err
			}

			expenses, err := store.ListExpenses(ctx)
			if err != nil {
				return fmt.Errorf("failed to list expenses: %w", err)
			}

			trend, err := report.BuildTrend(expenses, today, frame)
			if err != nil {
				return err
			}
			var forecast *report.MonthForecast
			if frame == report.FrameMonthly {
				f := report.ForecastMonth(expenses, today)
				forecast = &f
			}
			return report.RenderTrend(cmd.OutOrStdout(), trend, forecast)
		},
	}

	cmd.Flags().StringP("frame", "f", string(report.FrameMonthly), "bucket size: daily, weekly, monthly or quarterly")
	cmd.Flags().String("as-of", "", "end the chart on this date, YYYY-MM-DD (default today)")

	return cmd
}
