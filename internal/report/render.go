package report

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/shopspring/decimal"

	"github.com/Veraticus/household-ledger/internal/cli"
)

// Render writes a terminal rendering of s to w.
func Render(w io.Writer, s *MonthSummary) error {
	var b strings.Builder

	b.WriteString(cli.FormatTitle("Budget for " + s.Label))
	b.WriteString("\n")

	overview := fmt.Sprintf("%-10s %14s\n%-10s %14s\n%-10s %14s\n%-10s %14s",
		"Income", FormatMoney(s.TotalIncome),
		"Budget", FormatMoney(s.CoreBudget),
		"Spent", FormatMoney(s.CoreSpent),
		remainingLabel(s.CoreRemaining), FormatMoney(s.CoreRemaining.Abs()))
	b.WriteString(cli.RenderBox("Overview", overview))
	b.WriteString("\n\n")

	if s.Expenses == 0 {
		b.WriteString(cli.FormatInfo("No expenses for this month yet."))
		b.WriteString("\n")
	}

	tw := tabwriter.NewWriter(&b, 0, 0, 2, ' ', 0)
	for _, g := range s.Groups {
		fmt.Fprintf(tw, "%s\t\t\t\t\n", cli.BoldStyle.Render(g.Name))
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n",
			cli.HeaderStyle.Render("Category"),
			cli.HeaderStyle.Render("Spent"),
			cli.HeaderStyle.Render("Limit"),
			cli.HeaderStyle.Render("Left"),
			cli.HeaderStyle.Render("Used"))
		for _, line := range g.Lines {
			fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n",
				line.Category,
				FormatMoney(line.Spent),
				limitCell(line.Limit),
				FormatMoney(line.Remaining),
				usedCell(line))
		}
		fmt.Fprintf(tw, "\t\t\t\t\n")
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	if len(s.Members) > 0 {
		b.WriteString(cli.BoldStyle.Render("By person"))
		b.WriteString("\n")
		mw := tabwriter.NewWriter(&b, 0, 0, 2, ' ', 0)
		for _, m := range s.Members {
			name := m.Member
			if name == "" {
				name = "(unknown)"
			}
			fmt.Fprintf(mw, "%s\t%s\t%d expenses\n", name, FormatMoney(m.Spent), m.Count)
		}
		if err := mw.Flush(); err != nil {
			return err
		}
		b.WriteString("\n")
	}

	fmt.Fprintf(&b, "Total spent %s of %s budgeted. Net after income: %s\n",
		FormatMoney(s.TotalSpent), FormatMoney(s.TotalBudget), FormatMoney(s.Net))

	_, err := io.WriteString(w, b.String())
	return err
}

// trendBarWidth is the width of the widest bar in a trend chart.
const trendBarWidth = 30

// RenderTrend writes t as a bar chart. A non-nil forecast is added below it.
func RenderTrend(w io.Writer, t *Trend, forecast *MonthForecast) error {
	var b strings.Builder

	b.WriteString(cli.FormatTitle(fmt.Sprintf("Spending trend (%s)", t.Frame)))
	b.WriteString("\n")

	tw := tabwriter.NewWriter(&b, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n",
		cli.HeaderStyle.Render("Period"),
		cli.HeaderStyle.Render(""),
		cli.HeaderStyle.Render("Spent"),
		cli.HeaderStyle.Render("Count"))
	for _, p := range t.Points {
		fraction := 0.0
		if t.Peak.IsPositive() {
			fraction = p.Spent.Div(t.Peak).InexactFloat64()
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%d\n",
			p.Label,
			cli.Bar(fraction, trendBarWidth),
			FormatMoney(p.Spent),
			p.Count)
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	fmt.Fprintf(&b, "\nTotal %s, average %s per %s\n",
		FormatMoney(t.Total), FormatMoney(t.Average()), frameUnit(t.Frame))

	if forecast != nil {
		fmt.Fprintf(&b, "%s Forecast for %s: %s (%s spent in %d of %d days, %s a day)\n",
			cli.TrendIcon,
			forecast.Label,
			cli.BoldStyle.Render(FormatMoney(forecast.Projected)),
			FormatMoney(forecast.SpentSoFar),
			forecast.DaysElapsed,
			forecast.DaysInMonth,
			FormatMoney(forecast.DailyAverage))
	}

	_, err := io.WriteString(w, b.String())
	return err
}

func frameUnit(f Frame) string {
	switch f {
	case FrameDaily:
		return "day"
	case FrameWeekly:
		return "week"
	case FrameQuarterly:
		return "quarter"
	default:
		return "month"
	}
}

func remainingLabel(remaining decimal.Decimal) string {
	if remaining.IsNegative() {
		return "Over"
	}
	return "Remaining"
}

func limitCell(limit decimal.Decimal) string {
	if limit.IsZero() {
		return cli.MutedStyle.Render("-")
	}
	return FormatMoney(limit)
}

func usedCell(line CategoryLine) string {
	if line.Limit.IsZero() {
		return cli.MutedStyle.Render("-")
	}
	text := line.Percent.StringFixed(0) + "%"
	switch line.Status() {
	case StatusOver:
		return cli.StyleError(text)
	case StatusWarning:
		return cli.StyleWarning(text)
	default:
		return cli.StyleSuccess(text)
	}
}

// FormatMoney renders d with two decimals and thousands separators.
func FormatMoney(d decimal.Decimal) string {
	s := d.StringFixed(2)
	sign := ""
	if strings.HasPrefix(s, "-") {
		sign, s = "-", s[1:]
	}

	whole, frac, _ := strings.Cut(s, ".")
	var out []byte
	for i := 0; i < len(whole); i++ {
		if i > 0 && (len(whole)-i)%3 == 0 {
			out = append(out, ',')
		}
		out = append(out, whole[i])
	}
	return sign + string(out) + "." + frac
}
