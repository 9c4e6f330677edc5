package report

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/Veraticus/household-ledger/internal/model"
)

// Frame is the width of one bucket in a spending trend.
type Frame string

// Frames, with the number of buckets each trend covers.
const (
	FrameDaily     Frame = "daily"     // 30 days
	FrameWeekly    Frame = "weekly"    // 12 ISO weeks
	FrameMonthly   Frame = "monthly"   // 12 months
	FrameQuarterly Frame = "quarterly" // 4 quarters
)

// Frames lists every frame in display order.
var Frames = []Frame{FrameDaily, FrameWeekly, FrameMonthly, FrameQuarterly}

// ErrUnknownFrame is returned by ParseFrame.
var ErrUnknownFrame = errors.New("unknown trend frame")

// ParseFrame parses a frame name, ignoring case and surrounding space.
func ParseFrame(s string) (Frame, error) {
	f := Frame(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range Frames {
		if f == known {
			return f, nil
		}
	}
	return "", fmt.Errorf("%w %q: expected daily, weekly, monthly or quarterly", ErrUnknownFrame, s)
}

// TrendPoint is the spending in one bucket.
type TrendPoint struct {
	Start time.Time
	Label string
	Spent decimal.Decimal
	Count int
}

// Trend is spending bucketed by frame, oldest bucket first, ending with the
// bucket that contains today.
type Trend struct {
	Frame  Frame
	Points []TrendPoint
	Total  decimal.Decimal
	Peak   decimal.Decimal
}

type bucketing struct {
	start func(time.Time) time.Time
	step  func(time.Time, int) time.Time
	label func(time.Time) string
	count int
}

var bucketings = map[Frame]bucketing{
	FrameDaily: {
		start: func(d time.Time) time.Time { return d },
		step:  func(d time.Time, n int) time.Time { return d.AddDate(0, 0, n) },
		label: model.FormatDate,
		count: 30,
	},
	FrameWeekly: {
		start: weekStart,
		step:  func(d time.Time, n int) time.Time { return d.AddDate(0, 0, 7*n) },
		label: func(d time.Time) string {
			year, week := d.ISOWeek()
			return fmt.Sprintf("%d-W%02d", year, week)
		},
		count: 12,
	},
	FrameMonthly: {
		start: MonthStart,
		step:  func(d time.Time, n int) time.Time { return d.AddDate(0, n, 0) },
		label: func(d time.Time) string { return d.Format("2006-01") },
		count: 12,
	},
	FrameQuarterly: {
		start: quarterStart,
		step:  func(d time.Time, n int) time.Time { return d.AddDate(0, 3*n, 0) },
		label: func(d time.Time) string { return fmt.Sprintf("%d-Q%d", d.Year(), (int(d.Month())-1)/3+1) },
		count: 4,
	},
}

// BuildTrend buckets spending up to and including today. Templates and
// expenses dated after today are left out, as are buckets before the window.
func BuildTrend(expenses []model.Transaction, today time.Time, frame Frame) (*Trend, error) {
	b, ok := bucketings[frame]
	if !ok {
		return nil, fmt.Errorf("%w %q", ErrUnknownFrame, frame)
	}
	today = model.DateOf(today, time.UTC)

	t := &Trend{Frame: frame, Points: make([]TrendPoint, b.count)}
	index := make(map[string]int, b.count)
	current := b.start(today)
	for i := range t.Points {
		start := b.step(current, i-(b.count-1))
		label := b.label(start)
		t.Points[i] = TrendPoint{Start: start, Label: label}
		index[label] = i
	}

	for _, txn := range expenses {
		if txn.IsTemplate() || txn.Date.After(today) {
			continue
		}
		i, ok := index[b.label(b.start(txn.Date))]
		if !ok {
			continue
		}
		t.Points[i].Spent = t.Points[i].Spent.Add(txn.Amount)
		t.Points[i].Count++
		t.Total = t.Total.Add(txn.Amount)
	}

	for _, p := range t.Points {
		if p.Spent.GreaterThan(t.Peak) {
			t.Peak = p.Spent
		}
	}
	return t, nil
}

// Average is the mean spend per bucket.
func (t *Trend) Average() decimal.Decimal {
	if len(t.Points) == 0 {
		return decimal.Zero
	}
	return t.Total.Div(decimal.NewFromInt(int64(len(t.Points)))).Round(2)
}

// MonthForecast extrapolates the current month's spending to its last day
// from the average daily spend so far.
type MonthForecast struct {
	Month        time.Time
	Label        string
	SpentSoFar   decimal.Decimal
	DailyAverage decimal.Decimal
	Projected    decimal.Decimal
	DaysElapsed  int
	DaysInMonth  int
}

// ForecastMonth forecasts the month containing today. Spending counts when it
// is dated from the first of the month through today; templates never count.
func ForecastMonth(expenses []model.Transaction, today time.Time) MonthForecast {
	today = model.DateOf(today, time.UTC)
	start := MonthStart(today)
	f := MonthForecast{
		Month:       start,
		Label:       model.MonthLabel(start),
		DaysElapsed: today.Day(),
		DaysInMonth: start.AddDate(0, 1, -1).Day(),
	}

	for _, txn := range expenses {
		if txn.IsTemplate() || txn.Date.Before(start) || txn.Date.After(today) {
			continue
		}
		f.SpentSoFar = f.SpentSoFar.Add(txn.Amount)
	}

	elapsed := decimal.NewFromInt(int64(f.DaysElapsed))
	f.DailyAverage = f.SpentSoFar.Div(elapsed).Round(2)
	f.Projected = f.SpentSoFar.Mul(decimal.NewFromInt(int64(f.DaysInMonth))).Div(elapsed).Round(2)
	return f
}

// weekStart returns the Monday starting d's ISO week.
func weekStart(d time.Time) time.Time {
	offset := (int(d.Weekday()) + 6) % 7
	return d.AddDate(0, 0, -offset)
}

func quarterStart(d time.Time) time.Time {
	month := time.Month((int(d.Month())-1)/3*3 + 1)
	return time.Date(d.Year(), month, 1, 0, 0, 0, 0, time.UTC)
}
