// Package report builds the monthly budget summary shown by the CLI.
package report

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/Veraticus/household-ledger/internal/model"
)

// Group names with special meaning.
const (
	UnbudgetedGroup = "UNBUDGETED"
	OthersGroup     = "OTHERS"
)

// Thresholds, in percent of a limit.
var (
	warningPercent = decimal.NewFromInt(85)
	fullPercent    = decimal.NewFromInt(100)
	hundred        = decimal.NewFromInt(100)
)

// Status classifies how much of a limit has been used.
type Status string

// Statuses.
const (
	StatusOK      Status = "ok"
	StatusWarning Status = "warning"
	StatusOver    Status = "over"
)

// CategoryLine is spending against one category's limit.
type CategoryLine struct {
	Category  string
	Group     string
	Icon      string
	Spent     decimal.Decimal
	Limit     decimal.Decimal
	Remaining decimal.Decimal
	Percent   decimal.Decimal // Spent as a percentage of Limit, zero when there is no limit
	Count     int
}

// Status reports the line's budget status.
func (l CategoryLine) Status() Status {
	return statusFor(l.Percent)
}

// GroupSummary totals the categories of one group.
type GroupSummary struct {
	Name  string
	Lines []CategoryLine
	Spent decimal.Decimal
	Limit decimal.Decimal
}

// MemberSpend is what one household member paid.
type MemberSpend struct {
	Member string
	Spent  decimal.Decimal
	Count  int
}

// MonthSummary is the budget picture for one calendar month.
type MonthSummary struct {
	Month   time.Time
	Label   string
	Groups  []GroupSummary
	Members []MemberSpend

	TotalSpent  decimal.Decimal
	TotalBudget decimal.Decimal
	TotalIncome decimal.Decimal
	Net         decimal.Decimal // TotalIncome - TotalSpent

	// Core excludes the OTHERS group and unbudgeted spending.
	CoreBudget    decimal.Decimal
	CoreSpent     decimal.Decimal
	CoreRemaining decimal.Decimal

	Expenses int
	Incomes  int
}

// CoreStatus reports the status of core spending against the core budget.
func (s *MonthSummary) CoreStatus() Status {
	return statusFor(percentOf(s.CoreSpent, s.CoreBudget))
}

// MonthStart returns the first day of d's month.
func MonthStart(d time.Time) time.Time {
	return time.Date(d.Year(), d.Month(), 1, 0, 0, 0, 0, time.UTC)
}

// InMonth reports whether d falls in the month starting at start.
func InMonth(d, start time.Time) bool {
	return !d.Before(start) && d.Before(start.AddDate(0, 1, 0))
}

// BuildMonthSummary totals the month containing month. Only non-template
// expenses dated inside the month count.
func BuildMonthSummary(month time.Time, expenses []model.Transaction, income []model.Income, budgets []model.CategoryBudget) *MonthSummary {
	start := MonthStart(month)
	s := &MonthSummary{
		Month: start,
		Label: model.MonthLabel(start),
	}

	spent := make(map[string]decimal.Decimal)
	counts := make(map[string]int)
	members := make(map[string]*MemberSpend)
	for _, txn := range expenses {
		if txn.IsTemplate() || !InMonth(txn.Date, start) {
			continue
		}
		spent[txn.Category] = spent[txn.Category].Add(txn.Amount)
		counts[txn.Category]++
		s.TotalSpent = s.TotalSpent.Add(txn.Amount)
		s.Expenses++

		m, ok := members[txn.PaidBy]
		if !ok {
			m = &MemberSpend{Member: txn.PaidBy}
			members[txn.PaidBy] = m
		}
		m.Spent = m.Spent.Add(txn.Amount)
		m.Count++
	}

	for _, inc := range income {
		if !InMonth(inc.Date, start) {
			continue
		}
		s.TotalIncome = s.TotalIncome.Add(inc.Amount)
		s.Incomes++
	}

	groupIndex := make(map[string]int)
	budgeted := make(map[string]bool, len(budgets))
	for _, b := range budgets {
		budgeted[b.Category] = true
		line := newLine(b.Category, b.GroupName, b.Icon, spent[b.Category], b.LimitAmount, counts[b.Category])

		idx, ok := groupIndex[b.GroupName]
		if !ok {
			idx = len(s.Groups)
			groupIndex[b.GroupName] = idx
			s.Groups = append(s.Groups, GroupSummary{Name: b.GroupName})
		}
		g := &s.Groups[idx]
		g.Lines = append(g.Lines, line)
		g.Spent = g.Spent.Add(line.Spent)
		g.Limit = g.Limit.Add(line.Limit)

		s.TotalBudget = s.TotalBudget.Add(b.LimitAmount)
		if b.GroupName != OthersGroup {
			s.CoreBudget = s.CoreBudget.Add(b.LimitAmount)
			s.CoreSpent = s.CoreSpent.Add(line.Spent)
		}
	}

	var unbudgeted []string
	for category := range spent {
		if !budgeted[category] {
			unbudgeted = append(unbudgeted, category)
		}
	}
	if len(unbudgeted) > 0 {
		sort.Strings(unbudgeted)
		g := GroupSummary{Name: UnbudgetedGroup}
		for _, category := range unbudgeted {
			line := newLine(category, UnbudgetedGroup, "", spent[category], decimal.Zero, counts[category])
			g.Lines = append(g.Lines, line)
			g.Spent = g.Spent.Add(line.Spent)
		}
		s.Groups = append(s.Groups, g)
	}

	for _, m := range members {
		s.Members = append(s.Members, *m)
	}
	sort.Slice(s.Members, func(i, j int) bool { return s.Members[i].Member < s.Members[j].Member })

	s.Net = s.TotalIncome.Sub(s.TotalSpent)
	s.CoreRemaining = s.CoreBudget.Sub(s.CoreSpent)
	return s
}

func newLine(category, group, icon string, spent, limit decimal.Decimal, count int) CategoryLine {
	return CategoryLine{
		Category:  category,
		Group:     group,
		Icon:      icon,
		Spent:     spent,
		Limit:     limit,
		Remaining: limit.Sub(spent),
		Percent:   percentOf(spent, limit),
		Count:     count,
	}
}

func percentOf(part, whole decimal.Decimal) decimal.Decimal {
	if !whole.IsPositive() {
		return decimal.Zero
	}
	return part.Mul(hundred).Div(whole).Round(1)
}

func statusFor(percent decimal.Decimal) Status {
	switch {
	case percent.GreaterThanOrEqual(fullPercent):
		return StatusOver
	case percent.GreaterThanOrEqual(warningPercent):
		return StatusWarning
	default:
		return StatusOK
	}
}
