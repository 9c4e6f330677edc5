package sheets

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/Veraticus/household-ledger/internal/cloudsync"
)

// Tab names.
const (
	TabExpenses   = "Expenses"
	TabIncome     = "Income"
	TabCategories = "Categories"
	TabMeta       = "Meta"
)

// Tabs lists every tab the endpoint manages, in write order.
var Tabs = []string{TabExpenses, TabIncome, TabCategories, TabMeta}

var headers = map[string][]string{
	TabExpenses:   {"ID", "Date", "Item", "Category", "Amount", "Paid By", "Notes", "Frequency", "Next Due", "Active"},
	TabIncome:     {"ID", "Date", "Source", "Amount", "Notes"},
	TabCategories: {"Category", "Group", "Limit", "Icon"},
	TabMeta:       {"Budget Month", "Last Updated"},
}

// tabCollection maps data tabs onto wire collection names.
var tabCollection = map[string]string{
	TabExpenses:   cloudsync.CollectionExpenses,
	TabIncome:     cloudsync.CollectionIncome,
	TabCategories: cloudsync.CollectionCategories,
}

// documentToValues lays a snapshot out as one grid per tab, header first.
func documentToValues(doc *cloudsync.Document) map[string][][]any {
	out := make(map[string][][]any, len(Tabs))

	expenses := [][]any{headerRow(TabExpenses)}
	for _, row := range doc.Expenses {
		freq, next, active := "", "", false
		if row.Recurrence != nil {
			freq, next, active = row.Recurrence.Frequency, row.Recurrence.NextDue, row.Recurrence.Active
		}
		expenses = append(expenses, []any{
			row.ID, row.Date, row.Item, row.Category, amountCell(row.Amount),
			row.PaidBy, row.Notes, freq, next, active,
		})
	}
	out[TabExpenses] = expenses

	income := [][]any{headerRow(TabIncome)}
	for _, row := range doc.Income {
		income = append(income, []any{row.ID, row.Date, row.Source, amountCell(row.Amount), row.Notes})
	}
	out[TabIncome] = income

	categories := [][]any{headerRow(TabCategories)}
	for _, row := range doc.Categories {
		categories = append(categories, []any{row.Category, row.Group, amountCell(row.Limit), row.Icon})
	}
	out[TabCategories] = categories

	out[TabMeta] = [][]any{headerRow(TabMeta), {doc.BudgetMonth, doc.LastUpdated}}
	return out
}

// valuesToDocument rebuilds a snapshot from the grids of the tabs that
// exist. A tab missing from grids leaves its collection nil. A tab whose
// header or cells cannot be read is recorded in Skipped.
func valuesToDocument(grids map[string][][]any) *cloudsync.Document {
	doc := &cloudsync.Document{}

	if grid, ok := grids[TabExpenses]; ok {
		rows, err := expenseRows(grid)
		if err != nil {
			doc.Skipped = append(doc.Skipped, tabCollection[TabExpenses])
		} else {
			doc.Expenses = rows
		}
	}
	if grid, ok := grids[TabIncome]; ok {
		rows, err := incomeRows(grid)
		if err != nil {
			doc.Skipped = append(doc.Skipped, tabCollection[TabIncome])
		} else {
			doc.Income = rows
		}
	}
	if grid, ok := grids[TabCategories]; ok {
		rows, err := categoryRows(grid)
		if err != nil {
			doc.Skipped = append(doc.Skipped, tabCollection[TabCategories])
		} else {
			doc.Categories = rows
		}
	}
	if grid, ok := grids[TabMeta]; ok && len(grid) > 1 {
		doc.BudgetMonth = cell(grid[1], 0)
		doc.LastUpdated = cell(grid[1], 1)
	}
	return doc
}

func expenseRows(grid [][]any) ([]cloudsync.ExpenseRow, error) {
	body, err := dataRows(TabExpenses, grid)
	if err != nil {
		return nil, err
	}
	rows := make([]cloudsync.ExpenseRow, 0, len(body))
	for i, r := range body {
		amount, err := parseAmountCell(cell(r, 4))
		if err != nil {
			return nil, fmt.Errorf("%s row %d: %w", TabExpenses, i+2, err)
		}
		row := cloudsync.ExpenseRow{
			ID:       cell(r, 0),
			Date:     cell(r, 1),
			Item:     cell(r, 2),
			Category: cell(r, 3),
			Amount:   amount,
			PaidBy:   cell(r, 5),
			Notes:    cell(r, 6),
		}
		if freq := cell(r, 7); freq != "" {
			row.Recurrence = &cloudsync.RecurrenceRow{
				Frequency: freq,
				NextDue:   cell(r, 8),
				Active:    parseBool(cell(r, 9)),
			}
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func incomeRows(grid [][]any) ([]cloudsync.IncomeRow, error) {
	body, err := dataRows(TabIncome, grid)
	if err != nil {
		return nil, err
	}
	rows := make([]cloudsync.IncomeRow, 0, len(body))
	for i, r := range body {
		amount, err := parseAmountCell(cell(r, 3))
		if err != nil {
			return nil, fmt.Errorf("%s row %d: %w", TabIncome, i+2, err)
		}
		rows = append(rows, cloudsync.IncomeRow{
			ID:     cell(r, 0),
			Date:   cell(r, 1),
			Source: cell(r, 2),
			Amount: amount,
			Notes:  cell(r, 4),
		})
	}
	return rows, nil
}

func categoryRows(grid [][]any) ([]cloudsync.CategoryRow, error) {
	body, err := dataRows(TabCategories, grid)
	if err != nil {
		return nil, err
	}
	rows := make([]cloudsync.CategoryRow, 0, len(body))
	for i, r := range body {
		limit, err := parseAmountCell(cell(r, 2))
		if err != nil {
			return nil, fmt.Errorf("%s row %d: %w", TabCategories, i+2, err)
		}
		rows = append(rows, cloudsync.CategoryRow{
			Category: cell(r, 0),
			Group:    cell(r, 1),
			Limit:    limit,
			Icon:     cell(r, 3),
		})
	}
	return rows, nil
}

// dataRows checks the header and returns the non-blank rows below it.
// An empty tab has no rows.
func dataRows(tab string, grid [][]any) ([][]any, error) {
	if len(grid) == 0 {
		return nil, nil
	}
	want := headers[tab]
	for i, name := range want {
		if !strings.EqualFold(cell(grid[0], i), name) {
			return nil, fmt.Errorf("%s: unexpected header in column %d: want %q", tab, i+1, name)
		}
	}

	body := make([][]any, 0, len(grid)-1)
	for _, r := range grid[1:] {
		if blank(r) {
			continue
		}
		body = append(body, r)
	}
	return body, nil
}

func headerRow(tab string) []any {
	h := headers[tab]
	row := make([]any, len(h))
	for i, name := range h {
		row[i] = name
	}
	return row
}

func amountCell(a *cloudsync.Amount) any {
	if a == nil {
		return ""
	}
	return a.InexactFloat64()
}

func parseAmountCell(s string) (*cloudsync.Amount, error) {
	if s == "" {
		return nil, nil
	}
	d, err := decimal.NewFromString(strings.ReplaceAll(s, ",", ""))
	if err != nil {
		return nil, fmt.Errorf("invalid amount %q: %w", s, err)
	}
	return cloudsync.NewAmount(d), nil
}

// cell renders the value at column i as a string.
func cell(row []any, i int) string {
	if i >= len(row) || row[i] == nil {
		return ""
	}
	switch v := row[i].(type) {
	case string:
		return strings.TrimSpace(v)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(v)
	default:
		return strings.TrimSpace(fmt.Sprint(v))
	}
}

func blank(row []any) bool {
	for i := range row {
		if cell(row, i) != "" {
			return false
		}
	}
	return true
}

func parseBool(s string) bool {
	b, err := strconv.ParseBool(strings.ToLower(s))
	return err == nil && b
}
