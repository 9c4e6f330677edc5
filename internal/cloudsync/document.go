// Package cloudsync pushes and pulls the whole ledger to and from a remote
// budget snapshot endpoint using full-collection replacement.
package cloudsync

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/Veraticus/household-ledger/internal/model"
)

// Collection names as they appear on the wire.
const (
	CollectionExpenses   = "expenses"
	CollectionIncome     = "income"
	CollectionCategories = "categories"
)

// ErrMalformedRow is returned by the FromWire adapters for rows missing a
// required field or carrying an unparseable value.
var ErrMalformedRow = errors.New("malformed row")

// Amount is a decimal that marshals as a bare JSON number and accepts either
// a number or a quoted string.
type Amount struct {
	decimal.Decimal
}

// NewAmount wraps d.
func NewAmount(d decimal.Decimal) *Amount {
	return &Amount{Decimal: d}
}

// MarshalJSON implements json.Marshaler.
func (a Amount) MarshalJSON() ([]byte, error) {
	return []byte(a.String()), nil
}

// UnmarshalJSON implements json.Unmarshaler.
func (a *Amount) UnmarshalJSON(data []byte) error {
	return a.Decimal.UnmarshalJSON(data)
}

// RecurrenceRow is the nested recurrence object of an expense row.
type RecurrenceRow struct {
	Frequency string `json:"frequency"`
	NextDue   string `json:"nextDue,omitempty"`
	Active    bool   `json:"active"`
}

// ExpenseRow is an expense as exchanged with the remote endpoint.
type ExpenseRow struct {
	Recurrence *RecurrenceRow `json:"recurrence,omitempty"`
	Amount     *Amount        `json:"amount"`
	ID         string         `json:"id"`
	Date       string         `json:"date"`
	Item       string         `json:"item"`
	Category   string         `json:"category"`
	PaidBy     string         `json:"paidBy"`
	Notes      string         `json:"notes"`
}

// IncomeRow is an income record on the wire.
type IncomeRow struct {
	Amount *Amount `json:"amount"`
	ID     string  `json:"id"`
	Date   string  `json:"date"`
	Source string  `json:"source"`
	Notes  string  `json:"notes"`
}

// CategoryRow is a category budget on the wire.
type CategoryRow struct {
	Limit    *Amount `json:"limit"`
	Category string  `json:"category"`
	Group    string  `json:"group"`
	Icon     string  `json:"icon"`
}

// Document is the budget snapshot exchanged with the remote endpoint.
//
// A nil collection was absent from the received document. Skipped lists the
// collections that were present but could not be decoded.
type Document struct {
	Expenses    []ExpenseRow  `json:"expenses"`
	Income      []IncomeRow   `json:"income"`
	Categories  []CategoryRow `json:"categories"`
	Skipped     []string      `json:"-"`
	BudgetMonth string        `json:"budgetMonth"`
	LastUpdated string        `json:"lastUpdated"`
}

// UnmarshalJSON decodes each collection independently so that one malformed
// collection does not prevent the others from being used.
func (d *Document) UnmarshalJSON(data []byte) error {
	var raw struct {
		Expenses    json.RawMessage `json:"expenses"`
		Income      json.RawMessage `json:"income"`
		Categories  json.RawMessage `json:"categories"`
		BudgetMonth json.RawMessage `json:"budgetMonth"`
		LastUpdated json.RawMessage `json:"lastUpdated"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("invalid snapshot document: %w", err)
	}

	*d = Document{}

	var err error
	if d.Expenses, err = decodeCollection[ExpenseRow](raw.Expenses); err != nil {
		d.Skipped = append(d.Skipped, CollectionExpenses)
	}
	if d.Income, err = decodeCollection[IncomeRow](raw.Income); err != nil {
		d.Skipped = append(d.Skipped, CollectionIncome)
	}
	if d.Categories, err = decodeCollection[CategoryRow](raw.Categories); err != nil {
		d.Skipped = append(d.Skipped, CollectionCategories)
	}

	d.BudgetMonth = decodeString(raw.BudgetMonth)
	d.LastUpdated = decodeString(raw.LastUpdated)
	return nil
}

func decodeCollection[T any](raw json.RawMessage) ([]T, error) {
	if isAbsent(raw) {
		return nil, nil
	}
	var rows []T
	if err := json.Unmarshal(raw, &rows); err != nil {
		return nil, err
	}
	if rows == nil {
		rows = []T{}
	}
	return rows, nil
}

func decodeString(raw json.RawMessage) string {
	if isAbsent(raw) {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return ""
	}
	return s
}

func isAbsent(raw json.RawMessage) bool {
	trimmed := strings.TrimSpace(string(raw))
	return trimmed == "" || trimmed == "null"
}

// ExpenseToWire converts a stored expense into its wire row. The recurrence
// object is only emitted for active templates.
func ExpenseToWire(txn model.Transaction) ExpenseRow {
	row := ExpenseRow{
		ID:       txn.ID,
		Date:     model.FormatDate(txn.Date),
		Item:     txn.Item,
		Category: txn.Category,
		Amount:   NewAmount(txn.Amount),
		PaidBy:   txn.PaidBy,
		Notes:    txn.Notes,
	}
	if txn.IsTemplate() {
		row.Recurrence = &RecurrenceRow{
			Frequency: string(txn.Recurrence.Frequency),
			NextDue:   model.FormatDate(*txn.Recurrence.NextDue),
			Active:    true,
		}
	}
	return row
}

// ExpenseFromWire converts a wire row into an expense. Timestamps in date
// fields are read as calendar dates in loc.
func ExpenseFromWire(row ExpenseRow, loc *time.Location) (model.Transaction, error) {
	if err := requireFields(row.ID, "id", row.Item, "item", row.Category, "category"); err != nil {
		return model.Transaction{}, fmt.Errorf("expense %q: %w", row.ID, err)
	}
	date, err := parseRowDate(row.Date, loc)
	if err != nil {
		return model.Transaction{}, fmt.Errorf("expense %s: %w", row.ID, err)
	}
	amount, err := parseRowAmount(row.Amount, "amount")
	if err != nil {
		return model.Transaction{}, fmt.Errorf("expense %s: %w", row.ID, err)
	}

	txn := model.Transaction{
		ID:       row.ID,
		Date:     date,
		Item:     row.Item,
		Category: row.Category,
		Amount:   amount,
		PaidBy:   row.PaidBy,
		Notes:    row.Notes,
	}

	if row.Recurrence != nil {
		rec, err := recurrenceFromWire(*row.Recurrence, loc)
		if err != nil {
			return model.Transaction{}, fmt.Errorf("expense %s: %w", row.ID, err)
		}
		txn.Recurrence = rec
	}
	return txn, nil
}

func recurrenceFromWire(row RecurrenceRow, loc *time.Location) (*model.Recurrence, error) {
	if !row.Active {
		if row.Frequency == "" {
			return nil, nil
		}
		freq, err := model.ParseFrequency(row.Frequency)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMalformedRow, err)
		}
		return &model.Recurrence{Frequency: freq}, nil
	}

	freq, err := model.ParseFrequency(row.Frequency)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedRow, err)
	}
	if row.NextDue == "" {
		return nil, fmt.Errorf("%w: active recurrence without nextDue", ErrMalformedRow)
	}
	next, err := parseRowDate(row.NextDue, loc)
	if err != nil {
		return nil, err
	}
	return &model.Recurrence{Frequency: freq, NextDue: &next, Active: true}, nil
}

// IncomeToWire converts a stored income record into its wire row.
func IncomeToWire(income model.Income) IncomeRow {
	return IncomeRow{
		ID:     income.ID,
		Date:   model.FormatDate(income.Date),
		Source: income.Source,
		Amount: NewAmount(income.Amount),
		Notes:  income.Notes,
	}
}

// IncomeFromWire converts a wire row into an income record, reading dates in loc.
func IncomeFromWire(row IncomeRow, loc *time.Location) (model.Income, error) {
	if err := requireFields(row.ID, "id", row.Source, "source"); err != nil {
		return model.Income{}, fmt.Errorf("income %q: %w", row.ID, err)
	}
	date, err := parseRowDate(row.Date, loc)
	if err != nil {
		return model.Income{}, fmt.Errorf("income %s: %w", row.ID, err)
	}
	amount, err := parseRowAmount(row.Amount, "amount")
	if err != nil {
		return model.Income{}, fmt.Errorf("income %s: %w", row.ID, err)
	}
	return model.Income{
		ID:     row.ID,
		Date:   date,
		Source: row.Source,
		Amount: amount,
		Notes:  row.Notes,
	}, nil
}

// BudgetToWire converts a category budget into its wire row.
func BudgetToWire(budget model.CategoryBudget) CategoryRow {
	return CategoryRow{
		Category: budget.Category,
		Group:    budget.GroupName,
		Limit:    NewAmount(budget.LimitAmount),
		Icon:     budget.Icon,
	}
}

// BudgetFromWire converts a wire row into a category budget.
func BudgetFromWire(row CategoryRow) (model.CategoryBudget, error) {
	if err := requireFields(row.Category, "category"); err != nil {
		return model.CategoryBudget{}, err
	}
	limit, err := parseRowAmount(row.Limit, "limit")
	if err != nil {
		return model.CategoryBudget{}, fmt.Errorf("category %s: %w", row.Category, err)
	}
	return model.CategoryBudget{
		Category:    row.Category,
		GroupName:   row.Group,
		LimitAmount: limit,
		Icon:        row.Icon,
	}, nil
}

// requireFields checks (value, name) pairs for blank values.
func requireFields(pairs ...string) error {
	for i := 0; i+1 < len(pairs); i += 2 {
		if strings.TrimSpace(pairs[i]) == "" {
			return fmt.Errorf("%w: missing %s", ErrMalformedRow, pairs[i+1])
		}
	}
	return nil
}

func parseRowDate(s string, loc *time.Location) (time.Time, error) {
	if strings.TrimSpace(s) == "" {
		return time.Time{}, fmt.Errorf("%w: missing date", ErrMalformedRow)
	}
	if loc == nil {
		loc = time.UTC
	}
	d, err := model.ParseDateIn(s, loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %v", ErrMalformedRow, err)
	}
	return d, nil
}

func parseRowAmount(a *Amount, field string) (decimal.Decimal, error) {
	if a == nil {
		return decimal.Zero, fmt.Errorf("%w: missing %s", ErrMalformedRow, field)
	}
	if a.IsNegative() {
		return decimal.Zero, fmt.Errorf("%w: negative %s", ErrMalformedRow, field)
	}
	return a.Decimal, nil
}
