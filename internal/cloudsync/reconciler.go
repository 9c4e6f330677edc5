package cloudsync

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/Veraticus/household-ledger/internal/model"
	"github.com/Veraticus/household-ledger/internal/service"
)

// Reconciler errors.
var (
	ErrSyncInProgress  = errors.New("a sync is already in progress")
	ErrMissingEndpoint = errors.New("no sync endpoint configured")
)

// Direction names which side wins a sync.
type Direction string

// Sync directions.
const (
	DirectionPush Direction = "push"
	DirectionPull Direction = "pull"
)

// State is the reconciler's lifecycle state.
type State int

// Reconciler states.
const (
	StateIdle State = iota
	StateInFlight
)

func (s State) String() string {
	if s == StateInFlight {
		return "in-flight"
	}
	return "idle"
}

// Outcome is the result of the most recent sync.
type Outcome string

// Outcomes.
const (
	OutcomeNone    Outcome = ""
	OutcomeSuccess Outcome = "success"
	OutcomeFailed  Outcome = "failed"
)

// Report summarizes a successful sync.
type Report struct {
	At                 time.Time
	Direction          Direction
	BudgetMonth        string
	SkippedCollections []string
	Expenses           int
	Income             int
	Categories         int
}

// Store is the local side of a sync.
type Store interface {
	ListExpenses(ctx context.Context) ([]model.Transaction, error)
	ListIncome(ctx context.Context) ([]model.Income, error)
	ListBudgets(ctx context.Context) ([]model.CategoryBudget, error)
	ReplaceAll(ctx context.Context, set service.ReplaceSet) error
	PutSetting(ctx context.Context, key, value string) error
}

// Reconciler performs whole-snapshot push and pull between a local store and
// a remote endpoint. There is no merge: the chosen direction wins.
type Reconciler struct {
	store       Store
	endpoint    Endpoint
	clock       func() time.Time
	location    *time.Location
	logger      *slog.Logger
	lastErr     error
	lastOutcome Outcome
	state       State
	mu          sync.Mutex
}

// Option configures a Reconciler.
type Option func(*Reconciler)

// WithClock sets the source of "now".
func WithClock(clock func() time.Time) Option {
	return func(r *Reconciler) { r.clock = clock }
}

// WithLocation sets the household zone. It picks the budget month label and
// the calendar day of any timestamp found in a pulled snapshot.
func WithLocation(loc *time.Location) Option {
	return func(r *Reconciler) {
		if loc != nil {
			r.location = loc
		}
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Reconciler) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// NewReconciler creates a reconciler. endpoint may be nil, in which case
// every sync fails with ErrMissingEndpoint.
func NewReconciler(store Store, endpoint Endpoint, opts ...Option) *Reconciler {
	r := &Reconciler{
		store:    store,
		endpoint: endpoint,
		clock:    time.Now,
		location: time.UTC,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// State reports whether a sync is running.
func (r *Reconciler) State() State {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.state
}

// LastOutcome returns the outcome and error of the most recent sync.
func (r *Reconciler) LastOutcome() (Outcome, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.lastOutcome, r.lastErr
}

func (r *Reconciler) begin() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.state == StateInFlight {
		return ErrSyncInProgress
	}
	r.state = StateInFlight
	return nil
}

func (r *Reconciler) finish(dir Direction, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.state = StateIdle
	r.lastErr = err
	if err != nil {
		r.lastOutcome = OutcomeFailed
		r.logger.Warn("sync failed", "direction", dir, "error", err)
		return
	}
	r.lastOutcome = OutcomeSuccess
}

// Snapshot builds the wire document for everything in the local store.
func (r *Reconciler) Snapshot(ctx context.Context) (*Document, error) {
	expenses, err := r.store.ListExpenses(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to read expenses: %w", err)
	}
	income, err := r.store.ListIncome(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to read income: %w", err)
	}
	budgets, err := r.store.ListBudgets(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to read category budgets: %w", err)
	}

	now := r.clock()
	doc := &Document{
		Expenses:    make([]ExpenseRow, 0, len(expenses)),
		Income:      make([]IncomeRow, 0, len(income)),
		Categories:  make([]CategoryRow, 0, len(budgets)),
		BudgetMonth: model.MonthLabel(now.In(r.location)),
		LastUpdated: now.UTC().Format(time.RFC3339),
	}
	for _, txn := range expenses {
		doc.Expenses = append(doc.Expenses, ExpenseToWire(txn))
	}
	for _, inc := range income {
		doc.Income = append(doc.Income, IncomeToWire(inc))
	}
	for _, b := range budgets {
		doc.Categories = append(doc.Categories, BudgetToWire(b))
	}
	return doc, nil
}

// Push overwrites the remote snapshot with the local collections.
func (r *Reconciler) Push(ctx context.Context) (report *Report, err error) {
	if r.endpoint == nil {
		return nil, ErrMissingEndpoint
	}
	if err := r.begin(); err != nil {
		return nil, err
	}
	defer func() { r.finish(DirectionPush, err) }()

	doc, err := r.Snapshot(ctx)
	if err != nil {
		return nil, err
	}

	if err := r.endpoint.Send(ctx, doc); err != nil {
		return nil, fmt.Errorf("push failed: %w", err)
	}

	at := r.clock()
	if err := r.store.PutSetting(ctx, model.SettingLastSynced, at.UTC().Format(time.RFC3339)); err != nil {
		return nil, fmt.Errorf("failed to record sync time: %w", err)
	}

	report = &Report{
		At:          at,
		Direction:   DirectionPush,
		BudgetMonth: doc.BudgetMonth,
		Expenses:    len(doc.Expenses),
		Income:      len(doc.Income),
		Categories:  len(doc.Categories),
	}
	r.logger.Info("pushed snapshot",
		"expenses", report.Expenses,
		"income", report.Income,
		"categories", report.Categories)
	return report, nil
}

// Pull replaces every local collection present in the remote snapshot.
// Collections absent from the snapshot, or present but malformed, are left
// untouched. Local edits made since the last push are lost.
func (r *Reconciler) Pull(ctx context.Context) (report *Report, err error) {
	if r.endpoint == nil {
		return nil, ErrMissingEndpoint
	}
	if err := r.begin(); err != nil {
		return nil, err
	}
	defer func() { r.finish(DirectionPull, err) }()

	doc, err := r.endpoint.Fetch(ctx)
	if err != nil {
		return nil, fmt.Errorf("pull failed: %w", err)
	}
	if doc == nil {
		return nil, fmt.Errorf("pull failed: %w: empty response", ErrRemoteStatus)
	}

	set, skipped := r.replaceSet(doc)

	at := r.clock()
	set.Settings = map[string]string{model.SettingLastSynced: at.UTC().Format(time.RFC3339)}
	if err := r.store.ReplaceAll(ctx, set); err != nil {
		return nil, fmt.Errorf("failed to apply snapshot: %w", err)
	}

	report = &Report{
		At:                 at,
		Direction:          DirectionPull,
		BudgetMonth:        doc.BudgetMonth,
		SkippedCollections: skipped,
		Expenses:           len(set.Expenses),
		Income:             len(set.Income),
		Categories:         len(set.Budgets),
	}
	r.logger.Info("pulled snapshot",
		"expenses", report.Expenses,
		"income", report.Income,
		"categories", report.Categories,
		"skipped", skipped)
	return report, nil
}

// replaceSet converts the document's collections, dropping any collection
// with a malformed row.
func (r *Reconciler) replaceSet(doc *Document) (service.ReplaceSet, []string) {
	var set service.ReplaceSet
	skipped := append([]string(nil), doc.Skipped...)

	skip := func(name string, err error) {
		r.logger.Warn("skipping malformed collection", "collection", name, "error", err)
		skipped = append(skipped, name)
	}

	for _, name := range doc.Skipped {
		r.logger.Warn("skipping undecodable collection", "collection", name)
	}

	if doc.Expenses != nil {
		if rows, err := convertRows(doc.Expenses, r.location, ExpenseFromWire); err != nil {
			skip(CollectionExpenses, err)
		} else {
			set.Expenses = rows
		}
	}
	if doc.Income != nil {
		if rows, err := convertRows(doc.Income, r.location, IncomeFromWire); err != nil {
			skip(CollectionIncome, err)
		} else {
			set.Income = rows
		}
	}
	if doc.Categories != nil {
		if rows, err := convertRows(doc.Categories, r.location, func(row CategoryRow, _ *time.Location) (model.CategoryBudget, error) {
			return BudgetFromWire(row)
		}); err != nil {
			skip(CollectionCategories, err)
		} else {
			set.Budgets = rows
		}
	}
	return set, skipped
}

func convertRows[W, M any](rows []W, loc *time.Location, convert func(W, *time.Location) (M, error)) ([]M, error) {
	out := make([]M, 0, len(rows))
	for _, row := range rows {
		m, err := convert(row, loc)
		if err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, nil
}
