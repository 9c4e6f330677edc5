package recurrence

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

// DefaultMaxCatchUp bounds the instances generated for one template in a single pass.
const DefaultMaxCatchUp = 1000

// ErrCatchUpLimit is returned when a template would generate more than the
// configured maximum number of instances in one pass.
var ErrCatchUpLimit = errors.New("recurrence catch-up limit exceeded")

// Store is the subset of storage the projector needs.
type Store interface {
	ListDueTemplates(ctx context.Context, today time.Time) ([]model.Transaction, error)
	BeginTx(ctx context.Context) (service.Transaction, error)
}

// ProgressFunc is called after each template is processed.
type ProgressFunc func(done, total int)

// Projector keeps the store caught up with every occurrence of its active
// recurring templates.
type Projector struct {
	store      Store
	clock      func() time.Time
	location   *time.Location
	logger     *slog.Logger
	progress   ProgressFunc
	maxCatchUp int
	mu         sync.Mutex
}

// Option configures a Projector.
type Option func(*Projector)

// WithClock sets the source of "now".
func WithClock(clock func() time.Time) Option {
	return func(p *Projector) { p.clock = clock }
}

// WithLocation sets the reference zone used to decide which calendar day "now" is.
func WithLocation(loc *time.Location) Option {
	return func(p *Projector) {
		if loc != nil {
			p.location = loc
		}
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(p *Projector) {
		if logger != nil {
			p.logger = logger
		}
	}
}

// WithMaxCatchUp overrides DefaultMaxCatchUp.
func WithMaxCatchUp(n int) Option {
	return func(p *Projector) {
		if n > 0 {
			p.maxCatchUp = n
		}
	}
}

// WithProgress registers a per-template progress callback.
func WithProgress(fn ProgressFunc) Option {
	return func(p *Projector) { p.progress = fn }
}

// NewProjector creates a projector over store.
func NewProjector(store Store, opts ...Option) *Projector {
	p := &Projector{
		store:      store,
		clock:      time.Now,
		location:   time.UTC,
		logger:     slog.Default(),
		maxCatchUp: DefaultMaxCatchUp,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Today returns the current calendar date in the projector's reference zone.
func (p *Projector) Today() time.Time {
	return model.DateOf(p.clock(), p.location)
}

// Project catches every due template up to today.
func (p *Projector) Project(ctx context.Context) (int, error) {
	return p.ProjectAt(ctx, p.Today())
}

// ProjectAt catches every template due on or before today up to today and
// returns the number of instances inserted.
//
// Each template is caught up inside its own database transaction: either all
// of its instances are inserted and its next due date advanced, or nothing
// about it changes. A failing template is logged and skipped so the others
// still catch up; the failures come back joined, alongside the count of
// instances that were committed.
func (p *Projector) ProjectAt(ctx context.Context, today time.Time) (int, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	today = model.DateOf(today, time.UTC)

	templates, err := p.store.ListDueTemplates(ctx, today)
	if err != nil {
		return 0, fmt.Errorf("failed to list due templates: %w", err)
	}

	inserted := 0
	var errs []error
	for i, tmpl := range templates {
		if err := ctx.Err(); err != nil {
			errs = append(errs, err)
			return inserted, errors.Join(errs...)
		}

		n, err := p.catchUp(ctx, tmpl.ID, today)
		if err != nil {
			p.logger.Warn("skipping recurring template",
				"id", tmpl.ID,
				"item", tmpl.Item,
				"error", err)
			errs = append(errs, fmt.Errorf("template %s (%s): %w", tmpl.ID, tmpl.Item, err))
		}
		inserted += n

		if p.progress != nil {
			p.progress(i+1, len(templates))
		}
	}

	if inserted > 0 {
		p.logger.Info("projected recurring expenses",
			"templates", len(templates),
			"instances", inserted,
			"today", model.FormatDate(today))
	}
	return inserted, errors.Join(errs...)
}

func (p *Projector) catchUp(ctx context.Context, id string, today time.Time) (int, error) {
	tx, err := p.store.BeginTx(ctx)
	if err != nil {
		return 0, err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	// Re-read inside the transaction: another pass may already have advanced it.
	tmpl, err := tx.GetExpense(ctx, id)
	if err != nil {
		return 0, err
	}
	if !tmpl.IsTemplate() || tmpl.Recurrence.NextDue.After(today) {
		p.logger.Debug("template no longer due", "id", id)
		return 0, nil
	}

	cursor := *tmpl.Recurrence.NextDue
	count := 0
	for !cursor.After(today) {
		if count >= p.maxCatchUp {
			return 0, fmt.Errorf("%w: more than %d occurrences before %s",
				ErrCatchUpLimit, p.maxCatchUp, model.FormatDate(today))
		}

		inst := tmpl.Instance(cursor)
		if err := tx.InsertExpense(ctx, &inst); err != nil {
			return 0, err
		}
		count++

		if cursor, err = AdvanceDate(cursor, tmpl.Recurrence.Frequency); err != nil {
			return 0, err
		}
	}

	tmpl.Recurrence.NextDue = &cursor
	if err := tx.UpdateExpense(ctx, tmpl); err != nil {
		return 0, err
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit catch-up: %w", err)
	}
	committed = true

	p.logger.Debug("caught up template",
		"id", id,
		"instances", count,
		"next_due", model.FormatDate(cursor))
	return count, nil
}
