package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/google/uuid"

	"monoledger/internal/analytics"
	"monoledger/internal/backup"
	"monoledger/internal/budget"
	"monoledger/internal/core"
	"monoledger/internal/ledger"
	"monoledger/internal/log"
	"monoledger/internal/registry"
	"monoledger/internal/settings"
	"monoledger/internal/storage"
)

// ErrUnknownCategory is returned when an expense names a label that is not
// in the registry.
var ErrUnknownCategory = errors.New("unknown category")

// Tracker owns all application state. Every mutation goes through one of its
// methods and is durable once the method returns without error.
type Tracker struct {
	store    *storage.Store
	ledger   *ledger.Ledger
	registry *registry.Registry
	budget   *budget.Config
	settings *settings.Settings
	now      func() time.Time
	logger   *log.Logger
}

type options struct {
	logger  *log.Logger
	now     func() time.Time
	newID   func() string
	shuffle func(n int, swap func(i, j int))
}

type Option func(*options)

func WithLogger(l *log.Logger) Option {
	return func(o *options) { o.logger = l }
}

// WithClock sets the source of "now" for timestamps and "today".
func WithClock(now func() time.Time) Option {
	return func(o *options) { o.now = now }
}

func WithIDGenerator(gen func() string) Option {
	return func(o *options) { o.newID = gen }
}

func WithShuffler(fn func(n int, swap func(i, j int))) Option {
	return func(o *options) { o.shuffle = fn }
}

// Open loads every piece of state from store, persisting defaults for
// anything not stored yet.
func Open(ctx context.Context, store *storage.Store, opts ...Option) (*Tracker, error) {
	o := options{logger: log.Discard(), now: time.Now, newID: uuid.NewString}
	for _, opt := range opts {
		opt(&o)
	}

	l, err := ledger.Open(ctx, store,
		ledger.WithLogger(o.logger),
		ledger.WithClock(o.now),
		ledger.WithIDGenerator(o.newID))
	if err != nil {
		return nil, err
	}
	regOpts := []registry.Option{registry.WithLogger(o.logger)}
	if o.shuffle != nil {
		regOpts = append(regOpts, registry.WithShuffler(o.shuffle))
	}
	r, err := registry.Open(ctx, store, regOpts...)
	if err != nil {
		return nil, err
	}
	b, err := budget.Open(ctx, store, o.logger)
	if err != nil {
		return nil, err
	}
	s, err := settings.Open(ctx, store, o.logger)
	if err != nil {
		return nil, err
	}

	t := &Tracker{
		store:    store,
		ledger:   l,
		registry: r,
		budget:   b,
		settings: s,
		now:      o.now,
		logger:   o.logger.WithComponent(log.ComponentApp),
	}
	t.logger.DebugContext(ctx, "State loaded",
		log.FieldOperation, log.OpStartup,
		log.FieldCount, l.Len())
	return t, nil
}

// Today is the current calendar date in the clock's location.
func (t *Tracker) Today() core.Date {
	return core.DateOf(t.now())
}

// AddExpense records a new expense. The category is matched against the
// registry in canonical form.
func (t *Tracker) AddExpense(ctx context.Context, in core.NewExpense) (core.Expense, error) {
	in.Description = strings.TrimSpace(in.Description)
	in.Category = core.NormalizeLabel(in.Category)
	if err := in.Validate(); err != nil {
		return core.Expense{}, err
	}
	if !t.registry.Contains(in.Category) {
		return core.Expense{}, fmt.Errorf("%w: %s", ErrUnknownCategory, in.Category)
	}
	return t.ledger.Add(ctx, in)
}

func (t *Tracker) DeleteExpense(ctx context.Context, id string) error {
	return t.ledger.Delete(ctx, id)
}

// Expense looks up one record by id.
func (t *Tracker) Expense(id string) (core.Expense, bool) {
	return t.ledger.Get(id)
}

// Expenses returns the ledger, newest insertion first.
func (t *Tracker) Expenses() []core.Expense {
	return t.ledger.List()
}

func (t *Tracker) AddCategory(ctx context.Context, label string) (bool, error) {
	return t.registry.Add(ctx, label)
}

// RemoveCategory drops label from the registry. Expenses already filed
// under it keep the label.
func (t *Tracker) RemoveCategory(ctx context.Context, label string) (bool, error) {
	return t.registry.Remove(ctx, label)
}

func (t *Tracker) ShuffleCategories(ctx context.Context) error {
	return t.registry.Shuffle(ctx)
}

func (t *Tracker) Categories() []string {
	return t.registry.List()
}

func (t *Tracker) SetBudget(ctx context.Context, daily, monthly float64) error {
	return t.budget.Set(ctx, daily, monthly)
}

func (t *Tracker) SetBudgetFromInput(ctx context.Context, daily, monthly string) error {
	return t.budget.SetFromInput(ctx, daily, monthly)
}

func (t *Tracker) Budget() core.Budget {
	return t.budget.Get()
}

func (t *Tracker) Theme() core.Theme {
	return t.settings.Theme()
}

func (t *Tracker) SetTheme(ctx context.Context, id string) error {
	return t.settings.SetTheme(ctx, id)
}

func (t *Tracker) Currency() string {
	return t.settings.Currency()
}

func (t *Tracker) SetCurrency(ctx context.Context, code string) error {
	return t.settings.SetCurrency(ctx, code)
}

func (t *Tracker) DeviceID() string {
	return t.settings.DeviceID()
}

func (t *Tracker) Onboarded() bool {
	return t.settings.Onboarded()
}

// Onboarding holds the choices made during first-run setup.
type Onboarding struct {
	// Currency is kept unchanged when empty.
	Currency string
	// Categories replaces the registry when non-nil.
	Categories []string
	// Daily and Monthly are raw limit input; empty means no limit.
	Daily, Monthly string
}

// CompleteOnboarding applies the first-run choices and marks setup done.
func (t *Tracker) CompleteOnboarding(ctx context.Context, ob Onboarding) error {
	if strings.TrimSpace(ob.Currency) != "" {
		if err := t.settings.SetCurrency(ctx, ob.Currency); err != nil {
			return err
		}
	}
	if ob.Categories != nil {
		if err := t.registry.Replace(ctx, ob.Categories); err != nil {
			return err
		}
	}
	if err := t.budget.SetFromInput(ctx, ob.Daily, ob.Monthly); err != nil {
		return err
	}
	return t.settings.CompleteOnboarding(ctx)
}

// Snapshot captures the exportable state.
func (t *Tracker) Snapshot() backup.Snapshot {
	return backup.Snapshot{
		Expenses:   t.ledger.List(),
		Categories: t.registry.List(),
		Budget:     t.budget.Get(),
		Currency:   t.settings.Currency(),
		DeviceID:   t.settings.DeviceID(),
	}
}

// Export writes a backup document to w.
func (t *Tracker) Export(ctx context.Context, w io.Writer) error {
	s := t.Snapshot()
	if err := backup.Encode(w, s); err != nil {
		return err
	}
	t.logger.InfoContext(ctx, "Backup exported",
		log.FieldOperation, log.OpExport,
		log.FieldCount, len(s.Expenses))
	return nil
}

// ExportFileName is the suggested file name for an export taken now.
func (t *Tracker) ExportFileName() string {
	return backup.FileName(t.now())
}

// ImportReport lists which backup fields were applied and which were
// present but unusable.
type ImportReport struct {
	Applied []string
	Skipped []string
}

// Import restores state from a backup document. A document that is not a
// JSON object fails with backup.ErrCorrupt before anything changes.
// Otherwise each field is applied on its own; a persistence failure stops
// the import and the report says what was applied before it.
func (t *Tracker) Import(ctx context.Context, r io.Reader) (ImportReport, error) {
	p, err := backup.Decode(r)
	if err != nil {
		t.logger.WarnContext(ctx, "Backup rejected",
			log.FieldOperation, log.OpImport,
			log.FieldErrorType, log.ErrorTypeCorrupt,
			log.FieldError, err)
		return ImportReport{}, err
	}

	rep := ImportReport{Skipped: p.Skipped}
	steps := []struct {
		field string
		apply func() error
		ok    bool
	}{
		{backup.FieldExpenses, func() error { return t.ledger.Replace(ctx, *p.Expenses) }, p.Expenses != nil},
		{backup.FieldCategories, func() error { return t.registry.Replace(ctx, *p.Categories) }, p.Categories != nil},
		{backup.FieldBudget, func() error { return t.budget.Set(ctx, p.Budget.Daily, p.Budget.Monthly) }, p.Budget != nil},
		{backup.FieldCurrency, func() error { return t.settings.SetCurrency(ctx, *p.Currency) }, p.Currency != nil},
	}
	for _, s := range steps {
		if !s.ok {
			continue
		}
		if err := s.apply(); err != nil {
			return rep, fmt.Errorf("import %s: %w", s.field, err)
		}
		rep.Applied = append(rep.Applied, s.field)
	}

	t.logger.InfoContext(ctx, "Backup imported",
		log.FieldOperation, log.OpImport,
		log.FieldApplied, rep.Applied,
		log.FieldSkipped, rep.Skipped)
	return rep, nil
}

// Reset empties the ledger and restores default categories and limits.
// Theme, currency, onboarding and device identity are kept.
func (t *Tracker) Reset(ctx context.Context) error {
	if err := t.ledger.Clear(ctx); err != nil {
		return err
	}
	if err := t.registry.Reset(ctx); err != nil {
		return err
	}
	if err := t.budget.Reset(ctx); err != nil {
		return err
	}
	t.logger.InfoContext(ctx, "State reset", log.FieldOperation, log.OpReset)
	return nil
}

// Report summarises the current ledger for today.
func (t *Tracker) Report() analytics.Report {
	return analytics.Summarize(t.ledger.List(), t.Today(), t.budget.Get())
}

// History groups the ledger by date, most recent first.
func (t *Tracker) History() []analytics.DayGroup {
	return analytics.History(t.ledger.List())
}

// FormatAmount renders v in the selected currency.
func (t *Tracker) FormatAmount(v float64) string {
	return core.FormatCurrency(v, t.settings.Currency())
}

// Close releases the underlying store.
func (t *Tracker) Close() error {
	if t.store == nil {
		return nil
	}
	if err := t.store.Close(); err != nil {
		return fmt.Errorf("close store: %w", err)
	}
	return nil
}
