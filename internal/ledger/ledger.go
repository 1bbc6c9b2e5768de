// Package ledger owns the ordered collection of expense records.
package ledger

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"monoledger/internal/core"
	"monoledger/internal/log"
	"monoledger/internal/storage"
)

var (
	ErrDuplicateID = errors.New("duplicate expense id")
	ErrInvalid     = errors.New("invalid expense record")
)

// Ledger holds expenses newest insertion first. Every mutation is persisted
// before the in-memory list changes, so a failed write leaves the ledger
// exactly as it was.
type Ledger struct {
	mu       sync.RWMutex
	store    *storage.Store
	expenses []core.Expense
	now      func() time.Time
	newID    func() string
	logger   *log.Logger
}

type Option func(*Ledger)

// WithClock overrides the timestamp source.
func WithClock(now func() time.Time) Option {
	return func(l *Ledger) { l.now = now }
}

// WithIDGenerator overrides id assignment.
func WithIDGenerator(gen func() string) Option {
	return func(l *Ledger) { l.newID = gen }
}

func WithLogger(logger *log.Logger) Option {
	return func(l *Ledger) {
		if logger != nil {
			l.logger = logger.WithComponent(log.ComponentLedger)
		}
	}
}

// Open loads the persisted ledger, creating an empty one on first run.
func Open(ctx context.Context, store *storage.Store, opts ...Option) (*Ledger, error) {
	l := &Ledger{
		store:  store,
		now:    time.Now,
		newID:  uuid.NewString,
		logger: log.Discard(),
	}
	for _, opt := range opts {
		opt(l)
	}

	expenses, err := storage.Get(ctx, store, storage.KeyExpenses, []core.Expense{})
	if err != nil {
		return nil, fmt.Errorf("load expenses: %w", err)
	}
	l.expenses = expenses
	return l, nil
}

// Add validates the input, assigns a fresh id and creation timestamp and
// prepends the new record.
func (l *Ledger) Add(ctx context.Context, in core.NewExpense) (core.Expense, error) {
	if err := in.Validate(); err != nil {
		return core.Expense{}, err
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	e := core.Expense{
		ID:          l.uniqueID(),
		Amount:      in.Amount,
		Description: in.Description,
		Category:    in.Category,
		Date:        in.Date,
		Timestamp:   l.now().UnixMilli(),
	}

	next := make([]core.Expense, 0, len(l.expenses)+1)
	next = append(next, e)
	next = append(next, l.expenses...)
	if err := l.commit(ctx, next); err != nil {
		return core.Expense{}, err
	}

	l.logger.InfoContext(ctx, "Expense added",
		log.NewFields().
			WithOperation(log.OpCreate).
			WithExpense(e.ID, e.Description, e.Amount, e.Category, e.Date.String()).
			ToSlice()...)
	return e, nil
}

// uniqueID draws ids until one is unused. With UUIDs this loops once.
func (l *Ledger) uniqueID() string {
	for {
		id := l.newID()
		if l.indexOf(id) < 0 {
			return id
		}
	}
}

// Delete removes the record with id. Deleting an unknown id is a no-op.
func (l *Ledger) Delete(ctx context.Context, id string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	i := l.indexOf(id)
	if i < 0 {
		return nil
	}
	next := make([]core.Expense, 0, len(l.expenses)-1)
	next = append(next, l.expenses[:i]...)
	next = append(next, l.expenses[i+1:]...)
	if err := l.commit(ctx, next); err != nil {
		return err
	}

	l.logger.InfoContext(ctx, "Expense deleted",
		log.FieldOperation, log.OpDelete,
		log.FieldExpenseID, id)
	return nil
}

// List returns a copy of every record, newest insertion first.
func (l *Ledger) List() []core.Expense {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return append([]core.Expense(nil), l.expenses...)
}

// Get returns the record with id.
func (l *Ledger) Get(id string) (core.Expense, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	if i := l.indexOf(id); i >= 0 {
		return l.expenses[i], true
	}
	return core.Expense{}, false
}

// Len returns the number of records.
func (l *Ledger) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.expenses)
}

// Replace swaps the whole collection, keeping the given order. Every record
// must validate and ids must be unique.
func (l *Ledger) Replace(ctx context.Context, expenses []core.Expense) error {
	seen := make(map[string]struct{}, len(expenses))
	for i, e := range expenses {
		if err := e.Validate(); err != nil {
			return fmt.Errorf("%w: record %d: %w", ErrInvalid, i, err)
		}
		if _, dup := seen[e.ID]; dup {
			return fmt.Errorf("%w: %s", ErrDuplicateID, e.ID)
		}
		seen[e.ID] = struct{}{}
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	if err := l.commit(ctx, append([]core.Expense{}, expenses...)); err != nil {
		return err
	}
	l.logger.InfoContext(ctx, "Ledger replaced",
		log.FieldOperation, log.OpImport,
		log.FieldCount, len(expenses))
	return nil
}

// Clear empties the ledger.
func (l *Ledger) Clear(ctx context.Context) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if err := l.commit(ctx, []core.Expense{}); err != nil {
		return err
	}
	l.logger.InfoContext(ctx, "Ledger cleared", log.FieldOperation, log.OpReset)
	return nil
}

func (l *Ledger) commit(ctx context.Context, next []core.Expense) error {
	if err := storage.Set(ctx, l.store, storage.KeyExpenses, next); err != nil {
		return fmt.Errorf("save expenses: %w", err)
	}
	l.expenses = next
	return nil
}

func (l *Ledger) indexOf(id string) int {
	for i, e := range l.expenses {
		if e.ID == id {
			return i
		}
	}
	return -1
}
