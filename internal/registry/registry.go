// Package registry manages the user's category labels.
package registry

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"sync"

	"monoledger/internal/core"
	"monoledger/internal/log"
	"monoledger/internal/storage"
)

// Registry is an ordered set of uppercase labels. Expenses reference
// labels by value, so nothing here ever touches the ledger.
type Registry struct {
	mu      sync.RWMutex
	store   *storage.Store
	labels  []string
	shuffle func(n int, swap func(i, j int))
	logger  *log.Logger
}

type Option func(*Registry)

// WithShuffler overrides the permutation source.
func WithShuffler(fn func(n int, swap func(i, j int))) Option {
	return func(r *Registry) { r.shuffle = fn }
}

func WithLogger(logger *log.Logger) Option {
	return func(r *Registry) {
		if logger != nil {
			r.logger = logger.WithComponent(log.ComponentRegistry)
		}
	}
}

func Open(ctx context.Context, store *storage.Store, opts ...Option) (*Registry, error) {
	r := &Registry{
		store:   store,
		shuffle: rand.Shuffle,
		logger:  log.Discard(),
	}
	for _, opt := range opts {
		opt(r)
	}

	labels, err := storage.Get(ctx, store, storage.KeyCategories, core.DefaultCategories())
	if errors.Is(err, storage.ErrCorruptValue) {
		r.logger.WarnContext(ctx, "Stored categories unreadable, using defaults", log.FieldError, err)
	} else if err != nil {
		return nil, fmt.Errorf("load categories: %w", err)
	}
	r.labels = normalize(labels)
	return r, nil
}

// Add appends label in canonical form. Empty or already present labels are
// a no-op; added reports whether the registry changed.
func (r *Registry) Add(ctx context.Context, label string) (added bool, err error) {
	label = core.NormalizeLabel(label)
	if label == "" {
		return false, nil
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if r.indexOf(label) >= 0 {
		return false, nil
	}
	next := append(append([]string{}, r.labels...), label)
	if err := r.commit(ctx, next); err != nil {
		return false, err
	}
	r.logger.InfoContext(ctx, "Category added", log.FieldOperation, log.OpCreate, log.FieldCategory, label)
	return true, nil
}

// Remove drops label if present.
func (r *Registry) Remove(ctx context.Context, label string) (removed bool, err error) {
	label = core.NormalizeLabel(label)

	r.mu.Lock()
	defer r.mu.Unlock()
	i := r.indexOf(label)
	if i < 0 {
		return false, nil
	}
	next := make([]string, 0, len(r.labels)-1)
	next = append(next, r.labels[:i]...)
	next = append(next, r.labels[i+1:]...)
	if err := r.commit(ctx, next); err != nil {
		return false, err
	}
	r.logger.InfoContext(ctx, "Category removed", log.FieldOperation, log.OpDelete, log.FieldCategory, label)
	return true, nil
}

// Shuffle applies a uniform random permutation to the display order.
func (r *Registry) Shuffle(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	next := append([]string{}, r.labels...)
	r.shuffle(len(next), func(i, j int) { next[i], next[j] = next[j], next[i] })
	if err := r.commit(ctx, next); err != nil {
		return err
	}
	r.logger.DebugContext(ctx, "Categories shuffled", log.FieldOperation, log.OpShuffle)
	return nil
}

// List returns the labels in display order.
func (r *Registry) List() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]string(nil), r.labels...)
}

// Contains reports whether label, in canonical form, is registered.
func (r *Registry) Contains(label string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.indexOf(core.NormalizeLabel(label)) >= 0
}

// Replace swaps the whole set. Labels are normalised and de-duplicated,
// keeping first occurrence order.
func (r *Registry) Replace(ctx context.Context, labels []string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.commit(ctx, normalize(labels))
}

// Reset restores the default category set.
func (r *Registry) Reset(ctx context.Context) error {
	return r.Replace(ctx, core.DefaultCategories())
}

func (r *Registry) commit(ctx context.Context, next []string) error {
	if err := storage.Set(ctx, r.store, storage.KeyCategories, next); err != nil {
		return fmt.Errorf("save categories: %w", err)
	}
	r.labels = next
	return nil
}

func (r *Registry) indexOf(label string) int {
	for i, l := range r.labels {
		if l == label {
			return i
		}
	}
	return -1
}

func normalize(in []string) []string {
	seen := make(map[string]struct{}, len(in))
	out := make([]string, 0, len(in))
	for _, v := range in {
		v = core.NormalizeLabel(v)
		if v == "" {
			continue
		}
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}
