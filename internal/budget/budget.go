// Package budget stores the daily and monthly spending limits.
//
// Limits are clamped to be non-negative; 0 means "not configured". Whether
// a 0 limit suppresses warnings is decided by consumers, not here.
package budget

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"monoledger/internal/core"
	"monoledger/internal/log"
	"monoledger/internal/storage"
)

type Config struct {
	mu     sync.RWMutex
	store  *storage.Store
	value  core.Budget
	logger *log.Logger
}

func Open(ctx context.Context, store *storage.Store, logger *log.Logger) (*Config, error) {
	if logger == nil {
		logger = log.Discard()
	}
	c := &Config{store: store, logger: logger.WithComponent(log.ComponentBudget)}

	b, err := storage.Get(ctx, store, storage.KeyBudget, core.Budget{})
	if errors.Is(err, storage.ErrCorruptValue) {
		c.logger.WarnContext(ctx, "Stored budget unreadable, limits unset", log.FieldError, err)
	} else if err != nil {
		return nil, fmt.Errorf("load budget: %w", err)
	}
	c.value = clamp(b)
	return c, nil
}

// Get returns the current limits.
func (c *Config) Get() core.Budget {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.value
}

// Set replaces both limits.
func (c *Config) Set(ctx context.Context, daily, monthly float64) error {
	next := clamp(core.Budget{Daily: daily, Monthly: monthly})

	c.mu.Lock()
	defer c.mu.Unlock()
	if err := storage.Set(ctx, c.store, storage.KeyBudget, next); err != nil {
		return fmt.Errorf("save budget: %w", err)
	}
	c.value = next
	c.logger.InfoContext(ctx, "Budget updated",
		log.FieldOperation, log.OpUpdate,
		"daily", next.Daily,
		"monthly", next.Monthly)
	return nil
}

// SetFromInput replaces both limits from raw text; unparsable text counts as 0.
func (c *Config) SetFromInput(ctx context.Context, daily, monthly string) error {
	return c.Set(ctx, core.ParseLimit(daily), core.ParseLimit(monthly))
}

// Reset clears both limits.
func (c *Config) Reset(ctx context.Context) error {
	return c.Set(ctx, 0, 0)
}

func clamp(b core.Budget) core.Budget {
	return core.Budget{
		Daily:   core.ClampLimit(b.Daily),
		Monthly: core.ClampLimit(b.Monthly),
	}
}
