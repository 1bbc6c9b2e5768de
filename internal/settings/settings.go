// Package settings holds the small per-device preferences: theme,
// display currency, device identity and the onboarding flag.
package settings

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"monoledger/internal/core"
	"monoledger/internal/log"
	"monoledger/internal/storage"
)

var (
	ErrUnknownTheme  = errors.New("unknown theme")
	ErrEmptyCurrency = errors.New("empty currency code")
)

type Settings struct {
	mu        sync.RWMutex
	store     *storage.Store
	theme     string
	currency  string
	deviceID  string
	onboarded bool
	logger    *log.Logger
}

// Open loads every preference. The device id is generated and persisted on
// first run and never changes afterwards.
func Open(ctx context.Context, store *storage.Store, logger *log.Logger) (*Settings, error) {
	if logger == nil {
		logger = log.Discard()
	}
	s := &Settings{store: store, logger: logger.WithComponent(log.ComponentSettings)}

	var err error
	if s.theme, err = load(ctx, s, storage.KeyTheme, core.DefaultThemeID); err != nil {
		return nil, err
	}
	if s.currency, err = load(ctx, s, storage.KeyCurrency, core.DefaultCurrency); err != nil {
		return nil, err
	}
	if s.onboarded, err = load(ctx, s, storage.KeyOnboarding, false); err != nil {
		return nil, err
	}
	// A corrupt device id must not be silently regenerated.
	s.deviceID, err = storage.Get(ctx, store, storage.KeyDeviceID, uuid.NewString())
	if err != nil {
		return nil, fmt.Errorf("load device id: %w", err)
	}
	return s, nil
}

func load[T any](ctx context.Context, s *Settings, k storage.Key, def T) (T, error) {
	v, err := storage.Get(ctx, s.store, k, def)
	if errors.Is(err, storage.ErrCorruptValue) {
		s.logger.WarnContext(ctx, "Stored preference unreadable, using default",
			log.FieldKey, k.String(), log.FieldError, err)
		return def, nil
	}
	if err != nil {
		return def, fmt.Errorf("load %s: %w", k, err)
	}
	return v, nil
}

// Theme returns the selected theme, falling back to the default for ids
// that are no longer in the catalogue.
func (s *Settings) Theme() core.Theme {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return core.ThemeOrDefault(s.theme)
}

func (s *Settings) SetTheme(ctx context.Context, id string) error {
	if _, ok := core.LookupTheme(id); !ok {
		return fmt.Errorf("%w: %q", ErrUnknownTheme, id)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := storage.Set(ctx, s.store, storage.KeyTheme, id); err != nil {
		return fmt.Errorf("save theme: %w", err)
	}
	s.theme = id
	s.logger.InfoContext(ctx, "Theme selected", log.FieldTheme, id)
	return nil
}

// Currency returns the selected display currency code.
func (s *Settings) Currency() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.currency
}

// SetCurrency stores code in canonical form. Codes outside the catalogue
// are accepted; formatting falls back to a plain rendering for them.
func (s *Settings) SetCurrency(ctx context.Context, code string) error {
	code = core.NormalizeCurrencyCode(code)
	if code == "" {
		return ErrEmptyCurrency
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := storage.Set(ctx, s.store, storage.KeyCurrency, code); err != nil {
		return fmt.Errorf("save currency: %w", err)
	}
	s.currency = code
	s.logger.InfoContext(ctx, "Currency selected", log.FieldCurrency, code)
	return nil
}

// DeviceID returns the identifier generated on first run.
func (s *Settings) DeviceID() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.deviceID
}

func (s *Settings) Onboarded() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.onboarded
}

// CompleteOnboarding records that the first-run flow finished.
func (s *Settings) CompleteOnboarding(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := storage.Set(ctx, s.store, storage.KeyOnboarding, true); err != nil {
		return fmt.Errorf("save onboarding flag: %w", err)
	}
	s.onboarded = true
	return nil
}
