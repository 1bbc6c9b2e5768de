package storage

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"strings"
	"testing"

	"monoledger/internal/log"
)

// flakyBackend wraps a MemoryBackend and fails on demand.
type flakyBackend struct {
	*MemoryBackend
	failSave bool
	failLoad bool
	loads    int
}

func (f *flakyBackend) Load(ctx context.Context, key string) ([]byte, bool, error) {
	f.loads++
	if f.failLoad {
		return nil, false, errors.New("disk gone")
	}
	return f.MemoryBackend.Load(ctx, key)
}

func (f *flakyBackend) Save(ctx context.Context, key string, value []byte) error {
	if f.failSave {
		return errors.New("quota exceeded")
	}
	return f.MemoryBackend.Save(ctx, key, value)
}

type budgetValue struct {
	Daily   float64 `json:"daily"`
	Monthly float64 `json:"monthly"`
}

func TestQualifiedKey(t *testing.T) {
	s := New(NewMemoryBackend())
	if got := s.QualifiedKey(KeyExpenses); got != "mono-expenses-v1" {
		t.Fatalf("QualifiedKey = %q", got)
	}
	s = New(NewMemoryBackend(), WithNamespace("test"))
	if got := s.QualifiedKey(Key{Name: "budget", Version: 2}); got != "test-budget-v2" {
		t.Fatalf("QualifiedKey = %q", got)
	}
}

func TestGetPersistsDefaultOnFirstAccess(t *testing.T) {
	ctx := context.Background()
	mem := NewMemoryBackend()
	s := New(mem)

	got, err := Get(ctx, s, KeyBudget, budgetValue{Daily: 0, Monthly: 0})
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got != (budgetValue{}) {
		t.Fatalf("unexpected default %+v", got)
	}
	raw, ok, _ := mem.Load(ctx, "mono-budget-v1")
	if !ok || string(raw) != `{"daily":0,"monthly":0}` {
		t.Fatalf("default not persisted: %q %v", raw, ok)
	}

	// A later Get with a different default sees the stored value.
	again, err := Get(ctx, s, KeyBudget, budgetValue{Daily: 99})
	if err != nil || again.Daily != 0 {
		t.Fatalf("expected stored value, got %+v err=%v", again, err)
	}
}

func TestSetThenGetReadsLatestWrite(t *testing.T) {
	ctx := context.Background()
	s := New(NewMemoryBackend())

	for _, v := range []string{"USD", "EUR", "JPY"} {
		if err := Set(ctx, s, KeyCurrency, v); err != nil {
			t.Fatalf("Set: %v", err)
		}
		got, err := Get(ctx, s, KeyCurrency, "XXX")
		if err != nil || got != v {
			t.Fatalf("Get = %q, %v; want %q", got, err, v)
		}
	}
}

func TestSetSurfacesPersistFailure(t *testing.T) {
	ctx := context.Background()
	fb := &flakyBackend{MemoryBackend: NewMemoryBackend()}
	s := New(fb)

	if err := Set(ctx, s, KeyTheme, "nord"); err != nil {
		t.Fatalf("Set: %v", err)
	}
	fb.failSave = true
	err := Set(ctx, s, KeyTheme, "dracula")
	if !errors.Is(err, ErrPersist) {
		t.Fatalf("expected ErrPersist, got %v", err)
	}

	fb.failSave = false
	got, err := Get(ctx, s, KeyTheme, "")
	if err != nil || got != "nord" {
		t.Fatalf("failed write leaked: got %q err=%v", got, err)
	}
}

func TestGetSurfacesLoadFailure(t *testing.T) {
	fb := &flakyBackend{MemoryBackend: NewMemoryBackend(), failLoad: true}
	s := New(fb, WithCacheSize(0))
	got, err := Get(context.Background(), s, KeyCurrency, "USD")
	if !errors.Is(err, ErrUnavailable) || got != "USD" {
		t.Fatalf("expected default with ErrUnavailable, got %q %v", got, err)
	}
}

func TestGetCorruptValueKeepsStoredBytes(t *testing.T) {
	ctx := context.Background()
	mem := NewMemoryBackend()
	if err := mem.Save(ctx, "mono-expenses-v1", []byte(`{not json`)); err != nil {
		t.Fatal(err)
	}
	s := New(mem)

	got, err := Get(ctx, s, KeyExpenses, []string{})
	if !errors.Is(err, ErrCorruptValue) {
		t.Fatalf("expected ErrCorruptValue, got %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("expected default, got %v", got)
	}
	raw, _, _ := mem.Load(ctx, "mono-expenses-v1")
	if string(raw) != `{not json` {
		t.Fatalf("corrupt value was overwritten: %q", raw)
	}
}

func TestCacheServesRepeatedReads(t *testing.T) {
	ctx := context.Background()
	fb := &flakyBackend{MemoryBackend: NewMemoryBackend()}
	s := New(fb, WithCacheSize(8))

	if err := Set(ctx, s, KeyOnboarding, true); err != nil {
		t.Fatal(err)
	}
	for i := 0; i < 3; i++ {
		if v, err := Get(ctx, s, KeyOnboarding, false); err != nil || !v {
			t.Fatalf("Get = %v, %v", v, err)
		}
	}
	if fb.loads != 0 {
		t.Fatalf("expected cached reads, backend saw %d loads", fb.loads)
	}

	uncached := New(fb, WithCacheSize(0))
	if _, err := Get(ctx, uncached, KeyOnboarding, false); err != nil {
		t.Fatal(err)
	}
	if fb.loads != 1 {
		t.Fatalf("expected 1 backend load without cache, got %d", fb.loads)
	}
}

func TestAllKeysAreDistinct(t *testing.T) {
	s := New(NewMemoryBackend())
	seen := map[string]bool{}
	for _, k := range AllKeys() {
		qk := s.QualifiedKey(k)
		if seen[qk] {
			t.Fatalf("duplicate key %s", qk)
		}
		seen[qk] = true
	}
	if len(seen) != 7 {
		t.Fatalf("expected 7 keys, got %d", len(seen))
	}
}

func TestCloseLogsCacheStats(t *testing.T) {
	var buf bytes.Buffer
	logger := log.New(log.Config{Level: slog.LevelDebug, Component: log.ComponentApp, Output: &buf})
	ctx := context.Background()
	s := New(NewMemoryBackend(), WithLogger(logger))

	if err := Set(ctx, s, KeyTheme, "nord"); err != nil {
		t.Fatal(err)
	}
	if _, _, err := s.Load(ctx, KeyTheme); err != nil {
		t.Fatal(err)
	}
	if _, _, err := s.Load(ctx, KeyBudget); err != nil {
		t.Fatal(err)
	}
	if err := s.Close(); err != nil {
		t.Fatal(err)
	}

	out := buf.String()
	for _, want := range []string{"cache_hits=1", "cache_misses=1", "cache_hit_ratio=0.5"} {
		if !strings.Contains(out, want) {
			t.Fatalf("close log missing %q:\n%s", want, out)
		}
	}
}
