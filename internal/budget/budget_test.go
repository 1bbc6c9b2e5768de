package budget

import (
	"context"
	"math"
	"testing"

	"monoledger/internal/core"
	"monoledger/internal/storage"
)

func TestOpenDefaultsToUnset(t *testing.T) {
	c, err := Open(context.Background(), storage.New(storage.NewMemoryBackend()), nil)
	if err != nil {
		t.Fatal(err)
	}
	if got := c.Get(); got != (core.Budget{}) {
		t.Fatalf("Get = %+v, want zero", got)
	}
}

func TestSetClamps(t *testing.T) {
	ctx := context.Background()
	c, _ := Open(ctx, storage.New(storage.NewMemoryBackend()), nil)

	tests := []struct {
		name           string
		daily, monthly float64
		want           core.Budget
	}{
		{name: "plain", daily: 20, monthly: 500, want: core.Budget{Daily: 20, Monthly: 500}},
		{name: "negative", daily: -5, monthly: 100, want: core.Budget{Daily: 0, Monthly: 100}},
		{name: "nan", daily: math.NaN(), monthly: math.Inf(1), want: core.Budget{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := c.Set(ctx, tt.daily, tt.monthly); err != nil {
				t.Fatal(err)
			}
			if got := c.Get(); got != tt.want {
				t.Fatalf("Get = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestSetFromInputCoercesGarbageToZero(t *testing.T) {
	ctx := context.Background()
	c, _ := Open(ctx, storage.New(storage.NewMemoryBackend()), nil)

	if err := c.SetFromInput(ctx, "abc", "1200,50"); err != nil {
		t.Fatal(err)
	}
	if got := c.Get(); got != (core.Budget{Daily: 0, Monthly: 1200.5}) {
		t.Fatalf("Get = %+v", got)
	}
}

func TestBudgetPersistsAndResets(t *testing.T) {
	ctx := context.Background()
	b := storage.NewMemoryBackend()
	c, _ := Open(ctx, storage.New(b), nil)
	if err := c.Set(ctx, 10, 300); err != nil {
		t.Fatal(err)
	}

	reopened, err := Open(ctx, storage.New(b), nil)
	if err != nil {
		t.Fatal(err)
	}
	if got := reopened.Get(); got != (core.Budget{Daily: 10, Monthly: 300}) {
		t.Fatalf("reopened = %+v", got)
	}
	if err := reopened.Reset(ctx); err != nil {
		t.Fatal(err)
	}
	if got := reopened.Get(); got != (core.Budget{}) {
		t.Fatalf("after reset = %+v", got)
	}
}
