package registry

import (
	"context"
	"errors"
	"reflect"
	"sort"
	"testing"

	"monoledger/internal/core"
	"monoledger/internal/storage"
)

type failingBackend struct {
	*storage.MemoryBackend
	fail bool
}

func (f *failingBackend) Save(ctx context.Context, key string, value []byte) error {
	if f.fail {
		return errors.New("storage disabled")
	}
	return f.MemoryBackend.Save(ctx, key, value)
}

func openTest(t *testing.T, opts ...Option) (*Registry, *failingBackend) {
	t.Helper()
	b := &failingBackend{MemoryBackend: storage.NewMemoryBackend()}
	r, err := Open(context.Background(), storage.New(b), opts...)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	return r, b
}

func TestOpenStartsFromDefaults(t *testing.T) {
	r, _ := openTest(t)
	if !reflect.DeepEqual(r.List(), core.DefaultCategories()) {
		t.Fatalf("List = %v", r.List())
	}
}

func TestAddNormalizesAndDeduplicates(t *testing.T) {
	ctx := context.Background()
	r, _ := openTest(t)

	tests := []struct {
		name  string
		label string
		added bool
	}{
		{name: "new label uppercased", label: "groceries", added: true},
		{name: "same label different case", label: "Groceries", added: false},
		{name: "existing default", label: "food", added: false},
		{name: "whitespace only", label: "   ", added: false},
		{name: "padded label", label: "  pets ", added: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			added, err := r.Add(ctx, tt.label)
			if err != nil {
				t.Fatalf("Add: %v", err)
			}
			if added != tt.added {
				t.Fatalf("Add(%q) = %v, want %v", tt.label, added, tt.added)
			}
		})
	}

	list := r.List()
	if list[len(list)-2] != "GROCERIES" || list[len(list)-1] != "PETS" {
		t.Fatalf("labels not appended in order: %v", list)
	}
}

func TestRemove(t *testing.T) {
	ctx := context.Background()
	r, _ := openTest(t)

	removed, err := r.Remove(ctx, "tech")
	if err != nil || !removed {
		t.Fatalf("Remove(tech) = %v, %v", removed, err)
	}
	if r.Contains("TECH") {
		t.Fatalf("TECH still present")
	}
	removed, err = r.Remove(ctx, "TECH")
	if err != nil || removed {
		t.Fatalf("second Remove = %v, %v", removed, err)
	}
}

func TestShuffleIsPermutation(t *testing.T) {
	ctx := context.Background()
	r, _ := openTest(t, WithShuffler(func(n int, swap func(i, j int)) {
		// reverse
		for i := 0; i < n/2; i++ {
			swap(i, n-1-i)
		}
	}))

	before := r.List()
	if err := r.Shuffle(ctx); err != nil {
		t.Fatal(err)
	}
	after := r.List()
	if after[0] != before[len(before)-1] {
		t.Fatalf("shuffler not applied: %v", after)
	}
	sort.Strings(before)
	sort.Strings(after)
	if !reflect.DeepEqual(before, after) {
		t.Fatalf("shuffle changed the set: %v vs %v", before, after)
	}
}

func TestShuffleWithDefaultSource(t *testing.T) {
	r, _ := openTest(t)
	if err := r.Shuffle(context.Background()); err != nil {
		t.Fatal(err)
	}
	got := r.List()
	sort.Strings(got)
	want := core.DefaultCategories()
	sort.Strings(want)
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("shuffle changed the set: %v", got)
	}
}

func TestReplaceAndReset(t *testing.T) {
	ctx := context.Background()
	r, _ := openTest(t)

	if err := r.Replace(ctx, []string{"a", "B", "A", ""}); err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(r.List(), []string{"A", "B"}) {
		t.Fatalf("Replace = %v", r.List())
	}
	if err := r.Reset(ctx); err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(r.List(), core.DefaultCategories()) {
		t.Fatalf("Reset = %v", r.List())
	}
}

func TestPersistFailureKeepsLabels(t *testing.T) {
	ctx := context.Background()
	r, b := openTest(t)
	b.fail = true

	if _, err := r.Add(ctx, "new"); !errors.Is(err, storage.ErrPersist) {
		t.Fatalf("expected ErrPersist, got %v", err)
	}
	if r.Contains("NEW") {
		t.Fatalf("failed add became visible")
	}
}

func TestRegistrySurvivesReopen(t *testing.T) {
	ctx := context.Background()
	b := storage.NewMemoryBackend()
	r, err := Open(ctx, storage.New(b))
	if err != nil {
		t.Fatal(err)
	}
	if _, err := r.Add(ctx, "travel"); err != nil {
		t.Fatal(err)
	}
	reopened, err := Open(ctx, storage.New(b))
	if err != nil {
		t.Fatal(err)
	}
	if !reopened.Contains("TRAVEL") {
		t.Fatalf("reopened registry lost TRAVEL: %v", reopened.List())
	}
}

func TestOpenFallsBackOnCorruptValue(t *testing.T) {
	ctx := context.Background()
	b := storage.NewMemoryBackend()
	if err := b.Save(ctx, "mono-categories-v1", []byte(`{"not":"a list"}`)); err != nil {
		t.Fatal(err)
	}
	r, err := Open(ctx, storage.New(b))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if !reflect.DeepEqual(r.List(), core.DefaultCategories()) {
		t.Fatalf("expected defaults, got %v", r.List())
	}
}
