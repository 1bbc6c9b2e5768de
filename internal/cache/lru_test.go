package cache

import "testing"

func TestLRUCache_GetSet(t *testing.T) {
	c := NewLRUCache[[]byte](4)
	c.Set("a", []byte("1"))
	got, ok := c.Get("a")
	if !ok || string(got) != "1" {
		t.Fatalf("Get(a) = %q, %v", got, ok)
	}
	c.Set("a", []byte("2"))
	if got, _ := c.Get("a"); string(got) != "2" {
		t.Fatalf("overwrite not visible: %q", got)
	}
	if c.Size() != 1 {
		t.Fatalf("Size = %d, want 1", c.Size())
	}
}

func TestLRUCache_EvictsLeastRecentlyUsed(t *testing.T) {
	c := NewLRUCache[int](2)
	c.Set("a", 1)
	c.Set("b", 2)
	c.Get("a")
	c.Set("c", 3)

	if _, ok := c.Get("b"); ok {
		t.Fatalf("expected b to be evicted")
	}
	if _, ok := c.Get("a"); !ok {
		t.Fatalf("expected a to survive")
	}
	if _, ok := c.Get("c"); !ok {
		t.Fatalf("expected c to be present")
	}
	if ev := c.Stats().Evictions; ev != 1 {
		t.Fatalf("Evictions = %d, want 1", ev)
	}
}

func TestLRUCache_Stats(t *testing.T) {
	c := NewLRUCache[int](4)
	c.Get("a")
	c.Set("a", 1)
	c.Get("a")
	c.Get("a")
	c.Get("b")

	s := c.Stats()
	if s.Hits != 2 || s.Misses != 2 {
		t.Fatalf("Stats = %+v", s)
	}
	if r := s.HitRatio(); r != 0.5 {
		t.Fatalf("HitRatio = %v, want 0.5", r)
	}
	if r := (Stats{}).HitRatio(); r != 0 {
		t.Fatalf("empty HitRatio = %v", r)
	}
}

func TestLRUCache_DeleteAndPurge(t *testing.T) {
	c := NewLRUCache[int](4)
	c.Set("a", 1)
	c.Set("b", 2)
	c.Delete("a")
	if _, ok := c.Get("a"); ok {
		t.Fatalf("expected a deleted")
	}
	c.Purge()
	if c.Size() != 0 {
		t.Fatalf("Purge left %d items", c.Size())
	}
	c.Set("c", 3)
	if v, ok := c.Get("c"); !ok || v != 3 {
		t.Fatalf("cache unusable after purge")
	}
}

func TestNopCache(t *testing.T) {
	var c Cache[int] = Nop[int]{}
	c.Set("a", 1)
	if _, ok := c.Get("a"); ok || c.Size() != 0 || c.Stats() != (Stats{}) {
		t.Fatalf("Nop cache stored a value")
	}
}
