// Package cache holds the in-process read cache used in front of storage
// backends.
package cache

// Cache defines a generic cache interface
type Cache[T any] interface {
	Get(key string) (T, bool)
	Set(key string, data T)
	Delete(key string)
	// Purge drops every entry. Counters are kept.
	Purge()
	Size() int
	Stats() Stats
}

// Stats counts lookups since the cache was created.
type Stats struct {
	Hits      uint64
	Misses    uint64
	Evictions uint64
}

// HitRatio is Hits over all lookups, 0 when nothing was looked up.
func (s Stats) HitRatio() float64 {
	total := s.Hits + s.Misses
	if total == 0 {
		return 0
	}
	return float64(s.Hits) / float64(total)
}

// Nop is a Cache that never holds anything. Used when caching is disabled.
type Nop[T any] struct{}

func (Nop[T]) Get(string) (T, bool) {
	var zero T
	return zero, false
}
func (Nop[T]) Set(string, T)  {}
func (Nop[T]) Delete(string)  {}
func (Nop[T]) Purge()         {}
func (Nop[T]) Size() int      { return 0 }
func (Nop[T]) Stats() Stats   { return Stats{} }
