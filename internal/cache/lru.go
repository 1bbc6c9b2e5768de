package cache

import (
	"container/list"
	"sync"
)

// LRUCache keeps at most capacity entries, evicting the least recently
// read or written one first.
type LRUCache[T any] struct {
	mu       sync.Mutex
	capacity int
	index    map[string]*list.Element
	order    *list.List // front is most recent
	stats    Stats
}

type entry[T any] struct {
	key  string
	data T
}

func NewLRUCache[T any](capacity int) *LRUCache[T] {
	if capacity < 1 {
		capacity = 1
	}
	return &LRUCache[T]{
		capacity: capacity,
		index:    make(map[string]*list.Element, capacity),
		order:    list.New(),
	}
}

func (c *LRUCache[T]) Get(key string) (T, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	el, ok := c.index[key]
	if !ok {
		c.stats.Misses++
		var zero T
		return zero, false
	}
	c.stats.Hits++
	c.order.MoveToFront(el)
	return el.Value.(*entry[T]).data, true
}

func (c *LRUCache[T]) Set(key string, data T) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if el, ok := c.index[key]; ok {
		el.Value.(*entry[T]).data = data
		c.order.MoveToFront(el)
		return
	}
	c.index[key] = c.order.PushFront(&entry[T]{key: key, data: data})
	for c.order.Len() > c.capacity {
		c.drop(c.order.Back())
		c.stats.Evictions++
	}
}

func (c *LRUCache[T]) Delete(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if el, ok := c.index[key]; ok {
		c.drop(el)
	}
}

func (c *LRUCache[T]) Purge() {
	c.mu.Lock()
	defer c.mu.Unlock()
	clear(c.index)
	c.order.Init()
}

func (c *LRUCache[T]) Size() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.order.Len()
}

func (c *LRUCache[T]) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.stats
}

func (c *LRUCache[T]) drop(el *list.Element) {
	delete(c.index, el.Value.(*entry[T]).key)
	c.order.Remove(el)
}
