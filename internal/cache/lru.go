package cache

import (
	"container/list"
	"sync"
	"time"
)

// Stats is a snapshot of cache effectiveness.
type Stats struct {
	Size      int
	Hits      uint64
	Misses    uint64
	Evictions uint64
}

// LRUCache is a size-bounded cache whose entries also expire after a TTL.
// Expired entries count as misses and are dropped on access or by CleanExpired.
type LRUCache[K comparable, V any] struct {
	mu       sync.Mutex
	capacity int
	ttl      time.Duration
	index    map[K]*list.Element
	order    *list.List // front is most recently used
	now      func() time.Time
	stats    Stats
}

var _ Cache[string, int] = (*LRUCache[string, int])(nil)

type entry[K comparable, V any] struct {
	key     K
	value   V
	expires time.Time
}

// NewLRUCache returns a cache holding at most capacity entries for ttl each.
// A capacity below one is raised to one.
func NewLRUCache[K comparable, V any](capacity int, ttl time.Duration) *LRUCache[K, V] {
	return &LRUCache[K, V]{
		capacity: max(capacity, 1),
		ttl:      ttl,
		index:    make(map[K]*list.Element),
		order:    list.New(),
		now:      time.Now,
	}
}

func (c *LRUCache[K, V]) Get(key K) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if e, ok := c.live(key); ok {
		c.stats.Hits++
		return e.value, true
	}
	c.stats.Misses++
	var zero V
	return zero, false
}

// live returns the unexpired entry for key and marks it most recently used.
func (c *LRUCache[K, V]) live(key K) (*entry[K, V], bool) {
	el, ok := c.index[key]
	if !ok {
		return nil, false
	}
	e := el.Value.(*entry[K, V])
	if c.now().After(e.expires) {
		c.unlink(el)
		return nil, false
	}
	c.order.MoveToFront(el)
	return e, true
}

// Set stores value under key with a fresh TTL, evicting the least recently
// used entry when full.
func (c *LRUCache[K, V]) Set(key K, value V) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e := &entry[K, V]{key: key, value: value, expires: c.now().Add(c.ttl)}
	if el, ok := c.index[key]; ok {
		el.Value = e
		c.order.MoveToFront(el)
		return
	}
	c.index[key] = c.order.PushFront(e)

	for c.order.Len() > c.capacity {
		c.unlink(c.order.Back())
		c.stats.Evictions++
	}
}

func (c *LRUCache[K, V]) unlink(el *list.Element) {
	delete(c.index, el.Value.(*entry[K, V]).key)
	c.order.Remove(el)
}

// CleanExpired drops every expired entry and reports how many went.
func (c *LRUCache[K, V]) CleanExpired() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	removed := 0
	for el := c.order.Front(); el != nil; {
		next := el.Next()
		if now.After(el.Value.(*entry[K, V]).expires) {
			c.unlink(el)
			removed++
		}
		el = next
	}
	return removed
}

func (c *LRUCache[K, V]) Size() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.index)
}

func (c *LRUCache[K, V]) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()
	s := c.stats
	s.Size = len(c.index)
	return s
}
