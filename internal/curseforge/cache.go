package curseforge

import (
	"container/list"
	"sync"
	"time"
)

const (
	// DefaultCacheSize is the default number of entries to cache.
	DefaultCacheSize = 512

	// DefaultCacheTTL is the default time-to-live for cache entries.
	DefaultCacheTTL = 10 * time.Minute
)

// Cache is a thread-safe LRU cache with a fixed time-to-live per entry.
// The client keeps mod summaries and file records in it, so a dependency
// shared by several selected mods is fetched once per run.
type Cache[K comparable, V any] struct {
	mu       sync.Mutex
	capacity int
	ttl      time.Duration
	items    map[K]*list.Element
	lru      *list.List
}

type cacheItem[K comparable, V any] struct {
	key     K
	value   V
	expires time.Time
}

// NewCache creates a new LRU cache.
func NewCache[K comparable, V any](capacity int, ttl time.Duration) *Cache[K, V] {
	if capacity <= 0 {
		capacity = DefaultCacheSize
	}
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}

	return &Cache[K, V]{
		capacity: capacity,
		ttl:      ttl,
		items:    make(map[K]*list.Element),
		lru:      list.New(),
	}
}

// Get returns the value for key. Expired entries are dropped and reported
// as missing.
func (c *Cache[K, V]) Get(key K) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	var zero V
	elem, ok := c.items[key]
	if !ok {
		return zero, false
	}

	item := elem.Value.(*cacheItem[K, V])
	if time.Now().After(item.expires) {
		c.lru.Remove(elem)
		delete(c.items, key)
		return zero, false
	}

	c.lru.MoveToFront(elem)
	return item.value, true
}

// Set adds or replaces the value for key, evicting the least recently used
// entry when the cache is full.
func (c *Cache[K, V]) Set(key K, value V) {
	c.mu.Lock()
	defer c.mu.Unlock()

	expires := time.Now().Add(c.ttl)

	if elem, ok := c.items[key]; ok {
		c.lru.MoveToFront(elem)
		item := elem.Value.(*cacheItem[K, V])
		item.value = value
		item.expires = expires
		return
	}

	c.items[key] = c.lru.PushFront(&cacheItem[K, V]{key: key, value: value, expires: expires})

	if c.lru.Len() > c.capacity {
		c.evictOldest()
	}
}

// evictOldest removes the least recently used entry.
// Must be called with lock held.
func (c *Cache[K, V]) evictOldest() {
	elem := c.lru.Back()
	if elem == nil {
		return
	}

	c.lru.Remove(elem)
	delete(c.items, elem.Value.(*cacheItem[K, V]).key)
}

// Clear removes all entries from the cache.
func (c *Cache[K, V]) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.items = make(map[K]*list.Element)
	c.lru.Init()
}

// Len returns the number of entries in the cache, expired ones included.
func (c *Cache[K, V]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.lru.Len()
}
