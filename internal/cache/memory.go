package cache

import (
	"container/list"
	"sync"
	"time"
)

// MemoryCache is an in-process LRU cache. It is used when no cache
// directory can be created.
type MemoryCache struct {
	capacity int64
	size     int64

	items    map[string]*list.Element
	eviction *list.List

	mu    sync.Mutex
	stats Stats
}

type memoryEntry struct {
	key   string
	value []byte
	meta  Metadata
}

// NewMemoryCache creates a cache holding up to capacity bytes.
func NewMemoryCache(capacity int64) *MemoryCache {
	return &MemoryCache{
		capacity: capacity,
		items:    make(map[string]*list.Element),
		eviction: list.New(),
		stats:    Stats{Capacity: capacity},
	}
}

// Get retrieves a value and marks it most recently used.
func (c *MemoryCache) Get(key string) ([]byte, Metadata, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	elem, ok := c.items[key]
	if !ok {
		c.stats.Misses++
		return nil, Metadata{}, false
	}

	c.eviction.MoveToFront(elem)
	entry := elem.Value.(*memoryEntry)
	entry.meta.Hits++
	entry.meta.LastAccess = time.Now()
	c.stats.Hits++
	c.stats.LastAccess = entry.meta.LastAccess

	return entry.value, entry.meta, true
}

// Put stores a copy of value under key.
func (c *MemoryCache) Put(key string, value []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	size := int64(len(value))
	if size > c.capacity {
		return ErrItemTooLarge
	}
	if elem, ok := c.items[key]; ok {
		c.remove(elem)
	}
	for c.size+size > c.capacity && c.eviction.Len() > 0 {
		c.remove(c.eviction.Back())
		c.stats.Evictions++
		c.stats.LastEvict = time.Now()
	}

	now := time.Now()
	entry := &memoryEntry{
		key:   key,
		value: append([]byte(nil), value...),
		meta:  Metadata{Key: key, Size: size, Stored: now, LastAccess: now},
	}
	c.items[key] = c.eviction.PushFront(entry)
	c.size += size
	return nil
}

// Delete removes key from the cache.
func (c *MemoryCache) Delete(key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if elem, ok := c.items[key]; ok {
		c.remove(elem)
	}
	return nil
}

// Clear removes every entry.
func (c *MemoryCache) Clear() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.items = make(map[string]*list.Element)
	c.eviction.Init()
	c.size = 0
	return nil
}

// Stats returns cache statistics.
func (c *MemoryCache) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()

	stats := c.stats
	stats.Size = c.size
	stats.ItemCount = int64(len(c.items))
	return stats.withHitRate()
}

// Close is a no-op.
func (c *MemoryCache) Close() error {
	return nil
}

func (c *MemoryCache) remove(elem *list.Element) {
	entry := elem.Value.(*memoryEntry)
	c.eviction.Remove(elem)
	delete(c.items, entry.key)
	c.size -= entry.meta.Size
}

var (
	_ Cache = (*DiskCache)(nil)
	_ Cache = (*MemoryCache)(nil)
)
