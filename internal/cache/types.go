package cache

import (
	"errors"
	"time"
)

// Common errors for cache operations
var (
	// ErrItemTooLarge is returned when an item exceeds the cache capacity
	ErrItemTooLarge = errors.New("item too large for cache")

	// ErrCacheMiss is returned when an item is not found in cache
	ErrCacheMiss = errors.New("cache miss")
)

// Stats holds cache counters.
type Stats struct {
	Capacity  int64 // Maximum capacity in bytes
	Size      int64 // Current size in bytes
	ItemCount int64

	Hits      int64
	Misses    int64
	Evictions int64
	HitRate   float64 // hits / (hits + misses)

	LastAccess time.Time
	LastEvict  time.Time
}

// Metadata describes a cached item.
type Metadata struct {
	Key        string
	Size       int64 // uncompressed size in bytes
	Stored     time.Time
	LastAccess time.Time
	Hits       int64
}

// Age returns how long ago the item was stored.
func (m Metadata) Age() time.Duration {
	return time.Since(m.Stored)
}

// Stale reports whether the item is older than ttl. A zero ttl never
// expires.
func (m Metadata) Stale(ttl time.Duration) bool {
	return ttl > 0 && m.Age() > ttl
}

// Config holds cache settings, read from the "cache" config section.
type Config struct {
	Dir              string        `mapstructure:"dir"`
	Capacity         int64         `mapstructure:"capacity"`          // bytes
	CompressionLevel int           `mapstructure:"compression_level"` // zstd level, 0 disables
	TTL              time.Duration `mapstructure:"ttl"`               // pages older than this are stale
}

// DefaultConfig returns the default cache settings. Dir is left empty and
// resolved by the caller.
func DefaultConfig() Config {
	return Config{
		Capacity:         20 * 1024 * 1024, // 20MB
		CompressionLevel: 3,
		TTL:              30 * time.Minute,
	}
}

// Cache is implemented by DiskCache and MemoryCache.
type Cache interface {
	Get(key string) ([]byte, Metadata, bool)
	Put(key string, value []byte) error
	Delete(key string) error
	Clear() error
	Stats() Stats
	Close() error
}

// withHitRate fills in HitRate.
func (s Stats) withHitRate() Stats {
	if s.Hits+s.Misses > 0 {
		s.HitRate = float64(s.Hits) / float64(s.Hits+s.Misses)
	}
	return s
}
