package cache

import (
	"crypto/sha256"
	"encoding/gob"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/klauspost/compress/zstd"
)

const indexFile = "pages.index"

// compressThreshold is the smallest value worth compressing.
const compressThreshold = 512

// DiskCache is a persistent cache with optional zstd compression. The
// index is written on Close.
type DiskCache struct {
	basePath string
	capacity int64 // Maximum size in bytes
	size     int64 // Current size on disk in bytes

	encoder *zstd.Encoder
	decoder *zstd.Decoder

	index map[string]*diskEntry

	mu    sync.Mutex
	stats Stats
}

// diskEntry is persisted in the index, so its fields are exported for gob.
type diskEntry struct {
	Key          string
	FilePath     string
	Size         int64 // on disk
	OriginalSize int64
	Stored       time.Time
	LastAccess   time.Time
	Hits         int64
	Compressed   bool
}

// NewDiskCache opens or creates a cache in cfg.Dir.
func NewDiskCache(cfg Config) (*DiskCache, error) {
	if cfg.Dir == "" {
		return nil, fmt.Errorf("no cache directory configured")
	}
	if err := os.MkdirAll(cfg.Dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create cache directory: %w", err)
	}
	if cfg.Capacity <= 0 {
		cfg.Capacity = DefaultConfig().Capacity
	}

	dc := &DiskCache{
		basePath: cfg.Dir,
		capacity: cfg.Capacity,
		index:    make(map[string]*diskEntry),
		stats:    Stats{Capacity: cfg.Capacity},
	}

	if cfg.CompressionLevel > 0 {
		var err error
		dc.encoder, err = zstd.NewWriter(nil,
			zstd.WithEncoderLevel(zstd.EncoderLevelFromZstd(cfg.CompressionLevel)))
		if err != nil {
			return nil, fmt.Errorf("failed to create zstd encoder: %w", err)
		}
	}
	// always able to read compressed entries written with another level
	var err error
	dc.decoder, err = zstd.NewReader(nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create zstd decoder: %w", err)
	}

	if err := dc.loadIndex(); err != nil {
		// corrupt index, start empty
		dc.index = make(map[string]*diskEntry)
	}
	dc.calculateSize()

	return dc, nil
}

// Get retrieves a value and its metadata.
func (dc *DiskCache) Get(key string) ([]byte, Metadata, bool) {
	dc.mu.Lock()
	defer dc.mu.Unlock()

	entry, ok := dc.index[key]
	if !ok {
		dc.stats.Misses++
		return nil, Metadata{}, false
	}

	data, err := os.ReadFile(entry.FilePath)
	if err != nil {
		dc.drop(key, entry)
		dc.stats.Misses++
		return nil, Metadata{}, false
	}

	if entry.Compressed {
		data, err = dc.decoder.DecodeAll(data, nil)
		if err != nil {
			dc.drop(key, entry)
			dc.stats.Misses++
			return nil, Metadata{}, false
		}
	}

	now := time.Now()
	entry.LastAccess = now
	entry.Hits++
	dc.stats.Hits++
	dc.stats.LastAccess = now

	return data, entry.metadata(), true
}

// Put stores value under key, evicting the least recently used entries
// when over capacity.
func (dc *DiskCache) Put(key string, value []byte) error {
	dc.mu.Lock()
	defer dc.mu.Unlock()

	data, compressed := value, false
	if dc.encoder != nil && len(value) > compressThreshold {
		if c := dc.encoder.EncodeAll(value, nil); len(c) < len(value) {
			data, compressed = c, true
		}
	}
	diskSize := int64(len(data))
	if diskSize > dc.capacity {
		return ErrItemTooLarge
	}

	if existing, ok := dc.index[key]; ok {
		dc.drop(key, existing)
	}
	for dc.size+diskSize > dc.capacity && len(dc.index) > 0 {
		dc.evictOldest()
	}

	path := dc.filePath(key)
	if err := writeFile(path, data); err != nil {
		return fmt.Errorf("failed to write cache file: %w", err)
	}

	now := time.Now()
	dc.index[key] = &diskEntry{
		Key:          key,
		FilePath:     path,
		Size:         diskSize,
		OriginalSize: int64(len(value)),
		Stored:       now,
		LastAccess:   now,
		Compressed:   compressed,
	}
	dc.size += diskSize
	return nil
}

// Delete removes key from the cache.
func (dc *DiskCache) Delete(key string) error {
	dc.mu.Lock()
	defer dc.mu.Unlock()

	if entry, ok := dc.index[key]; ok {
		dc.drop(key, entry)
	}
	return nil
}

// Clear removes every entry and writes an empty index.
func (dc *DiskCache) Clear() error {
	dc.mu.Lock()
	defer dc.mu.Unlock()

	for _, entry := range dc.index {
		_ = os.Remove(entry.FilePath)
	}
	dc.index = make(map[string]*diskEntry)
	dc.size = 0
	return dc.saveIndex()
}

// Stats returns cache statistics.
func (dc *DiskCache) Stats() Stats {
	dc.mu.Lock()
	defer dc.mu.Unlock()

	stats := dc.stats
	stats.Size = dc.size
	stats.ItemCount = int64(len(dc.index))
	return stats.withHitRate()
}

// Entries returns metadata for every entry, most recently stored first.
func (dc *DiskCache) Entries() []Metadata {
	dc.mu.Lock()
	defer dc.mu.Unlock()

	out := make([]Metadata, 0, len(dc.index))
	for _, entry := range dc.index {
		out = append(out, entry.metadata())
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Stored.After(out[j].Stored) })
	return out
}

// RemoveOlderThan removes entries stored before cutoff.
func (dc *DiskCache) RemoveOlderThan(cutoff time.Time) int {
	dc.mu.Lock()
	defer dc.mu.Unlock()

	removed := 0
	for key, entry := range dc.index {
		if entry.Stored.Before(cutoff) {
			dc.drop(key, entry)
			removed++
		}
	}
	return removed
}

// Close saves the index.
func (dc *DiskCache) Close() error {
	dc.mu.Lock()
	defer dc.mu.Unlock()

	if dc.encoder != nil {
		_ = dc.encoder.Close()
	}
	dc.decoder.Close()
	return dc.saveIndex()
}

func (e *diskEntry) metadata() Metadata {
	return Metadata{
		Key:        e.Key,
		Size:       e.OriginalSize,
		Stored:     e.Stored,
		LastAccess: e.LastAccess,
		Hits:       e.Hits,
	}
}

// drop removes an entry; callers hold mu.
func (dc *DiskCache) drop(key string, entry *diskEntry) {
	_ = os.Remove(entry.FilePath)
	dc.size -= entry.Size
	delete(dc.index, key)
}

func (dc *DiskCache) evictOldest() {
	var oldestKey string
	var oldest time.Time
	for key, entry := range dc.index {
		if oldestKey == "" || entry.LastAccess.Before(oldest) {
			oldestKey = key
			oldest = entry.LastAccess
		}
	}
	if oldestKey != "" {
		dc.drop(oldestKey, dc.index[oldestKey])
		dc.stats.Evictions++
		dc.stats.LastEvict = time.Now()
	}
}

func (dc *DiskCache) filePath(key string) string {
	hash := sha256.Sum256([]byte(key))
	return filepath.Join(dc.basePath, hex.EncodeToString(hash[:16])+".page")
}

// writeFile writes to a temp file and renames it into place.
func writeFile(path string, data []byte) error {
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		_ = os.Remove(tmp)
		return err
	}
	return os.Rename(tmp, path)
}

func (dc *DiskCache) loadIndex() error {
	f, err := os.Open(filepath.Join(dc.basePath, indexFile))
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	defer f.Close() //nolint:errcheck

	return gob.NewDecoder(f).Decode(&dc.index)
}

func (dc *DiskCache) saveIndex() error {
	path := filepath.Join(dc.basePath, indexFile)
	tmp := path + ".tmp"

	f, err := os.Create(tmp)
	if err != nil {
		return err
	}
	err = gob.NewEncoder(f).Encode(dc.index)
	if closeErr := f.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		_ = os.Remove(tmp)
		return err
	}
	return os.Rename(tmp, path)
}

func (dc *DiskCache) calculateSize() {
	dc.size = 0
	for key, entry := range dc.index {
		if _, err := os.Stat(entry.FilePath); err != nil {
			delete(dc.index, key)
			continue
		}
		dc.size += entry.Size
	}
}
