// Package cache memoizes parsed files for the lifetime of a process. Entries
// are keyed by file identity and validated against a content stamp, so a
// changed file is reparsed and an unchanged one is not.
package cache

import (
	"encoding/hex"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"sync"
	"sync/atomic"

	"github.com/cespare/xxhash/v2"
	"github.com/zeebo/blake3"
)

// Cache is a concurrent in-memory memo from file identity to a value.
type Cache[T any] struct {
	mu      sync.RWMutex
	entries map[uint64]entry[T]
	hits    atomic.Int64
	misses  atomic.Int64
}

type entry[T any] struct {
	path  string
	stamp string
	value T
}

// New creates an empty cache.
func New[T any]() *Cache[T] {
	return &Cache[T]{entries: make(map[uint64]entry[T])}
}

// Key returns the identity hash of a path.
func Key(path string) uint64 {
	return xxhash.Sum64String(filepath.Clean(path))
}

// HashBytes computes a BLAKE3 content stamp of bytes as a hex string.
func HashBytes(data []byte) string {
	hash := blake3.Sum256(data)
	return hex.EncodeToString(hash[:])
}

// HashFile computes a BLAKE3 content stamp of a file's contents.
func HashFile(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	return HashBytes(data), nil
}

// StatStamp derives a stamp from modification time and size, for callers
// that only have a stat.
func StatStamp(info fs.FileInfo) string {
	return strconv.FormatInt(info.ModTime().UnixNano(), 36) + "-" + strconv.FormatInt(info.Size(), 36)
}

// Get returns the value stored for path if its stamp matches.
func (c *Cache[T]) Get(path, stamp string) (T, bool) {
	c.mu.RLock()
	e, ok := c.entries[Key(path)]
	c.mu.RUnlock()
	if !ok || e.stamp != stamp || e.path != filepath.Clean(path) {
		c.misses.Add(1)
		var zero T
		return zero, false
	}
	c.hits.Add(1)
	return e.value, true
}

// Set stores value for path under stamp, replacing any older entry.
func (c *Cache[T]) Set(path, stamp string, value T) {
	c.mu.Lock()
	c.entries[Key(path)] = entry[T]{path: filepath.Clean(path), stamp: stamp, value: value}
	c.mu.Unlock()
}

// Invalidate removes the entry for path.
func (c *Cache[T]) Invalidate(path string) {
	c.mu.Lock()
	delete(c.entries, Key(path))
	c.mu.Unlock()
}

// Clear removes all cache entries.
func (c *Cache[T]) Clear() {
	c.mu.Lock()
	c.entries = make(map[uint64]entry[T])
	c.mu.Unlock()
}

// Stats returns cache statistics.
type Stats struct {
	Entries int   `json:"entries"`
	Hits    int64 `json:"hits"`
	Misses  int64 `json:"misses"`
}

// GetStats returns statistics about the cache.
func (c *Cache[T]) GetStats() Stats {
	c.mu.RLock()
	n := len(c.entries)
	c.mu.RUnlock()
	return Stats{Entries: n, Hits: c.hits.Load(), Misses: c.misses.Load()}
}
