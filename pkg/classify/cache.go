// Package classify decides the type and language of feeds using static
// tables, user overrides, persistent caches and AI detection as a last
// resort.
package classify

import (
	"encoding/json"
	"fmt"
	"os"
	"sync"

	"github.com/go-pkgz/lgr"
)

// Cache is a flat string-to-string map persisted as pretty-printed JSON.
// Every Set rewrites the whole file, which keeps the format trivially
// inspectable and editable by hand. All access is mutex-guarded; the
// process is the only writer.
type Cache struct {
	path    string
	mu      sync.Mutex
	entries map[string]string
}

// NewCache loads the cache file at path. A missing file yields an empty
// cache; a corrupt one is logged and treated as empty rather than failing
// the run.
func NewCache(path string) *Cache {
	c := &Cache{path: path, entries: map[string]string{}}

	data, err := os.ReadFile(path) //nolint:gosec // cache path comes from config
	if err != nil {
		if !os.IsNotExist(err) {
			lgr.Printf("[WARN] can't read cache %s: %v", path, err)
		}
		return c
	}

	if err := json.Unmarshal(data, &c.entries); err != nil {
		lgr.Printf("[WARN] corrupt cache %s, starting fresh: %v", path, err)
		c.entries = map[string]string{}
	}
	return c
}

// Get returns the cached value for key
func (c *Cache) Get(key string) (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	v, ok := c.entries[key]
	return v, ok
}

// Set stores the value and writes the cache through to disk. Persistence
// is best effort; a failed write is logged and the in-memory entry kept.
func (c *Cache) Set(key, value string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = value
	if err := c.save(); err != nil {
		lgr.Printf("[WARN] can't save cache %s: %v", c.path, err)
	}
}

// Len returns the number of cached entries
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

func (c *Cache) save() error {
	data, err := json.MarshalIndent(c.entries, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal cache: %w", err)
	}
	if err := os.WriteFile(c.path, data, 0o600); err != nil {
		return fmt.Errorf("write cache: %w", err)
	}
	return nil
}
