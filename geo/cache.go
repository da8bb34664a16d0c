package geo

import (
	"bytes"
	"encoding/gob"
	"fmt"
	"os"
)

// Result is one geocoding outcome. Found distinguishes a resolved location
// from the service's explicit "no match" answer; both are cached permanently.
type Result struct {
	Found     bool
	Latitude  float64
	Longitude float64
}

// Cache is a persistent address→Result mapping. Every write is flushed to
// disk before it returns, so lookups survive process restarts. The file
// format is private to this package.
type Cache struct {
	path    string
	entries map[string]Result
}

// LoadCache reads an existing cache file, or starts empty if the file does
// not exist. Any other read or decode failure is fatal: silently starting
// over would re-spend rate-limited lookups.
func LoadCache(path string) (*Cache, error) {
	c := &Cache{
		path:    path,
		entries: make(map[string]Result),
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return c, nil
		}
		return nil, fmt.Errorf("geo: read cache %q: %w", path, err)
	}

	if err := gob.NewDecoder(bytes.NewReader(raw)).Decode(&c.entries); err != nil {
		return nil, fmt.Errorf("geo: decode cache %q: %w", path, err)
	}
	return c, nil
}

// Get returns the cached result for key, if any.
func (c *Cache) Get(key string) (Result, bool) {
	r, ok := c.entries[key]
	return r, ok
}

// Put stores the result under key and persists the whole mapping before
// returning (write-through).
func (c *Cache) Put(key string, r Result) error {
	c.entries[key] = r

	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(c.entries); err != nil {
		return fmt.Errorf("geo: encode cache: %w", err)
	}
	if err := os.WriteFile(c.path, buf.Bytes(), 0644); err != nil {
		return fmt.Errorf("geo: write cache %q: %w", c.path, err)
	}
	return nil
}

// Len reports the number of cached lookups.
func (c *Cache) Len() int {
	return len(c.entries)
}
