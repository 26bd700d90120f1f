package watcher

import (
	"errors"
	"io/fs"
	"os"
	"sync"

	"github.com/cespare/xxhash/v2"
	"go.trai.ch/zerr"
)

// ContentCache remembers the content digest of watched files so that events
// which leave a file unchanged (touch, save without edits) can be ignored.
type ContentCache struct {
	mu      sync.Mutex
	digests map[string]uint64
}

// NewContentCache creates an empty cache.
func NewContentCache() *ContentCache {
	return &ContentCache{digests: make(map[string]uint64)}
}

// Prime records the current content of path without reporting a change.
func (c *ContentCache) Prime(path string) error {
	_, err := c.Changed(path)
	return err
}

// Changed reports whether the content of path differs from the last
// observation. A file that disappears counts as changed once.
func (c *ContentCache) Changed(path string) (bool, error) {
	data, err := os.ReadFile(path)
	c.mu.Lock()
	defer c.mu.Unlock()

	if errors.Is(err, fs.ErrNotExist) {
		_, known := c.digests[path]
		delete(c.digests, path)
		return known, nil
	}
	if err != nil {
		return false, zerr.With(zerr.Wrap(err, "failed to read watched file"), "path", path)
	}

	sum := xxhash.Sum64(data)
	prev, known := c.digests[path]
	c.digests[path] = sum
	return !known || prev != sum, nil
}
