// Package thumbnail stores generated previews as files in a cache directory.
package thumbnail

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// ErrInvalidKey is returned for keys that would leave the cache directory.
var ErrInvalidKey = errors.New("thumbnail: invalid cache key")

// Cache is a write-once file cache. Entries are never evicted.
type Cache struct {
	dir string
}

// New creates a cache rooted at dir.
func New(dir string) *Cache {
	return &Cache{dir: dir}
}

// EnsureDir creates the cache directory.
func (c *Cache) EnsureDir() error {
	if err := os.MkdirAll(c.dir, 0o755); err != nil {
		return fmt.Errorf("create thumbnail dir %s: %w", c.dir, err)
	}
	return nil
}

// Key builds the cache key "{id}_{timestamp}.jpg".
func Key(resourceID string, timestamp int64) (string, error) {
	if resourceID == "" || strings.ContainsAny(resourceID, `/\`) || resourceID == "." || resourceID == ".." {
		return "", fmt.Errorf("%w: media resource id %q", ErrInvalidKey, resourceID)
	}
	return resourceID + "_" + strconv.FormatInt(timestamp, 10) + ".jpg", nil
}

func (c *Cache) path(key string) (string, error) {
	if !filepath.IsLocal(key) || filepath.Base(key) != key {
		return "", fmt.Errorf("%w: %q", ErrInvalidKey, key)
	}
	return filepath.Join(c.dir, key), nil
}

// Get returns the cached bytes. A missing entry is (nil, false, nil).
func (c *Cache) Get(key string) ([]byte, bool, error) {
	p, err := c.path(key)
	if err != nil {
		return nil, false, err
	}
	b, err := os.ReadFile(p)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("read thumbnail %s: %w", key, err)
	}
	return b, true, nil
}

// PutIfAbsent writes data under key unless another writer got there first.
// It returns the bytes that end up cached: data, or the earlier writer's file.
func (c *Cache) PutIfAbsent(key string, data []byte) ([]byte, error) {
	p, err := c.path(key)
	if err != nil {
		return nil, err
	}

	tmp, err := os.CreateTemp(c.dir, ".tmp-"+key+"-*")
	if err != nil {
		return nil, fmt.Errorf("create temp thumbnail: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return nil, fmt.Errorf("write temp thumbnail: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return nil, fmt.Errorf("close temp thumbnail: %w", err)
	}

	// link fails with ErrExist when the final name is already taken
	if err := os.Link(tmpName, p); err != nil {
		if !errors.Is(err, fs.ErrExist) {
			return nil, fmt.Errorf("publish thumbnail %s: %w", key, err)
		}
		existing, ok, err := c.Get(key)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, fmt.Errorf("publish thumbnail %s: entry vanished", key)
		}
		return existing, nil
	}
	return data, nil
}
