package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/maypok86/otter/v2"
)

type CacheOptions struct {
	Capacity int
	// TTL is measured from the last access. Zero keeps entries until evicted by size.
	TTL time.Duration

	// FilePath enables JSON persistence of the entries.
	FilePath      string
	FlushInterval time.Duration
}

// Cache is a bounded in-memory map with optional on-disk snapshots.
// Concurrent Load calls for one key run the loader once.
type Cache[T any] struct {
	outer *otter.Cache[string, T]

	filePath  string
	flushMu   sync.Mutex
	stopFlush chan struct{}
	closeOnce sync.Once
}

func NewCache[T any](o CacheOptions) *Cache[T] {
	opts := &otter.Options[string, T]{
		InitialCapacity: min(o.Capacity, 1024),
	}
	if o.Capacity > 0 {
		opts.MaximumSize = o.Capacity
	}
	if o.TTL > 0 {
		opts.ExpiryCalculator = otter.ExpiryAccessing[string, T](o.TTL)
	}

	c := &Cache[T]{
		outer:     otter.Must(opts),
		filePath:  o.FilePath,
		stopFlush: make(chan struct{}),
	}

	if c.filePath != "" {
		_ = c.loadFromDisk()
		if o.FlushInterval > 0 {
			go c.periodicFlush(o.FlushInterval)
		}
	}

	return c
}

func (c *Cache[T]) Set(key string, val T) {
	c.outer.Set(key, val)
}

func (c *Cache[T]) Get(key string) (T, bool) {
	return c.outer.GetIfPresent(key)
}

// Load returns the cached value or computes it with fn. Errors are not cached.
func (c *Cache[T]) Load(ctx context.Context, key string, fn func(ctx context.Context, key string) (T, error)) (T, error) {
	return c.outer.Get(ctx, key, otter.LoaderFunc[string, T](fn))
}

func (c *Cache[T]) Delete(key string) {
	c.outer.Invalidate(key)
}

func (c *Cache[T]) Clear() {
	c.outer.InvalidateAll()
}

func (c *Cache[T]) Len() int {
	return c.outer.EstimatedSize()
}

// Flush writes a snapshot of all entries to the configured file.
func (c *Cache[T]) Flush() error {
	if c.filePath == "" {
		return nil
	}

	c.flushMu.Lock()
	defer c.flushMu.Unlock()

	data := make(map[string]T)
	for k, v := range c.outer.All() {
		data[k] = v
	}

	raw, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal cache: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(c.filePath), 0o755); err != nil {
		return err
	}

	tmp := c.filePath + ".tmp"
	if err := os.WriteFile(tmp, raw, 0o600); err != nil {
		return err
	}
	return os.Rename(tmp, c.filePath)
}

func (c *Cache[T]) periodicFlush(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			_ = c.Flush()
		case <-c.stopFlush:
			return
		}
	}
}

func (c *Cache[T]) loadFromDisk() error {
	data, err := os.ReadFile(c.filePath)
	if err != nil {
		return err
	}

	var items map[string]T
	if err := json.Unmarshal(data, &items); err != nil {
		return err
	}

	for k, v := range items {
		c.outer.Set(k, v)
	}

	return nil
}

// Close stops the flush loop and writes a final snapshot.
func (c *Cache[T]) Close() error {
	c.closeOnce.Do(func() { close(c.stopFlush) })
	return c.Flush()
}
