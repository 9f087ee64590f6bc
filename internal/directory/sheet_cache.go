package directory

import (
	"context"
	"sync"
)

// SheetCache loads a list once and serves it until Reset. Concurrent callers
// wait for the single load; failed loads are not cached.
type SheetCache[T any] struct {
	load func(ctx context.Context) ([]T, error)

	mu     sync.Mutex
	loaded bool
	items  []T
}

func NewSheetCache[T any](load func(ctx context.Context) ([]T, error)) *SheetCache[T] {
	return &SheetCache[T]{load: load}
}

func (c *SheetCache[T]) Get(ctx context.Context) ([]T, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.loaded {
		return c.items, nil
	}
	items, err := c.load(ctx)
	if err != nil {
		return nil, err
	}
	c.items = items
	c.loaded = true
	return items, nil
}

// Reset drops the cached list; the next Get reloads.
func (c *SheetCache[T]) Reset() {
	c.mu.Lock()
	c.items = nil
	c.loaded = false
	c.mu.Unlock()
}
