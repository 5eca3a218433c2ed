package cache

import (
	"context"
	"time"
)

// NullCache stores nothing. It is the backend behind --no-cache: every
// schedule is fetched and every sheet rendered on each run.
type NullCache struct{}

// NewNullCache creates a null cache.
func NewNullCache() Cache {
	return &NullCache{}
}

// Enabled reports whether c can hold entries at all.
func Enabled(c Cache) bool {
	_, null := c.(*NullCache)
	return c != nil && !null
}

// Get always misses.
func (*NullCache) Get(context.Context, string) ([]byte, bool, error) {
	return nil, false, nil
}

// Set drops data.
func (*NullCache) Set(context.Context, string, []byte, time.Duration) error {
	return nil
}

// Delete is a no-op.
func (*NullCache) Delete(context.Context, string) error {
	return nil
}

// Clear fails with ErrDisabled; there is no store to empty.
func (*NullCache) Clear(context.Context) (int, error) {
	return 0, ErrDisabled
}

// Close is a no-op.
func (*NullCache) Close() error {
	return nil
}

var (
	_ Cache   = (*NullCache)(nil)
	_ Clearer = (*NullCache)(nil)
)
