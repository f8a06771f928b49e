package cache

import (
	"context"
	"time"
)

// Backend stores rendered pages by key. A zero TTL keeps an entry until it is
// cleared.
type Backend interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error

	// Clear drops every entry of this cache
	Clear(ctx context.Context) error

	Close() error
}
