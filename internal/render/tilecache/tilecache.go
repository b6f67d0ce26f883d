// Package tilecache caches fetched base-map tiles so repeated renders of
// nearby regions skip the tile server.
package tilecache

import (
	"context"
	"fmt"
	"time"
)

type Interface interface {
	// Get returns the cached tile bytes and whether the key was present.
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, val []byte, ttl time.Duration) error
}

// Key builds the cache key for one slippy tile.
func Key(provider string, z, x, y int) string {
	return fmt.Sprintf("tile:%s:%d:%d:%d", provider, z, x, y)
}

// Nop caches nothing. Used when caching is disabled.
type Nop struct{}

func (Nop) Get(context.Context, string) ([]byte, bool, error) { return nil, false, nil }

func (Nop) Set(context.Context, string, []byte, time.Duration) error { return nil }
