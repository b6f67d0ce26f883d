package tilecache

import (
	"context"
	"fmt"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/heatfall/heatfall/internal/core/observability"
)

// LRU is an in-process tile cache with a fixed entry budget. TTLs are
// ignored: eviction is purely by recency, which is fine for tiles that
// change on the order of days.
type LRU struct {
	c *lru.Cache[string, []byte]
}

func NewLRU(size int) (*LRU, error) {
	if size <= 0 {
		return nil, fmt.Errorf("lru size must be positive, got %d", size)
	}
	c, err := lru.New[string, []byte](size)
	if err != nil {
		return nil, fmt.Errorf("lru: %w", err)
	}
	return &LRU{c: c}, nil
}

func (l *LRU) Get(_ context.Context, key string) ([]byte, bool, error) {
	v, ok := l.c.Get(key)
	if !ok {
		observability.ObserveTileCache("memory", "miss")
		return nil, false, nil
	}
	observability.ObserveTileCache("memory", "hit")
	return v, true, nil
}

func (l *LRU) Set(_ context.Context, key string, val []byte, _ time.Duration) error {
	l.c.Add(key, val)
	observability.ObserveTileCache("memory", "store")
	return nil
}
