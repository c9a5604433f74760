package cache

import (
	"context"
	"time"

	"github.com/matzehuels/drawkit/pkg/observability"
)

// Instrumented reports hits, misses and writes of the wrapped cache to the
// registered [observability.CacheHooks], keyed by [KeyType].
type Instrumented struct {
	Cache

	// TTL, when positive, replaces the ttl passed to Set.
	TTL time.Duration
}

// NewInstrumented wraps c. Wrapping an Instrumented cache returns it as is.
func NewInstrumented(c Cache) Cache {
	if ic, ok := c.(*Instrumented); ok {
		return ic
	}
	return &Instrumented{Cache: c}
}

func (c *Instrumented) Get(ctx context.Context, key string) ([]byte, bool, error) {
	data, hit, err := c.Cache.Get(ctx, key)
	if err == nil {
		if hit {
			observability.Cache().OnCacheHit(ctx, KeyType(key))
		} else {
			observability.Cache().OnCacheMiss(ctx, KeyType(key))
		}
	}
	return data, hit, err
}

func (c *Instrumented) Set(ctx context.Context, key string, data []byte, ttl time.Duration) error {
	if c.TTL > 0 {
		ttl = c.TTL
	}
	err := c.Cache.Set(ctx, key, data, ttl)
	if err == nil {
		observability.Cache().OnCacheSet(ctx, KeyType(key), len(data))
	}
	return err
}

// Clear forwards to the wrapped cache when it supports clearing.
func (c *Instrumented) Clear(ctx context.Context) (int, error) {
	if cl, ok := c.Cache.(Clearer); ok {
		return cl.Clear(ctx)
	}
	return 0, nil
}
