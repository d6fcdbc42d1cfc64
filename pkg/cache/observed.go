package cache

import (
	"context"
	"strings"
	"time"

	"github.com/matzehuels/photowall/pkg/observability"
)

// Observed wraps c so that every lookup and store is reported to the
// registered observability.CacheHooks. The key type passed to the hooks is
// the key's kind prefix ("probe", "layout", "artifact").
func Observed(c Cache) Cache {
	return &observedCache{inner: c}
}

type observedCache struct {
	inner Cache
}

func (c *observedCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	data, hit, err := c.inner.Get(ctx, key)
	if err == nil {
		if hit {
			observability.Cache().OnCacheHit(ctx, keyType(key))
		} else {
			observability.Cache().OnCacheMiss(ctx, keyType(key))
		}
	}
	return data, hit, err
}

func (c *observedCache) Set(ctx context.Context, key string, data []byte, ttl time.Duration) error {
	err := c.inner.Set(ctx, key, data, ttl)
	if err == nil {
		observability.Cache().OnCacheSet(ctx, keyType(key), len(data))
	}
	return err
}

func (c *observedCache) Delete(ctx context.Context, key string) error {
	return c.inner.Delete(ctx, key)
}

func (c *observedCache) Close() error {
	return c.inner.Close()
}

// keyType extracts the kind from "scope:kind:hash" or "kind:hash".
func keyType(key string) string {
	parts := strings.Split(key, ":")
	if len(parts) < 2 {
		return "unknown"
	}
	return parts[len(parts)-2]
}
