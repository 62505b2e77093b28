package metrics

import (
	"context"

	"github.com/mezotv/skill-tree/internal/cache"
)

type instrumentedCache struct {
	cache.Cache
	c *Collector
}

// InstrumentCache counts hits and misses of inner.
func (c *Collector) InstrumentCache(inner cache.Cache) cache.Cache {
	return &instrumentedCache{Cache: inner, c: c}
}

func (ic *instrumentedCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	data, ok, err := ic.Cache.Get(ctx, key)
	if err == nil {
		if ok {
			ic.c.CacheHits.Inc()
		} else {
			ic.c.CacheMisses.Inc()
		}
	}
	return data, ok, err
}
