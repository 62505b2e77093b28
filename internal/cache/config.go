package cache

import (
	"context"
	"fmt"
	"time"
)

// Backend names accepted in Config.Backend.
const (
	BackendNone   = "none"
	BackendMemory = "memory"
	BackendRedis  = "redis"
)

// Config selects and tunes the cache backend.
type Config struct {
	Backend    string        `toml:"backend"`
	RedisURL   string        `toml:"redis_url"`
	Prefix     string        `toml:"prefix"`
	TTL        time.Duration `toml:"ttl"`
	MaxEntries int           `toml:"max_entries"`
}

// DefaultConfig keeps a small in-memory cache for a day.
func DefaultConfig() Config {
	return Config{
		Backend:    BackendMemory,
		Prefix:     "skilltree:",
		TTL:        24 * time.Hour,
		MaxEntries: 256,
	}
}

// Open builds the cache described by cfg.
func Open(ctx context.Context, cfg Config) (Cache, error) {
	switch cfg.Backend {
	case "", BackendNone:
		return NewNull(), nil
	case BackendMemory:
		return NewMemory(cfg.MaxEntries), nil
	case BackendRedis:
		if cfg.RedisURL == "" {
			return nil, fmt.Errorf("cache backend redis requires redis_url")
		}
		return NewRedis(ctx, cfg.RedisURL, cfg.Prefix)
	default:
		return nil, fmt.Errorf("unknown cache backend %q", cfg.Backend)
	}
}
