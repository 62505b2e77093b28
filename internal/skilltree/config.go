package skilltree

import "time"

// Config holds skill-tree generation settings.
type Config struct {
	MaxTokens   int     `toml:"max_tokens"`
	Temperature float64 `toml:"temperature"`

	// CacheTTL is how long a generated tree is reused for the same
	// occupation and model. Zero keeps entries until evicted.
	CacheTTL time.Duration `toml:"cache_ttl"`
}

// DefaultConfig returns sensible defaults for skill-tree generation.
func DefaultConfig() Config {
	return Config{
		MaxTokens:   16000,
		Temperature: 0.4,
		CacheTTL:    24 * time.Hour,
	}
}
