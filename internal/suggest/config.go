package suggest

// Config holds suggestion generation settings.
type Config struct {
	// Count is the number of suggestions asked for.
	Count int `toml:"count"`

	MaxTokens   int     `toml:"max_tokens"`
	Temperature float64 `toml:"temperature"`

	// Stream asks streaming-capable providers for line-delimited output.
	Stream bool `toml:"stream"`
}

// DefaultConfig returns sensible defaults for suggestion generation.
func DefaultConfig() Config {
	return Config{
		Count:       5,
		MaxTokens:   1000,
		Temperature: 0.7,
		Stream:      true,
	}
}
