package server

import "time"

// Config holds HTTP server settings.
type Config struct {
	Addr           string   `toml:"addr"`
	AllowedOrigins []string `toml:"allowed_origins"`

	ReadHeaderTimeout time.Duration `toml:"read_header_timeout"`
	ShutdownTimeout   time.Duration `toml:"shutdown_timeout"`

	// MaxBodyBytes bounds request bodies; skill graphs posted to the
	// layout route are the largest.
	MaxBodyBytes int64 `toml:"max_body_bytes"`
}

// DefaultConfig returns sensible defaults for a local server.
func DefaultConfig() Config {
	return Config{
		Addr:              ":8080",
		AllowedOrigins:    []string{"*"},
		ReadHeaderTimeout: 10 * time.Second,
		ShutdownTimeout:   15 * time.Second,
		MaxBodyBytes:      1 << 20,
	}
}
