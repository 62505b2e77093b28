// Package config loads skilltree settings. Sources are applied in order:
// built-in defaults, a TOML file, a .env file, SKILLTREE_* environment
// variables. Command flags are applied last by the caller.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"

	"github.com/mezotv/skill-tree/internal/cache"
	"github.com/mezotv/skill-tree/internal/layout"
	"github.com/mezotv/skill-tree/internal/llm"
	"github.com/mezotv/skill-tree/internal/server"
	"github.com/mezotv/skill-tree/internal/skilltree"
	"github.com/mezotv/skill-tree/internal/suggest"
)

// DefaultFile is read from the working directory when no file is given.
const DefaultFile = "skilltree.toml"

// Config is the complete application configuration.
type Config struct {
	// DB is the audit database path. Empty means the per-user default.
	DB       string `toml:"db"`
	LogLevel string `toml:"log_level"`

	LLM     llm.Config       `toml:"llm"`
	Suggest suggest.Config   `toml:"suggest"`
	Tree    skilltree.Config `toml:"tree"`
	Layout  layout.Config    `toml:"layout"`
	Server  server.Config    `toml:"server"`
	Cache   cache.Config     `toml:"cache"`
	Client  ClientConfig     `toml:"client"`
}

// ClientConfig points the terminal explorer at a remote API.
type ClientConfig struct {
	// Endpoint is the base URL of a skilltree server. Empty means the
	// explorer generates in-process.
	Endpoint string `toml:"endpoint"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		LogLevel: "info",
		LLM:      llm.DefaultConfig(),
		Suggest:  suggest.DefaultConfig(),
		Tree:     skilltree.DefaultConfig(),
		Layout:   layout.DefaultConfig(),
		Server:   server.DefaultConfig(),
		Cache:    cache.DefaultConfig(),
	}
}

// Load builds the configuration. A non-empty path must exist; an empty
// path reads DefaultFile when present.
func Load(path string) (Config, error) {
	cfg := Default()

	file := path
	if file == "" {
		if _, err := os.Stat(DefaultFile); err == nil {
			file = DefaultFile
		}
	}
	if file != "" {
		if err := decodeFile(file, &cfg); err != nil {
			return Config{}, err
		}
	}

	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("load .env: %w", err)
	}
	ApplyEnv(&cfg)
	return cfg, nil
}

func decodeFile(path string, cfg *Config) error {
	md, err := toml.DecodeFile(path, cfg)
	if err != nil {
		return fmt.Errorf("read config %s: %w", path, err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return fmt.Errorf("config %s: unknown keys: %s", path, strings.Join(keys, ", "))
	}
	return nil
}

// ApplyEnv overrides cfg with SKILLTREE_* environment variables.
func ApplyEnv(cfg *Config) {
	set := func(dst *string, key string) {
		if v := os.Getenv(key); v != "" {
			*dst = v
		}
	}

	set(&cfg.DB, "SKILLTREE_DB")
	set(&cfg.LogLevel, "SKILLTREE_LOG_LEVEL")
	set(&cfg.Server.Addr, "SKILLTREE_ADDR")
	set(&cfg.Client.Endpoint, "SKILLTREE_ENDPOINT")
	set(&cfg.Cache.Backend, "SKILLTREE_CACHE")
	set(&cfg.Cache.RedisURL, "SKILLTREE_REDIS_URL")

	if v := os.Getenv("SKILLTREE_ALLOWED_ORIGINS"); v != "" {
		var origins []string
		for _, o := range strings.Split(v, ",") {
			if o = strings.TrimSpace(o); o != "" {
				origins = append(origins, o)
			}
		}
		cfg.Server.AllowedOrigins = origins
	}

	llm.ApplyEnv(&cfg.LLM)
}

// Validate checks the settings that do not depend on which command runs.
// LLM credentials are checked by commands that generate.
func (c Config) Validate() error {
	var errs []string
	if err := c.Layout.Validate(); err != nil {
		errs = append(errs, err.Error())
	}
	if c.Suggest.Count < 1 {
		errs = append(errs, fmt.Sprintf("suggest count must be >= 1, got %d", c.Suggest.Count))
	}
	switch c.Cache.Backend {
	case "", cache.BackendNone, cache.BackendMemory, cache.BackendRedis:
	default:
		errs = append(errs, fmt.Sprintf("unknown cache backend %q", c.Cache.Backend))
	}
	if len(errs) > 0 {
		return fmt.Errorf("invalid configuration: %s", strings.Join(errs, "; "))
	}
	return nil
}
