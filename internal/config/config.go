// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Full Admin Panel Contributors

// Package config loads panel configuration from defaults, an optional YAML
// file and command-line flags, in that order of precedence (flags win).
package config

import (
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/samber/oops"
	"github.com/spf13/pflag"
)

// Session store backends.
const (
	SessionStorePostgres = "postgres"
	SessionStoreMemory   = "memory"
)

// Config is the root configuration for the panel binary.
type Config struct {
	Server   ServerConfig   `koanf:"server"`
	Metrics  MetricsConfig  `koanf:"metrics"`
	Database DatabaseConfig `koanf:"database"`
	Session  SessionConfig  `koanf:"session"`
	Auth     AuthConfig     `koanf:"auth"`
	Log      LogConfig      `koanf:"log"`
}

// ServerConfig configures the web server.
type ServerConfig struct {
	Addr      string `koanf:"addr"`
	StaticDir string `koanf:"static_dir"`
}

// MetricsConfig configures the metrics/health listener.
// An empty Addr disables it.
type MetricsConfig struct {
	Addr string `koanf:"addr"`
}

// DatabaseConfig configures the PostgreSQL connection.
type DatabaseConfig struct {
	URL string `koanf:"url"`
}

// SessionConfig configures session issuance and storage.
type SessionConfig struct {
	TTL           time.Duration `koanf:"ttl"`
	Store         string        `koanf:"store"`
	CookieName    string        `koanf:"cookie_name"`
	SweepInterval time.Duration `koanf:"sweep_interval"`
}

// AuthConfig configures password digest cost.
type AuthConfig struct {
	Argon2Time    uint32 `koanf:"argon2_time"`
	Argon2Memory  uint32 `koanf:"argon2_memory"`
	Argon2Threads uint8  `koanf:"argon2_threads"`
}

// LogConfig configures structured logging.
type LogConfig struct {
	Format string `koanf:"format"` // "json" or "text"
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Server: ServerConfig{
			Addr:      ":3000",
			StaticDir: "public",
		},
		Metrics: MetricsConfig{
			Addr: "127.0.0.1:9100",
		},
		Session: SessionConfig{
			TTL:           24 * time.Hour,
			Store:         SessionStorePostgres,
			CookieName:    "panel_session",
			SweepInterval: time.Hour,
		},
		Auth: AuthConfig{
			Argon2Time:    1,
			Argon2Memory:  64 * 1024,
			Argon2Threads: 4,
		},
		Log: LogConfig{
			Format: "json",
		},
	}
}

// Load builds the configuration from defaults, the optional YAML file at
// path, and the given flag set. Flags use dotted names matching the config
// keys (e.g. --server.addr).
func Load(path string, flags *pflag.FlagSet) (*Config, error) {
	k := koanf.New(".")

	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, oops.Code("CONFIG_FILE_FAILED").
				With("path", path).
				Wrap(err)
		}
	}

	if flags != nil {
		if err := k.Load(posflag.Provider(flags, ".", k), nil); err != nil {
			return nil, oops.Code("CONFIG_FLAGS_FAILED").Wrap(err)
		}
	}

	cfg := Default()
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, oops.Code("CONFIG_PARSE_FAILED").Wrap(err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks invariants that would otherwise surface as runtime
// failures deep inside serve.
func (c *Config) Validate() error {
	switch c.Session.Store {
	case SessionStorePostgres, SessionStoreMemory:
	default:
		return oops.Code("CONFIG_INVALID").
			With("session.store", c.Session.Store).
			Errorf("session store must be %q or %q", SessionStorePostgres, SessionStoreMemory)
	}
	if c.Session.TTL <= 0 {
		return oops.Code("CONFIG_INVALID").Errorf("session ttl must be positive")
	}
	if c.Session.CookieName == "" {
		return oops.Code("CONFIG_INVALID").Errorf("session cookie name cannot be empty")
	}
	if c.Log.Format != "json" && c.Log.Format != "text" {
		return oops.Code("CONFIG_INVALID").
			With("log.format", c.Log.Format).
			Errorf("log format must be json or text")
	}
	return nil
}
