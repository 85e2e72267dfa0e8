// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 AuditAspect Contributors

// Package config loads auditaspect configuration from YAML files,
// command-line flags, and the environment.
package config

import (
	"errors"
	"os"
	"path/filepath"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/samber/oops"
	"github.com/spf13/pflag"

	"github.com/auditaspect/auditaspect/internal/xdg"
)

// Handler kinds accepted in configuration.
const (
	KindDB      = "db"
	KindMemory  = "memory"
	KindLog     = "log"
	KindFailing = "failing"
)

// LogConfig controls log output.
type LogConfig struct {
	Format string `koanf:"format"`
	Level  string `koanf:"level"`
}

// DatabaseConfig holds database connection settings.
type DatabaseConfig struct {
	URL string `koanf:"url"`
}

// MetricsConfig controls the observability endpoint.
type MetricsConfig struct {
	Enabled bool   `koanf:"enabled"`
	Addr    string `koanf:"addr"`
}

// WALConfig controls the write-ahead fallback log for synchronous audit
// writes that cannot reach the database.
type WALConfig struct {
	Path string `koanf:"path"`
}

// RetentionConfig controls purging of expired audit events.
type RetentionConfig struct {
	Enabled       bool          `koanf:"enabled"`
	Retain        time.Duration `koanf:"retain"`
	PurgeInterval time.Duration `koanf:"purge_interval"`
}

// HandlerConfig declares one named audit handler and its kind.
type HandlerConfig struct {
	Name string `koanf:"name"`
	Kind string `koanf:"kind"`
}

// AttachmentConfig binds an ordered handler list to a target. A target is
// either a type name ("DemoService") or a method key ("DemoService#Boom");
// glob patterns are accepted in both positions.
type AttachmentConfig struct {
	Target   string   `koanf:"target"`
	Handlers []string `koanf:"handlers"`
}

// AuditConfig holds the handler registry and attachment declarations.
type AuditConfig struct {
	Handlers    []HandlerConfig    `koanf:"handlers"`
	Attachments []AttachmentConfig `koanf:"attachments"`
}

// Config is the root configuration.
type Config struct {
	Log       LogConfig       `koanf:"log"`
	Database  DatabaseConfig  `koanf:"database"`
	Metrics   MetricsConfig   `koanf:"metrics"`
	WAL       WALConfig       `koanf:"wal"`
	Retention RetentionConfig `koanf:"retention"`
	Audit     AuditConfig     `koanf:"audit"`
}

// Default returns the built-in defaults. The database URL intentionally has
// no default; it comes from configuration or DATABASE_URL.
func Default() Config {
	return Config{
		Log: LogConfig{
			Format: "json",
			Level:  "info",
		},
		Metrics: MetricsConfig{
			Enabled: true,
			Addr:    "127.0.0.1:9100",
		},
		WAL: WALConfig{
			Path: filepath.Join(xdg.StateDir(), "audit-wal.jsonl"),
		},
		Retention: RetentionConfig{
			Enabled:       true,
			Retain:        90 * 24 * time.Hour,
			PurgeInterval: 24 * time.Hour,
		},
	}
}

// DefaultPath returns the default config file location.
func DefaultPath() string {
	return filepath.Join(xdg.ConfigDir(), "config.yaml")
}

// Load reads configuration. Later sources override earlier ones:
// defaults, then the YAML file at path (skipped when path is empty and the
// default file does not exist), then flags. DATABASE_URL fills the database
// URL when no other source sets it.
func Load(path string, flags *pflag.FlagSet) (Config, error) {
	cfg := Default()

	k := koanf.New(".")

	explicit := path != ""
	if !explicit {
		path = DefaultPath()
	}
	if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
		if explicit || !errors.Is(err, os.ErrNotExist) {
			return Config{}, oops.Code("CONFIG_LOAD_FAILED").With("path", path).Wrap(err)
		}
	}

	if flags != nil {
		if err := k.Load(posflag.Provider(flags, ".", k), nil); err != nil {
			return Config{}, oops.Code("CONFIG_LOAD_FAILED").With("source", "flags").Wrap(err)
		}
	}

	if err := k.Unmarshal("", &cfg); err != nil {
		return Config{}, oops.Code("CONFIG_PARSE_FAILED").Wrap(err)
	}

	if cfg.Database.URL == "" {
		cfg.Database.URL = os.Getenv("DATABASE_URL")
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks internal consistency. It does not require a database URL;
// commands that need one check for it themselves.
func (c Config) Validate() error {
	seen := make(map[string]struct{}, len(c.Audit.Handlers))
	for _, h := range c.Audit.Handlers {
		if h.Name == "" {
			return oops.Code("CONFIG_INVALID").Errorf("handler with empty name")
		}
		if _, dup := seen[h.Name]; dup {
			return oops.Code("CONFIG_INVALID").With("handler", h.Name).Errorf("duplicate handler name %q", h.Name)
		}
		seen[h.Name] = struct{}{}

		switch h.Kind {
		case KindDB, KindMemory, KindLog, KindFailing:
		default:
			return oops.Code("CONFIG_INVALID").With("handler", h.Name).
				Errorf("unknown handler kind %q", h.Kind)
		}
	}

	for _, a := range c.Audit.Attachments {
		if a.Target == "" {
			return oops.Code("CONFIG_INVALID").Errorf("attachment with empty target")
		}
	}

	switch c.Log.Format {
	case "", "json", "text":
	default:
		return oops.Code("CONFIG_INVALID").Errorf("unknown log format %q", c.Log.Format)
	}

	if c.Retention.Enabled {
		if c.Retention.Retain <= 0 {
			return oops.Code("CONFIG_INVALID").Errorf("retention.retain must be positive")
		}
		if c.Retention.PurgeInterval <= 0 {
			return oops.Code("CONFIG_INVALID").Errorf("retention.purge_interval must be positive")
		}
	}

	return nil
}
