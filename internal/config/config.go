// Manages the docdb configuration stored in a YAML file.

// Package config loads and validates the docdb command line configuration.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/maruel/docdb/internal/docstore"
	"gopkg.in/yaml.v3"
)

// Config is the docdb configuration. Missing fields keep their default.
type Config struct {
	// DB is the path of the JSON document.
	DB string `yaml:"db"`

	// LogLevel is one of debug, info, warn or error.
	LogLevel string `yaml:"log_level"`

	// Pretty selects indented JSON output when writing the document.
	Pretty bool `yaml:"pretty"`

	// AutoFlush saves the document after mutations. A zero Burst disables it.
	AutoFlush AutoFlush `yaml:"auto_flush"`

	// Watch runs the watch command when no command is given.
	Watch bool `yaml:"watch"`
}

// AutoFlush throttles saves after mutations.
type AutoFlush struct {
	// MinInterval is the minimum delay between two saves once Burst is
	// exhausted.
	MinInterval time.Duration `yaml:"min_interval"`

	// Burst is the number of saves allowed back to back. 0 disables auto-flush.
	Burst int `yaml:"burst"`
}

// Validate checks that the auto-flush settings are non-negative.
func (a *AutoFlush) Validate() error {
	if a.MinInterval < 0 {
		return errors.New("min_interval must be non-negative")
	}
	if a.Burst < 0 {
		return errors.New("burst must be non-negative")
	}
	return nil
}

// Default returns the default configuration.
func Default() Config {
	return Config{
		DB:       "data.json",
		LogLevel: "info",
		Pretty:   true,
	}
}

// Validate checks that the configuration is valid.
func (c *Config) Validate() error {
	if c.DB == "" {
		return errors.New("db is required")
	}
	if _, err := ParseLevel(c.LogLevel); err != nil {
		return err
	}
	if err := c.AutoFlush.Validate(); err != nil {
		return fmt.Errorf("auto_flush: %w", err)
	}
	return nil
}

// StoreOptions returns the docstore options matching the configuration.
func (c *Config) StoreOptions(logger *slog.Logger) []docstore.Option {
	opts := []docstore.Option{docstore.WithLogger(logger), docstore.WithPretty(c.Pretty)}
	if c.AutoFlush.Burst > 0 {
		opts = append(opts, docstore.WithAutoFlush(c.AutoFlush.MinInterval, c.AutoFlush.Burst))
	}
	return opts
}

// ParseLevel converts a log level name to a slog.Level.
func ParseLevel(s string) (slog.Level, error) {
	switch s {
	case "debug":
		return slog.LevelDebug, nil
	case "info":
		return slog.LevelInfo, nil
	case "warn":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return 0, fmt.Errorf("unknown log level: %q", s)
	}
}

// Load loads the configuration from path. A missing file is created with the
// defaults.
func Load(path string) (*Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path) //nolint:gosec // G304: path is the -config flag
	if err != nil {
		if !os.IsNotExist(err) {
			return nil, fmt.Errorf("failed to read %s: %w", path, err)
		}
		if err := cfg.Save(path); err != nil {
			return nil, err
		}
		return &cfg, nil
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid %s: %w", path, err)
	}
	return &cfg, nil
}

// Save saves the configuration to path.
func (c *Config) Save(path string) error {
	if err := c.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil { //nolint:gosec // G306: the config holds no secret
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}
