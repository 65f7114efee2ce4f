// Package config loads the TOML tool configuration. Flags take precedence
// over config values; the config file is optional.
package config

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
)

// Config holds the settings the CLI reads from a tablesmith.toml file.
type Config struct {
	// DSN is the MySQL connection string, e.g. "user:pass@tcp(host:3306)/db".
	DSN string `toml:"dsn"`
	// Format selects the default output format: "json" or "human".
	Format string `toml:"format"`
	// Preflight toggles parsing compiled statements before execution.
	Preflight bool `toml:"preflight"`
}

// Default returns the configuration used when no file is present.
func Default() *Config {
	return &Config{
		Format:    "human",
		Preflight: true,
	}
}

// Load reads the config file at path, applying defaults for unset fields.
// A missing file is not an error; it yields the defaults.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	if _, err := os.Stat(path); os.IsNotExist(err) {
		return cfg, nil
	}
	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	if cfg.Format == "" {
		cfg.Format = "human"
	}
	return cfg, nil
}
