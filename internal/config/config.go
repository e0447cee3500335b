// Package config loads listo settings from an optional TOML file and
// LISTO_* environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Store backends
const (
	BackendJSON   = "json"
	BackendSQLite = "sqlite"
)

// Config holds application configuration.
type Config struct {
	DataDir  string `mapstructure:"data_dir"`
	Timezone string `mapstructure:"timezone"`
	Store    StoreConfig
	Lookup   LookupConfig
	Log      LogConfig
}

// StoreConfig selects where checklists are persisted.
type StoreConfig struct {
	Backend string
}

// LookupConfig tunes spoken-name matching.
type LookupConfig struct {
	// MinSimilarity is the lowest name similarity (1 - edit distance /
	// longer name length) that starts a checklist without asking for
	// confirmation.
	MinSimilarity float64 `mapstructure:"min_similarity"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level string
}

// Load reads configuration from file and env. An explicit path wins over
// $LISTO_CONFIG, which wins over ~/.config/listo/config.toml.
func Load(path string) (Config, error) {
	v := viper.New()

	home, _ := os.UserHomeDir()
	v.SetDefault("data_dir", filepath.Join(home, ".local", "share", "listo"))
	v.SetDefault("timezone", "")
	v.SetDefault("store.backend", BackendJSON)
	v.SetDefault("lookup.min_similarity", 0.6)
	v.SetDefault("log.level", "info")

	v.SetConfigType("toml")
	if path == "" {
		path = os.Getenv("LISTO_CONFIG")
	}
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.AddConfigPath(filepath.Join(home, ".config", "listo"))
		v.SetConfigName("config")
	}

	v.SetEnvPrefix("LISTO")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return Config{}, fmt.Errorf("failed to read config: %w", err)
		}
	}

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return Config{}, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if err := c.Validate(); err != nil {
		return Config{}, err
	}
	return c, nil
}

// Validate checks values that viper cannot type check.
func (c Config) Validate() error {
	switch c.Store.Backend {
	case BackendJSON, BackendSQLite:
	default:
		return fmt.Errorf("unknown store backend %q (want %s or %s)", c.Store.Backend, BackendJSON, BackendSQLite)
	}
	if c.Lookup.MinSimilarity < 0 || c.Lookup.MinSimilarity > 1 {
		return fmt.Errorf("lookup.min_similarity must be between 0 and 1, got %v", c.Lookup.MinSimilarity)
	}
	if c.DataDir == "" {
		return fmt.Errorf("data_dir must be set")
	}
	if _, err := c.Location(); err != nil {
		return err
	}
	return nil
}

// Location resolves the configured time zone, defaulting to local time.
func (c Config) Location() (*time.Location, error) {
	if c.Timezone == "" {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("invalid timezone %q: %w", c.Timezone, err)
	}
	return loc, nil
}
