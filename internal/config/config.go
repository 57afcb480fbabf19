// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package config loads and persists campuschat configuration from
// ~/.campuschat/config.toml, with CAMPUSCHAT_* environment overrides.
package config

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/jeranaias/campuschat/internal/api"
)

// Storage backend names accepted in [storage].
const (
	BackendFile   = "file"
	BackendSQLite = "sqlite"
	BackendMemory = "memory"
)

// Theme names accepted in [ui].
const (
	ThemeLight  = "light"
	ThemeDark   = "dark"
	ThemeSystem = "system"
)

// Config is the top-level configuration.
type Config struct {
	API     APIConfig     `toml:"api"`
	Storage StorageConfig `toml:"storage"`
	Chat    ChatConfig    `toml:"chat"`
	UI      UIConfig      `toml:"ui"`
}

// APIConfig configures the backend gateway.
type APIConfig struct {
	BaseURL     string `toml:"base_url"`
	TimeoutSecs int    `toml:"timeout_secs"`
}

// Timeout returns the request timeout as a duration.
func (a APIConfig) Timeout() time.Duration {
	return time.Duration(a.TimeoutSecs) * time.Second
}

// StorageConfig selects and configures the local state backend.
type StorageConfig struct {
	Backend string `toml:"backend"`
	// Encrypt wraps the backend so values are AES-GCM encrypted at rest
	// with a machine-local key.
	Encrypt bool `toml:"encrypt"`
}

// ChatConfig configures the chat flow.
type ChatConfig struct {
	// Simulate answers questions from a small canned set instead of the
	// backend. Useful for demos and offline work.
	Simulate bool `toml:"simulate"`
}

// UIConfig holds display preferences. Theme and language are also
// runtime-switchable; these are the startup defaults.
type UIConfig struct {
	Theme    string `toml:"theme"`
	Language string `toml:"language"`
}

// Default returns the configuration used when no file exists.
func Default() *Config {
	return &Config{
		API: APIConfig{
			BaseURL:     api.DefaultBaseURL,
			TimeoutSecs: int(api.DefaultTimeout / time.Second),
		},
		Storage: StorageConfig{
			Backend: BackendFile,
			Encrypt: true,
		},
		UI: UIConfig{
			Theme:    ThemeSystem,
			Language: "vi",
		},
	}
}

// Dir returns the campuschat home directory (~/.campuschat), creating it
// if needed.
func Dir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	dir := filepath.Join(home, ".campuschat")
	if err := os.MkdirAll(dir, 0700); err != nil {
		return "", fmt.Errorf("failed to create config directory: %w", err)
	}
	return dir, nil
}

// Path returns the config file path inside Dir.
func Path() (string, error) {
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.toml"), nil
}

// Load reads the config file at path, fills gaps with defaults, applies
// environment overrides, and validates. A missing file yields the default
// configuration, not an error.
func Load(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	switch {
	case os.IsNotExist(err):
		// fine, defaults apply
	case err != nil:
		return nil, fmt.Errorf("failed to read config: %w", err)
	default:
		if err := toml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config: %w", err)
		}
	}

	applyEnv(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// applyEnv overrides config fields from CAMPUSCHAT_* variables.
func applyEnv(cfg *Config) {
	if v := os.Getenv("CAMPUSCHAT_BASE_URL"); v != "" {
		cfg.API.BaseURL = v
	}
	if v := os.Getenv("CAMPUSCHAT_TIMEOUT_SECS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.API.TimeoutSecs = n
		}
	}
	if v := os.Getenv("CAMPUSCHAT_STORAGE_BACKEND"); v != "" {
		cfg.Storage.Backend = v
	}
	if v := os.Getenv("CAMPUSCHAT_THEME"); v != "" {
		cfg.UI.Theme = v
	}
	if v := os.Getenv("CAMPUSCHAT_LANGUAGE"); v != "" {
		cfg.UI.Language = v
	}
}

// Validate checks field values.
func (c *Config) Validate() error {
	if c.API.BaseURL == "" {
		return fmt.Errorf("api.base_url must not be empty")
	}
	if c.API.TimeoutSecs <= 0 {
		return fmt.Errorf("api.timeout_secs must be positive, got %d", c.API.TimeoutSecs)
	}
	switch c.Storage.Backend {
	case BackendFile, BackendSQLite, BackendMemory:
	default:
		return fmt.Errorf("storage.backend must be one of file, sqlite, memory; got %q", c.Storage.Backend)
	}
	switch c.UI.Theme {
	case ThemeLight, ThemeDark, ThemeSystem:
	default:
		return fmt.Errorf("ui.theme must be one of light, dark, system; got %q", c.UI.Theme)
	}
	return nil
}

// Save writes the config as TOML with owner-only permissions.
func (c *Config) Save(path string) error {
	if err := c.Validate(); err != nil {
		return err
	}

	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(c); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	if err := os.WriteFile(path, buf.Bytes(), 0600); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}
