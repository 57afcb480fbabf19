// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package config

import (
	"errors"
	"fmt"

	"github.com/jeranaias/campuschat/internal/storage"
)

// Prefs are runtime-switchable display preferences persisted in the
// key-value store, separate from the config file so toggling them does
// not rewrite config.toml.
type Prefs struct {
	kv       storage.KV
	defaults UIConfig
}

// NewPrefs creates a preference accessor falling back to the given
// startup defaults when nothing is stored yet.
func NewPrefs(kv storage.KV, defaults UIConfig) *Prefs {
	return &Prefs{kv: kv, defaults: defaults}
}

// Theme returns the stored theme, or the configured default.
func (p *Prefs) Theme() string {
	var theme string
	if err := p.kv.Get(storage.KeyThemeMode, &theme); err != nil || theme == "" {
		return p.defaults.Theme
	}
	return theme
}

// SetTheme stores the theme mode.
func (p *Prefs) SetTheme(theme string) error {
	switch theme {
	case ThemeLight, ThemeDark, ThemeSystem:
		return p.kv.Set(storage.KeyThemeMode, theme)
	default:
		return fmt.Errorf("unknown theme %q", theme)
	}
}

// Language returns the stored language code, or the configured default.
func (p *Prefs) Language() string {
	var lang string
	if err := p.kv.Get(storage.KeyLanguage, &lang); err != nil || lang == "" {
		return p.defaults.Language
	}
	return lang
}

// SetLanguage stores the interface language code.
func (p *Prefs) SetLanguage(lang string) error {
	if lang == "" {
		return errors.New("language must not be empty")
	}
	return p.kv.Set(storage.KeyLanguage, lang)
}
