// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package config

import (
	"context"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jeranaias/campuschat/internal/storage"
)

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "config.toml"))
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoadPartialFileKeepsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	content := `
[api]
base_url = "https://chat.uit.edu.vn/api/v1"

[ui]
theme = "dark"
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "https://chat.uit.edu.vn/api/v1", cfg.API.BaseURL)
	assert.Equal(t, ThemeDark, cfg.UI.Theme)
	// Unset fields fall back to defaults.
	assert.Equal(t, Default().API.TimeoutSecs, cfg.API.TimeoutSecs)
	assert.Equal(t, BackendFile, cfg.Storage.Backend)
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("CAMPUSCHAT_BASE_URL", "http://127.0.0.1:9000")
	t.Setenv("CAMPUSCHAT_STORAGE_BACKEND", "sqlite")

	cfg, err := Load(filepath.Join(t.TempDir(), "config.toml"))
	require.NoError(t, err)
	assert.Equal(t, "http://127.0.0.1:9000", cfg.API.BaseURL)
	assert.Equal(t, BackendSQLite, cfg.Storage.Backend)
}

func TestValidate(t *testing.T) {
	cfg := Default()
	cfg.Storage.Backend = "redis"
	assert.Error(t, cfg.Validate())

	cfg = Default()
	cfg.UI.Theme = "neon"
	assert.Error(t, cfg.Validate())

	cfg = Default()
	cfg.API.TimeoutSecs = 0
	assert.Error(t, cfg.Validate())
}

func TestSaveLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")

	cfg := Default()
	cfg.API.BaseURL = "https://chat.uit.edu.vn/api/v1"
	cfg.UI.Language = "en"
	require.NoError(t, cfg.Save(path))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, cfg, loaded)
}

func TestPrefsFallBackToDefaults(t *testing.T) {
	kv := storage.NewMemoryStore()
	prefs := NewPrefs(kv, UIConfig{Theme: ThemeSystem, Language: "vi"})

	assert.Equal(t, ThemeSystem, prefs.Theme())
	assert.Equal(t, "vi", prefs.Language())

	require.NoError(t, prefs.SetTheme(ThemeDark))
	require.NoError(t, prefs.SetLanguage("en"))
	assert.Equal(t, ThemeDark, prefs.Theme())
	assert.Equal(t, "en", prefs.Language())

	assert.Error(t, prefs.SetTheme("neon"))
	assert.Error(t, prefs.SetLanguage(""))
}

func TestWatcherReloadsOnChange(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	require.NoError(t, Default().Save(path))

	var reloads atomic.Int64
	var lastURL atomic.Value
	w, err := NewWatcher(path, func(cfg *Config) {
		reloads.Add(1)
		lastURL.Store(cfg.API.BaseURL)
	})
	require.NoError(t, err)
	defer w.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go w.Run(ctx)

	time.Sleep(50 * time.Millisecond)
	cfg := Default()
	cfg.API.BaseURL = "http://127.0.0.1:9999"
	require.NoError(t, cfg.Save(path))

	require.Eventually(t, func() bool {
		return reloads.Load() > 0
	}, 3*time.Second, 20*time.Millisecond, "config change should trigger a reload")
	assert.Equal(t, "http://127.0.0.1:9999", lastURL.Load())
}
