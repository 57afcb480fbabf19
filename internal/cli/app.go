// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"

	"github.com/jeranaias/campuschat/internal/api"
	"github.com/jeranaias/campuschat/internal/auth"
	"github.com/jeranaias/campuschat/internal/chat"
	"github.com/jeranaias/campuschat/internal/config"
	"github.com/jeranaias/campuschat/internal/storage"
)

// Version is the campuschat release version.
const Version = "0.2.0"

// App wires configuration, storage, the API gateway, and the conversation
// store together for the CLI commands.
type App struct {
	cfg       *config.Config
	kv        storage.KV
	client    *api.Client
	auth      *auth.Service
	store     *chat.Store
	prefs     *config.Prefs
	responder chat.Responder

	stdout io.Writer
	stderr io.Writer

	// closer releases the storage backend, when it holds resources.
	closer func() error
}

// NewApp builds the application from configuration.
func NewApp(cfg *config.Config) (*App, error) {
	kv, closer, err := openKV(cfg.Storage)
	if err != nil {
		return nil, err
	}

	client := api.NewClient(cfg.API.BaseURL, kv).WithTimeout(cfg.API.Timeout())

	var responder chat.Responder = chat.NewAPIResponder(client)
	if cfg.Chat.Simulate {
		responder = chat.SimulatedResponder{}
	}

	app := &App{
		cfg:       cfg,
		kv:        kv,
		client:    client,
		auth:      auth.NewService(client),
		store:     chat.NewStore(kv),
		prefs:     config.NewPrefs(kv, cfg.UI),
		responder: responder,
		stdout:    os.Stdout,
		stderr:    os.Stderr,
		closer:    closer,
	}
	return app, nil
}

// openKV opens the configured storage backend, optionally wrapped with
// at-rest encryption.
func openKV(cfg config.StorageConfig) (storage.KV, func() error, error) {
	noop := func() error { return nil }

	var kv storage.KV
	closer := noop
	switch cfg.Backend {
	case config.BackendMemory:
		kv = storage.NewMemoryStore()
	case config.BackendSQLite:
		dir, err := config.Dir()
		if err != nil {
			return nil, nil, err
		}
		db, err := storage.NewSQLiteStore(filepath.Join(dir, "state.db"))
		if err != nil {
			return nil, nil, err
		}
		kv = db
		closer = db.Close
	default:
		fs, err := storage.NewFileStore()
		if err != nil {
			return nil, nil, err
		}
		kv = fs
	}

	if cfg.Encrypt {
		secret, err := storage.MachineSecret()
		if err != nil {
			closer()
			return nil, nil, err
		}
		// Salt is a fixed app string; the secret itself is random per
		// machine, so the derived key is still unique.
		enc, err := storage.NewEncryptedKV(kv, secret, []byte("campuschat-kv-v1"))
		if err != nil {
			closer()
			return nil, nil, err
		}
		kv = enc
	}
	return kv, closer, nil
}

// Close releases backend resources.
func (a *App) Close() error {
	return a.closer()
}

// applyConfig pushes reloadable settings from a fresh configuration into
// the running app. Only the gateway settings are live; storage backend
// and preference changes take effect on the next start.
func (a *App) applyConfig(cfg *config.Config) {
	a.client.SetBaseURL(cfg.API.BaseURL)
	a.client.SetTimeout(cfg.API.Timeout())
}

// startConfigWatcher hot-reloads the config file for the duration of ctx.
// Returns a stop function. A failure to watch disables reload for the
// session but is never fatal.
func (a *App) startConfigWatcher(ctx context.Context) func() {
	path, err := config.Path()
	if err != nil {
		log.Printf("[WARN] config reload disabled: %v", err)
		return func() {}
	}
	w, err := config.NewWatcher(path, a.applyConfig)
	if err != nil {
		log.Printf("[WARN] config reload disabled: %v", err)
		return func() {}
	}
	go w.Run(ctx)
	return func() { w.Close() }
}

// Run dispatches a parsed command.
func (a *App) Run(ctx context.Context, cmd Command, args []string) error {
	switch cmd {
	case CommandChat:
		return a.runChat(ctx)
	case CommandLogin:
		return a.runLogin(ctx)
	case CommandSignup:
		return a.runSignup(ctx)
	case CommandLogout:
		return a.runLogout(ctx)
	case CommandWhoami:
		return a.runWhoami(ctx)
	case CommandHistory:
		return a.runHistory()
	case CommandSearch:
		return a.runSearch(args)
	case CommandDelete:
		return a.runDelete(args)
	case CommandClear:
		return a.runClear()
	case CommandConfig:
		return a.runConfig()
	case CommandVersion:
		fmt.Fprintf(a.stdout, "campuschat %s\n", Version)
		return nil
	default:
		fmt.Fprint(a.stdout, Usage())
		return nil
	}
}
