// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package storage provides persisted key-value state for campuschat.
//
// The backend keeps small JSON-serializable values under well-known keys
// (credentials, cached profile, chat history, UI preferences) behind a
// get/set/remove contract. Three backends are provided: a file-per-key
// store with atomic writes (the default), a SQLite store, and an in-memory
// store for tests. An encryption wrapper protects sensitive slots at rest.
package storage

import "errors"

// Well-known keys. All values are plain JSON and recoverable after restart.
const (
	KeyAccessToken = "access_token"
	KeyUser        = "user"
	KeyChatHistory = "chat_history"
	KeyThemeMode   = "theme_mode"
	KeyLanguage    = "language"
)

// Errors returned by KV implementations.
var (
	// ErrKeyNotFound is returned by Get when the key has no stored value.
	ErrKeyNotFound = errors.New("key not found")

	// ErrCorruptValue is returned by Get when a stored value cannot be
	// decoded. Callers are expected to discard the value and fall back to
	// a default rather than fail.
	ErrCorruptValue = errors.New("corrupt stored value")
)

// KV is the persisted key-value contract. Values are JSON-encoded on Set
// and decoded into the caller's value on Get.
type KV interface {
	// Get decodes the value stored under key into v.
	// Returns ErrKeyNotFound if the key is absent and an error wrapping
	// ErrCorruptValue if the stored bytes cannot be decoded.
	Get(key string, v any) error

	// Set stores the JSON encoding of v under key, replacing any
	// previous value.
	Set(key string, v any) error

	// Remove deletes the key. Removing an absent key is not an error.
	Remove(key string) error

	// Clear deletes all keys.
	Clear() error

	// Has reports whether the key has a stored value.
	Has(key string) bool
}
