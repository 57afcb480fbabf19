// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package storage

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/crypto/pbkdf2"
)

// =============================================================================
// AT-REST ENCRYPTION WRAPPER
// =============================================================================

// SECURITY: The access token is a bearer credential; the wrapper keeps it
// AES-256-GCM encrypted on disk so a copied state directory is not enough
// to impersonate the user.

const (
	// encPrefix marks a stored value as encrypted:
	// ENC:base64(nonce|ciphertext|tag)
	encPrefix = "ENC:"

	// pbkdf2Iterations is the PBKDF2 iteration count for key derivation.
	pbkdf2Iterations = 100_000

	// keySize is the AES-256 key size in bytes.
	keySize = 32

	// secretSize is the size of the generated machine secret in bytes.
	secretSize = 32
)

var (
	// ErrInvalidCiphertext indicates the stored ciphertext is malformed.
	ErrInvalidCiphertext = errors.New("invalid ciphertext format")
)

// EncryptedKV wraps another KV and encrypts values at rest. Values written
// before encryption was enabled (no ENC: prefix) are still readable.
type EncryptedKV struct {
	inner KV
	aead  cipher.AEAD
}

// NewEncryptedKV creates an encrypting wrapper around inner. The key is
// derived from secret and salt via PBKDF2-SHA256.
func NewEncryptedKV(inner KV, secret, salt []byte) (*EncryptedKV, error) {
	key := pbkdf2.Key(secret, salt, pbkdf2Iterations, keySize, sha256.New)

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize cipher: %w", err)
	}
	aead, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize cipher: %w", err)
	}

	return &EncryptedKV{inner: inner, aead: aead}, nil
}

// MachineSecret loads the per-installation secret, generating and persisting
// a new random one on first use (0600, in the campuschat directory).
func MachineSecret() ([]byte, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return nil, err
	}
	return machineSecretAt(filepath.Join(homeDir, ".campuschat", "secret"))
}

func machineSecretAt(path string) ([]byte, error) {
	if data, err := os.ReadFile(path); err == nil && len(data) == secretSize {
		return data, nil
	}

	secret := make([]byte, secretSize)
	if _, err := rand.Read(secret); err != nil {
		return nil, fmt.Errorf("failed to generate secret: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return nil, err
	}
	if err := os.WriteFile(path, secret, 0600); err != nil {
		return nil, fmt.Errorf("failed to persist secret: %w", err)
	}
	return secret, nil
}

// Get decrypts and decodes the value stored under key into v.
func (e *EncryptedKV) Get(key string, v any) error {
	var stored string
	if err := e.inner.Get(key, &stored); err != nil {
		return err
	}

	// Plaintext values from before encryption was enabled.
	if !strings.HasPrefix(stored, encPrefix) {
		if err := json.Unmarshal([]byte(stored), v); err != nil {
			return fmt.Errorf("%w: %s: %v", ErrCorruptValue, key, err)
		}
		return nil
	}

	raw, err := base64.StdEncoding.DecodeString(strings.TrimPrefix(stored, encPrefix))
	if err != nil {
		return fmt.Errorf("%w: %s: %v", ErrCorruptValue, key, ErrInvalidCiphertext)
	}
	if len(raw) < e.aead.NonceSize() {
		return fmt.Errorf("%w: %s: %v", ErrCorruptValue, key, ErrInvalidCiphertext)
	}

	nonce, ciphertext := raw[:e.aead.NonceSize()], raw[e.aead.NonceSize():]
	plaintext, err := e.aead.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return fmt.Errorf("%w: %s: %v", ErrCorruptValue, key, err)
	}

	if err := json.Unmarshal(plaintext, v); err != nil {
		return fmt.Errorf("%w: %s: %v", ErrCorruptValue, key, err)
	}
	return nil
}

// Set encrypts the JSON encoding of v and stores it under key.
func (e *EncryptedKV) Set(key string, v any) error {
	plaintext, err := json.Marshal(v)
	if err != nil {
		return err
	}

	nonce := make([]byte, e.aead.NonceSize())
	if _, err := rand.Read(nonce); err != nil {
		return fmt.Errorf("failed to generate nonce: %w", err)
	}

	sealed := e.aead.Seal(nonce, nonce, plaintext, nil)
	stored := encPrefix + base64.StdEncoding.EncodeToString(sealed)
	return e.inner.Set(key, stored)
}

// Remove deletes the key.
func (e *EncryptedKV) Remove(key string) error {
	return e.inner.Remove(key)
}

// Clear deletes all keys.
func (e *EncryptedKV) Clear() error {
	return e.inner.Clear()
}

// Has reports whether the key has a stored value.
func (e *EncryptedKV) Has(key string) bool {
	return e.inner.Has(key)
}
