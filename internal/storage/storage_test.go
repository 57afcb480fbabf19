// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package storage

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

// runKVContract exercises the behavior every backend must share.
func runKVContract(t *testing.T, kv KV) {
	t.Helper()

	// Absent key.
	var s string
	if err := kv.Get("missing", &s); !errors.Is(err, ErrKeyNotFound) {
		t.Errorf("expected ErrKeyNotFound, got %v", err)
	}
	if kv.Has("missing") {
		t.Error("Has should be false for absent key")
	}

	// Round trip a string and a struct.
	if err := kv.Set(KeyAccessToken, "tok-123"); err != nil {
		t.Fatal(err)
	}
	var token string
	if err := kv.Get(KeyAccessToken, &token); err != nil || token != "tok-123" {
		t.Errorf("Get = %q, %v", token, err)
	}

	type profile struct {
		Name  string `json:"name"`
		Email string `json:"email"`
	}
	want := profile{Name: "An Nguyễn", Email: "an@uit.edu.vn"}
	if err := kv.Set(KeyUser, want); err != nil {
		t.Fatal(err)
	}
	var got profile
	if err := kv.Get(KeyUser, &got); err != nil || got != want {
		t.Errorf("Get = %+v, %v", got, err)
	}

	// Overwrite.
	if err := kv.Set(KeyAccessToken, "tok-456"); err != nil {
		t.Fatal(err)
	}
	if err := kv.Get(KeyAccessToken, &token); err != nil || token != "tok-456" {
		t.Errorf("after overwrite Get = %q, %v", token, err)
	}

	// Remove is tolerant of absent keys.
	if err := kv.Remove(KeyAccessToken); err != nil {
		t.Fatal(err)
	}
	if err := kv.Remove(KeyAccessToken); err != nil {
		t.Errorf("removing absent key should succeed: %v", err)
	}
	if kv.Has(KeyAccessToken) {
		t.Error("key should be gone after Remove")
	}

	// Clear wipes everything.
	if err := kv.Set(KeyThemeMode, "dark"); err != nil {
		t.Fatal(err)
	}
	if err := kv.Clear(); err != nil {
		t.Fatal(err)
	}
	if kv.Has(KeyUser) || kv.Has(KeyThemeMode) {
		t.Error("Clear should remove all keys")
	}
}

func TestMemoryStoreContract(t *testing.T) {
	runKVContract(t, NewMemoryStore())
}

func TestFileStoreContract(t *testing.T) {
	fs, err := NewFileStoreWithDir(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	runKVContract(t, fs)
}

func TestSQLiteStoreContract(t *testing.T) {
	db, err := NewSQLiteStore(filepath.Join(t.TempDir(), "state.db"))
	if err != nil {
		t.Fatal(err)
	}
	defer db.Close()
	runKVContract(t, db)
}

func TestEncryptedKVContract(t *testing.T) {
	secret := make([]byte, secretSize)
	enc, err := NewEncryptedKV(NewMemoryStore(), secret, []byte("test-salt"))
	if err != nil {
		t.Fatal(err)
	}
	runKVContract(t, enc)
}

func TestFileStorePersistsAcrossInstances(t *testing.T) {
	dir := t.TempDir()
	fs, err := NewFileStoreWithDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	if err := fs.Set(KeyLanguage, "vi"); err != nil {
		t.Fatal(err)
	}

	reopened, err := NewFileStoreWithDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	var lang string
	if err := reopened.Get(KeyLanguage, &lang); err != nil || lang != "vi" {
		t.Errorf("Get after reopen = %q, %v", lang, err)
	}
}

func TestFileStoreCorruptValue(t *testing.T) {
	dir := t.TempDir()
	fs, err := NewFileStoreWithDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, KeyUser+".json"), []byte("{broken"), 0600); err != nil {
		t.Fatal(err)
	}

	var v map[string]string
	if err := fs.Get(KeyUser, &v); !errors.Is(err, ErrCorruptValue) {
		t.Errorf("expected ErrCorruptValue, got %v", err)
	}
}

func TestFileStorePermissions(t *testing.T) {
	dir := t.TempDir()
	fs, err := NewFileStoreWithDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	if err := fs.Set(KeyAccessToken, "tok"); err != nil {
		t.Fatal(err)
	}

	info, err := os.Stat(filepath.Join(dir, KeyAccessToken+".json"))
	if err != nil {
		t.Fatal(err)
	}
	if perm := info.Mode().Perm(); perm != 0600 {
		t.Errorf("credential file permissions = %o, want 0600", perm)
	}
}

func TestSanitizeKey(t *testing.T) {
	cases := []struct{ in, want string }{
		{"access_token", "access_token"},
		{"../../etc/passwd", ".._.._etc_passwd"},
		{"key with spaces", "key_with_spaces"},
	}
	for _, tc := range cases {
		if got := sanitizeKey(tc.in); got != tc.want {
			t.Errorf("sanitizeKey(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}
