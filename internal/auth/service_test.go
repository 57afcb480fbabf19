// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package auth

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/jeranaias/campuschat/internal/api"
	"github.com/jeranaias/campuschat/internal/model"
	"github.com/jeranaias/campuschat/internal/storage"
)

func newTestService(t *testing.T) (*Service, *storage.MemoryStore) {
	t.Helper()

	mux := http.NewServeMux()
	mux.HandleFunc("POST /login", func(w http.ResponseWriter, r *http.Request) {
		r.ParseForm()
		if r.PostForm.Get("password") != "Passw0rd!" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		json.NewEncoder(w).Encode(api.TokenResponse{AccessToken: "tok", TokenType: "bearer"})
	})
	mux.HandleFunc("GET /user/me/", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(model.User{ID: "u1", Name: "An Nguyen", Email: "an@uit.edu.vn"})
	})
	mux.HandleFunc("POST /user", func(w http.ResponseWriter, r *http.Request) {
		var req api.SignupRequest
		json.NewDecoder(r.Body).Decode(&req)
		json.NewEncoder(w).Encode(model.User{ID: "u2", Name: req.Name, Email: req.Email})
	})
	mux.HandleFunc("POST /logout", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	store := storage.NewMemoryStore()
	return NewService(api.NewClient(srv.URL, store)), store
}

func TestLoginSuccess(t *testing.T) {
	svc, store := newTestService(t)

	user, err := svc.Login(context.Background(), "an@uit.edu.vn", "Passw0rd!")
	if err != nil {
		t.Fatalf("Login failed: %v", err)
	}
	if user.Name != "An Nguyen" {
		t.Errorf("unexpected user: %+v", user)
	}
	if !store.Has(storage.KeyAccessToken) {
		t.Error("token should be persisted after login")
	}
	if !svc.IsAuthenticated() {
		t.Error("IsAuthenticated should be true after login")
	}
}

func TestLoginValidation(t *testing.T) {
	svc, _ := newTestService(t)

	_, err := svc.Login(context.Background(), "", "Passw0rd!")
	if !errors.Is(err, ErrMissingField) {
		t.Errorf("expected ErrMissingField, got %v", err)
	}
	_, err = svc.Login(context.Background(), "an@uit.edu.vn", "  ")
	if !errors.Is(err, ErrMissingField) {
		t.Errorf("expected ErrMissingField, got %v", err)
	}
}

func TestLoginBadPassword(t *testing.T) {
	svc, store := newTestService(t)

	_, err := svc.Login(context.Background(), "an@uit.edu.vn", "wrong-Pass1")
	if !errors.Is(err, api.ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
	if store.Has(storage.KeyAccessToken) {
		t.Error("no token should be stored after rejected login")
	}
}

func TestSignupValidation(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	if _, err := svc.Signup(ctx, "", "an@uit.edu.vn", "Passw0rd!"); !errors.Is(err, ErrMissingField) {
		t.Errorf("expected ErrMissingField, got %v", err)
	}
	if _, err := svc.Signup(ctx, "An", "not-an-email", "Passw0rd!"); !errors.Is(err, ErrInvalidEmail) {
		t.Errorf("expected ErrInvalidEmail, got %v", err)
	}
	for _, weak := range []string{"short1A", "alllowercase1", "ALLUPPERCASE1", "NoDigitsHere"} {
		if _, err := svc.Signup(ctx, "An", "an@uit.edu.vn", weak); !errors.Is(err, ErrWeakPassword) {
			t.Errorf("password %q should be rejected, got %v", weak, err)
		}
	}

	user, err := svc.Signup(ctx, "An", "an@uit.edu.vn", "Passw0rd1")
	if err != nil {
		t.Fatalf("Signup failed: %v", err)
	}
	if user.Email != "an@uit.edu.vn" {
		t.Errorf("unexpected user: %+v", user)
	}
	if svc.IsAuthenticated() {
		t.Error("signup must not start a session")
	}
}

func TestRestore(t *testing.T) {
	svc, store := newTestService(t)

	// Nothing stored: no session, no error.
	user, err := svc.Restore(context.Background())
	if err != nil || user != nil {
		t.Fatalf("Restore on empty state = %+v, %v", user, err)
	}

	if err := store.Set(storage.KeyAccessToken, "tok"); err != nil {
		t.Fatal(err)
	}
	user, err = svc.Restore(context.Background())
	if err != nil {
		t.Fatalf("Restore failed: %v", err)
	}
	if user == nil || user.ID != "u1" {
		t.Errorf("unexpected restored user: %+v", user)
	}
}

func TestLogoutClearsSession(t *testing.T) {
	svc, store := newTestService(t)

	if _, err := svc.Login(context.Background(), "an@uit.edu.vn", "Passw0rd!"); err != nil {
		t.Fatal(err)
	}
	if err := svc.Logout(context.Background()); err != nil {
		t.Fatalf("Logout failed: %v", err)
	}
	if store.Has(storage.KeyAccessToken) || store.Has(storage.KeyUser) {
		t.Error("logout should clear token and cached user")
	}
	if svc.IsAuthenticated() {
		t.Error("IsAuthenticated should be false after logout")
	}
}
