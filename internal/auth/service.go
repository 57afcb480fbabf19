// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package auth validates credentials and drives the login, signup, and
// logout flows against the API gateway.
package auth

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/jeranaias/campuschat/internal/api"
	"github.com/jeranaias/campuschat/internal/model"
	"github.com/jeranaias/campuschat/internal/util"
)

// Validation errors reported before any network call is made.
var (
	ErrMissingField = errors.New("required field is empty")
	ErrInvalidEmail = errors.New("invalid email address")
	ErrWeakPassword = errors.New("password must be at least 8 characters with upper, lower, and digit")
)

// Service wraps the API client with input validation and local session
// bookkeeping.
type Service struct {
	client *api.Client
}

// NewService creates an auth service over the given API client.
func NewService(client *api.Client) *Service {
	return &Service{client: client}
}

// IsAuthenticated reports whether a session token is present locally.
// The token may still be expired; the gateway sorts that out on first use.
func (s *Service) IsAuthenticated() bool {
	return s.client.HasToken()
}

// Login authenticates and returns the user's profile.
func (s *Service) Login(ctx context.Context, username, password string) (*model.User, error) {
	if util.IsBlank(username) || util.IsBlank(password) {
		return nil, fmt.Errorf("%w: username and password are required", ErrMissingField)
	}

	if _, err := s.client.Login(ctx, username, password); err != nil {
		return nil, err
	}

	user, err := s.client.CurrentUser(ctx)
	if err != nil {
		// Token is stored and valid; profile fetch failing is not fatal.
		log.Printf("[WARN] logged in but profile fetch failed: %v", err)
		return &model.User{Name: username}, nil
	}
	return user, nil
}

// Signup validates the registration fields and creates the account. The
// caller still logs in afterwards; signup does not start a session.
func (s *Service) Signup(ctx context.Context, name, email, password string) (*model.User, error) {
	if util.IsBlank(name) {
		return nil, fmt.Errorf("%w: name", ErrMissingField)
	}
	if !util.IsValidEmail(email) {
		return nil, fmt.Errorf("%w: %s", ErrInvalidEmail, email)
	}
	if !util.IsStrongPassword(password) {
		return nil, ErrWeakPassword
	}

	return s.client.Signup(ctx, api.SignupRequest{
		Name:     name,
		Email:    email,
		Password: password,
	})
}

// Logout ends the session. Local credentials are gone when this returns,
// whatever the backend said.
func (s *Service) Logout(ctx context.Context) error {
	return s.client.Logout(ctx)
}

// Restore validates a persisted session at startup. Returns nil without
// error when no session is stored; otherwise the refreshed profile, or
// ErrSessionExpired from the gateway when the session is dead.
func (s *Service) Restore(ctx context.Context) (*model.User, error) {
	if !s.client.HasToken() {
		return nil, nil
	}
	return s.client.CurrentUser(ctx)
}

// CurrentUser fetches the authenticated profile from the backend.
func (s *Service) CurrentUser(ctx context.Context) (*model.User, error) {
	return s.client.CurrentUser(ctx)
}

// CachedUser returns the locally cached profile without a network call,
// or nil when none is cached.
func (s *Service) CachedUser() *model.User {
	return s.client.CachedUser()
}
