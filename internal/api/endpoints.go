// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"github.com/jeranaias/campuschat/internal/model"
	"github.com/jeranaias/campuschat/internal/storage"
)

// Content types used by the backend.
const (
	contentTypeJSON = "application/json"
	contentTypeForm = "application/x-www-form-urlencoded"
)

// TokenResponse is the backend's answer to login and refresh calls.
type TokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

// SignupRequest is the payload for account creation.
type SignupRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// =============================================================================
// AUTH ENDPOINTS
// =============================================================================

// Login authenticates with the backend and persists the returned access
// token. The backend expects form-encoded credentials; the response also
// sets the HTTP-only refresh cookie in the client's jar. A 401 here means
// bad credentials, never a refreshable session.
func (c *Client) Login(ctx context.Context, username, password string) (*TokenResponse, error) {
	form := url.Values{}
	form.Set("username", username)
	form.Set("password", password)

	var token TokenResponse
	err := c.do(ctx, http.MethodPost, "/login", contentTypeForm, []byte(form.Encode()), &token, false)
	if err != nil {
		if isStatus(err, http.StatusUnauthorized) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if token.AccessToken == "" {
		return nil, fmt.Errorf("login succeeded but no token returned")
	}

	if err := c.setToken(token.AccessToken); err != nil {
		return nil, fmt.Errorf("failed to persist token: %w", err)
	}
	return &token, nil
}

// Signup registers a new account. The caller logs in separately afterwards.
func (c *Client) Signup(ctx context.Context, req SignupRequest) (*model.User, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("failed to encode signup request: %w", err)
	}

	var user model.User
	if err := c.do(ctx, http.MethodPost, "/user", contentTypeJSON, body, &user, false); err != nil {
		return nil, err
	}
	return &user, nil
}

// Logout tells the backend to revoke the session, then clears the local
// token and cached user. Local state is cleared regardless of whether the
// backend call succeeded, so a dead network cannot pin a stale session.
func (c *Client) Logout(ctx context.Context) error {
	err := c.do(ctx, http.MethodPost, "/logout", "", nil, nil, true)
	c.clearCredentials()
	return err
}

// CurrentUser fetches the authenticated user's profile and caches it.
func (c *Client) CurrentUser(ctx context.Context) (*model.User, error) {
	var user model.User
	if err := c.do(ctx, http.MethodGet, "/user/me/", "", nil, &user, true); err != nil {
		return nil, err
	}
	if err := c.store.Set(storage.KeyUser, &user); err != nil {
		return nil, fmt.Errorf("failed to cache user: %w", err)
	}
	return &user, nil
}

// CachedUser returns the locally cached user profile without a network
// round trip, or nil when none is cached.
func (c *Client) CachedUser() *model.User {
	var user model.User
	if err := c.store.Get(storage.KeyUser, &user); err != nil {
		return nil
	}
	return &user
}

// =============================================================================
// CHAT ENDPOINT
// =============================================================================

// AskRequest is the payload for a regulations question.
type AskRequest struct {
	Question       string `json:"question"`
	ConversationID string `json:"conversation_id,omitempty"`
}

// AskResponse is the backend's answer to a regulations question.
type AskResponse struct {
	Answer string `json:"answer"`
}

// Ask sends a question to the regulations chatbot and returns its answer.
func (c *Client) Ask(ctx context.Context, req AskRequest) (*AskResponse, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("failed to encode question: %w", err)
	}

	var answer AskResponse
	if err := c.do(ctx, http.MethodPost, "/chat", contentTypeJSON, body, &answer, true); err != nil {
		return nil, err
	}
	return &answer, nil
}
