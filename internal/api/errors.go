// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package api

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jeranaias/campuschat/internal/util"
)

// Sentinel errors for the gateway.
var (
	// ErrSessionExpired indicates the refresh token is no longer valid
	// and the user must log in again. Local credentials have already
	// been cleared when this is returned.
	ErrSessionExpired = errors.New("session expired, please log in again")

	// ErrInvalidCredentials indicates a login attempt was rejected.
	ErrInvalidCredentials = errors.New("invalid username or password")
)

// APIError is a non-2xx answer from the backend that is not an
// authentication failure handled by the refresh protocol.
type APIError struct {
	Status  int
	Code    string
	Message string
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("api error (status %d): %s", e.Status, e.Message)
	}
	return fmt.Sprintf("api error (status %d)", e.Status)
}

// Is supports errors.Is comparison by status.
func (e *APIError) Is(target error) bool {
	t, ok := target.(*APIError)
	if !ok {
		return false
	}
	return e.Status == t.Status
}

// apiErrorBody covers the two error shapes the backend emits: a bare
// {"detail": "..."} and a structured {"error": {"code", "message"}}.
type apiErrorBody struct {
	Detail string `json:"detail"`
	Err    struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// decodeError builds an APIError from a non-2xx response body.
func decodeError(status int, data []byte) error {
	apiErr := &APIError{Status: status}

	var body apiErrorBody
	if err := json.Unmarshal(data, &body); err == nil {
		switch {
		case body.Err.Message != "":
			apiErr.Code = body.Err.Code
			apiErr.Message = body.Err.Message
		case body.Detail != "":
			apiErr.Message = body.Detail
		}
	}
	if apiErr.Message == "" && len(data) > 0 {
		// Not JSON; keep a short excerpt for diagnostics.
		apiErr.Message = util.TruncateRunes(string(data), 120)
	}
	return apiErr
}

// isStatus reports whether err is an APIError with the given HTTP status.
func isStatus(err error, status int) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Status == status
}
