// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package util

import (
	"regexp"
	"strings"
)

// Input validation helpers. Validation failures are handled at the call
// site (CLI prompts, auth service entry points) and never reach the request
// gateway or the conversation store.

var (
	emailRe = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

	// Password strength: at least 8 characters with one lowercase, one
	// uppercase, and one digit. Checked piecewise because Go's regexp has
	// no lookahead.
	lowerRe = regexp.MustCompile(`[a-z]`)
	upperRe = regexp.MustCompile(`[A-Z]`)
	digitRe = regexp.MustCompile(`\d`)
)

// IsBlank reports whether the string is empty or only whitespace.
func IsBlank(s string) bool {
	return strings.TrimSpace(s) == ""
}

// IsValidEmail reports whether the string looks like an email address.
func IsValidEmail(email string) bool {
	return emailRe.MatchString(email)
}

// IsStrongPassword reports whether the password meets the minimum strength
// requirements: 8+ characters, one uppercase, one lowercase, one digit.
func IsStrongPassword(password string) bool {
	if len(password) < 8 {
		return false
	}
	return lowerRe.MatchString(password) &&
		upperRe.MatchString(password) &&
		digitRe.MatchString(password)
}
