// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"syscall"

	"golang.org/x/term"

	"github.com/jeranaias/campuschat/internal/api"
)

// promptLine reads one line from stdin after printing a label.
func (a *App) promptLine(label string) (string, error) {
	fmt.Fprint(a.stdout, label)
	reader := bufio.NewReader(os.Stdin)
	line, err := reader.ReadString('\n')
	if err != nil {
		return "", fmt.Errorf("failed to read input: %w", err)
	}
	return strings.TrimSpace(line), nil
}

// promptPassword reads a password without echoing it. Falls back to a
// plain read when stdin is not a terminal (tests, pipes).
func (a *App) promptPassword(label string) (string, error) {
	fmt.Fprint(a.stdout, label)
	fd := int(syscall.Stdin)
	if !term.IsTerminal(fd) {
		return a.promptLine("")
	}
	pw, err := term.ReadPassword(fd)
	fmt.Fprintln(a.stdout)
	if err != nil {
		return "", fmt.Errorf("failed to read password: %w", err)
	}
	return string(pw), nil
}

func (a *App) runLogin(ctx context.Context) error {
	username, err := a.promptLine("Email or username: ")
	if err != nil {
		return err
	}
	password, err := a.promptPassword("Password: ")
	if err != nil {
		return err
	}

	user, err := a.auth.Login(ctx, username, password)
	if err != nil {
		if errors.Is(err, api.ErrInvalidCredentials) {
			fmt.Fprintln(a.stdout, "Login failed: invalid username or password.")
			return nil
		}
		return err
	}

	fmt.Fprintf(a.stdout, "Logged in as %s.\n", user.Name)
	return nil
}

func (a *App) runSignup(ctx context.Context) error {
	name, err := a.promptLine("Full name: ")
	if err != nil {
		return err
	}
	email, err := a.promptLine("Email: ")
	if err != nil {
		return err
	}
	password, err := a.promptPassword("Password: ")
	if err != nil {
		return err
	}
	confirm, err := a.promptPassword("Confirm password: ")
	if err != nil {
		return err
	}
	if password != confirm {
		fmt.Fprintln(a.stdout, "Passwords do not match.")
		return nil
	}

	user, err := a.auth.Signup(ctx, name, email, password)
	if err != nil {
		return err
	}

	fmt.Fprintf(a.stdout, "Account created for %s. Run 'campuschat login' to start chatting.\n", user.Email)
	return nil
}

func (a *App) runLogout(ctx context.Context) error {
	if !a.auth.IsAuthenticated() {
		fmt.Fprintln(a.stdout, "Not logged in.")
		return nil
	}
	if err := a.auth.Logout(ctx); err != nil {
		// Local state is already cleared; the backend call failing is
		// worth mentioning but not a failed logout.
		fmt.Fprintf(a.stderr, "warning: server logout failed: %v\n", err)
	}
	fmt.Fprintln(a.stdout, "Logged out.")
	return nil
}

func (a *App) runWhoami(ctx context.Context) error {
	if !a.auth.IsAuthenticated() {
		fmt.Fprintln(a.stdout, "Not logged in.")
		return nil
	}

	user, err := a.auth.CurrentUser(ctx)
	if err != nil {
		if errors.Is(err, api.ErrSessionExpired) {
			fmt.Fprintln(a.stdout, "Session expired. Run 'campuschat login' again.")
			return nil
		}
		// Offline: fall back to the cached profile.
		if cached := a.auth.CachedUser(); cached != nil {
			fmt.Fprintf(a.stdout, "%s <%s> (cached)\n", cached.Name, cached.Email)
			return nil
		}
		return err
	}

	fmt.Fprintf(a.stdout, "%s <%s>\n", user.Name, user.Email)
	return nil
}
