// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package cli implements the campuschat command-line interface.
package cli

import (
	"fmt"
)

// Command identifies a top-level CLI command.
type Command int

const (
	CommandHelp Command = iota
	CommandChat
	CommandLogin
	CommandSignup
	CommandLogout
	CommandWhoami
	CommandHistory
	CommandSearch
	CommandDelete
	CommandClear
	CommandConfig
	CommandVersion
)

// Parse maps command-line arguments to a command and its remaining
// arguments. No arguments means an interactive chat session.
func Parse(args []string) (Command, []string, error) {
	if len(args) == 0 {
		return CommandChat, nil, nil
	}

	rest := args[1:]
	switch args[0] {
	case "chat":
		return CommandChat, rest, nil
	case "login":
		return CommandLogin, rest, nil
	case "signup":
		return CommandSignup, rest, nil
	case "logout":
		return CommandLogout, rest, nil
	case "whoami":
		return CommandWhoami, rest, nil
	case "history":
		return CommandHistory, rest, nil
	case "search":
		return CommandSearch, rest, nil
	case "delete":
		return CommandDelete, rest, nil
	case "clear":
		return CommandClear, rest, nil
	case "config":
		return CommandConfig, rest, nil
	case "version", "--version", "-v":
		return CommandVersion, rest, nil
	case "help", "--help", "-h":
		return CommandHelp, rest, nil
	default:
		return CommandHelp, nil, fmt.Errorf("unknown command: %s", args[0])
	}
}

const usageText = `campuschat - chat with the UIT regulations assistant

Usage:
  campuschat [command] [arguments]

Commands:
  chat              Start an interactive chat session (default)
  login             Log in to the campuschat backend
  signup            Create a new account
  logout            End the current session
  whoami            Show the logged-in user
  history           List conversations grouped by recency
  search <query>    Search conversation titles and messages
  delete <id>       Delete a conversation
  clear             Delete all conversations
  config            Show the effective configuration
  version           Show version information
  help              Show this help

Environment:
  CAMPUSCHAT_BASE_URL         Override the backend base URL
  CAMPUSCHAT_STORAGE_BACKEND  Storage backend: file, sqlite, memory
  CAMPUSCHAT_THEME            Theme: light, dark, system
  CAMPUSCHAT_LANGUAGE         Interface language code

Configuration is read from ~/.campuschat/config.toml.
`

// Usage returns the top-level help text.
func Usage() string {
	return usageText
}
