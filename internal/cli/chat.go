// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/peterh/liner"

	"github.com/jeranaias/campuschat/internal/api"
	"github.com/jeranaias/campuschat/internal/chat"
	"github.com/jeranaias/campuschat/internal/config"
)

// replCommands are the slash commands available inside the chat session,
// used for completion and help.
var replCommands = []string{
	"/new", "/history", "/search", "/select", "/delete", "/clear", "/help", "/quit",
}

// runChat starts the interactive chat loop.
func (a *App) runChat(ctx context.Context) error {
	if !a.cfg.Chat.Simulate && !a.auth.IsAuthenticated() {
		fmt.Fprintln(a.stdout, "Not logged in. Run 'campuschat login' first.")
		return nil
	}

	// Config edits take effect mid-session: the watcher pushes new
	// gateway settings into the client until the session ends.
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	stop := a.startConfigWatcher(ctx)
	defer stop()

	line := liner.NewLiner()
	defer line.Close()
	line.SetCtrlCAborts(true)
	line.SetCompleter(func(input string) []string {
		var out []string
		for _, cmd := range replCommands {
			if strings.HasPrefix(cmd, input) {
				out = append(out, cmd)
			}
		}
		return out
	})

	historyFile := a.replHistoryPath()
	if historyFile != "" {
		if f, err := os.Open(historyFile); err == nil {
			line.ReadHistory(f)
			f.Close()
		}
	}
	defer a.saveReplHistory(line, historyFile)

	a.printChatBanner()

	for {
		input, err := line.Prompt("you> ")
		if err != nil {
			if errors.Is(err, liner.ErrPromptAborted) || errors.Is(err, io.EOF) {
				fmt.Fprintln(a.stdout, "Goodbye.")
				return nil
			}
			return fmt.Errorf("failed to read input: %w", err)
		}

		input = strings.TrimSpace(input)
		if input == "" {
			continue
		}
		line.AppendHistory(input)

		if strings.HasPrefix(input, "/") {
			if quit := a.handleReplCommand(input); quit {
				return nil
			}
			continue
		}

		if err := a.ask(ctx, input); err != nil {
			if errors.Is(err, api.ErrSessionExpired) {
				fmt.Fprintln(a.stdout, "Session expired. Run 'campuschat login' to continue.")
				return nil
			}
			fmt.Fprintf(a.stderr, "error: %v\n", err)
		}
	}
}

// askTimeout bounds a single question round trip independently of the
// surrounding session.
const askTimeout = 2 * time.Minute

// ask records the question, fetches the answer, and records the reply.
// A reply for a conversation deleted mid-flight is dropped quietly.
func (a *App) ask(ctx context.Context, question string) error {
	conv, err := a.store.AppendUserMessage(question)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, askTimeout)
	defer cancel()
	answer, err := a.responder.Respond(ctx, conv.ID, question)
	if err != nil {
		return err
	}

	if err := a.store.AppendAssistantMessage(conv.ID, answer); err != nil {
		if errors.Is(err, chat.ErrConversationNotFound) {
			return nil
		}
		return err
	}

	fmt.Fprintf(a.stdout, "\nbot> %s\n\n", answer)
	return nil
}

// handleReplCommand executes a slash command. Returns true on /quit.
func (a *App) handleReplCommand(input string) bool {
	parts := strings.SplitN(input, " ", 2)
	cmd := parts[0]
	arg := ""
	if len(parts) > 1 {
		arg = strings.TrimSpace(parts[1])
	}

	switch cmd {
	case "/quit", "/exit":
		fmt.Fprintln(a.stdout, "Goodbye.")
		return true
	case "/new":
		if _, err := a.store.NewConversation(); err != nil {
			fmt.Fprintf(a.stderr, "error: %v\n", err)
			break
		}
		fmt.Fprintln(a.stdout, "Started a new conversation.")
	case "/history":
		if err := a.runHistory(); err != nil {
			fmt.Fprintf(a.stderr, "error: %v\n", err)
		}
	case "/search":
		a.printConversations(a.store.Search(arg))
	case "/select":
		if err := a.store.Select(arg); err != nil {
			fmt.Fprintf(a.stderr, "error: %v\n", err)
			break
		}
		a.printTranscript()
	case "/delete":
		id := arg
		if id == "" {
			id = a.store.CurrentID()
		}
		if id == "" {
			fmt.Fprintln(a.stdout, "No conversation selected.")
			break
		}
		if err := a.store.Delete(id); err != nil {
			fmt.Fprintf(a.stderr, "error: %v\n", err)
			break
		}
		fmt.Fprintln(a.stdout, "Conversation deleted.")
	case "/clear":
		if err := a.store.ClearAll(); err != nil {
			fmt.Fprintf(a.stderr, "error: %v\n", err)
			break
		}
		fmt.Fprintln(a.stdout, "All conversations deleted.")
	case "/help":
		fmt.Fprintln(a.stdout, "Commands: "+strings.Join(replCommands, " "))
	default:
		fmt.Fprintf(a.stdout, "Unknown command %s. Try /help.\n", cmd)
	}
	return false
}

// printTranscript shows the current conversation's messages.
func (a *App) printTranscript() {
	conv := a.store.Current()
	if conv == nil {
		fmt.Fprintln(a.stdout, "No conversation selected.")
		return
	}
	fmt.Fprintf(a.stdout, "== %s ==\n", conv.GetTitle())
	for _, msg := range conv.Messages {
		fmt.Fprintf(a.stdout, "[%s] %s: %s\n",
			msg.Timestamp.Local().Format("15:04"), msg.Sender.DisplayName(), msg.Text)
	}
}

func (a *App) printChatBanner() {
	user := a.auth.CachedUser()
	name := "there"
	if user != nil && user.Name != "" {
		name = user.Name
	}
	fmt.Fprintf(a.stdout, "campuschat %s - ask about UIT regulations. /help for commands.\n", Version)
	fmt.Fprintf(a.stdout, "Hello %s!\n\n", name)

	if conv := a.store.Current(); conv != nil && !conv.IsEmpty() {
		last := conv.LastMessage()
		fmt.Fprintf(a.stdout, "Continuing: %s (last message %s)\n\n",
			conv.GetTitle(), last.Timestamp.Local().Format("Jan 2 15:04"))
	}
}

// replHistoryPath returns the liner history file path, or "" when the
// config directory is unavailable.
func (a *App) replHistoryPath() string {
	dir, err := config.Dir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, "repl_history")
}

func (a *App) saveReplHistory(line *liner.State, path string) {
	if path == "" {
		return
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
	if err != nil {
		return
	}
	defer f.Close()
	line.WriteHistory(f)
}
