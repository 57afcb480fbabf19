// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jeranaias/campuschat/internal/chat"
	"github.com/jeranaias/campuschat/internal/model"
	"github.com/jeranaias/campuschat/internal/util"
)

// titleColumnWidth is the display width reserved for conversation titles.
// Width, not rune count: Vietnamese titles mix narrow and wide glyphs.
const titleColumnWidth = 44

// runHistory lists conversations grouped by recency.
func (a *App) runHistory() error {
	history := a.store.History()
	if len(history) == 0 {
		fmt.Fprintln(a.stdout, "No conversations yet.")
		return nil
	}

	groups := chat.GroupByRecency(history, time.Now())
	for _, section := range groups.Sections() {
		fmt.Fprintf(a.stdout, "%s\n", section.Label)
		for _, conv := range section.Conversations {
			a.printConversationLine(conv)
		}
		fmt.Fprintln(a.stdout)
	}
	return nil
}

// runSearch lists conversations matching the query.
func (a *App) runSearch(args []string) error {
	query := strings.Join(args, " ")
	results := a.store.Search(query)
	if len(results) == 0 {
		fmt.Fprintln(a.stdout, "No matches.")
		return nil
	}
	a.printConversations(results)
	return nil
}

// runDelete removes one conversation by ID.
func (a *App) runDelete(args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("usage: campuschat delete <conversation-id>")
	}
	if err := a.store.Delete(args[0]); err != nil {
		if errors.Is(err, chat.ErrConversationNotFound) {
			fmt.Fprintf(a.stdout, "No conversation with ID %s.\n", args[0])
			return nil
		}
		return err
	}
	fmt.Fprintln(a.stdout, "Conversation deleted.")
	return nil
}

// runClear deletes the entire history after confirmation.
func (a *App) runClear() error {
	if a.store.Len() == 0 {
		fmt.Fprintln(a.stdout, "No conversations to delete.")
		return nil
	}

	answer, err := a.promptLine(fmt.Sprintf("Delete all %d conversations? [y/N]: ", a.store.Len()))
	if err != nil {
		return err
	}
	if !strings.EqualFold(answer, "y") && !strings.EqualFold(answer, "yes") {
		fmt.Fprintln(a.stdout, "Aborted.")
		return nil
	}

	if err := a.store.ClearAll(); err != nil {
		return err
	}
	fmt.Fprintln(a.stdout, "All conversations deleted.")
	return nil
}

// runConfig prints the effective configuration.
func (a *App) runConfig() error {
	fmt.Fprintf(a.stdout, "base_url:  %s\n", a.cfg.API.BaseURL)
	fmt.Fprintf(a.stdout, "timeout:   %s\n", a.cfg.API.Timeout())
	fmt.Fprintf(a.stdout, "backend:   %s\n", a.cfg.Storage.Backend)
	fmt.Fprintf(a.stdout, "encrypted: %t\n", a.cfg.Storage.Encrypt)
	fmt.Fprintf(a.stdout, "theme:     %s\n", a.prefs.Theme())
	fmt.Fprintf(a.stdout, "language:  %s\n", a.prefs.Language())
	return nil
}

// printConversations lists conversations without grouping.
func (a *App) printConversations(convs []*model.Conversation) {
	if len(convs) == 0 {
		fmt.Fprintln(a.stdout, "No matches.")
		return
	}
	for _, conv := range convs {
		a.printConversationLine(conv)
	}
}

// printConversationLine renders one history row: marker, padded title,
// message count, last-update date, and the ID for delete/select.
func (a *App) printConversationLine(conv *model.Conversation) {
	marker := " "
	if conv.ID == a.store.CurrentID() {
		marker = "*"
	}
	title := util.TruncateWidth(conv.GetTitle(), titleColumnWidth)
	title = util.PadRight(title, titleColumnWidth)
	fmt.Fprintf(a.stdout, "  %s %s %3d msg  %s  %s\n",
		marker, title, conv.MessageCount(), conv.UpdatedAt.Local().Format("2006-01-02"), conv.ID)
}
