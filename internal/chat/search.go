// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"github.com/jeranaias/campuschat/internal/model"
)

// foldTransformer strips combining marks after NFD decomposition, so that
// accented and unaccented spellings compare equal.
var foldTransformer = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// fold normalizes text for matching: lowercase, diacritics removed.
// UNICODE: the regulations corpus is largely Vietnamese, so "tin chi" must
// match "tín chỉ". The đ/Đ pair does not decompose under NFD and is mapped
// by hand.
func fold(s string) string {
	lowered := strings.ToLower(s)
	out, _, err := transform.String(foldTransformer, lowered)
	if err != nil {
		out = lowered
	}
	return strings.Map(func(r rune) rune {
		if r == 'đ' {
			return 'd'
		}
		return r
	}, out)
}

// matches reports whether the folded needle occurs in the conversation's
// title or any message text.
func matches(conv *model.Conversation, needle string) bool {
	if strings.Contains(fold(conv.Title), needle) {
		return true
	}
	for _, msg := range conv.Messages {
		if strings.Contains(fold(msg.Text), needle) {
			return true
		}
	}
	return false
}

// Search returns copies of conversations whose title or message text
// contains the query, matched case- and diacritic-insensitively. A blank
// query returns the full history. Order follows the history, newest first.
func (s *Store) Search(query string) []*model.Conversation {
	query = strings.TrimSpace(query)
	if query == "" {
		return s.History()
	}
	needle := fold(query)

	s.mu.Lock()
	defer s.mu.Unlock()

	var out []*model.Conversation
	for _, conv := range s.history {
		if matches(conv, needle) {
			out = append(out, conv.Clone())
		}
	}
	return out
}
