// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package chat manages conversation history: creation, selection, message
// append, deletion, search, and recency grouping. All history lives in a
// key-value store as one snapshot and is rewritten on every mutation, so a
// crash can lose at most the last operation.
package chat

import (
	"errors"
	"fmt"
	"log"
	"sync"

	"github.com/jeranaias/campuschat/internal/model"
	"github.com/jeranaias/campuschat/internal/storage"
	"github.com/jeranaias/campuschat/internal/util"
)

// Sentinel errors for conversation operations.
var (
	// ErrConversationNotFound indicates the referenced conversation does
	// not exist, typically because it was deleted in the meantime.
	ErrConversationNotFound = errors.New("conversation not found")

	// ErrEmptyMessage indicates a message with no visible content.
	ErrEmptyMessage = errors.New("message is empty")
)

// =============================================================================
// STORE
// =============================================================================

// Store holds the conversation history, newest first, plus the currently
// selected conversation. Safe for concurrent use.
type Store struct {
	mu      sync.Mutex
	kv      storage.KV
	history []*model.Conversation
	current string
}

// NewStore loads the persisted history from kv. A corrupt snapshot is
// logged and treated as empty; it is only overwritten when the next
// mutation writes a fresh one, so nothing is destroyed just by starting up.
func NewStore(kv storage.KV) *Store {
	s := &Store{kv: kv}

	var history []*model.Conversation
	if err := kv.Get(storage.KeyChatHistory, &history); err != nil {
		if !errors.Is(err, storage.ErrKeyNotFound) {
			log.Printf("[ERROR] failed to load chat history, starting empty: %v", err)
		}
		return s
	}
	s.history = history
	return s
}

// save writes the full history snapshot. Callers hold s.mu.
func (s *Store) save() error {
	if err := s.kv.Set(storage.KeyChatHistory, s.history); err != nil {
		return fmt.Errorf("failed to persist chat history: %w", err)
	}
	return nil
}

// find returns the index of the conversation with the given ID, or -1.
// Callers hold s.mu.
func (s *Store) find(id string) int {
	for i, conv := range s.history {
		if conv.ID == id {
			return i
		}
	}
	return -1
}

// =============================================================================
// CONVERSATION LIFECYCLE
// =============================================================================

// NewConversation creates an empty conversation, prepends it to the
// history, and selects it.
func (s *Store) NewConversation() (*model.Conversation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	conv := model.NewConversation()
	s.history = append([]*model.Conversation{conv}, s.history...)
	s.current = conv.ID

	if err := s.save(); err != nil {
		return nil, err
	}
	return conv.Clone(), nil
}

// Select makes the conversation with the given ID current.
func (s *Store) Select(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.find(id) < 0 {
		return fmt.Errorf("%w: %s", ErrConversationNotFound, id)
	}
	s.current = id
	return nil
}

// Delete removes a conversation. Deleting the current conversation clears
// the selection; the caller decides what to select next.
func (s *Store) Delete(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.find(id)
	if i < 0 {
		return fmt.Errorf("%w: %s", ErrConversationNotFound, id)
	}
	s.history = append(s.history[:i], s.history[i+1:]...)

	if s.current == id {
		s.current = ""
	}
	return s.save()
}

// ClearAll wipes the entire history and removes the persisted snapshot.
// Idempotent: clearing an empty store succeeds and changes nothing.
func (s *Store) ClearAll() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.history = nil
	s.current = ""
	if err := s.kv.Remove(storage.KeyChatHistory); err != nil {
		return fmt.Errorf("failed to clear chat history: %w", err)
	}
	return nil
}

// Rename sets a conversation's title explicitly, overriding the derived
// one. The title is kept as given apart from whitespace collapsing; the
// rune bound applies only to titles derived from the first message.
func (s *Store) Rename(id, title string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.find(id)
	if i < 0 {
		return fmt.Errorf("%w: %s", ErrConversationNotFound, id)
	}
	s.history[i].SetTitle(util.CollapseWhitespace(title))
	return s.save()
}

// =============================================================================
// MESSAGES
// =============================================================================

// AppendUserMessage adds a user message to the current conversation,
// creating and selecting a new conversation first when none is selected.
// Blank input is rejected before any state changes.
func (s *Store) AppendUserMessage(text string) (*model.Conversation, error) {
	if util.IsBlank(text) {
		return nil, ErrEmptyMessage
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	i := -1
	if s.current != "" {
		i = s.find(s.current)
	}
	if i < 0 {
		conv := model.NewConversation()
		s.history = append([]*model.Conversation{conv}, s.history...)
		s.current = conv.ID
		i = 0
	}

	s.history[i].AddUserMessage(text)
	if err := s.save(); err != nil {
		return nil, err
	}
	return s.history[i].Clone(), nil
}

// AppendAssistantMessage adds an assistant reply to a specific
// conversation, addressed by ID rather than by current selection so that
// a reply landing after its conversation was deleted is dropped instead
// of resurrecting it or leaking into another conversation.
func (s *Store) AppendAssistantMessage(conversationID, text string) error {
	if util.IsBlank(text) {
		return ErrEmptyMessage
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.find(conversationID)
	if i < 0 {
		return fmt.Errorf("%w: %s", ErrConversationNotFound, conversationID)
	}

	s.history[i].AddAssistantMessage(text)
	return s.save()
}

// =============================================================================
// READ ACCESS
// =============================================================================

// Current returns a copy of the selected conversation, or nil when none
// is selected.
func (s *Store) Current() *model.Conversation {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.current == "" {
		return nil
	}
	if i := s.find(s.current); i >= 0 {
		return s.history[i].Clone()
	}
	return nil
}

// CurrentID returns the selected conversation's ID, or "".
func (s *Store) CurrentID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current
}

// Conversation returns a copy of the conversation with the given ID.
func (s *Store) Conversation(id string) (*model.Conversation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.find(id)
	if i < 0 {
		return nil, fmt.Errorf("%w: %s", ErrConversationNotFound, id)
	}
	return s.history[i].Clone(), nil
}

// History returns copies of all conversations, newest first.
func (s *Store) History() []*model.Conversation {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]*model.Conversation, len(s.history))
	for i, conv := range s.history {
		out[i] = conv.Clone()
	}
	return out
}

// Len returns the number of conversations.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.history)
}
