// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package model contains the data structures for conversations and messages.
package model

import (
	"time"

	"github.com/google/uuid"

	"github.com/jeranaias/campuschat/internal/util"
)

// =============================================================================
// SENDER TYPE
// =============================================================================

// Sender identifies who produced a message.
type Sender string

const (
	SenderUser      Sender = "user"
	SenderAssistant Sender = "assistant"
)

// String returns the string representation of the sender.
func (s Sender) String() string {
	return string(s)
}

// DisplayName returns a human-readable name for the sender.
func (s Sender) DisplayName() string {
	switch s {
	case SenderUser:
		return "You"
	case SenderAssistant:
		return "Assistant"
	default:
		return string(s)
	}
}

// =============================================================================
// MESSAGE TYPE
// =============================================================================

// Message is a single chat message. Messages are immutable once created:
// mutation happens only at the conversation level (append, whole-conversation
// delete), never per message.
type Message struct {
	ID        string    `json:"id"`
	Text      string    `json:"text"`
	Timestamp time.Time `json:"timestamp"`
	Sender    Sender    `json:"sender"`
}

// NewUserMessage creates a message from the user.
func NewUserMessage(text string) *Message {
	return &Message{
		ID:        generateMessageID(),
		Text:      text,
		Timestamp: time.Now(),
		Sender:    SenderUser,
	}
}

// NewAssistantMessage creates a message from the assistant.
func NewAssistantMessage(text string) *Message {
	return &Message{
		ID:        generateMessageID(),
		Text:      text,
		Timestamp: time.Now(),
		Sender:    SenderAssistant,
	}
}

// Preview returns the message text truncated to maxRunes characters.
func (m *Message) Preview(maxRunes int) string {
	return util.TruncateRunes(util.CollapseWhitespace(m.Text), maxRunes)
}

// IsUser reports whether the message was sent by the user.
func (m *Message) IsUser() bool {
	return m.Sender == SenderUser
}

// IsAssistant reports whether the message was sent by the assistant.
func (m *Message) IsAssistant() bool {
	return m.Sender == SenderAssistant
}

// =============================================================================
// HELPER FUNCTIONS
// =============================================================================

// generateMessageID creates a unique message ID.
func generateMessageID() string {
	return "msg_" + uuid.New().String()
}
