// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"context"
	"strings"

	"github.com/jeranaias/campuschat/internal/api"
)

// Responder produces an assistant reply for a question asked in a
// conversation.
type Responder interface {
	Respond(ctx context.Context, conversationID, question string) (string, error)
}

// =============================================================================
// BACKEND RESPONDER
// =============================================================================

// APIResponder answers questions through the campuschat backend.
type APIResponder struct {
	client *api.Client
}

// NewAPIResponder creates a responder backed by the given API client.
func NewAPIResponder(client *api.Client) *APIResponder {
	return &APIResponder{client: client}
}

func (r *APIResponder) Respond(ctx context.Context, conversationID, question string) (string, error) {
	resp, err := r.client.Ask(ctx, api.AskRequest{
		Question:       question,
		ConversationID: conversationID,
	})
	if err != nil {
		return "", err
	}
	return resp.Answer, nil
}

// =============================================================================
// OFFLINE RESPONDER
// =============================================================================

// cannedAnswer maps folded keywords to a stock regulations answer.
type cannedAnswer struct {
	keywords []string
	answer   string
}

var cannedAnswers = []cannedAnswer{
	{
		keywords: []string{"tin chi", "credit"},
		answer: "A standard bachelor's program requires 120-130 credits. " +
			"Students may register for at most 24 credits per regular semester.",
	},
	{
		keywords: []string{"hoc phi", "tuition"},
		answer: "Tuition is charged per registered credit and is due within " +
			"two weeks of the registration deadline each semester.",
	},
	{
		keywords: []string{"diem", "gpa", "grade"},
		answer: "Course grades are recorded on a 10-point scale and converted " +
			"to a 4-point GPA for classification. A cumulative GPA below 1.0 " +
			"after two semesters leads to academic suspension.",
	},
	{
		keywords: []string{"tot nghiep", "graduation"},
		answer: "Graduation requires completing all curriculum credits, a " +
			"standing English certificate, and no outstanding disciplinary record.",
	},
}

const fallbackAnswer = "I could not find a regulation matching your question. " +
	"Try rephrasing it, or contact the academic affairs office directly."

// SimulatedResponder answers from a small canned set without any network.
// Used by the demo mode and in tests.
type SimulatedResponder struct{}

func (SimulatedResponder) Respond(_ context.Context, _ string, question string) (string, error) {
	folded := fold(question)
	for _, c := range cannedAnswers {
		for _, kw := range c.keywords {
			if strings.Contains(folded, kw) {
				return c.answer, nil
			}
		}
	}
	return fallbackAnswer, nil
}
