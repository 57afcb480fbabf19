// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"time"

	"github.com/jeranaias/campuschat/internal/model"
)

// Groups buckets conversations by how recently they were updated.
// Boundaries are aligned to local calendar days, not rolling durations:
// "Yesterday" means the previous calendar day, however few hours ago its
// midnight was.
type Groups struct {
	Today      []*model.Conversation
	Yesterday  []*model.Conversation
	Last7Days  []*model.Conversation
	Last30Days []*model.Conversation
	Older      []*model.Conversation
}

// Section pairs a display label with its conversations, in render order.
type Section struct {
	Label         string
	Conversations []*model.Conversation
}

// GroupByRecency assigns each conversation to the first bucket whose
// day-aligned boundary its UpdatedAt reaches. Input order is preserved
// within each bucket.
func GroupByRecency(convs []*model.Conversation, now time.Time) *Groups {
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	yesterday := today.AddDate(0, 0, -1)
	weekAgo := today.AddDate(0, 0, -7)
	monthAgo := today.AddDate(0, 0, -30)

	g := &Groups{}
	for _, conv := range convs {
		ts := conv.UpdatedAt
		switch {
		case !ts.Before(today):
			g.Today = append(g.Today, conv)
		case !ts.Before(yesterday):
			g.Yesterday = append(g.Yesterday, conv)
		case !ts.Before(weekAgo):
			g.Last7Days = append(g.Last7Days, conv)
		case !ts.Before(monthAgo):
			g.Last30Days = append(g.Last30Days, conv)
		default:
			g.Older = append(g.Older, conv)
		}
	}
	return g
}

// Sections returns the non-empty buckets with display labels, newest
// bucket first.
func (g *Groups) Sections() []Section {
	all := []Section{
		{Label: "Today", Conversations: g.Today},
		{Label: "Yesterday", Conversations: g.Yesterday},
		{Label: "Previous 7 days", Conversations: g.Last7Days},
		{Label: "Previous 30 days", Conversations: g.Last30Days},
		{Label: "Older", Conversations: g.Older},
	}
	var out []Section
	for _, sec := range all {
		if len(sec.Conversations) > 0 {
			out = append(out, sec)
		}
	}
	return out
}
