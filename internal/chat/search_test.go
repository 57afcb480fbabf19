// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"testing"
)

func seedSearchStore(t *testing.T) *Store {
	t.Helper()
	s, _ := newTestStore(t)

	conv, err := s.AppendUserMessage("Một tín chỉ ở UIT là bao nhiêu tiết?")
	if err != nil {
		t.Fatal(err)
	}
	if err := s.AppendAssistantMessage(conv.ID, "One credit equals 15 lecture periods."); err != nil {
		t.Fatal(err)
	}

	if _, err := s.NewConversation(); err != nil {
		t.Fatal(err)
	}
	if _, err := s.AppendUserMessage("Học phí đóng khi nào?"); err != nil {
		t.Fatal(err)
	}
	return s
}

func TestSearchCaseInsensitive(t *testing.T) {
	s := seedSearchStore(t)

	got := s.Search("uit")
	if len(got) != 1 {
		t.Fatalf("expected 1 match for %q, got %d", "uit", len(got))
	}
	if got[0].Title != "Một tín chỉ ở UIT là bao nhiêu tiết?" {
		t.Errorf("unexpected match: %q", got[0].Title)
	}
}

func TestSearchDiacriticInsensitive(t *testing.T) {
	s := seedSearchStore(t)

	cases := []struct {
		query string
		want  int
	}{
		{"tin chi", 1},  // matches "tín chỉ"
		{"Tín chỉ", 1},  // accented query matches too
		{"hoc phi", 1},  // matches "Học phí"
		{"dong", 1},     // đ folds to d: matches "đóng"
		{"ky luat", 0},  // nothing about discipline
		{"credit", 1},   // assistant message text is searched as well
	}
	for _, tc := range cases {
		if got := len(s.Search(tc.query)); got != tc.want {
			t.Errorf("Search(%q) = %d matches, want %d", tc.query, got, tc.want)
		}
	}
}

func TestSearchBlankReturnsAll(t *testing.T) {
	s := seedSearchStore(t)

	for _, q := range []string{"", "   "} {
		got := s.Search(q)
		if len(got) != s.Len() {
			t.Errorf("blank query should return all %d conversations, got %d", s.Len(), len(got))
		}
	}

	// Order follows the history, newest first.
	all := s.Search("")
	if all[0].Title == "Một tín chỉ ở UIT là bao nhiêu tiết?" {
		t.Error("blank search should preserve newest-first order")
	}
}

func TestFold(t *testing.T) {
	cases := []struct{ in, want string }{
		{"Tín Chỉ", "tin chi"},
		{"Đào tạo", "dao tao"},
		{"HELLO", "hello"},
		{"no accents", "no accents"},
	}
	for _, tc := range cases {
		if got := fold(tc.in); got != tc.want {
			t.Errorf("fold(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}
