// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"bytes"
	"context"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/jeranaias/campuschat/internal/api"
	"github.com/jeranaias/campuschat/internal/auth"
	"github.com/jeranaias/campuschat/internal/chat"
	"github.com/jeranaias/campuschat/internal/config"
	"github.com/jeranaias/campuschat/internal/storage"
)

func TestParse(t *testing.T) {
	cases := []struct {
		args    []string
		want    Command
		rest    []string
		wantErr bool
	}{
		{nil, CommandChat, nil, false},
		{[]string{"chat"}, CommandChat, nil, false},
		{[]string{"login"}, CommandLogin, nil, false},
		{[]string{"search", "tin", "chi"}, CommandSearch, []string{"tin", "chi"}, false},
		{[]string{"delete", "conv_123"}, CommandDelete, []string{"conv_123"}, false},
		{[]string{"version"}, CommandVersion, nil, false},
		{[]string{"--help"}, CommandHelp, nil, false},
		{[]string{"bogus"}, CommandHelp, nil, true},
	}
	for _, tc := range cases {
		cmd, rest, err := Parse(tc.args)
		if (err != nil) != tc.wantErr {
			t.Errorf("Parse(%v) error = %v, wantErr %t", tc.args, err, tc.wantErr)
			continue
		}
		if cmd != tc.want {
			t.Errorf("Parse(%v) = %v, want %v", tc.args, cmd, tc.want)
		}
		if len(rest) != len(tc.rest) {
			t.Errorf("Parse(%v) rest = %v, want %v", tc.args, rest, tc.rest)
		}
	}
}

// newTestApp builds an app over in-memory storage with captured output.
func newTestApp(t *testing.T) (*App, *bytes.Buffer) {
	t.Helper()

	kv := storage.NewMemoryStore()
	client := api.NewClient("http://127.0.0.1:0", kv)
	out := &bytes.Buffer{}
	app := &App{
		cfg:       config.Default(),
		kv:        kv,
		client:    client,
		auth:      auth.NewService(client),
		store:     chat.NewStore(kv),
		prefs:     config.NewPrefs(kv, config.Default().UI),
		responder: chat.SimulatedResponder{},
		stdout:    out,
		stderr:    out,
		closer:    func() error { return nil },
	}
	return app, out
}

func TestHistoryCommandGroupsOutput(t *testing.T) {
	app, out := newTestApp(t)

	if _, err := app.store.AppendUserMessage("Điều kiện tốt nghiệp?"); err != nil {
		t.Fatal(err)
	}

	if err := app.Run(context.Background(), CommandHistory, nil); err != nil {
		t.Fatal(err)
	}
	got := out.String()
	if !strings.Contains(got, "Today") {
		t.Errorf("expected Today section, got:\n%s", got)
	}
	if !strings.Contains(got, "Điều kiện tốt nghiệp?") {
		t.Errorf("expected conversation title, got:\n%s", got)
	}
}

func TestHistoryCommandEmpty(t *testing.T) {
	app, out := newTestApp(t)

	if err := app.runHistory(); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out.String(), "No conversations yet.") {
		t.Errorf("unexpected output: %s", out.String())
	}
}

func TestSearchCommand(t *testing.T) {
	app, out := newTestApp(t)

	if _, err := app.store.AppendUserMessage("Học phí tín chỉ?"); err != nil {
		t.Fatal(err)
	}

	if err := app.runSearch([]string{"hoc", "phi"}); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out.String(), "Học phí tín chỉ?") {
		t.Errorf("expected match in output: %s", out.String())
	}

	out.Reset()
	if err := app.runSearch([]string{"nonexistent"}); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out.String(), "No matches.") {
		t.Errorf("unexpected output: %s", out.String())
	}
}

func TestDeleteCommand(t *testing.T) {
	app, out := newTestApp(t)

	conv, err := app.store.AppendUserMessage("delete me")
	if err != nil {
		t.Fatal(err)
	}

	if err := app.runDelete([]string{conv.ID}); err != nil {
		t.Fatal(err)
	}
	if app.store.Len() != 0 {
		t.Error("conversation should be deleted")
	}

	out.Reset()
	if err := app.runDelete([]string{conv.ID}); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out.String(), "No conversation with ID") {
		t.Errorf("unexpected output: %s", out.String())
	}

	if err := app.runDelete(nil); err == nil {
		t.Error("missing argument should be an error")
	}
}

func TestAskRoundTrip(t *testing.T) {
	app, _ := newTestApp(t)

	if err := app.ask(context.Background(), "Một tín chỉ bao nhiêu tiền?"); err != nil {
		t.Fatal(err)
	}

	conv := app.store.Current()
	if conv == nil || conv.MessageCount() != 2 {
		t.Fatalf("expected question and answer recorded, got %+v", conv)
	}
	if !conv.Messages[0].IsUser() || !conv.Messages[1].IsAssistant() {
		t.Error("unexpected message senders")
	}
}

func TestApplyConfig(t *testing.T) {
	app, _ := newTestApp(t)

	cfg := config.Default()
	cfg.API.BaseURL = "http://10.0.0.1:8000/"
	cfg.API.TimeoutSecs = 5
	app.applyConfig(cfg)

	if got := app.client.BaseURL(); got != "http://10.0.0.1:8000" {
		t.Errorf("unexpected base URL: %q", got)
	}
}

func TestConfigReloadUpdatesClient(t *testing.T) {
	app, _ := newTestApp(t)

	path := filepath.Join(t.TempDir(), "config.toml")
	cfg := config.Default()
	if err := cfg.Save(path); err != nil {
		t.Fatal(err)
	}

	w, err := config.NewWatcher(path, app.applyConfig)
	if err != nil {
		t.Fatal(err)
	}
	defer w.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go w.Run(ctx)
	time.Sleep(50 * time.Millisecond)

	cfg.API.BaseURL = "http://127.0.0.1:4242"
	if err := cfg.Save(path); err != nil {
		t.Fatal(err)
	}

	deadline := time.Now().Add(3 * time.Second)
	for time.Now().Before(deadline) {
		if app.client.BaseURL() == "http://127.0.0.1:4242" {
			return
		}
		time.Sleep(20 * time.Millisecond)
	}
	t.Fatalf("client base URL not updated, got %q", app.client.BaseURL())
}

func TestVersionCommand(t *testing.T) {
	app, out := newTestApp(t)

	if err := app.Run(context.Background(), CommandVersion, nil); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out.String(), Version) {
		t.Errorf("unexpected output: %s", out.String())
	}
}
