package spectatorpush

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"backgammon-arena/internal/config"
)

func TestConfigDisabledSkipsTargets(t *testing.T) {
	cfg, err := ConfigFromServer(config.ServerConfig{SpectatorPushConfigJSON: "not json"})
	if err != nil {
		t.Fatalf("disabled config should not parse targets: %v", err)
	}
	if cfg.Enabled || len(cfg.Targets) != 0 {
		t.Fatalf("unexpected config: %+v", cfg)
	}
}

func TestParseTargetsNormalizes(t *testing.T) {
	raw := `[
		{"platform":" Discord ","url":"https://d.example/hook"},
		{"platform":"feishu","url":"https://f.example/hook","scope":"player","match":"bob","events":[" GAME_OVER "]},
		{"platform":"slack","url":"https://s.example/hook","disabled":true}
	]`
	targets, err := ParseTargets([]byte(raw))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if len(targets) != 2 {
		t.Fatalf("targets = %+v", targets)
	}
	if targets[0].Platform != "discord" || targets[0].Scope != ScopeAll {
		t.Fatalf("first target = %+v", targets[0])
	}
	if targets[1].Events[0] != "game_over" {
		t.Fatalf("events = %v", targets[1].Events)
	}
}

func TestParseTargetsRejectsInvalid(t *testing.T) {
	cases := map[string]string{
		"missing url":    `[{"platform":"discord"}]`,
		"bad scheme":     `[{"platform":"discord","url":"ftp://x"}]`,
		"unknown scope":  `[{"platform":"discord","url":"https://x","scope":"room"}]`,
		"scope no match": `[{"platform":"discord","url":"https://x","scope":"game"}]`,
		"extra field":    `[{"platform":"discord","url":"https://x","endpoint":"y"}]`,
		"not json":       `{`,
	}
	for name, raw := range cases {
		if _, err := ParseTargets([]byte(raw)); err == nil {
			t.Fatalf("%s: expected error", name)
		}
	}
}

func TestConfigPathWinsOverJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "targets.json")
	if err := os.WriteFile(path, []byte(`[{"platform":"slack","url":"https://s.example"}]`), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	cfg, err := ConfigFromServer(config.ServerConfig{
		SpectatorPushEnabled:    true,
		SpectatorPushConfigPath: path,
		SpectatorPushConfigJSON: "ignored",
	})
	if err != nil {
		t.Fatalf("config: %v", err)
	}
	if len(cfg.Targets) != 1 || cfg.Targets[0].Platform != "slack" {
		t.Fatalf("targets = %+v", cfg.Targets)
	}
	if cfg.Workers != 2 || cfg.BackoffBase != 500*time.Millisecond || cfg.BackoffMax != 30*time.Second {
		t.Fatalf("defaults not applied: %+v", cfg)
	}
}

func TestTargetAccepts(t *testing.T) {
	h := Highlight{Kind: "game_over", GameID: "g1", White: "alice", Black: "bob"}
	cases := []struct {
		target Target
		want   bool
	}{
		{Target{Scope: ScopeAll}, true},
		{Target{Scope: ScopeGame, Match: "g1"}, true},
		{Target{Scope: ScopeGame, Match: "g2"}, false},
		{Target{Scope: ScopePlayer, Match: "bob"}, true},
		{Target{Scope: ScopePlayer, Match: "carol"}, false},
		{Target{Scope: ScopeAll, Events: []string{"game_start"}}, false},
		{Target{Scope: ScopeAll, Events: []string{"game_start", "game_over"}}, true},
		{Target{Scope: "room"}, false},
	}
	for i, tc := range cases {
		if got := tc.target.accepts(h); got != tc.want {
			t.Fatalf("case %d (%+v): accepts = %v", i, tc.target, got)
		}
	}
	if !strings.Contains(Target{Platform: "discord", URL: "u"}.key(), "discord") {
		t.Fatal("key should include the platform")
	}
}
