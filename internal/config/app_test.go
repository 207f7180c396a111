package config

import (
	"strings"
	"testing"
	"time"
)

func TestLoadAppDefaultsValidate(t *testing.T) {
	cfg, err := LoadApp()
	if err != nil {
		t.Fatalf("LoadApp() error = %v", err)
	}
	if cfg.Server.PostgresMaxConns != 8 || !cfg.Server.PostgresMigrate {
		t.Fatalf("unexpected postgres defaults: %+v", cfg.Server)
	}
}

func TestValidateCountdownWithinGrace(t *testing.T) {
	t.Setenv("DISCONNECT_GRACE", "3s")
	t.Setenv("DISCONNECT_COUNTDOWN_INTERVAL", "5s")

	_, err := LoadApp()
	if err == nil || !strings.Contains(err.Error(), "DISCONNECT_COUNTDOWN_INTERVAL") {
		t.Fatalf("LoadApp() error = %v, want countdown complaint", err)
	}
}

func TestValidateCollectsEveryProblem(t *testing.T) {
	cfg := ServerConfig{
		DisconnectGrace:      time.Second,
		CountdownInterval:    time.Second,
		SnapshotTTL:          time.Hour,
		JanitorInterval:      time.Minute,
		SpectatorPushEnabled: true,
	}
	err := cfg.Validate()
	if err == nil {
		t.Fatal("Validate() expected error")
	}
	for _, want := range []string{"TURN_TIME_LIMIT", "SPECTATOR_PUSH_ENABLED"} {
		if !strings.Contains(err.Error(), want) {
			t.Fatalf("error %q missing %s", err, want)
		}
	}
}
