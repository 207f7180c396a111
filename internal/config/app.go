package config

import (
	"errors"
	"fmt"
)

type AppConfig struct {
	Server ServerConfig
	Log    LogConfig
}

func LoadApp() (AppConfig, error) {
	logCfg, err := LoadLog()
	if err != nil {
		return AppConfig{}, fmt.Errorf("log config: %w", err)
	}
	serverCfg, err := LoadServer()
	if err != nil {
		return AppConfig{}, fmt.Errorf("server config: %w", err)
	}
	if err := serverCfg.Validate(); err != nil {
		return AppConfig{}, fmt.Errorf("server config: %w", err)
	}
	return AppConfig{Server: serverCfg, Log: logCfg}, nil
}

// Validate rejects timing combinations the session layer cannot honour.
func (c ServerConfig) Validate() error {
	var errs []error
	if c.TurnTimeLimit <= 0 {
		errs = append(errs, errors.New("TURN_TIME_LIMIT must be positive"))
	}
	if c.DisconnectGrace <= 0 {
		errs = append(errs, errors.New("DISCONNECT_GRACE must be positive"))
	}
	if c.CountdownInterval <= 0 || c.CountdownInterval > c.DisconnectGrace {
		errs = append(errs, errors.New("DISCONNECT_COUNTDOWN_INTERVAL must be within DISCONNECT_GRACE"))
	}
	if c.SnapshotTTL <= 0 {
		errs = append(errs, errors.New("SNAPSHOT_TTL must be positive"))
	}
	if c.JanitorInterval <= 0 {
		errs = append(errs, errors.New("JANITOR_INTERVAL must be positive"))
	}
	if c.SpectatorPushEnabled && c.SpectatorPushConfigJSON == "" && c.SpectatorPushConfigPath == "" {
		errs = append(errs, errors.New("SPECTATOR_PUSH_ENABLED needs SPECTATOR_PUSH_CONFIG_JSON or SPECTATOR_PUSH_CONFIG_PATH"))
	}
	return errors.Join(errs...)
}
