package config

import (
	"time"

	"github.com/caarlos0/env/v11"
)

type ServerConfig struct {
	HTTPAddr    string `env:"HTTP_ADDR" envDefault:":8080"`
	AdminAPIKey string `env:"ADMIN_API_KEY"`

	RedisURL    string        `env:"REDIS_URL" envDefault:"redis://localhost:6379/0"`
	SnapshotTTL time.Duration `env:"SNAPSHOT_TTL" envDefault:"2h"`

	// Empty disables the finished-match archive.
	PostgresDSN      string `env:"POSTGRES_DSN"`
	PostgresMaxConns int32  `env:"POSTGRES_MAX_CONNS" envDefault:"8"`
	PostgresMigrate  bool   `env:"POSTGRES_MIGRATE" envDefault:"true"`

	TurnTimeLimit     time.Duration `env:"TURN_TIME_LIMIT" envDefault:"60s"`
	DisconnectGrace   time.Duration `env:"DISCONNECT_GRACE" envDefault:"30s"`
	CountdownInterval time.Duration `env:"DISCONNECT_COUNTDOWN_INTERVAL" envDefault:"5s"`
	FinishedRetention time.Duration `env:"FINISHED_RETENTION" envDefault:"10m"`
	StallThreshold    time.Duration `env:"STALL_THRESHOLD" envDefault:"20s"`
	JanitorInterval   time.Duration `env:"JANITOR_INTERVAL" envDefault:"1m"`

	EscrowGatewayURL string        `env:"ESCROW_GATEWAY_URL"`
	EscrowAPIKey     string        `env:"ESCROW_API_KEY"`
	EscrowDenom      string        `env:"ESCROW_DENOM" envDefault:"uusdc"`
	EscrowTimeout    time.Duration `env:"ESCROW_TIMEOUT" envDefault:"10s"`

	SpectatorPushEnabled    bool          `env:"SPECTATOR_PUSH_ENABLED" envDefault:"false"`
	SpectatorPushConfigJSON string        `env:"SPECTATOR_PUSH_CONFIG_JSON"`
	SpectatorPushConfigPath string        `env:"SPECTATOR_PUSH_CONFIG_PATH"`
	SpectatorPushWorkers    int           `env:"SPECTATOR_PUSH_WORKERS" envDefault:"2"`
	SpectatorPushRetryMax   int           `env:"SPECTATOR_PUSH_RETRY_MAX" envDefault:"3"`
	SpectatorPushRetryBase  time.Duration `env:"SPECTATOR_PUSH_RETRY_BASE" envDefault:"500ms"`
}

func LoadServer() (ServerConfig, error) {
	var cfg ServerConfig
	err := env.Parse(&cfg)
	return cfg, err
}
