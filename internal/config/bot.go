package config

import "github.com/caarlos0/env/v11"

type BotConfig struct {
	WSURL         string `env:"WS_URL" envDefault:"ws://localhost:8080/ws"`
	PlayerAddress string `env:"PLAYER_ADDRESS" envDefault:"bot"`
	// Empty creates a new game instead of joining one.
	GameID      string `env:"GAME_ID"`
	WagerAmount int64  `env:"WAGER_AMOUNT" envDefault:"0"`
}

func LoadBot() (BotConfig, error) {
	var cfg BotConfig
	err := env.Parse(&cfg)
	return cfg, err
}
