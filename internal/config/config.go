package config

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/caarlos0/env/v11"
)

type Config struct {
	HTTPAddr string     `env:"HTTP_ADDR" envDefault:":8080"`
	DBPath   string     `env:"DB_PATH" envDefault:"data/tunequiz.db"`
	LogLevel slog.Level `env:"LOG_LEVEL" envDefault:"INFO"`

	// AdminPasswordHash is a bcrypt hash checked by the admin login endpoint.
	// When empty, admin login rejects every request.
	AdminPasswordHash string `env:"ADMIN_PASSWORD_HASH"`

	Game Game `envPrefix:"GAME_"`
}

// Game holds the gameplay tunables. Defaults mirror the live bot; tests
// override them with millisecond values.
type Game struct {
	Rounds          int           `env:"ROUNDS" envDefault:"10"`
	AnswerWindow    time.Duration `env:"ANSWER_WINDOW" envDefault:"15s"`
	PlaybackBound   time.Duration `env:"PLAYBACK_BOUND" envDefault:"32s"`
	InterRoundPause time.Duration `env:"INTER_ROUND_PAUSE" envDefault:"5s"`
	PresencePoll    time.Duration `env:"PRESENCE_POLL" envDefault:"2500ms"`
	PresenceBound   time.Duration `env:"PRESENCE_BOUND" envDefault:"120s"`
	RejoinGrace     time.Duration `env:"REJOIN_GRACE" envDefault:"120s"`
	RecheckBound    time.Duration `env:"RECHECK_BOUND" envDefault:"60s"`
}

func Load() (*Config, error) {
	cfg, err := env.ParseAs[Config]()
	if err != nil {
		return nil, fmt.Errorf("parsing environment: %w", err)
	}
	return &cfg, nil
}
