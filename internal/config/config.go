// Package config loads server configuration from environment variables.
package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// Config is the full server configuration, parsed from the environment.
type Config struct {
	Port   int    `env:"PORT" envDefault:"8080"`
	DBPath string `env:"DB_PATH" envDefault:"./data/divvy.db"`

	JWTSecret string        `env:"JWT_SECRET,required"`
	TokenTTL  time.Duration `env:"TOKEN_TTL" envDefault:"24h"`

	// Form limits and the smallest submittable amount in minor units.
	TitleLimit int   `env:"TITLE_LIMIT" envDefault:"64"`
	NoteLimit  int   `env:"NOTE_LIMIT" envDefault:"512"`
	MinAmount  int64 `env:"MIN_AMOUNT" envDefault:"1"`
}

// Load parses the configuration from environment variables.
func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	return cfg, nil
}
