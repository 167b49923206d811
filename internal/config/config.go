package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Config holds all runtime configuration, loaded from environment variables.
type Config struct {
	Port         string        `env:"PORT" envDefault:"8080"`
	DatabasePath string        `env:"DATABASE_PATH" envDefault:"campus-connect.db"`
	JWTSecret    string        `env:"JWT_SECRET"`
	TokenTTL     time.Duration `env:"TOKEN_TTL" envDefault:"24h"`
	BcryptCost   int           `env:"BCRYPT_COST" envDefault:"12"`
	LogFormat    string        `env:"LOG_FORMAT" envDefault:"text"`
}

// Load reads configuration from the environment, after loading an optional
// .env file, and validates it.
func Load() (*Config, error) {
	// .env is optional; variables may come from the environment directly.
	_ = godotenv.Load()

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if c.JWTSecret == "" {
		return fmt.Errorf("config: JWT_SECRET is required")
	}
	if len(c.JWTSecret) < 32 {
		return fmt.Errorf("config: JWT_SECRET must be at least 32 characters for HMAC-SHA256")
	}
	if c.BcryptCost < 4 || c.BcryptCost > 14 {
		return fmt.Errorf("config: BCRYPT_COST must be between 4 and 14, got %d", c.BcryptCost)
	}
	if c.TokenTTL <= 0 {
		return fmt.Errorf("config: TOKEN_TTL must be positive, got %s", c.TokenTTL)
	}
	if c.LogFormat != "text" && c.LogFormat != "json" {
		return fmt.Errorf("config: LOG_FORMAT must be \"text\" or \"json\", got %q", c.LogFormat)
	}
	return nil
}
