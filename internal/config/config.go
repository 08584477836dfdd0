// Package config loads server settings from the environment. A .env file in
// the working directory is read first when present.
package config

import (
	"fmt"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Config is shared by the api and game servers; each reads the fields it
// needs.
type Config struct {
	GamePort        string        `envconfig:"GAME_PORT" default:"8081"`
	APIPort         string        `envconfig:"API_PORT" default:"8080"`
	DataAPIBase     string        `envconfig:"DATA_API_BASE"`
	LogLevel        string        `envconfig:"LOG_LEVEL" default:"info"`
	LogEncoding     string        `envconfig:"LOG_ENCODING" default:"json"`
	DBPath          string        `envconfig:"DB_PATH" default:"legacy-idle.db"`
	RedisAddr       string        `envconfig:"REDIS_ADDR"`
	TickInterval    time.Duration `envconfig:"TICK_INTERVAL" default:"1s"`
	ContentCacheTTL time.Duration `envconfig:"CONTENT_CACHE_TTL" default:"5m"`
}

// Load reads .env (if any) and then the process environment.
func Load() (*Config, error) {
	_ = godotenv.Load()

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if cfg.TickInterval <= 0 {
		return nil, fmt.Errorf("load config: TICK_INTERVAL must be positive, got %s", cfg.TickInterval)
	}
	return &cfg, nil
}
