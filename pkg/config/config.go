package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"github.com/muhammadchandra19/moex-history-service/pkg/postgresql"
)

// Config represents the application configuration.
type Config struct {
	App  AppConfig         `envPrefix:"APP_"`
	DB   postgresql.Config `envPrefix:"DB_"`
	Moex MoexConfig        `envPrefix:"MOEX_"`
	Sync SyncConfig        `envPrefix:"SYNC_"`
}

// AppConfig represents the application configuration.
type AppConfig struct {
	Name        string `env:"NAME" envDefault:"moex-history-service"`
	Environment string `env:"ENVIRONMENT" envDefault:"development"`
	Port        int    `env:"PORT" envDefault:"8080"`
	LogLevel    string `env:"LOG_LEVEL" envDefault:"info"`
}

// MoexConfig configures the MOEX ISS upstream client.
type MoexConfig struct {
	BaseURL               string        `env:"BASE_URL" envDefault:"https://iss.moex.com"`
	RequestTimeout        time.Duration `env:"REQUEST_TIMEOUT" envDefault:"30s"`
	MaxConcurrentRequests int64         `env:"MAX_CONCURRENT_REQUESTS" envDefault:"6"`
}

// SyncConfig tunes how long a request waits for intervals another
// request is already fetching.
type SyncConfig struct {
	WaitAttempts int           `env:"WAIT_ATTEMPTS" envDefault:"5"`
	WaitBackoff  time.Duration `env:"WAIT_BACKOFF" envDefault:"200ms"`
}

// Load loads the configuration from the environment.
func Load() (*Config, error) {
	// Load .env file if it exists
	_ = godotenv.Load()

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	return cfg, nil
}
