package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Config holds all configuration values.
type Config struct {
	Port     string `env:"PORT" envDefault:"8080"`
	Env      string `env:"ENV" envDefault:"development"`
	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`

	// Parking service the UI talks to.
	APIBaseURL   string        `env:"PARKING_API_URL" envDefault:"http://127.0.0.1:8000"`
	APITimeout   time.Duration `env:"API_TIMEOUT" envDefault:"10s"`
	BackendRPS   float64       `env:"BACKEND_RPS" envDefault:"20"`
	BackendBurst int           `env:"BACKEND_BURST" envDefault:"10"`

	RetryMaxAttempts int           `env:"RETRY_MAX_ATTEMPTS" envDefault:"5"`
	RetryBaseDelay   time.Duration `env:"RETRY_BASE_DELAY" envDefault:"1s"`
	RetryStatuses    []int         `env:"RETRY_STATUSES" envDefault:"429"`

	DashboardPollSpec string        `env:"DASHBOARD_POLL_SPEC" envDefault:"@every 30s"`
	FormIdleTTL       time.Duration `env:"FORM_IDLE_TTL" envDefault:"30m"`
}

// Load reads an optional .env file and then the process environment.
func Load() (Config, error) {
	// A missing .env is fine; real deployments set the environment directly.
	_ = godotenv.Load()

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	cfg.APIBaseURL = strings.TrimRight(cfg.APIBaseURL, "/")
	return cfg, nil
}

func (c Config) validate() error {
	u, err := url.Parse(c.APIBaseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("PARKING_API_URL must be an absolute URL, got %q", c.APIBaseURL)
	}
	if c.RetryMaxAttempts < 1 {
		return fmt.Errorf("RETRY_MAX_ATTEMPTS must be at least 1")
	}
	if c.BackendRPS <= 0 || c.BackendBurst < 1 {
		return fmt.Errorf("BACKEND_RPS and BACKEND_BURST must be positive")
	}
	return nil
}

func (c Config) IsProduction() bool {
	return c.Env == "production"
}
