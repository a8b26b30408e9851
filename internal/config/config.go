package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// Config contains API server configuration parameters.
type Config struct {
	HTTPAddr string `env:"HTTP_ADDR" envDefault:"0.0.0.0:8431"`

	// DatabaseURL selects the backing store. When empty the server runs
	// with seeded in-memory stores (demo mode).
	DatabaseURL            string `env:"DATABASE_URL"`
	DatabaseTimeZone       string `env:"DATABASE_TIMEZONE"`
	DatabaseClientEncoding string `env:"DATABASE_CLIENT_ENCODING"`

	JWT       JWT       `envPrefix:"JWT_"`
	RateLimit RateLimit `envPrefix:"RATE_"`
}

// JWT contains session token parameters.
type JWT struct {
	Secret string        `env:"SECRET" envDefault:"khidma-dev-secret-change-me"`
	TTL    time.Duration `env:"TTL" envDefault:"24h"`
}

// RateLimit contains fixed-window rate limit knobs for sensitive endpoints.
type RateLimit struct {
	LoginMax            int           `env:"LOGIN_MAX" envDefault:"5"`
	LoginWindow         time.Duration `env:"LOGIN_WINDOW" envDefault:"1m"`
	RegisterMax         int           `env:"REGISTER_MAX" envDefault:"3"`
	RegisterWindow      time.Duration `env:"REGISTER_WINDOW" envDefault:"1h"`
	RegisterProviderMax int           `env:"REGISTER_PROVIDER_MAX" envDefault:"2"`
	// Providers get a stricter window since their accounts open a
	// document-review workload for admins.
	RegisterProviderWindow time.Duration `env:"REGISTER_PROVIDER_WINDOW" envDefault:"24h"`

	// TrustForwardedFor keys limits by the first X-Forwarded-For hop.
	// Enable only behind a reverse proxy that strips the header from
	// client requests; direct clients could otherwise pick their own key.
	TrustForwardedFor bool `env:"TRUST_FORWARDED_FOR" envDefault:"false"`
}

// New loads configuration from environment variables.
func New() (*Config, error) {
	cfg := Config{}
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	return &cfg, nil
}
