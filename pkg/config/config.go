// Package config loads and validates the service configuration from the
// environment. The process refuses to start when a required value is absent.
package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Config is the environment-sourced service configuration.
type Config struct {
	// Port is the HTTP listen port.
	Port int `env:"PORT" envDefault:"3001"`

	// StripeSecretKey is the Stripe API secret key.
	StripeSecretKey string `env:"STRIPE_SECRET_KEY,required,notEmpty"`

	// StripeWebhookSecret is the webhook signing secret.
	StripeWebhookSecret string `env:"STRIPE_WEBHOOK_SECRET,required,notEmpty"`

	// StripePriceID is the price identifier for the monthly premium plan.
	StripePriceID string `env:"STRIPE_PRICE_ID_PRO_MONTHLY,required,notEmpty"`

	// FrontendURL is the base URL for post-checkout redirects.
	FrontendURL string `env:"FRONTEND_URL" envDefault:"https://start-up-price-ai.vercel.app"`

	// DatabaseURL selects the PostgreSQL entitlement store when set.
	DatabaseURL string `env:"DATABASE_URL"`

	// RedisAddr selects the Redis entitlement store when set (and no
	// DatabaseURL is configured).
	RedisAddr string `env:"REDIS_ADDR"`

	// LogLevel is the zerolog level name (debug, info, warn, error).
	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`
}

// Load reads an optional .env file, then parses and validates the
// environment. Missing required variables fail the load.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	return cfg, nil
}

// SuccessURL is the redirect target after a completed checkout. Stripe
// substitutes the session ID placeholder on redirect.
func (c *Config) SuccessURL() string {
	return c.FrontendURL + "/billing/success?session_id={CHECKOUT_SESSION_ID}"
}

// CancelURL is the redirect target after an abandoned checkout.
func (c *Config) CancelURL() string {
	return c.FrontendURL + "/billing/cancel"
}
