// Package stripe implements the billing.Provider interface on top of Stripe
// hosted checkout and signed webhooks.
package stripe

import (
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/stripe/stripe-go/v83"

	"github.com/startupprice/billingd/pkg/billing"
	"github.com/startupprice/billingd/pkg/internal"
	"github.com/startupprice/billingd/pkg/entitlement"
)

const (
	providerName             = "stripe"
	defaultRateLimitWindow   = time.Minute
	defaultRateLimitRequests = 100
	maxWebhookBodyBytes      = 256 * 1024
)

// Config holds everything the Stripe provider needs.
type Config struct {
	// Store receives the premium upsert when a checkout completes (required).
	Store entitlement.Store

	// SecretKey is the Stripe API secret key (required).
	SecretKey string

	// WebhookSecret is the signing secret for webhook verification (required).
	WebhookSecret string

	// PriceID identifies the recurring premium plan (required).
	PriceID string

	// SuccessURL and CancelURL are the post-checkout redirect targets (required).
	SuccessURL string
	CancelURL  string

	// Logger is optional; defaults to a no-op logger.
	Logger *zerolog.Logger

	// Metrics is an optional collector; defaults to no-op.
	Metrics billing.Metrics
}

// Provider implements billing.Provider for Stripe.
type Provider struct {
	store         entitlement.Store
	client        *stripe.Client
	priceID       string
	successURL    string
	cancelURL     string
	webhookSecret string
	limiter       *internal.RateLimiter
	logger        zerolog.Logger
	metrics       billing.Metrics
}

// NewProvider creates a new Stripe billing provider.
func NewProvider(config Config) (*Provider, error) {
	if config.Store == nil {
		return nil, billing.ErrProviderNotConfigured
	}

	secretKey := strings.TrimSpace(config.SecretKey)
	webhookSecret := strings.TrimSpace(config.WebhookSecret)
	priceID := strings.TrimSpace(config.PriceID)
	if secretKey == "" || webhookSecret == "" || priceID == "" {
		return nil, billing.ErrProviderNotConfigured
	}
	if config.SuccessURL == "" || config.CancelURL == "" {
		return nil, billing.ErrProviderNotConfigured
	}

	logger := zerolog.Nop()
	if config.Logger != nil {
		logger = *config.Logger
	}

	metrics := config.Metrics
	if metrics == nil {
		metrics = &billing.NoopMetrics{}
	}

	return &Provider{
		store:         config.Store,
		client:        stripe.NewClient(secretKey),
		priceID:       priceID,
		successURL:    config.SuccessURL,
		cancelURL:     config.CancelURL,
		webhookSecret: webhookSecret,
		limiter:       internal.NewRateLimiter(defaultRateLimitRequests, defaultRateLimitWindow),
		logger:        logger,
		metrics:       metrics,
	}, nil
}

// Name returns the provider name.
func (p *Provider) Name() string {
	return providerName
}

// WebhookHandler returns the HTTP handler for Stripe webhooks.
// The handler reads the raw body itself and must not sit behind body-parsing
// middleware: the signature is computed over the exact original bytes.
func (p *Provider) WebhookHandler() http.Handler {
	return p.limiter.Middleware(http.HandlerFunc(p.handleWebhook))
}
