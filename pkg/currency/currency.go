// Package currency converts USD amounts to BRL using a public exchange-rate
// API. Lookups never fail the caller: any error falls back to a fixed rate.
package currency

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"
)

const (
	defaultRateURL     = "https://api.exchangerate-api.com/v4/latest/USD"
	defaultHTTPTimeout = 10 * time.Second

	// fallbackRate is used when the exchange-rate API is unreachable.
	fallbackRate = 5.0
)

// Config holds currency client configuration.
type Config struct {
	// BaseURL overrides the exchange-rate API endpoint (used in tests).
	BaseURL string

	// HTTPClient is an optional HTTP client. If nil, a default client with
	// a 10s timeout is used.
	HTTPClient *http.Client

	// Logger is optional; defaults to a no-op logger.
	Logger *zerolog.Logger
}

// Client fetches USD to BRL exchange rates. Concurrent lookups are collapsed
// into a single outbound request.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     zerolog.Logger
	group      singleflight.Group
}

// New creates a new currency client.
func New(config Config) *Client {
	baseURL := config.BaseURL
	if baseURL == "" {
		baseURL = defaultRateURL
	}
	httpClient := config.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: defaultHTTPTimeout}
	}
	logger := zerolog.Nop()
	if config.Logger != nil {
		logger = *config.Logger
	}
	return &Client{
		baseURL:    baseURL,
		httpClient: httpClient,
		logger:     logger,
	}
}

// USDToBRLRate returns the current USD to BRL rate, or the fallback rate when
// the API call fails.
func (c *Client) USDToBRLRate(ctx context.Context) float64 {
	v, err, _ := c.group.Do("usd-brl", func() (interface{}, error) {
		return c.fetchRate(ctx)
	})
	if err != nil {
		c.logger.Warn().Err(err).Msg("exchange rate lookup failed, using fallback")
		return fallbackRate
	}
	return v.(float64)
}

// ConvertUSDToBRL converts a USD amount to BRL.
func (c *Client) ConvertUSDToBRL(ctx context.Context, usdAmount float64) float64 {
	return usdAmount * c.USDToBRLRate(ctx)
}

func (c *Client) fetchRate(ctx context.Context) (float64, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL, nil)
	if err != nil {
		return 0, err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return 0, fmt.Errorf("exchange rate API returned status %d", resp.StatusCode)
	}

	var payload struct {
		Rates map[string]float64 `json:"rates"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return 0, err
	}

	rate, ok := payload.Rates["BRL"]
	if !ok || rate == 0 {
		return fallbackRate, nil
	}
	return rate, nil
}

// FormatBRL formats an amount in Brazilian style: R$12,34.
func FormatBRL(amount float64) string {
	return "R$" + strings.Replace(fmt.Sprintf("%.2f", amount), ".", ",", 1)
}
