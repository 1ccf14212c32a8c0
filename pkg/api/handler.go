// Package api is the HTTP boundary: it routes inbound requests to the
// billing provider and maps component outcomes to transport-level responses.
// Internal error detail never leaves the process.
package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/startupprice/billingd/pkg/billing"
	"github.com/startupprice/billingd/pkg/internal"
)

// Config holds configuration for the billing API handler.
type Config struct {
	// Provider is the payment provider (required).
	Provider billing.Provider

	// Logger is optional; defaults to a no-op logger.
	Logger *zerolog.Logger
}

// Validate checks that the configuration is valid.
func (c *Config) Validate() error {
	if c.Provider == nil {
		return fmt.Errorf("provider is required")
	}
	return nil
}

// Handler serves the billing HTTP surface.
type Handler struct {
	provider billing.Provider
	logger   zerolog.Logger
}

// NewHandler creates a new billing API handler.
func NewHandler(config Config) (*Handler, error) {
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	logger := zerolog.Nop()
	if config.Logger != nil {
		logger = *config.Logger
	}
	return &Handler{
		provider: config.Provider,
		logger:   logger,
	}, nil
}

// Routes returns the /api/billing subtree. The webhook route is mounted as a
// raw handler: the signature is verified over the exact body bytes, so no
// body-parsing middleware may run in front of it.
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Post("/create-checkout-session", h.handleCreateCheckoutSession)
	r.Method(http.MethodPost, "/webhook", h.provider.WebhookHandler())
	return r
}

func (h *Handler) handleCreateCheckoutSession(w http.ResponseWriter, r *http.Request) {
	var req CheckoutRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		internal.WriteJSON(w, http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	url, err := h.provider.CheckoutURL(r.Context(), req.UserID, req.Email)
	switch {
	case errors.Is(err, billing.ErrInvalidInput):
		internal.WriteJSON(w, http.StatusBadRequest, ErrorResponse{Error: err.Error()})
	case errors.Is(err, billing.ErrProviderAPIError):
		// Provider error text was already logged at the call site.
		internal.WriteJSON(w, http.StatusInternalServerError,
			ErrorResponse{Error: "failed to process payment, please try again later"})
	case err != nil:
		h.logger.Error().Err(err).Msg("checkout initiation failed")
		internal.WriteJSON(w, http.StatusInternalServerError, ErrorResponse{Error: "internal server error"})
	default:
		internal.WriteJSON(w, http.StatusOK, CheckoutResponse{URL: url})
	}
}

// HealthHandler is the liveness probe.
func HealthHandler(w http.ResponseWriter, _ *http.Request) {
	internal.WriteJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

// Recoverer converts any panic below it into a generic 500 response without
// exposing internal detail to the client.
func Recoverer(logger zerolog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rec := recover(); rec != nil {
					logger.Error().
						Interface("panic", rec).
						Str("path", r.URL.Path).
						Msg("unhandled panic in request handler")
					internal.WriteJSON(w, http.StatusInternalServerError,
						ErrorResponse{Error: "internal server error"})
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}
