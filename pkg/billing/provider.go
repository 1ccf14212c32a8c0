package billing

import (
	"context"
	"net/http"
)

// Provider is the generic interface that any payment backend must implement.
// This allows the application to swap Stripe for another processor with zero
// logic changes at the HTTP boundary.
type Provider interface {
	// Name returns the provider name (e.g., "stripe")
	Name() string

	// CheckoutURL opens a provider-hosted checkout session for userID and
	// returns the redirect URL. No local state is mutated; all correlation
	// data travels to the provider as session metadata and comes back on the
	// completion webhook.
	CheckoutURL(ctx context.Context, userID, email string) (string, error)

	// WebhookHandler returns the HTTP handler that authenticates and applies
	// asynchronous payment notifications. The handler requires the exact raw
	// request body, so it must be mounted without body-parsing middleware.
	WebhookHandler() http.Handler
}
