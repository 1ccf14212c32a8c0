package stripe

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/stripe/stripe-go/v83"

	"github.com/startupprice/billingd/pkg/billing"
)

// emailPattern mirrors the client-side check: local@domain with a dot in the
// domain, no whitespace. Anything stricter belongs to the provider.
var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// CheckoutURL creates a Stripe Checkout Session for the premium plan and
// returns the hosted-session URL. Initiation is read-only with respect to the
// entitlement store: the only durable trace is the {userId, email} metadata
// attached to the session, which Stripe echoes back on the completion webhook
// and which is the sole correlation channel between the two request paths.
func (p *Provider) CheckoutURL(ctx context.Context, userID, email string) (string, error) {
	if strings.TrimSpace(userID) == "" {
		return "", fmt.Errorf("%w: userId must be a non-empty string", billing.ErrInvalidInput)
	}
	if strings.TrimSpace(email) == "" {
		return "", fmt.Errorf("%w: email must be a non-empty string", billing.ErrInvalidInput)
	}
	if !emailPattern.MatchString(email) {
		return "", fmt.Errorf("%w: email must be a valid address", billing.ErrInvalidInput)
	}

	startTime := time.Now()

	params := &stripe.CheckoutSessionCreateParams{
		Mode: stripe.String(string(stripe.CheckoutSessionModeSubscription)),
		LineItems: []*stripe.CheckoutSessionCreateLineItemParams{
			{
				Price:    stripe.String(p.priceID),
				Quantity: stripe.Int64(1),
			},
		},
		CustomerEmail: stripe.String(email),
		SuccessURL:    stripe.String(p.successURL),
		CancelURL:     stripe.String(p.cancelURL),
	}
	params.Metadata = map[string]string{
		"userId": userID,
		"email":  email,
	}

	session, err := p.client.V1CheckoutSessions.Create(ctx, params)
	if err != nil {
		p.metrics.RecordAPICall(providerName, "/checkout/sessions", "error")
		p.metrics.RecordAPICallDuration(providerName, "/checkout/sessions", time.Since(startTime))
		p.metrics.RecordCheckoutSession(providerName, "error")
		// Raw provider error text stays in the logs; callers get the sentinel.
		p.logger.Error().Err(err).
			Str("user_id", userID).
			Msg("checkout session creation failed")
		return "", billing.ErrProviderAPIError
	}

	p.metrics.RecordAPICall(providerName, "/checkout/sessions", "success")
	p.metrics.RecordAPICallDuration(providerName, "/checkout/sessions", time.Since(startTime))
	p.metrics.RecordCheckoutSession(providerName, "success")

	p.logger.Info().
		Str("user_id", userID).
		Str("email", email).
		Str("session_id", session.ID).
		Msg("checkout session created")

	return session.URL, nil
}
