package stripe

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/stripe/stripe-go/v83"

	"github.com/startupprice/billingd/pkg/billing"
	"github.com/startupprice/billingd/pkg/internal"
)

const eventCheckoutCompleted = "checkout.session.completed"

// handleWebhook authenticates and processes incoming Stripe webhook events.
// Delivery is at-least-once, so everything downstream must tolerate
// duplicates and out-of-order arrival.
func (p *Provider) handleWebhook(w http.ResponseWriter, r *http.Request) {
	startTime := time.Now()
	setSecurityHeaders(w)

	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	body, err := internal.ReadRawBody(w, r, maxWebhookBodyBytes)
	if err != nil {
		if errors.Is(err, internal.ErrPayloadTooLarge) {
			http.Error(w, "payload too large", http.StatusRequestEntityTooLarge)
			p.metrics.RecordWebhookError(providerName, "payload_too_large")
		} else {
			internal.WriteJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid payload"})
			p.metrics.RecordWebhookError(providerName, "invalid_payload")
		}
		return
	}

	sig := r.Header.Get("Stripe-Signature")
	if sig == "" {
		// Potential attack indicator: Stripe always signs its deliveries.
		p.logger.Warn().Str("remote_ip", internal.ClientIP(r)).Msg("webhook without signature header")
		p.metrics.RecordWebhookError(providerName, "missing_signature")
		internal.WriteJSON(w, http.StatusBadRequest, map[string]string{"error": "signature not found"})
		return
	}

	event, err := stripe.ConstructEvent(body, sig, p.webhookSecret)
	if err != nil {
		p.logger.Warn().Err(err).Str("remote_ip", internal.ClientIP(r)).Msg("webhook signature verification failed")
		p.metrics.RecordWebhookError(providerName, "auth_failed")
		internal.WriteJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid signature"})
		return
	}

	eventType := string(event.Type)
	if eventType == "" {
		eventType = "unknown"
	}

	err = p.processEvent(r.Context(), &event)
	switch {
	case errors.Is(err, billing.ErrMissingIdentity):
		// Unrecoverable payload: acknowledge so Stripe stops retrying, but
		// log loudly so a human investigates the dropped upgrade.
		p.logger.Error().Err(err).
			Str("event_id", event.ID).
			Str("event_type", eventType).
			Msg("completed checkout carries no user identity")
		p.metrics.RecordWebhookEvent(providerName, eventType, "error")
		p.metrics.RecordWebhookError(providerName, "missing_identity")
		internal.WriteJSON(w, http.StatusOK, map[string]bool{"received": true})
	case err != nil:
		p.logger.Error().Err(err).
			Str("event_id", event.ID).
			Str("event_type", eventType).
			Msg("webhook processing failed")
		p.metrics.RecordWebhookEvent(providerName, eventType, "error")
		p.metrics.RecordWebhookError(providerName, "processing_error")
		internal.WriteJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to process webhook"})
	default:
		p.metrics.RecordWebhookEvent(providerName, eventType, "success")
		internal.WriteJSON(w, http.StatusOK, map[string]bool{"received": true})
	}
	p.metrics.RecordWebhookProcessingDuration(providerName, eventType, time.Since(startTime))
}

// processEvent dispatches on the event type tag. Only completed checkouts
// mutate state; every other type is acknowledged untouched.
func (p *Provider) processEvent(ctx context.Context, event *stripe.Event) error {
	switch string(event.Type) {
	case eventCheckoutCompleted:
		return p.handleCheckoutCompleted(ctx, event)
	default:
		p.logger.Debug().
			Str("event_type", string(event.Type)).
			Msg("ignoring unhandled webhook event")
		return nil
	}
}

// handleCheckoutCompleted applies the premium transition for a completed
// checkout. The write is a pure overwrite to a fixed target state, so
// processing the same event twice leaves the record unchanged.
func (p *Provider) handleCheckoutCompleted(ctx context.Context, event *stripe.Event) error {
	var session stripe.CheckoutSession
	if err := json.Unmarshal(event.Data.Raw, &session); err != nil {
		return fmt.Errorf("%w: %v", billing.ErrInvalidWebhookPayload, err)
	}

	userID := session.Metadata["userId"]

	// Email fallback chain: session metadata, then Stripe's own customer
	// email fields from the hosted checkout page.
	email := session.Metadata["email"]
	if email == "" {
		email = session.CustomerEmail
	}
	if email == "" && session.CustomerDetails != nil {
		email = session.CustomerDetails.Email
	}

	if userID == "" || email == "" {
		return fmt.Errorf("%w: session %s", billing.ErrMissingIdentity, session.ID)
	}

	if err := p.store.UpsertPremium(ctx, userID, email); err != nil {
		return fmt.Errorf("failed to persist entitlement: %w", err)
	}

	p.logger.Info().
		Str("user_id", userID).
		Str("email", email).
		Str("session_id", session.ID).
		Msg("user upgraded to premium")

	return nil
}

func setSecurityHeaders(w http.ResponseWriter) {
	w.Header().Set("Cache-Control", "no-store")
	w.Header().Set("X-Content-Type-Options", "nosniff")
}
