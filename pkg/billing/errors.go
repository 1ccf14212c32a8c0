package billing

import "errors"

var (
	// ErrProviderNotConfigured is returned when a provider is not properly configured
	ErrProviderNotConfigured = errors.New("billing provider not configured")

	// ErrInvalidInput is returned when a checkout request fails validation
	ErrInvalidInput = errors.New("invalid checkout input")

	// ErrMissingSignature is returned when a webhook request carries no signature header
	ErrMissingSignature = errors.New("webhook signature missing")

	// ErrInvalidSignature is returned when webhook signature validation fails
	ErrInvalidSignature = errors.New("invalid webhook signature")

	// ErrInvalidWebhookPayload is returned when webhook payload cannot be parsed
	ErrInvalidWebhookPayload = errors.New("invalid webhook payload")

	// ErrMissingIdentity is returned when a completed checkout event carries no
	// recoverable userId/email. The HTTP layer still acknowledges the event so
	// the provider's retry machinery does not hammer an unfixable payload.
	ErrMissingIdentity = errors.New("user identity missing from event")

	// ErrProviderAPIError is returned when the provider's API returns an error
	ErrProviderAPIError = errors.New("billing provider API error")
)
