package api

// CheckoutRequest is the body of POST /api/billing/create-checkout-session.
type CheckoutRequest struct {
	UserID string `json:"userId"`
	Email  string `json:"email"`
}

// CheckoutResponse carries the provider-hosted checkout URL.
type CheckoutResponse struct {
	URL string `json:"url"`
}

// ErrorResponse is the generic error body.
type ErrorResponse struct {
	Error string `json:"error"`
}
