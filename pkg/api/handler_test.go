package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/startupprice/billingd/pkg/billing"
)

// fakeProvider lets handler tests drive every branch of the outcome mapping
// without touching the Stripe API.
type fakeProvider struct {
	checkoutURL string
	checkoutErr error
	lastUserID  string
	lastEmail   string
}

func (f *fakeProvider) Name() string { return "fake" }

func (f *fakeProvider) CheckoutURL(_ context.Context, userID, email string) (string, error) {
	f.lastUserID = userID
	f.lastEmail = email
	if f.checkoutErr != nil {
		return "", f.checkoutErr
	}
	return f.checkoutURL, nil
}

func (f *fakeProvider) WebhookHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func newTestHandler(t *testing.T, provider billing.Provider) *Handler {
	t.Helper()
	h, err := NewHandler(Config{Provider: provider})
	if err != nil {
		t.Fatalf("NewHandler failed: %v", err)
	}
	return h
}

func postCheckout(h *Handler, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/create-checkout-session", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	h.Routes().ServeHTTP(w, req)
	return w
}

func TestNewHandler_RequiresProvider(t *testing.T) {
	if _, err := NewHandler(Config{}); err == nil {
		t.Error("Expected error for missing provider")
	}
}

func TestCreateCheckoutSession_Success(t *testing.T) {
	provider := &fakeProvider{checkoutURL: "https://checkout.stripe.com/c/pay/cs_test_1"}
	h := newTestHandler(t, provider)

	w := postCheckout(h, `{"userId":"u1","email":"a@b.com"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", w.Code, w.Body.String())
	}

	var resp CheckoutResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if resp.URL != provider.checkoutURL {
		t.Errorf("URL mismatch: got %s", resp.URL)
	}
	if provider.lastUserID != "u1" || provider.lastEmail != "a@b.com" {
		t.Errorf("Provider received %q/%q", provider.lastUserID, provider.lastEmail)
	}
}

func TestCreateCheckoutSession_InvalidBody(t *testing.T) {
	h := newTestHandler(t, &fakeProvider{})

	w := postCheckout(h, `{not json`)
	if w.Code != http.StatusBadRequest {
		t.Errorf("Expected 400 for malformed JSON, got %d", w.Code)
	}
}

func TestCreateCheckoutSession_ValidationError(t *testing.T) {
	provider := &fakeProvider{
		checkoutErr: fmt.Errorf("%w: email must be a valid address", billing.ErrInvalidInput),
	}
	h := newTestHandler(t, provider)

	w := postCheckout(h, `{"userId":"u1","email":"not-an-email"}`)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("Expected 400, got %d", w.Code)
	}

	var resp ErrorResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if !strings.Contains(resp.Error, "email") {
		t.Errorf("Expected human-readable validation message, got %q", resp.Error)
	}
}

func TestCreateCheckoutSession_ProviderError_Generic(t *testing.T) {
	provider := &fakeProvider{checkoutErr: billing.ErrProviderAPIError}
	h := newTestHandler(t, provider)

	w := postCheckout(h, `{"userId":"u1","email":"a@b.com"}`)
	if w.Code != http.StatusInternalServerError {
		t.Fatalf("Expected 500, got %d", w.Code)
	}

	var resp ErrorResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	// Provider internals must never leak to the client.
	if strings.Contains(strings.ToLower(resp.Error), "stripe") {
		t.Errorf("Provider detail leaked to client: %q", resp.Error)
	}
}

func TestCreateCheckoutSession_UnexpectedError(t *testing.T) {
	provider := &fakeProvider{checkoutErr: fmt.Errorf("pool exhausted")}
	h := newTestHandler(t, provider)

	w := postCheckout(h, `{"userId":"u1","email":"a@b.com"}`)
	if w.Code != http.StatusInternalServerError {
		t.Fatalf("Expected 500, got %d", w.Code)
	}
	if strings.Contains(w.Body.String(), "pool exhausted") {
		t.Errorf("Internal error detail leaked: %s", w.Body.String())
	}
}

func TestWebhookRoute_MountedRaw(t *testing.T) {
	h := newTestHandler(t, &fakeProvider{})

	req := httptest.NewRequest(http.MethodPost, "/webhook", strings.NewReader(`{"raw":"bytes"}`))
	w := httptest.NewRecorder()
	h.Routes().ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("Expected webhook handler to be reachable, got %d", w.Code)
	}
}

func TestHealthHandler(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	w := httptest.NewRecorder()
	HealthHandler(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", w.Code)
	}
	var resp map[string]bool
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if !resp["ok"] {
		t.Errorf("Expected ok=true, got %s", w.Body.String())
	}
}

func TestRecoverer_ConvertsPanicToGeneric500(t *testing.T) {
	r := chi.NewRouter()
	r.Use(Recoverer(zerolog.Nop()))
	r.Get("/boom", func(http.ResponseWriter, *http.Request) {
		panic("sensitive internal state")
	})

	req := httptest.NewRequest(http.MethodGet, "/boom", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusInternalServerError {
		t.Fatalf("Expected 500, got %d", w.Code)
	}
	if strings.Contains(w.Body.String(), "sensitive") {
		t.Errorf("Panic detail leaked: %s", w.Body.String())
	}
}
