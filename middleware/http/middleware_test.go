package http

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/startupprice/billingd/pkg/entitlement"
	"github.com/startupprice/billingd/storage/memory"
)

type failingStore struct{}

func (failingStore) UpsertPremium(context.Context, string, string) error { return nil }
func (failingStore) Get(context.Context, string) (*entitlement.Record, error) {
	return nil, errors.New("store unavailable")
}
func (failingStore) Delete(context.Context, string) error { return nil }
func (failingStore) Clear(context.Context) error          { return nil }

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})
}

func doRequest(mw func(http.Handler) http.Handler, userID string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/premium", nil)
	if userID != "" {
		req.Header.Set("X-User-ID", userID)
	}
	w := httptest.NewRecorder()
	mw(okHandler()).ServeHTTP(w, req)
	return w
}

func TestRequirePremium_AllowsPremiumUser(t *testing.T) {
	store := memory.New()
	_ = store.UpsertPremium(context.Background(), "u1", "a@b.com")

	mw := RequirePremium(Config{Store: store, GetUserID: FromHeader("X-User-ID")})

	w := doRequest(mw, "u1")
	if w.Code != http.StatusOK {
		t.Errorf("Expected 200 for premium user, got %d", w.Code)
	}
}

func TestRequirePremium_RejectsNonPremiumUser(t *testing.T) {
	mw := RequirePremium(Config{Store: memory.New(), GetUserID: FromHeader("X-User-ID")})

	w := doRequest(mw, "u1")
	if w.Code != http.StatusForbidden {
		t.Errorf("Expected 403 for non-premium user, got %d", w.Code)
	}
}

func TestRequirePremium_RejectsAnonymous(t *testing.T) {
	mw := RequirePremium(Config{Store: memory.New(), GetUserID: FromHeader("X-User-ID")})

	w := doRequest(mw, "")
	if w.Code != http.StatusUnauthorized {
		t.Errorf("Expected 401 without user ID, got %d", w.Code)
	}
}

func TestRequirePremium_StoreError(t *testing.T) {
	mw := RequirePremium(Config{Store: failingStore{}, GetUserID: FromHeader("X-User-ID")})

	w := doRequest(mw, "u1")
	if w.Code != http.StatusInternalServerError {
		t.Errorf("Expected 500 on store failure, got %d", w.Code)
	}
}

func TestRequirePremium_CustomHooks(t *testing.T) {
	var notPremiumCalled bool
	mw := RequirePremium(Config{
		Store:     memory.New(),
		GetUserID: FromHeader("X-User-ID"),
		OnNotPremium: func(w http.ResponseWriter, _ *http.Request) {
			notPremiumCalled = true
			w.WriteHeader(http.StatusPaymentRequired)
		},
	})

	w := doRequest(mw, "u1")
	if !notPremiumCalled {
		t.Error("Expected OnNotPremium hook to be called")
	}
	if w.Code != http.StatusPaymentRequired {
		t.Errorf("Expected 402 from custom hook, got %d", w.Code)
	}
}

func TestFromContext(t *testing.T) {
	type ctxKey string
	extractor := FromContext(ctxKey("user"))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if got := extractor(req); got != "" {
		t.Errorf("Expected empty user ID without context value, got %q", got)
	}

	req = req.WithContext(context.WithValue(req.Context(), ctxKey("user"), "u1"))
	if got := extractor(req); got != "u1" {
		t.Errorf("Expected u1 from context, got %q", got)
	}
}
