// Package http provides HTTP middleware that gates routes on the premium
// entitlement.
package http

import (
	"net/http"

	"github.com/startupprice/billingd/pkg/entitlement"
)

// UserIDExtractor extracts the user ID from an HTTP request.
// Return empty string if the user is not authenticated.
type UserIDExtractor func(r *http.Request) string

// Config holds middleware configuration.
type Config struct {
	// Store is the entitlement store (required).
	Store entitlement.Store

	// GetUserID extracts user ID from the request (required).
	GetUserID UserIDExtractor

	// OnNotPremium is called when the user holds no premium entitlement.
	// If nil, returns 403 Forbidden.
	OnNotPremium func(w http.ResponseWriter, r *http.Request)

	// OnUnauthorized is called when the user is not authenticated.
	// If nil, returns 401 Unauthorized.
	OnUnauthorized func(w http.ResponseWriter, r *http.Request)

	// OnError is called when the store lookup fails.
	// If nil, returns 500 Internal Server Error.
	OnError func(w http.ResponseWriter, r *http.Request, err error)
}

// RequirePremium creates an HTTP middleware that admits only premium users.
func RequirePremium(config Config) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			userID := config.GetUserID(r)
			if userID == "" {
				if config.OnUnauthorized != nil {
					config.OnUnauthorized(w, r)
				} else {
					http.Error(w, "Unauthorized", http.StatusUnauthorized)
				}
				return
			}

			premium, err := entitlement.IsPremium(r.Context(), config.Store, userID)
			if err != nil {
				if config.OnError != nil {
					config.OnError(w, r, err)
				} else {
					http.Error(w, "Internal Server Error", http.StatusInternalServerError)
				}
				return
			}
			if !premium {
				if config.OnNotPremium != nil {
					config.OnNotPremium(w, r)
				} else {
					http.Error(w, "Premium subscription required", http.StatusForbidden)
				}
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// FromHeader returns a UserIDExtractor that reads a header value.
func FromHeader(headerName string) UserIDExtractor {
	return func(r *http.Request) string {
		return r.Header.Get(headerName)
	}
}

// FromContext returns a UserIDExtractor that reads the request context.
func FromContext(key interface{}) UserIDExtractor {
	return func(r *http.Request) string {
		if userID, ok := r.Context().Value(key).(string); ok {
			return userID
		}
		return ""
	}
}
