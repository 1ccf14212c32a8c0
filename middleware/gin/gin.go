// Package gin provides Gin middleware that gates routes on the premium
// entitlement.
package gin

import (
	"net/http"

	gongin "github.com/gin-gonic/gin"

	"github.com/startupprice/billingd/pkg/entitlement"
)

// UserIDExtractor extracts the user ID from a Gin context.
// Return empty string if the user is not authenticated.
type UserIDExtractor func(c *gongin.Context) string

// Config holds middleware configuration.
type Config struct {
	// Store is the entitlement store (required).
	Store entitlement.Store

	// GetUserID extracts user ID from the context (required).
	GetUserID UserIDExtractor

	// OnNotPremium is called when the user holds no premium entitlement.
	// If nil, aborts with 403 Forbidden.
	OnNotPremium func(c *gongin.Context)

	// OnUnauthorized is called when the user is not authenticated.
	// If nil, aborts with 401 Unauthorized.
	OnUnauthorized func(c *gongin.Context)

	// OnError is called when the store lookup fails.
	// If nil, aborts with 500 Internal Server Error.
	OnError func(c *gongin.Context, err error)
}

// RequirePremium creates a Gin middleware that admits only premium users.
func RequirePremium(config Config) gongin.HandlerFunc {
	return func(c *gongin.Context) {
		userID := config.GetUserID(c)
		if userID == "" {
			if config.OnUnauthorized != nil {
				config.OnUnauthorized(c)
			} else {
				c.AbortWithStatusJSON(http.StatusUnauthorized, gongin.H{"error": "unauthorized"})
			}
			return
		}

		premium, err := entitlement.IsPremium(c.Request.Context(), config.Store, userID)
		if err != nil {
			if config.OnError != nil {
				config.OnError(c, err)
			} else {
				c.AbortWithStatusJSON(http.StatusInternalServerError, gongin.H{"error": "internal server error"})
			}
			return
		}
		if !premium {
			if config.OnNotPremium != nil {
				config.OnNotPremium(c)
			} else {
				c.AbortWithStatusJSON(http.StatusForbidden, gongin.H{"error": "premium subscription required"})
			}
			return
		}

		c.Next()
	}
}

// FromHeader returns a UserIDExtractor that reads a header value.
func FromHeader(headerName string) UserIDExtractor {
	return func(c *gongin.Context) string {
		return c.GetHeader(headerName)
	}
}
