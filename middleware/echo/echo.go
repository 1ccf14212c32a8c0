// Package echo provides Echo middleware that gates routes on the premium
// entitlement.
package echo

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/startupprice/billingd/pkg/entitlement"
)

// UserIDExtractor extracts the user ID from an Echo context.
// Return empty string if the user is not authenticated.
type UserIDExtractor func(c echo.Context) string

// Config holds middleware configuration.
type Config struct {
	// Store is the entitlement store (required).
	Store entitlement.Store

	// GetUserID extracts user ID from the context (required).
	GetUserID UserIDExtractor

	// OnNotPremium is called when the user holds no premium entitlement.
	// If nil, returns 403 Forbidden.
	OnNotPremium func(c echo.Context) error

	// OnUnauthorized is called when the user is not authenticated.
	// If nil, returns 401 Unauthorized.
	OnUnauthorized func(c echo.Context) error

	// OnError is called when the store lookup fails.
	// If nil, returns 500 Internal Server Error.
	OnError func(c echo.Context, err error) error
}

// RequirePremium creates an Echo middleware that admits only premium users.
func RequirePremium(config Config) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			userID := config.GetUserID(c)
			if userID == "" {
				if config.OnUnauthorized != nil {
					return config.OnUnauthorized(c)
				}
				return c.JSON(http.StatusUnauthorized, map[string]string{"error": "unauthorized"})
			}

			premium, err := entitlement.IsPremium(c.Request().Context(), config.Store, userID)
			if err != nil {
				if config.OnError != nil {
					return config.OnError(c, err)
				}
				return c.JSON(http.StatusInternalServerError, map[string]string{"error": "internal server error"})
			}
			if !premium {
				if config.OnNotPremium != nil {
					return config.OnNotPremium(c)
				}
				return c.JSON(http.StatusForbidden, map[string]string{"error": "premium subscription required"})
			}

			return next(c)
		}
	}
}

// FromHeader returns a UserIDExtractor that reads a header value.
func FromHeader(headerName string) UserIDExtractor {
	return func(c echo.Context) string {
		return c.Request().Header.Get(headerName)
	}
}
