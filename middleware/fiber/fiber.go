// Package fiber provides Fiber middleware that gates routes on the premium
// entitlement.
package fiber

import (
	"github.com/gofiber/fiber/v2"

	"github.com/startupprice/billingd/pkg/entitlement"
)

// UserIDExtractor extracts the user ID from a Fiber context.
// Return empty string if the user is not authenticated.
type UserIDExtractor func(c *fiber.Ctx) string

// Config holds middleware configuration.
type Config struct {
	// Store is the entitlement store (required).
	Store entitlement.Store

	// GetUserID extracts user ID from the context (required).
	GetUserID UserIDExtractor

	// OnNotPremium is called when the user holds no premium entitlement.
	// If nil, returns 403 Forbidden.
	OnNotPremium func(c *fiber.Ctx) error

	// OnUnauthorized is called when the user is not authenticated.
	// If nil, returns 401 Unauthorized.
	OnUnauthorized func(c *fiber.Ctx) error

	// OnError is called when the store lookup fails.
	// If nil, returns 500 Internal Server Error.
	OnError func(c *fiber.Ctx, err error) error
}

// RequirePremium creates a Fiber middleware that admits only premium users.
func RequirePremium(config Config) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID := config.GetUserID(c)
		if userID == "" {
			if config.OnUnauthorized != nil {
				return config.OnUnauthorized(c)
			}
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "unauthorized"})
		}

		premium, err := entitlement.IsPremium(c.UserContext(), config.Store, userID)
		if err != nil {
			if config.OnError != nil {
				return config.OnError(c, err)
			}
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal server error"})
		}
		if !premium {
			if config.OnNotPremium != nil {
				return config.OnNotPremium(c)
			}
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "premium subscription required"})
		}

		return c.Next()
	}
}

// FromHeader returns a UserIDExtractor that reads a header value.
func FromHeader(headerName string) UserIDExtractor {
	return func(c *fiber.Ctx) string {
		return c.Get(headerName)
	}
}
