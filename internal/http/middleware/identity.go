package middleware

import (
	"github.com/gofiber/fiber/v2"
)

const (
	// UserIDHeader carries the authenticated user's ID, set by the identity
	// gateway in front of this service. The service trusts it as-is;
	// authentication itself happens upstream.
	UserIDHeader = "X-User-ID"
	// UserIDLocalKey is the context locals key for the caller's user ID.
	UserIDLocalKey = "user_id"
)

// Identity copies the caller's user ID from the gateway header into context
// locals. Requests without the header pass through anonymously; routes that
// need a caller enforce it with RequireUser.
func Identity() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if id := c.Get(UserIDHeader); id != "" {
			c.Locals(UserIDLocalKey, id)
		}
		return c.Next()
	}
}

// UserID returns the caller's user ID from context locals, or "" for an
// anonymous request.
func UserID(c *fiber.Ctx) string {
	id, _ := c.Locals(UserIDLocalKey).(string)
	return id
}

// RequireUser rejects anonymous requests before they reach the handler.
func RequireUser() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if UserID(c) == "" {
			return fiber.NewError(fiber.StatusUnauthorized, "missing "+UserIDHeader+" header")
		}
		return c.Next()
	}
}
