package middleware

import "github.com/gofiber/fiber/v2"

// CORS headers used by the extractor endpoints. The gateway is deliberately
// open to any origin; what varies per route group is the allowed method set.
const (
	corsAllowOrigin  = "*"
	corsAllowHeaders = "Content-Type, Authorization, X-Requested-With"
)

// CORS sets the cross-origin headers on every response passing through, and
// answers OPTIONS preflights with 200. allowMethods is the comma-separated
// method list for the route group (e.g. "POST, OPTIONS" for extraction,
// "GET, OPTIONS" for results).
func CORS(allowMethods string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		c.Set("Access-Control-Allow-Origin", corsAllowOrigin)
		c.Set("Access-Control-Allow-Methods", allowMethods)
		c.Set("Access-Control-Allow-Headers", corsAllowHeaders)

		if c.Method() == fiber.MethodOptions {
			return c.SendStatus(fiber.StatusOK)
		}
		return c.Next()
	}
}
