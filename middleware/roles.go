// middleware/roles.go
package middleware

import (
	"github.com/gofiber/fiber/v2"
)

// RequireRoles gates a route on the closed role set resolved by
// AuthMiddleware. Declaring required roles at the route is the single
// authorization gate; handlers never re-derive group membership.
func RequireRoles(roles ...string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		role, ok := c.Locals("user_role").(string)
		if !ok || role == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "missing role information",
			})
		}
		for _, allowed := range roles {
			if role == allowed {
				return c.Next()
			}
		}
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
			"error": "you are not authorized to access this resource",
		})
	}
}
