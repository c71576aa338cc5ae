package middleware

import (
	"github.com/gofiber/fiber/v2"

	"github.com/bit2byte/mentorhub-api/internal/models"
	"github.com/bit2byte/mentorhub-api/internal/utils"
)

// RequireRole guards a route with a typed allow-set. The role was parsed and
// validated at token time, so the check is a plain membership test over the
// Role enum rather than a comparison of raw claim strings.
func RequireRole(allowed ...models.Role) fiber.Handler {
	return func(c *fiber.Ctx) error {
		role, ok := c.Locals(LocalUserRole).(models.Role)
		if !ok {
			return utils.SendError(c, fiber.StatusUnauthorized, "authentication required")
		}

		if !role.OneOf(allowed...) {
			return utils.SendError(c, fiber.StatusForbidden, "insufficient permissions")
		}

		return c.Next()
	}
}
