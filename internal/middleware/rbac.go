package middleware

import (
	"github.com/gofiber/fiber/v2"

	"ops-journal/internal/domain"
)

func RequireRole(required domain.Role) fiber.Handler {
	return func(c *fiber.Ctx) error {
		user := GetCurrentUser(c)
		if user == nil {
			return Unauthorized("User not found")
		}

		if !user.HasRole(required) {
			return fiber.NewError(fiber.StatusForbidden, "Insufficient permissions for this operation")
		}

		return c.Next()
	}
}
