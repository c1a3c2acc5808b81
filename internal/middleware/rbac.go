package middleware

import (
	"strings"

	"github.com/tndevelopers2024/medagg-crm-sub002/pkg/utils"

	"github.com/gofiber/fiber/v2"
)

const (
	RoleAdmin   = "admin"
	RoleManager = "manager"
)

// RequireRole lets the request through when the caller holds any of roles.
// It must run after AuthMiddleware.
func RequireRole(roles ...string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		claims, ok := c.Locals(utils.UserClaimsKey).(*utils.UserClaims)
		if !ok {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "Unauthorized",
			})
		}

		for _, have := range claims.Roles {
			for _, want := range roles {
				if strings.EqualFold(have, want) {
					return c.Next()
				}
			}
		}

		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
			"error": "Forbidden: Insufficient permissions",
		})
	}
}
