package middleware

import (
	"catalog/internal/auth"

	"github.com/gofiber/fiber/v2"
)

// Authorize rejects the request before the handler runs unless the caller
// satisfies tier.
func Authorize(tier auth.Tier) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if err := auth.Authorize(PrincipalFrom(c), tier); err != nil {
			return err
		}
		return c.Next()
	}
}
