package middleware

import (
	"log/slog"

	"catalog/internal/logger"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/gofiber/fiber/v2/utils"
)

// RequestLogger derives a logger tagged with the request id and method/path
// and makes it available through the request's user context.
func RequestLogger(base *slog.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		l := base.With(
			slog.String("method", c.Method()),
			slog.String("path", utils.CopyString(c.Path())),
		)
		if id, ok := c.Locals(requestid.ConfigDefault.ContextKey).(string); ok && id != "" {
			l = l.With(slog.String("request_id", id))
		}
		c.SetUserContext(logger.WithContext(c.UserContext(), l))
		return c.Next()
	}
}
