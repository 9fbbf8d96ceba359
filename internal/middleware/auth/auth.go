package auth

import (
	"crypto/subtle"
	"strings"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/policylens/backend/pkg/logger"
)

// Middleware enforces the static bearer token on protected routes.
func Middleware(token string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		header := c.Get(fiber.HeaderAuthorization)
		if header == "" {
			return unauthorized(c, "Missing Authorization header")
		}

		const prefix = "Bearer "
		if !strings.HasPrefix(header, prefix) {
			return unauthorized(c, "Authorization header must use Bearer scheme")
		}

		presented := strings.TrimSpace(header[len(prefix):])
		if subtle.ConstantTimeCompare([]byte(presented), []byte(token)) != 1 {
			logger.Warn("Invalid bearer token",
				zap.String("ip", c.IP()),
				zap.String("path", c.Path()),
			)
			return unauthorized(c, "Invalid token")
		}

		return c.Next()
	}
}

func unauthorized(c *fiber.Ctx, msg string) error {
	return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
		"error": msg,
	})
}
