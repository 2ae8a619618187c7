package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
)

const userIDKey = "userID"

// TokenVerifier resolves a bearer token to a user ID
type TokenVerifier interface {
	Verify(token string) (uint, error)
}

// RequireAuth rejects requests without a valid bearer token and stores the
// caller's user ID for handlers.
func RequireAuth(verifier TokenVerifier, logger *logrus.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		header := c.Get(fiber.HeaderAuthorization)
		scheme, token, ok := strings.Cut(header, " ")
		if !ok || !strings.EqualFold(scheme, "Bearer") || strings.TrimSpace(token) == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "missing bearer token"})
		}

		userID, err := verifier.Verify(strings.TrimSpace(token))
		if err != nil {
			logger.WithError(err).WithField("path", c.Path()).Debug("Rejected bearer token")
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "invalid or expired token"})
		}

		c.Locals(userIDKey, userID)
		return c.Next()
	}
}

// UserID returns the authenticated user, 0 on routes without RequireAuth
func UserID(c *fiber.Ctx) uint {
	userID, _ := c.Locals(userIDKey).(uint)
	return userID
}
