package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/NaufalAlfiR/task-management-system/internal/apperrors"
	"github.com/NaufalAlfiR/task-management-system/pkg/logger"
	"github.com/NaufalAlfiR/task-management-system/pkg/token"
)

// Protected extracts and validates the bearer token. A missing or malformed
// Authorization header answers 401; a token that is present but invalid or
// expired answers 403. On success the decoded identity lands in Locals for
// the rest of the pipeline.
func Protected(tokens *token.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authHeader := c.Get("Authorization")
		if authHeader == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"success": false,
				"error": fiber.Map{
					"code":    apperrors.CodeUnauthorized,
					"message": "No token provided",
				},
			})
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || parts[0] != "Bearer" || parts[1] == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"success": false,
				"error": fiber.Map{
					"code":    apperrors.CodeUnauthorized,
					"message": "Invalid token format",
				},
			})
		}

		claims, err := tokens.Parse(parts[1])
		if err != nil {
			logger.SecurityLogger.Warn("Rejected bearer token",
				zap.String("path", c.Path()), zap.Error(err))
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
				"success": false,
				"error": fiber.Map{
					"code":    apperrors.CodeForbidden,
					"message": "Invalid or expired token",
				},
			})
		}

		c.Locals("userID", claims.UserID)
		c.Locals("username", claims.Username)
		return c.Next()
	}
}
