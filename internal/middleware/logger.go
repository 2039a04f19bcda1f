package middleware

import (
	"fmt"
	"runtime/debug"
	"sync/atomic"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/NaufalAlfiR/task-management-system/internal/apperrors"
	"github.com/NaufalAlfiR/task-management-system/pkg/logger"
)

var requestsTotal uint64

// RequestsTotal reports how many requests the process has served. Feeds the
// /metrics probe.
func RequestsTotal() uint64 {
	return atomic.LoadUint64(&requestsTotal)
}

// ErrorHandler recovers panics into a 500 envelope and logs every incoming
// request.
func ErrorHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		atomic.AddUint64(&requestsTotal, 1)

		defer func() {
			if r := recover(); r != nil {
				errMsg := fmt.Sprintf("Recovered from panic: %v", r)
				stack := string(debug.Stack())
				logger.ErrorLogger.Error(errMsg, zap.String("stack", stack))
				c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
					"success": false,
					"error": fiber.Map{
						"code":    apperrors.CodeInternal,
						"message": "Internal server error",
					},
				})
			}
		}()

		logger.RequestLogger.Info("Incoming request",
			zap.String("method", c.Method()),
			zap.String("url", c.OriginalURL()),
		)
		return c.Next()
	}
}
