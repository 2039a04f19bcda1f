package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/NaufalAlfiR/task-management-system/internal/apperrors"
	"github.com/NaufalAlfiR/task-management-system/pkg/logger"
)

// All handlers answer the same JSON envelope:
// success: {"success": true, "message": ..., "data": ...}
// failure: {"success": false, "error": {"code": ..., "message": ..., "details"?: ...}}

func respondOK(c *fiber.Ctx, status int, message string, data interface{}) error {
	body := fiber.Map{
		"success": true,
		"message": message,
	}
	if data != nil {
		body["data"] = data
	}
	return c.Status(status).JSON(body)
}

func respondErr(c *fiber.Ctx, status int, code, message string) error {
	return c.Status(status).JSON(fiber.Map{
		"success": false,
		"error": fiber.Map{
			"code":    code,
			"message": message,
		},
	})
}

func respondErrDetails(c *fiber.Ctx, status int, code, message string, details interface{}) error {
	return c.Status(status).JSON(fiber.Map{
		"success": false,
		"error": fiber.Map{
			"code":    code,
			"message": message,
			"details": details,
		},
	})
}

// respondStoreErr maps storage sentinels onto the envelope, falling back to
// a logged 500 for anything unexpected.
func respondStoreErr(c *fiber.Ctx, err error, action string) error {
	switch {
	case errors.Is(err, apperrors.ErrNotFound):
		return respondErr(c, fiber.StatusNotFound, apperrors.CodeNotFound, "Resource not found")
	case errors.Is(err, apperrors.ErrInvalidTask):
		return respondErr(c, fiber.StatusBadRequest, apperrors.CodeValidation, "Invalid task data")
	case errors.Is(err, apperrors.ErrDuplicateEmail):
		return respondErr(c, fiber.StatusConflict, apperrors.CodeConflict, "Email already registered")
	case errors.Is(err, apperrors.ErrDuplicateUsername):
		return respondErr(c, fiber.StatusConflict, apperrors.CodeConflict, "Username already exists")
	default:
		logger.ErrorLogger.Error("Error "+action, zap.Error(err))
		return respondErr(c, fiber.StatusInternalServerError, apperrors.CodeInternal, "Error "+action)
	}
}

// identity reads the user id and username the auth middleware stored.
func identity(c *fiber.Ctx) (int, string) {
	return c.Locals("userID").(int), c.Locals("username").(string)
}
