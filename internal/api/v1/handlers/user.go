package handlers

import (
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/NaufalAlfiR/task-management-system/pkg/logger"
)

// Profile returns the authenticated user's own record.
func (h *AuthHandler) Profile(c *fiber.Ctx) error {
	userID, _ := identity(c)

	user, err := h.Users.GetByID(c.Context(), userID)
	if err != nil {
		// The token referenced an id the store no longer knows.
		logger.SecurityLogger.Warn("Profile for unknown user", zap.Int("user_id", userID))
		return respondStoreErr(c, err, "fetching profile")
	}

	return respondOK(c, fiber.StatusOK, "Profile fetched successfully", user)
}
