package handlers

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/NaufalAlfiR/task-management-system/internal/apperrors"
	"github.com/NaufalAlfiR/task-management-system/internal/config"
	"github.com/NaufalAlfiR/task-management-system/internal/models"
	"github.com/NaufalAlfiR/task-management-system/internal/store"
	"github.com/NaufalAlfiR/task-management-system/pkg/logger"
	"github.com/NaufalAlfiR/task-management-system/pkg/password"
	"github.com/NaufalAlfiR/task-management-system/pkg/token"
)

// AuthHandler serves registration, login, and the profile endpoint.
type AuthHandler struct {
	Users  store.UserStore
	Tokens *token.Service
}

func NewAuthHandler(users store.UserStore, tokens *token.Service) *AuthHandler {
	return &AuthHandler{Users: users, Tokens: tokens}
}

func (h *AuthHandler) Register(c *fiber.Ctx) error {
	type RegisterRequest struct {
		Username string `json:"username" validate:"required,min=3,excludesall=@?"`
		Email    string `json:"email" validate:"required,email"`
		Password string `json:"password" validate:"required"`
	}

	var req RegisterRequest
	if err := c.BodyParser(&req); err != nil {
		logger.ErrorLogger.Error("Bad request in register", zap.Error(err))
		return respondErr(c, fiber.StatusBadRequest, apperrors.CodeValidation, "Bad request")
	}

	if err := config.Validate.Struct(req); err != nil {
		logger.AuditLogger.Warn("Validation error during register", zap.Error(err))
		return respondErrDetails(c, fiber.StatusBadRequest, apperrors.CodeValidation,
			"Validation error", err.Error())
	}

	// Password strength is checked before hashing; the failure lists every
	// rule the password broke.
	if reasons := password.CheckStrength(req.Password); len(reasons) > 0 {
		logger.AuditLogger.Warn("Weak password during register",
			zap.String("username", req.Username))
		return respondErrDetails(c, fiber.StatusBadRequest, apperrors.CodeValidation,
			"Password too weak", reasons)
	}

	hashed, err := password.Hash(req.Password)
	if err != nil {
		logger.ErrorLogger.Error("Error hashing password", zap.Error(err))
		return respondErr(c, fiber.StatusInternalServerError, apperrors.CodeInternal, "Error hashing password")
	}

	user := models.User{
		Username:     req.Username,
		Email:        req.Email,
		PasswordHash: hashed,
		Active:       true,
	}
	if err := h.Users.Create(c.Context(), &user); err != nil {
		if errors.Is(err, apperrors.ErrDuplicateEmail) || errors.Is(err, apperrors.ErrDuplicateUsername) {
			logger.SecurityLogger.Warn("Duplicate registration",
				zap.String("username", req.Username), zap.String("email", req.Email))
		}
		return respondStoreErr(c, err, "creating user")
	}

	logger.AuditLogger.Info("User registered successfully", zap.Int("user_id", user.ID))
	return respondOK(c, fiber.StatusCreated, "User created successfully", fiber.Map{
		"id":       user.ID,
		"username": user.Username,
		"email":    user.Email,
	})
}

func (h *AuthHandler) Login(c *fiber.Ctx) error {
	type LoginRequest struct {
		Username string `json:"username" validate:"required"`
		Password string `json:"password" validate:"required"`
	}

	var req LoginRequest
	if err := c.BodyParser(&req); err != nil {
		logger.ErrorLogger.Error("Bad request in login", zap.Error(err))
		return respondErr(c, fiber.StatusBadRequest, apperrors.CodeValidation, "Bad request")
	}

	if err := config.Validate.Struct(req); err != nil {
		logger.AuditLogger.Warn("Validation error during login", zap.Error(err))
		return respondErrDetails(c, fiber.StatusBadRequest, apperrors.CodeValidation,
			"Validation error", err.Error())
	}

	user, err := h.Users.GetByUsername(c.Context(), req.Username)
	if err != nil {
		logger.SecurityLogger.Warn("Login for unknown user", zap.String("username", req.Username))
		return respondErr(c, fiber.StatusUnauthorized, apperrors.CodeUnauthorized, "Invalid credentials")
	}

	if !password.Verify(req.Password, user.PasswordHash) {
		logger.SecurityLogger.Warn("Invalid password", zap.String("username", req.Username))
		return respondErr(c, fiber.StatusUnauthorized, apperrors.CodeUnauthorized, "Invalid credentials")
	}

	// Correct credentials against a deactivated account are forbidden, not
	// unauthorized.
	if !user.Active {
		logger.SecurityLogger.Warn("Login for deactivated account", zap.Int("user_id", user.ID))
		return respondErr(c, fiber.StatusForbidden, apperrors.CodeForbidden, "Account is deactivated")
	}

	now := time.Now()
	if err := h.Users.RecordLogin(c.Context(), user.ID, now); err != nil {
		logger.ErrorLogger.Error("Error recording login", zap.Error(err))
	}
	user.LastLoginAt = &now

	tokenString, err := h.Tokens.Issue(user.ID, user.Username)
	if err != nil {
		logger.ErrorLogger.Error("Error generating token", zap.Error(err))
		return respondErr(c, fiber.StatusInternalServerError, apperrors.CodeInternal, "Error generating token")
	}

	logger.AuditLogger.Info("Login success", zap.Int("user_id", user.ID))
	return respondOK(c, fiber.StatusOK, "Login success", fiber.Map{
		"token": tokenString,
		"user":  user,
	})
}
