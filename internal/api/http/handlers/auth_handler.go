package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/threaddesk/threaddesk/internal/api/dto"
	"github.com/threaddesk/threaddesk/internal/auth"
	"github.com/threaddesk/threaddesk/internal/config"
	apperrors "github.com/threaddesk/threaddesk/pkg/util"
)

// AuthHandler exposes the admin login endpoint. There is a single configured
// admin account; its credentials come from the environment.
type AuthHandler struct {
	cfg    config.AuthConfig
	tokens *auth.TokenManager
}

// NewAuthHandler constructs handler.
func NewAuthHandler(cfg config.AuthConfig, tokens *auth.TokenManager) *AuthHandler {
	return &AuthHandler{cfg: cfg, tokens: tokens}
}

// Login handles POST /auth/login.
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req dto.AuthLoginRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, "invalid payload")
	}
	if req.Username == "" || req.Password == "" {
		return fiber.NewError(http.StatusBadRequest, "username and password required")
	}

	if h.cfg.AdminPasswordHash == "" {
		return apperrors.NewUnauthenticated("admin login disabled")
	}
	if !auth.VerifyAdminCredentials(h.cfg.AdminUser, h.cfg.AdminPasswordHash, req.Username, req.Password) {
		return apperrors.NewUnauthenticated("invalid credentials")
	}

	token, expiresAt, err := h.tokens.GenerateToken(req.Username)
	if err != nil {
		return apperrors.NewInternalError(err)
	}

	return c.JSON(fiber.Map{
		"data": dto.AuthResponse{Token: token, ExpiresAt: expiresAt},
	})
}
