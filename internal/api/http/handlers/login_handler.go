package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/auth-service/internal/api/dto"
	"github.com/spec-kit/auth-service/internal/service"
	apperrors "github.com/spec-kit/auth-service/pkg/util"
)

// LoginHandler exposes the credential login endpoint.
type LoginHandler struct {
	auth *service.AuthService
}

// NewLoginHandler constructs handler.
func NewLoginHandler(authService *service.AuthService) *LoginHandler {
	return &LoginHandler{auth: authService}
}

// Login handles POST /login. On success the body is the JSON-encoded token string.
func (h *LoginHandler) Login(c *fiber.Ctx) error {
	if !c.Is("json") {
		return apperrors.NewValidationError("invalid payload")
	}
	var req dto.LoginRequest
	if err := c.BodyParser(&req); err != nil || !req.Valid() {
		return apperrors.NewValidationError("invalid payload")
	}

	token, err := h.auth.Login(c.UserContext(), *req.Username, *req.Password)
	if err != nil {
		return err
	}
	return c.JSON(token.Signed)
}
