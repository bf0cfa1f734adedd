package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/nvron-auth/internal/api/dto"
	"github.com/spec-kit/nvron-auth/internal/auth"
	"github.com/spec-kit/nvron-auth/internal/service"
	apperrors "github.com/spec-kit/nvron-auth/pkg/util"
)

// AuthHandler exposes the login endpoint.
type AuthHandler struct {
	issuer    *service.CredentialIssuer
	addresses auth.AddressExtractor
}

// NewAuthHandler constructs handler.
func NewAuthHandler(issuer *service.CredentialIssuer, addresses auth.AddressExtractor) *AuthHandler {
	return &AuthHandler{issuer: issuer, addresses: addresses}
}

// Login handles POST /api/login.
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req dto.LoginRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&req); err != nil {
			return apperrors.NewValidationError("invalid payload", nil)
		}
	}

	issued, err := h.issuer.Issue(c.UserContext(), req.Username, req.Password, h.addresses.Extract(c))
	if err != nil {
		return auth.ToDomainError(err)
	}

	return c.JSON(dto.LoginResponse{
		Token:     issued.Token,
		Message:   "Login successful.",
		ExpiresAt: issued.Credential.ExpiresAt,
	})
}
