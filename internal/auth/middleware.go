package auth

import (
	"context"
	"strings"

	"github.com/gofiber/fiber/v2"
)

const claimsKey = "auth_claims"

// Verifier validates a raw credential presented from an address.
type Verifier interface {
	Verify(ctx context.Context, raw, presentedAddress string) (*Claims, error)
}

// AuthMiddleware validates bearer tokens and exposes their claims.
type AuthMiddleware struct {
	verifier  Verifier
	addresses AddressExtractor
}

// NewAuthMiddleware constructs middleware.
func NewAuthMiddleware(verifier Verifier, addresses AddressExtractor) *AuthMiddleware {
	return &AuthMiddleware{verifier: verifier, addresses: addresses}
}

// Handle enforces authentication for protected routes.
func (m *AuthMiddleware) Handle(c *fiber.Ctx) error {
	raw := BearerToken(c.Get(fiber.HeaderAuthorization))
	claims, err := m.verifier.Verify(c.UserContext(), raw, m.addresses.Extract(c))
	if err != nil {
		return ToDomainError(err)
	}

	c.Locals(claimsKey, claims)
	return c.Next()
}

// BearerToken extracts the token from an Authorization header value. Any
// other scheme yields "".
func BearerToken(header string) string {
	parts := strings.SplitN(strings.TrimSpace(header), " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}

// ClaimsFromContext retrieves the verified claims.
func ClaimsFromContext(c *fiber.Ctx) (*Claims, bool) {
	val := c.Locals(claimsKey)
	if val == nil {
		return nil, false
	}
	claims, ok := val.(*Claims)
	return claims, ok
}
