package auth

import (
	"context"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/event-gate/internal/domain"
	apperrors "github.com/spec-kit/event-gate/pkg/util"
)

const identityKey = "auth_identity"

// Authenticator resolves a raw session token into an identity.
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (*domain.Identity, error)
}

// AuthMiddleware validates session cookies and loads identities.
type AuthMiddleware struct {
	authn      Authenticator
	cookieName string
}

// NewAuthMiddleware constructs middleware.
func NewAuthMiddleware(authn Authenticator, cookieName string) *AuthMiddleware {
	return &AuthMiddleware{authn: authn, cookieName: cookieName}
}

// Handle enforces authentication for protected routes. The session cookie is
// authoritative; a bearer header is accepted for non-browser gate scanners.
func (m *AuthMiddleware) Handle(c *fiber.Ctx) error {
	token := c.Cookies(m.cookieName)
	if token == "" {
		token = bearerToken(c.Get(fiber.HeaderAuthorization))
	}
	if token == "" {
		return apperrors.NewUnauthorized("access denied, no token provided")
	}

	identity, err := m.authn.Authenticate(c.UserContext(), token)
	if err != nil {
		return apperrors.MapError(err)
	}

	c.Locals(identityKey, identity)
	return c.Next()
}

func bearerToken(header string) string {
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}

// IdentityFromContext retrieves the authenticated identity.
func IdentityFromContext(c *fiber.Ctx) (*domain.Identity, bool) {
	val := c.Locals(identityKey)
	if val == nil {
		return nil, false
	}
	identity, ok := val.(*domain.Identity)
	return identity, ok && identity != nil && identity.User != nil
}
