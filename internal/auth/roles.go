package auth

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/event-gate/internal/domain"
	apperrors "github.com/spec-kit/event-gate/pkg/util"
)

// IsAdmin is the authorization predicate: true iff the resolved user's
// stored admin flag is set.
func IsAdmin(identity *domain.Identity) bool {
	return identity.Subject() == domain.SubjectTypeAdmin
}

// RequireUser ensures an identity was loaded by AuthMiddleware.
func RequireUser() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if _, ok := IdentityFromContext(c); !ok {
			return apperrors.NewUnauthorized("authentication required")
		}
		return c.Next()
	}
}

// RequireAdmin rejects authenticated non-admins with 403.
func RequireAdmin() fiber.Handler {
	return func(c *fiber.Ctx) error {
		identity, ok := IdentityFromContext(c)
		if !ok {
			return apperrors.NewUnauthorized("authentication required")
		}
		if !IsAdmin(identity) {
			return apperrors.NewForbidden("access denied, admin privileges required")
		}
		return c.Next()
	}
}
