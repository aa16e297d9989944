package auth

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/helpdesk/internal/domain"
	apperrors "github.com/spec-kit/helpdesk/pkg/util"
)

// RequirePermission gates a route on one resource/action bit.
func RequirePermission(resource domain.Resource, action domain.Action) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ac, _ := FromContext(c)
		if err := Require(ac, resource, action); err != nil {
			return err
		}
		return c.Next()
	}
}

// RequireAuthenticated ensures the AuthMiddleware ran and found a caller.
func RequireAuthenticated() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if ac, ok := FromContext(c); !ok || ac.Principal == nil {
			return apperrors.NewUnauthorized("authentication required")
		}
		return c.Next()
	}
}
