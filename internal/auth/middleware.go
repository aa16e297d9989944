package auth

import (
	"context"
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/helpdesk/internal/domain"
	apperrors "github.com/spec-kit/helpdesk/pkg/util"
)

const authContextKey = "auth_context"

// PrincipalLookup loads accounts by id.
type PrincipalLookup interface {
	GetByID(ctx context.Context, id string) (*domain.Principal, error)
}

// RoleLookup loads roles by id.
type RoleLookup interface {
	GetByID(ctx context.Context, id int64) (*domain.Role, error)
}

// AuthMiddleware validates bearer tokens and builds the AuthContext.
type AuthMiddleware struct {
	tokens     *TokenManager
	principals PrincipalLookup
	roles      RoleLookup
}

// NewAuthMiddleware constructs middleware.
func NewAuthMiddleware(tokens *TokenManager, principals PrincipalLookup, roles RoleLookup) *AuthMiddleware {
	return &AuthMiddleware{tokens: tokens, principals: principals, roles: roles}
}

// Handle enforces authentication for protected routes.
func (m *AuthMiddleware) Handle(c *fiber.Ctx) error {
	authHeader := c.Get(fiber.HeaderAuthorization)
	if authHeader == "" {
		return apperrors.NewUnauthorized("missing authorization header")
	}

	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || strings.TrimSpace(parts[1]) == "" {
		return apperrors.NewUnauthorized("invalid authorization header")
	}

	ac, err := m.Authenticate(c.UserContext(), strings.TrimSpace(parts[1]))
	if err != nil {
		return err
	}

	c.Locals(authContextKey, ac)
	return c.Next()
}

// Authenticate resolves a raw token to an AuthContext. The role is always read
// from the principal's current row, not from the token.
func (m *AuthMiddleware) Authenticate(ctx context.Context, token string) (*domain.AuthContext, error) {
	cred, err := m.tokens.Verify(token)
	if err != nil {
		if errors.Is(err, ErrCredentialExpired) {
			return nil, apperrors.NewAuthenticationError(apperrors.CodeCredentialExpired, "credential expired")
		}
		return nil, apperrors.NewAuthenticationError(apperrors.CodeCredentialInvalid, "credential invalid")
	}

	principal, err := m.principals.GetByID(ctx, cred.PrincipalID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewAuthenticationError(apperrors.CodePrincipalNotFound, "principal not found")
		}
		return nil, apperrors.MapError(err)
	}
	if !principal.Active {
		return nil, apperrors.NewUnauthorized("account disabled")
	}

	role, err := m.roles.GetByID(ctx, principal.RoleID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			// A dangling role leaves the caller authenticated with no permissions.
			return &domain.AuthContext{Principal: principal}, nil
		}
		return nil, apperrors.MapError(err)
	}

	return &domain.AuthContext{Principal: principal, Role: role}, nil
}

// FromContext retrieves the authenticated caller.
func FromContext(c *fiber.Ctx) (*domain.AuthContext, bool) {
	val := c.Locals(authContextKey)
	if val == nil {
		return nil, false
	}
	ac, ok := val.(*domain.AuthContext)
	return ac, ok
}
