package auth

import (
	"fmt"
	"net/http"

	"github.com/spec-kit/helpdesk/internal/domain"
	apperrors "github.com/spec-kit/helpdesk/pkg/util"
)

// Check is the authorization gate: the stored bit for resource/action on the
// caller's role. Missing caller, missing role or unknown pair all deny.
func Check(ac *domain.AuthContext, resource domain.Resource, action domain.Action) bool {
	if ac == nil || ac.Principal == nil || ac.Role == nil {
		return false
	}
	return ac.Role.Permissions.Allowed(resource, action)
}

// Require translates a denied Check into an error: authentication when there is
// no caller, authorization otherwise.
func Require(ac *domain.AuthContext, resource domain.Resource, action domain.Action) error {
	if ac == nil || ac.Principal == nil {
		return apperrors.NewUnauthorized("authentication required")
	}
	if !Check(ac, resource, action) {
		return apperrors.NewDomainError(apperrors.KindAuthorization, apperrors.CodeForbidden,
			fmt.Sprintf("missing permission %s.%s", resource, action), http.StatusForbidden,
			map[string]any{"resource": resource, "action": action})
	}
	return nil
}

// RequireAll succeeds only when every listed action on resource is granted.
func RequireAll(ac *domain.AuthContext, resource domain.Resource, actions ...domain.Action) error {
	for _, action := range actions {
		if err := Require(ac, resource, action); err != nil {
			return err
		}
	}
	return nil
}
