package domain

import "time"

// Principal is an account that can authenticate. It is never authorized directly;
// every decision goes through its Role.
type Principal struct {
	ID               string
	Name             string
	Email            string
	PasswordHash     string
	RoleID           int64
	RoleName         string
	Active           bool
	VerificationCode int
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// Verified reports whether the account has confirmed its email. A zero code is
// the only verified state.
func (p *Principal) Verified() bool {
	return p != nil && p.VerificationCode == 0
}

// AuthContext is the per-request principal derived from a verified credential.
type AuthContext struct {
	Principal *Principal
	Role      *Role
}

// Permissions returns the role's set, or a deny-all set when the context is incomplete.
func (a *AuthContext) Permissions() PermissionSet {
	if a == nil || a.Role == nil {
		return PermissionSet{}
	}
	return a.Role.Permissions
}

// ActorName is the display name used in notifications.
func (a *AuthContext) ActorName() string {
	if a == nil || a.Principal == nil {
		return ""
	}
	return a.Principal.Name
}
