package dto

import (
	"time"

	"github.com/spec-kit/helpdesk/internal/domain"
)

// PrincipalCreateRequest is the admin-side account payload.
type PrincipalCreateRequest struct {
	Name     string `json:"name" validate:"required,max=120"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
	RoleID   int64  `json:"roleId" validate:"required,gt=0"`
	Active   *bool  `json:"active"`
}

// PrincipalUpdateRequest carries partial admin edits.
type PrincipalUpdateRequest struct {
	Name     *string `json:"name" validate:"omitempty,max=120"`
	Email    *string `json:"email" validate:"omitempty,email"`
	Password *string `json:"password" validate:"omitempty,min=8"`
	RoleID   *int64  `json:"roleId" validate:"omitempty,gt=0"`
	Active   *bool   `json:"active"`
}

// ProfileUpdateRequest carries self-service edits.
type ProfileUpdateRequest struct {
	Name            *string `json:"name" validate:"omitempty,max=120"`
	Email           *string `json:"email" validate:"omitempty,email"`
	CurrentPassword string  `json:"currentPassword" validate:"required_with=NewPassword"`
	NewPassword     *string `json:"newPassword" validate:"omitempty,min=8"`
}

// PrincipalResponse is the public view of an account.
type PrincipalResponse struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	RoleID    int64     `json:"roleId"`
	RoleName  string    `json:"roleName"`
	Active    bool      `json:"active"`
	Verified  bool      `json:"verified"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// MeResponse is the caller's account plus the permission payload that drives the UI.
type MeResponse struct {
	Principal   PrincipalResponse    `json:"principal"`
	Role        string               `json:"role"`
	Permissions domain.PermissionSet `json:"permissions"`
}

// NewPrincipalResponse maps a principal to its response.
func NewPrincipalResponse(p *domain.Principal) PrincipalResponse {
	return PrincipalResponse{
		ID:        p.ID,
		Name:      p.Name,
		Email:     p.Email,
		RoleID:    p.RoleID,
		RoleName:  p.RoleName,
		Active:    p.Active,
		Verified:  p.Verified(),
		CreatedAt: p.CreatedAt,
		UpdatedAt: p.UpdatedAt,
	}
}
