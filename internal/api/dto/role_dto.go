package dto

import (
	"time"

	"github.com/spec-kit/helpdesk/internal/domain"
)

// RoleRequest creates a role.
type RoleRequest struct {
	Name        string               `json:"name" validate:"required,max=80"`
	Permissions domain.PermissionSet `json:"permissions"`
}

// RoleUpdateRequest edits a role. Absent fields are kept.
type RoleUpdateRequest struct {
	Name        *string               `json:"name" validate:"omitempty,max=80"`
	Permissions *domain.PermissionSet `json:"permissions"`
}

// RoleResponse includes the permission payload in its wire shape.
type RoleResponse struct {
	ID          int64                `json:"id"`
	Name        string               `json:"name"`
	Permissions domain.PermissionSet `json:"permissions"`
	CreatedAt   time.Time            `json:"createdAt"`
	UpdatedAt   time.Time            `json:"updatedAt"`
}

// NewRoleResponse maps a role.
func NewRoleResponse(r *domain.Role) RoleResponse {
	return RoleResponse{ID: r.ID, Name: r.Name, Permissions: r.Permissions, CreatedAt: r.CreatedAt, UpdatedAt: r.UpdatedAt}
}
