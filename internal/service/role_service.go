package service

import (
	"context"
	"errors"
	"strings"

	"github.com/spec-kit/helpdesk/internal/auth"
	"github.com/spec-kit/helpdesk/internal/domain"
	"github.com/spec-kit/helpdesk/internal/repository"
	apperrors "github.com/spec-kit/helpdesk/pkg/util"
)

// RoleService manages roles and their permission sets.
type RoleService struct {
	roles repository.RoleRepository
}

// NewRoleService constructs the service.
func NewRoleService(roles repository.RoleRepository) *RoleService {
	return &RoleService{roles: roles}
}

// RoleUpdateInput carries partial role edits.
type RoleUpdateInput struct {
	Name        *string
	Permissions *domain.PermissionSet
}

func (s *RoleService) Create(ctx context.Context, actor *domain.AuthContext, name string, perms domain.PermissionSet) (*domain.Role, error) {
	if err := auth.Require(actor, domain.ResourceUserRules, domain.ActionAdd); err != nil {
		return nil, err
	}
	role := &domain.Role{Name: strings.TrimSpace(name), Permissions: perms}
	if role.Name == "" {
		return nil, apperrors.NewValidationError("role name is required",
			map[string]any{"fields": map[string]any{"name": "required"}})
	}
	if err := s.roles.Create(ctx, role); err != nil {
		return nil, uniqueConflict(err, apperrors.CodeRoleNameTaken, "role name already exists",
			map[string]any{"name": role.Name})
	}
	return role, nil
}

func (s *RoleService) Get(ctx context.Context, actor *domain.AuthContext, id int64) (*domain.Role, error) {
	if err := auth.Require(actor, domain.ResourceUserRules, domain.ActionList); err != nil {
		return nil, err
	}
	role, err := s.roles.GetByID(ctx, id)
	if err != nil {
		return nil, notFoundOr(err, "role", map[string]any{"id": id})
	}
	return role, nil
}

func (s *RoleService) List(ctx context.Context, actor *domain.AuthContext) ([]domain.Role, error) {
	if err := auth.Require(actor, domain.ResourceUserRules, domain.ActionList); err != nil {
		return nil, err
	}
	return s.roles.List(ctx)
}

func (s *RoleService) Update(ctx context.Context, actor *domain.AuthContext, id int64, input RoleUpdateInput) (*domain.Role, error) {
	if err := auth.Require(actor, domain.ResourceUserRules, domain.ActionEdit); err != nil {
		return nil, err
	}
	role, err := s.roles.GetByID(ctx, id)
	if err != nil {
		return nil, notFoundOr(err, "role", map[string]any{"id": id})
	}
	if input.Name != nil {
		name := strings.TrimSpace(*input.Name)
		if name == "" {
			return nil, apperrors.NewValidationError("role name is required",
				map[string]any{"fields": map[string]any{"name": "required"}})
		}
		role.Name = name
	}
	if input.Permissions != nil {
		role.Permissions = *input.Permissions
	}
	if err := s.roles.Update(ctx, role); err != nil {
		return nil, uniqueConflict(err, apperrors.CodeRoleNameTaken, "role name already exists",
			map[string]any{"name": role.Name})
	}
	return role, nil
}

// Delete removes a role. Roles still assigned to a principal are kept and
// reported as ROLE_IN_USE.
func (s *RoleService) Delete(ctx context.Context, actor *domain.AuthContext, id int64) error {
	if err := auth.Require(actor, domain.ResourceUserRules, domain.ActionDelete); err != nil {
		return err
	}
	err := s.roles.Delete(ctx, id)
	switch {
	case err == nil:
		return nil
	case errors.Is(err, repository.ErrRoleInUse):
		return apperrors.NewConflictCode(apperrors.CodeRoleInUse, "role is assigned to principals",
			map[string]any{"id": id})
	default:
		return notFoundOr(err, "role", map[string]any{"id": id})
	}
}
