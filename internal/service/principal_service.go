package service

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"github.com/spec-kit/helpdesk/internal/auth"
	"github.com/spec-kit/helpdesk/internal/domain"
	"github.com/spec-kit/helpdesk/internal/repository"
	apperrors "github.com/spec-kit/helpdesk/pkg/util"
)

// PrincipalService manages accounts on behalf of administrators and the
// account holders themselves.
type PrincipalService struct {
	principals  repository.PrincipalRepository
	roles       repository.RoleRepository
	attachments repository.AttachmentRepository
	mailer      VerificationMailer
	bcryptCost  int
	newCode     func() (int, error)
}

// VerificationMailer delivers a principal's verification code.
type VerificationMailer interface {
	SendVerification(ctx context.Context, principal *domain.Principal)
}

// PrincipalDependencies bundles repositories for the principal service.
type PrincipalDependencies struct {
	PrincipalRepo  repository.PrincipalRepository
	RoleRepo       repository.RoleRepository
	AttachmentRepo repository.AttachmentRepository
	Mailer         VerificationMailer
	BcryptCost     int
	// CodeGenerator overrides the random verification code source.
	CodeGenerator func() (int, error)
}

// NewPrincipalService constructs the service.
func NewPrincipalService(deps PrincipalDependencies) *PrincipalService {
	gen := deps.CodeGenerator
	if gen == nil {
		gen = randomCode
	}
	return &PrincipalService{
		principals:  deps.PrincipalRepo,
		roles:       deps.RoleRepo,
		attachments: deps.AttachmentRepo,
		mailer:      deps.Mailer,
		bcryptCost:  deps.BcryptCost,
		newCode:     gen,
	}
}

// PrincipalCreateInput is the admin-side account payload. Accounts created
// this way start verified.
type PrincipalCreateInput struct {
	Name     string
	Email    string
	Password string
	RoleID   int64
	Active   bool
}

// PrincipalUpdateInput carries partial admin edits.
type PrincipalUpdateInput struct {
	Name     *string
	Email    *string
	Password *string
	RoleID   *int64
	Active   *bool
}

// ProfileInput carries self-service edits. Changing the password needs the current one.
type ProfileInput struct {
	Name            *string
	Email           *string
	CurrentPassword string
	NewPassword     *string
}

// PrincipalFilter describes listing filters.
type PrincipalFilter struct {
	RoleID *int64
	Active *bool
	Search string
	Limit  int
	Offset int
}

func (s *PrincipalService) Create(ctx context.Context, actor *domain.AuthContext, input PrincipalCreateInput) (*domain.Principal, error) {
	if err := auth.Require(actor, domain.ResourceUsers, domain.ActionAdd); err != nil {
		return nil, err
	}
	role, err := s.roles.GetByID(ctx, input.RoleID)
	if err != nil {
		return nil, notFoundOr(err, "role", map[string]any{"roleId": input.RoleID})
	}
	hash, err := auth.HashPassword(input.Password, s.bcryptCost)
	if err != nil {
		return nil, err
	}

	principal := &domain.Principal{
		Name:         strings.TrimSpace(input.Name),
		Email:        normalizeEmail(input.Email),
		PasswordHash: hash,
		RoleID:       role.ID,
		RoleName:     role.Name,
		Active:       input.Active,
	}
	if err := s.principals.Create(ctx, principal); err != nil {
		return nil, uniqueConflict(err, apperrors.CodeEmailTaken, "email already registered",
			map[string]any{"email": principal.Email})
	}
	return principal, nil
}

func (s *PrincipalService) Get(ctx context.Context, actor *domain.AuthContext, id string) (*domain.Principal, error) {
	if err := auth.Require(actor, domain.ResourceUsers, domain.ActionList); err != nil {
		return nil, err
	}
	return s.load(ctx, id)
}

func (s *PrincipalService) List(ctx context.Context, actor *domain.AuthContext, filter PrincipalFilter) ([]domain.Principal, error) {
	if err := auth.Require(actor, domain.ResourceUsers, domain.ActionList); err != nil {
		return nil, err
	}
	return s.principals.List(ctx, repository.PrincipalFilter{
		RoleID: filter.RoleID,
		Active: filter.Active,
		Search: filter.Search,
		Limit:  filter.Limit,
		Offset: filter.Offset,
	})
}

func (s *PrincipalService) Update(ctx context.Context, actor *domain.AuthContext, id string, input PrincipalUpdateInput) (*domain.Principal, error) {
	if err := auth.Require(actor, domain.ResourceUsers, domain.ActionEdit); err != nil {
		return nil, err
	}
	principal, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}

	if input.Name != nil {
		principal.Name = strings.TrimSpace(*input.Name)
	}
	if input.Email != nil {
		principal.Email = normalizeEmail(*input.Email)
	}
	if input.RoleID != nil && *input.RoleID != principal.RoleID {
		// Moving yourself to another role is as strong as editing role grants.
		if actor.Principal.ID == principal.ID {
			if err := auth.Require(actor, domain.ResourceUserRules, domain.ActionEdit); err != nil {
				return nil, err
			}
		}
		role, err := s.roles.GetByID(ctx, *input.RoleID)
		if err != nil {
			return nil, notFoundOr(err, "role", map[string]any{"roleId": *input.RoleID})
		}
		principal.RoleID = role.ID
		principal.RoleName = role.Name
	}
	if input.Active != nil {
		principal.Active = *input.Active
	}
	if input.Password != nil {
		hash, err := auth.HashPassword(*input.Password, s.bcryptCost)
		if err != nil {
			return nil, err
		}
		principal.PasswordHash = hash
	}

	if err := s.save(ctx, principal); err != nil {
		return nil, err
	}
	return principal, nil
}

// Delete removes the account and its attachments in one transaction.
// Callers cannot delete themselves.
func (s *PrincipalService) Delete(ctx context.Context, actor *domain.AuthContext, id string) error {
	if err := auth.Require(actor, domain.ResourceUsers, domain.ActionDelete); err != nil {
		return err
	}
	if actor.Principal.ID == id {
		return apperrors.NewConflict("cannot delete your own account", nil)
	}
	if _, err := uuid.Parse(id); err != nil {
		return apperrors.NewNotFound("principal", map[string]any{"id": id})
	}
	if err := s.principals.Delete(ctx, id); err != nil {
		return notFoundOr(err, "principal", map[string]any{"id": id})
	}
	return nil
}

// Attachments lists files owned by the principal.
func (s *PrincipalService) Attachments(ctx context.Context, actor *domain.AuthContext, id string) ([]domain.Attachment, error) {
	if err := auth.Require(actor, domain.ResourceUsers, domain.ActionList); err != nil {
		return nil, err
	}
	if _, err := s.load(ctx, id); err != nil {
		return nil, err
	}
	return s.attachments.ListByPrincipal(ctx, id)
}

// Me returns the caller's own account. No permission bit is needed.
func (s *PrincipalService) Me(ctx context.Context, actor *domain.AuthContext) (*domain.Principal, error) {
	if actor == nil || actor.Principal == nil {
		return nil, apperrors.NewUnauthorized("authentication required")
	}
	return s.load(ctx, actor.Principal.ID)
}

// UpdateProfile applies self-service edits. A new email address leaves the
// account unverified until the freshly mailed code is confirmed.
func (s *PrincipalService) UpdateProfile(ctx context.Context, actor *domain.AuthContext, input ProfileInput) (*domain.Principal, error) {
	principal, err := s.Me(ctx, actor)
	if err != nil {
		return nil, err
	}
	if input.Name != nil {
		principal.Name = strings.TrimSpace(*input.Name)
	}
	emailChanged := false
	if input.Email != nil {
		if email := normalizeEmail(*input.Email); email != principal.Email {
			code, err := s.newCode()
			if err != nil {
				return nil, err
			}
			principal.Email = email
			principal.VerificationCode = code
			emailChanged = true
		}
	}
	if input.NewPassword != nil {
		if err := auth.ComparePassword(principal.PasswordHash, input.CurrentPassword); err != nil {
			return nil, apperrors.NewValidationError("current password is incorrect",
				map[string]any{"fields": map[string]any{"currentPassword": "mismatch"}})
		}
		hash, err := auth.HashPassword(*input.NewPassword, s.bcryptCost)
		if err != nil {
			return nil, err
		}
		principal.PasswordHash = hash
	}
	if err := s.save(ctx, principal); err != nil {
		return nil, err
	}
	if emailChanged && s.mailer != nil {
		s.mailer.SendVerification(ctx, principal)
	}
	return principal, nil
}

// AttachAvatar records an avatar image owned by the caller.
func (s *PrincipalService) AttachAvatar(ctx context.Context, actor *domain.AuthContext, input AttachmentInput) (*domain.Attachment, error) {
	if actor == nil || actor.Principal == nil {
		return nil, apperrors.NewUnauthorized("authentication required")
	}
	if !strings.HasPrefix(strings.ToLower(input.MimeType), "image/") {
		return nil, apperrors.NewValidationError("avatar must be an image",
			map[string]any{"fields": map[string]any{"mimeType": "image"}})
	}
	owner := actor.Principal.ID
	attachment := &domain.Attachment{
		PrincipalID: &owner,
		StorageKey:  input.StorageKey,
		FileName:    input.FileName,
		MimeType:    input.MimeType,
		SizeBytes:   input.SizeBytes,
	}
	if err := s.attachments.Create(ctx, attachment); err != nil {
		return nil, err
	}
	return attachment, nil
}

func (s *PrincipalService) load(ctx context.Context, id string) (*domain.Principal, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, apperrors.NewNotFound("principal", map[string]any{"id": id})
	}
	principal, err := s.principals.GetByID(ctx, id)
	if err != nil {
		return nil, notFoundOr(err, "principal", map[string]any{"id": id})
	}
	return principal, nil
}

func (s *PrincipalService) save(ctx context.Context, principal *domain.Principal) error {
	if err := s.principals.Update(ctx, principal); err != nil {
		err = uniqueConflict(err, apperrors.CodeEmailTaken, "email already registered",
			map[string]any{"email": principal.Email})
		return notFoundOr(err, "principal", map[string]any{"id": principal.ID})
	}
	return nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
