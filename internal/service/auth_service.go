package service

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/spec-kit/helpdesk/internal/auth"
	"github.com/spec-kit/helpdesk/internal/config"
	"github.com/spec-kit/helpdesk/internal/domain"
	"github.com/spec-kit/helpdesk/internal/repository"
	apperrors "github.com/spec-kit/helpdesk/pkg/util"
)

// AlertSender delivers a single alert.
type AlertSender interface {
	Dispatch(ctx context.Context, req domain.AlertRequest) (*domain.DispatchResult, error)
}

// AuthService coordinates signup, verification and login flows.
type AuthService struct {
	principals    repository.PrincipalRepository
	roles         repository.RoleRepository
	alerts        AlertSender
	tokenMgr      *auth.TokenManager
	bcryptCost    int
	defaultRoleID int64
	subject       string
	newCode       func() (int, error)
	logger        *zap.Logger
}

// AuthDependencies encapsulates requirements for auth service.
type AuthDependencies struct {
	PrincipalRepo repository.PrincipalRepository
	RoleRepo      repository.RoleRepository
	Alerts        AlertSender
	Logger        *zap.Logger
	// CodeGenerator overrides the random verification code source.
	CodeGenerator func() (int, error)
}

// SignupInput is the self-registration payload.
type SignupInput struct {
	Name     string
	Email    string
	Password string
}

// LoginResult is returned on successful login.
type LoginResult struct {
	Principal *domain.Principal
	Role      *domain.Role
	Token     string
	ExpiresAt time.Time
}

// NewAuthService builds the service.
func NewAuthService(cfg config.Config, deps AuthDependencies) *AuthService {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	gen := deps.CodeGenerator
	if gen == nil {
		gen = randomCode
	}
	return &AuthService{
		principals:    deps.PrincipalRepo,
		roles:         deps.RoleRepo,
		alerts:        deps.Alerts,
		tokenMgr:      auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.ShortTTL(), cfg.Auth.ExtendedTTL()),
		bcryptCost:    cfg.Auth.BcryptCost,
		defaultRoleID: cfg.Auth.DefaultRoleID,
		subject:       cfg.Notification.VerificationSubject,
		newCode:       gen,
		logger:        logger,
	}
}

// Signup registers an unverified account on the default role and mails the
// verification code. A failed mail does not undo the signup.
func (s *AuthService) Signup(ctx context.Context, input SignupInput) (*domain.Principal, error) {
	email := normalizeEmail(input.Email)
	if _, err := s.principals.GetByEmail(ctx, email); err == nil {
		return nil, apperrors.NewConflictCode(apperrors.CodeEmailTaken, "email already registered", map[string]any{"email": email})
	} else if !errors.Is(err, pgx.ErrNoRows) {
		return nil, err
	}

	role, err := s.roles.GetByID(ctx, s.defaultRoleID)
	if err != nil {
		return nil, fmt.Errorf("load default role %d: %w", s.defaultRoleID, err)
	}
	hash, err := auth.HashPassword(input.Password, s.bcryptCost)
	if err != nil {
		return nil, err
	}
	code, err := s.newCode()
	if err != nil {
		return nil, err
	}

	principal := &domain.Principal{
		Name:             strings.TrimSpace(input.Name),
		Email:            email,
		PasswordHash:     hash,
		RoleID:           role.ID,
		RoleName:         role.Name,
		Active:           true,
		VerificationCode: code,
	}
	if err := s.principals.Create(ctx, principal); err != nil {
		return nil, uniqueConflict(err, apperrors.CodeEmailTaken, "email already registered", map[string]any{"email": email})
	}

	s.SendVerification(ctx, principal)
	return principal, nil
}

// ResendVerification mails a fresh code to an unverified account.
func (s *AuthService) ResendVerification(ctx context.Context, email string) error {
	principal, err := s.principals.GetByEmail(ctx, normalizeEmail(email))
	if err != nil {
		return notFoundOr(err, "principal", nil)
	}
	if principal.Verified() {
		return nil
	}
	code, err := s.newCode()
	if err != nil {
		return err
	}
	principal.VerificationCode = code
	if err := s.principals.Update(ctx, principal); err != nil {
		return err
	}
	s.SendVerification(ctx, principal)
	return nil
}

// Verify confirms the emailed code. Verifying an already verified account succeeds.
func (s *AuthService) Verify(ctx context.Context, email string, code int) error {
	principal, err := s.principals.GetByEmail(ctx, normalizeEmail(email))
	if err != nil {
		return notFoundOr(err, "principal", nil)
	}
	if principal.Verified() {
		return nil
	}
	if code != principal.VerificationCode {
		return apperrors.NewValidationError("verification code does not match",
			map[string]any{"fields": map[string]any{"code": "mismatch"}})
	}
	principal.VerificationCode = 0
	return s.principals.Update(ctx, principal)
}

// Login checks credentials and issues a token. remember selects the extended lifetime.
func (s *AuthService) Login(ctx context.Context, email, password string, remember bool) (*LoginResult, error) {
	principal, err := s.principals.GetByEmail(ctx, normalizeEmail(email))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewAuthenticationError(apperrors.CodeCredentialInvalid, "invalid email or password")
		}
		return nil, err
	}
	if err := auth.ComparePassword(principal.PasswordHash, password); err != nil {
		return nil, apperrors.NewAuthenticationError(apperrors.CodeCredentialInvalid, "invalid email or password")
	}
	if !principal.Active {
		return nil, apperrors.NewUnauthorized("account disabled")
	}
	if !principal.Verified() {
		return nil, apperrors.NewUnauthorized("account not verified")
	}

	role, err := s.roles.GetByID(ctx, principal.RoleID)
	if err != nil {
		return nil, notFoundOr(err, "role", map[string]any{"roleId": principal.RoleID})
	}

	token, exp, err := s.tokenMgr.Issue(principal.ID, role.ID, role.Permissions.IsFull(), remember)
	if err != nil {
		return nil, err
	}
	return &LoginResult{Principal: principal, Role: role, Token: token, ExpiresAt: exp}, nil
}

// TokenManager exposes the manager for middleware wiring.
func (s *AuthService) TokenManager() *auth.TokenManager {
	return s.tokenMgr
}

// SendVerification mails the principal's current code. A failed mail is logged, not returned.
func (s *AuthService) SendVerification(ctx context.Context, principal *domain.Principal) {
	if s.alerts == nil {
		return
	}
	_, err := s.alerts.Dispatch(ctx, domain.AlertRequest{
		Platform: domain.PlatformGmail,
		Email:    principal.Email,
		Subject:  s.subject,
		Message:  fmt.Sprintf("Hello %s,\n\nYour verification code is %06d.", principal.Name, principal.VerificationCode),
	})
	if err != nil {
		s.logger.Warn("verification mail not sent", zap.String("principal_id", principal.ID), zap.Error(err))
	}
}

// randomCode returns a six digit code. Zero is reserved for "verified".
func randomCode() (int, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(900000))
	if err != nil {
		return 0, err
	}
	return int(n.Int64()) + 100000, nil
}
