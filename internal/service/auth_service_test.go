package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/spec-kit/helpdesk/internal/config"
	"github.com/spec-kit/helpdesk/internal/domain"
	apperrors "github.com/spec-kit/helpdesk/pkg/util"
)

func newAuthFixture(alerts AlertSender) (*AuthService, *fakePrincipals) {
	cfg := config.Config{
		Auth: config.AuthConfig{
			JWTSecret:             "test-secret",
			ShortTokenTTLMinutes:  60,
			ExtendedTokenTTLHours: 7 * 24,
			BcryptCost:            bcrypt.MinCost,
			DefaultRoleID:         2,
		},
		Notification: config.NotificationConfig{VerificationSubject: "Verify your account"},
	}
	principals := newFakePrincipals()
	roles := &fakeRoles{byID: map[int64]*domain.Role{
		2: {ID: 2, Name: "agent", Permissions: domain.NewPermissionSet(domain.Grants{
			domain.ResourceTickets: {domain.ActionList: true},
		}, nil)},
	}}
	svc := NewAuthService(cfg, AuthDependencies{
		PrincipalRepo: principals,
		RoleRepo:      roles,
		Alerts:        alerts,
		CodeGenerator: func() (int, error) { return 4321, nil },
	})
	return svc, principals
}

func TestSignupVerifyLogin(t *testing.T) {
	alerts := &fakeAlerts{}
	svc, _ := newAuthFixture(alerts)
	ctx := context.Background()

	principal, err := svc.Signup(ctx, SignupInput{Name: "Kim", Email: " Kim@Example.com ", Password: "s3cret-pass"})
	require.NoError(t, err)
	assert.Equal(t, "kim@example.com", principal.Email)
	assert.Equal(t, int64(2), principal.RoleID)
	assert.True(t, principal.Active)
	assert.False(t, principal.Verified())

	mails := alerts.byPlatform(domain.PlatformGmail)
	require.Len(t, mails, 1)
	assert.Equal(t, "kim@example.com", mails[0].Email)
	assert.Equal(t, "Verify your account", mails[0].Subject)
	assert.Contains(t, mails[0].Message, "004321")

	_, err = svc.Login(ctx, "kim@example.com", "s3cret-pass", false)
	require.Error(t, err)
	assert.Equal(t, apperrors.KindAuthentication, apperrors.KindOf(err))

	err = svc.Verify(ctx, "kim@example.com", 1111)
	assert.Equal(t, apperrors.KindValidation, apperrors.KindOf(err))
	require.NoError(t, svc.Verify(ctx, "KIM@example.com", 4321))

	short, err := svc.Login(ctx, "kim@example.com", "s3cret-pass", false)
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(time.Hour), short.ExpiresAt, time.Minute)
	assert.Equal(t, "agent", short.Role.Name)

	long, err := svc.Login(ctx, "kim@example.com", "s3cret-pass", true)
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(7*24*time.Hour), long.ExpiresAt, time.Minute)

	cred, err := svc.TokenManager().Verify(long.Token)
	require.NoError(t, err)
	assert.Equal(t, principal.ID, cred.PrincipalID)
	assert.False(t, cred.IsAdmin)
}

func TestSignupDuplicateEmail(t *testing.T) {
	svc, _ := newAuthFixture(&fakeAlerts{})
	ctx := context.Background()

	_, err := svc.Signup(ctx, SignupInput{Name: "Kim", Email: "kim@example.com", Password: "pw"})
	require.NoError(t, err)
	_, err = svc.Signup(ctx, SignupInput{Name: "Kim", Email: "KIM@example.com", Password: "pw"})
	assert.True(t, apperrors.HasCode(err, apperrors.CodeEmailTaken))
}

func TestSignupSurvivesMailFailure(t *testing.T) {
	alerts := &fakeAlerts{fail: map[domain.Platform]error{domain.PlatformGmail: errors.New("smtp down")}}
	svc, principals := newAuthFixture(alerts)

	principal, err := svc.Signup(context.Background(), SignupInput{Name: "Kim", Email: "kim@example.com", Password: "pw"})
	require.NoError(t, err)
	_, err = principals.GetByID(context.Background(), principal.ID)
	assert.NoError(t, err)
}

func TestLoginRejections(t *testing.T) {
	svc, principals := newAuthFixture(nil)
	hash, err := bcrypt.GenerateFromPassword([]byte("right"), bcrypt.MinCost)
	require.NoError(t, err)
	principals.byID[agentID] = &domain.Principal{ID: agentID, Email: "on@example.com", PasswordHash: string(hash), RoleID: 2, Active: true}
	principals.byID[retiredID] = &domain.Principal{ID: retiredID, Email: "off@example.com", PasswordHash: string(hash), RoleID: 2}

	tests := []struct {
		name     string
		email    string
		password string
		code     string
	}{
		{name: "wrong password", email: "on@example.com", password: "wrong", code: apperrors.CodeCredentialInvalid},
		{name: "unknown email", email: "ghost@example.com", password: "right", code: apperrors.CodeCredentialInvalid},
		{name: "inactive", email: "off@example.com", password: "right", code: apperrors.CodeUnauthorized},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Login(context.Background(), tt.email, tt.password, false)
			require.Error(t, err)
			assert.True(t, apperrors.HasCode(err, tt.code), "got %v", err)
		})
	}

	res, err := svc.Login(context.Background(), "on@example.com", "right", false)
	require.NoError(t, err)
	assert.Equal(t, agentID, res.Principal.ID)
}

func TestRandomCodeRange(t *testing.T) {
	for i := 0; i < 200; i++ {
		code, err := randomCode()
		require.NoError(t, err)
		assert.GreaterOrEqual(t, code, 100000)
		assert.LessOrEqual(t, code, 999999)
	}
}
