package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/spec-kit/helpdesk/internal/auth"
	"github.com/spec-kit/helpdesk/internal/domain"
	apperrors "github.com/spec-kit/helpdesk/pkg/util"
)

func userActions(actions ...domain.Action) *domain.AuthContext {
	row := map[domain.Action]bool{}
	for _, a := range actions {
		row[a] = true
	}
	return actorWith(domain.Grants{domain.ResourceUsers: row})
}

func newPrincipalFixture() (*PrincipalService, *fakePrincipals) {
	principals := newFakePrincipals(
		&domain.Principal{ID: agentID, Name: "Dana", Email: "dana@example.com", RoleID: 2, Active: true},
		&domain.Principal{ID: dispatchID, Name: "Lee", Email: "lee@example.com", RoleID: 1, Active: true},
	)
	roles := &fakeRoles{byID: map[int64]*domain.Role{
		1: {ID: 1, Name: "admin"},
		2: {ID: 2, Name: "agent"},
	}}
	svc := NewPrincipalService(PrincipalDependencies{
		PrincipalRepo:  principals,
		RoleRepo:       roles,
		AttachmentRepo: &fakeAttachments{},
		BcryptCost:     bcrypt.MinCost,
	})
	return svc, principals
}

func TestPrincipalDelete(t *testing.T) {
	svc, principals := newPrincipalFixture()
	actor := userActions(domain.ActionDelete)
	ctx := context.Background()

	err := svc.Delete(ctx, actor, dispatchID)
	assert.Equal(t, apperrors.KindConflict, apperrors.KindOf(err))
	assert.Contains(t, principals.byID, dispatchID)

	err = svc.Delete(ctx, actor, "nope")
	assert.Equal(t, apperrors.KindNotFound, apperrors.KindOf(err))

	require.NoError(t, svc.Delete(ctx, actor, agentID))
	assert.NotContains(t, principals.byID, agentID)

	err = svc.Delete(ctx, userActions(domain.ActionList), retiredID)
	assert.True(t, apperrors.HasCode(err, apperrors.CodeForbidden))
}

func TestPrincipalCreateAndReassign(t *testing.T) {
	svc, _ := newPrincipalFixture()
	ctx := context.Background()

	created, err := svc.Create(ctx, userActions(domain.ActionAdd), PrincipalCreateInput{
		Name: "Ana", Email: "Ana@Example.com", Password: "pw", RoleID: 2, Active: true,
	})
	require.NoError(t, err)
	assert.Equal(t, "ana@example.com", created.Email)
	assert.Equal(t, "agent", created.RoleName)
	assert.True(t, created.Verified())

	_, err = svc.Create(ctx, userActions(domain.ActionAdd), PrincipalCreateInput{Email: "x@example.com", RoleID: 42})
	assert.Equal(t, apperrors.KindNotFound, apperrors.KindOf(err))

	role := int64(1)
	updated, err := svc.Update(ctx, userActions(domain.ActionEdit), agentID, PrincipalUpdateInput{RoleID: &role})
	require.NoError(t, err)
	assert.Equal(t, "admin", updated.RoleName)
}

func TestUpdateProfilePassword(t *testing.T) {
	svc, principals := newPrincipalFixture()
	hash, err := auth.HashPassword("old", bcrypt.MinCost)
	require.NoError(t, err)
	principals.byID[dispatchID].PasswordHash = hash

	me := actorWith(nil)
	next := "new"

	_, err = svc.UpdateProfile(context.Background(), me, ProfileInput{CurrentPassword: "wrong", NewPassword: &next})
	assert.Equal(t, apperrors.KindValidation, apperrors.KindOf(err))

	_, err = svc.UpdateProfile(context.Background(), me, ProfileInput{CurrentPassword: "old", NewPassword: &next})
	require.NoError(t, err)
	assert.NoError(t, auth.ComparePassword(principals.byID[dispatchID].PasswordHash, "new"))
}

func TestSelfRoleChangeNeedsRoleEdit(t *testing.T) {
	svc, principals := newPrincipalFixture()
	admin := int64(1)
	principals.byID[dispatchID].RoleID = 2

	_, err := svc.Update(context.Background(), userActions(domain.ActionEdit), dispatchID, PrincipalUpdateInput{RoleID: &admin})
	assert.True(t, apperrors.HasCode(err, apperrors.CodeForbidden))
	assert.Equal(t, int64(2), principals.byID[dispatchID].RoleID)

	both := actorWith(domain.Grants{
		domain.ResourceUsers:     {domain.ActionEdit: true},
		domain.ResourceUserRules: {domain.ActionEdit: true},
	})
	updated, err := svc.Update(context.Background(), both, dispatchID, PrincipalUpdateInput{RoleID: &admin})
	require.NoError(t, err)
	assert.Equal(t, "admin", updated.RoleName)

	_, err = svc.Update(context.Background(), userActions(domain.ActionEdit), agentID, PrincipalUpdateInput{RoleID: &admin})
	require.NoError(t, err, "other accounts only need users.edit")
}

type recordingMailer struct {
	sent []domain.Principal
}

func (m *recordingMailer) SendVerification(_ context.Context, p *domain.Principal) {
	m.sent = append(m.sent, *p)
}

func TestUpdateProfileEmailChangeRequiresVerification(t *testing.T) {
	svc, principals := newPrincipalFixture()
	mailer := &recordingMailer{}
	svc.mailer = mailer
	svc.newCode = func() (int, error) { return 654321, nil }
	me := actorWith(nil)

	same := " LEE@example.com "
	p, err := svc.UpdateProfile(context.Background(), me, ProfileInput{Email: &same})
	require.NoError(t, err)
	assert.True(t, p.Verified())
	assert.Empty(t, mailer.sent)

	next := "lee.new@example.com"
	p, err = svc.UpdateProfile(context.Background(), me, ProfileInput{Email: &next})
	require.NoError(t, err)
	assert.False(t, p.Verified())
	assert.Equal(t, 654321, principals.byID[dispatchID].VerificationCode)
	require.Len(t, mailer.sent, 1)
	assert.Equal(t, next, mailer.sent[0].Email)
	assert.Equal(t, 654321, mailer.sent[0].VerificationCode)
}

func TestAttachAvatar(t *testing.T) {
	svc, _ := newPrincipalFixture()
	me := actorWith(nil)

	_, err := svc.AttachAvatar(context.Background(), me, AttachmentInput{MimeType: "text/plain"})
	assert.Equal(t, apperrors.KindValidation, apperrors.KindOf(err))

	att, err := svc.AttachAvatar(context.Background(), me, AttachmentInput{StorageKey: "a.png", MimeType: "image/png"})
	require.NoError(t, err)
	assert.Equal(t, dispatchID, *att.PrincipalID)

	list, err := svc.Attachments(context.Background(), userActions(domain.ActionList), dispatchID)
	require.NoError(t, err)
	assert.Len(t, list, 1)
}
