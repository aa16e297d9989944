package auth

import (
	"testing"
	"time"

	jwt "github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fixedManager(at time.Time) *TokenManager {
	tm := NewTokenManager("test-secret", time.Hour, 7*24*time.Hour)
	tm.now = func() time.Time { return at }
	return tm
}

func TestIssueSelectsTier(t *testing.T) {
	issued := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	tm := fixedManager(issued)

	_, shortExp, err := tm.Issue("p-1", 2, false, false)
	require.NoError(t, err)
	assert.Equal(t, issued.Add(time.Hour), shortExp)

	token, longExp, err := tm.Issue("p-1", 2, false, true)
	require.NoError(t, err)
	assert.Equal(t, issued.Add(7*24*time.Hour), longExp)

	cred, err := tm.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, "p-1", cred.PrincipalID)
	assert.Equal(t, int64(2), cred.RoleID)
	assert.True(t, cred.ExpiresAt.Equal(longExp))
}

func TestVerifyExpiry(t *testing.T) {
	issued := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	tm := fixedManager(issued)

	short, _, err := tm.Issue("p-1", 2, false, false)
	require.NoError(t, err)
	long, _, err := tm.Issue("p-1", 2, false, true)
	require.NoError(t, err)

	tm.now = func() time.Time { return issued.Add(2 * time.Hour) }

	_, err = tm.Verify(short)
	assert.ErrorIs(t, err, ErrCredentialExpired)
	_, err = tm.Verify(long)
	assert.NoError(t, err)
}

func TestVerifyRejectsTampering(t *testing.T) {
	tm := NewTokenManager("test-secret", 0, 0)
	token, _, err := tm.Issue("p-1", 2, false, false)
	require.NoError(t, err)

	other := NewTokenManager("other-secret", 0, 0)
	_, err = other.Verify(token)
	assert.ErrorIs(t, err, ErrCredentialInvalid)

	_, err = tm.Verify(token[:len(token)-2] + "xx")
	assert.ErrorIs(t, err, ErrCredentialInvalid)

	_, err = tm.Verify("not-a-token")
	assert.ErrorIs(t, err, ErrCredentialInvalid)

	unsigned := jwt.NewWithClaims(jwt.SigningMethodNone, &Claims{
		PrincipalID:      "p-1",
		RegisteredClaims: jwt.RegisteredClaims{ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour))},
	})
	raw, err := unsigned.SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)
	_, err = tm.Verify(raw)
	assert.ErrorIs(t, err, ErrCredentialInvalid)
}
