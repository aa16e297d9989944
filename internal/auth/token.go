package auth

import (
	"errors"
	"fmt"
	"time"

	jwt "github.com/golang-jwt/jwt/v5"
)

var (
	// ErrCredentialInvalid covers bad signatures, malformed tokens and missing claims.
	ErrCredentialInvalid = errors.New("credential invalid")
	// ErrCredentialExpired is returned once the token's expiry has passed.
	ErrCredentialExpired = errors.New("credential expired")
)

// TokenManager handles issuing and validating JWT tokens. The lifetime tier is
// fixed at issuance; verification only checks the embedded expiry.
type TokenManager struct {
	secret      []byte
	shortTTL    time.Duration
	extendedTTL time.Duration
	now         func() time.Time
}

// NewTokenManager builds a new manager.
func NewTokenManager(secret string, shortTTL, extendedTTL time.Duration) *TokenManager {
	if shortTTL <= 0 {
		shortTTL = time.Hour
	}
	if extendedTTL <= 0 {
		extendedTTL = 7 * 24 * time.Hour
	}
	return &TokenManager{secret: []byte(secret), shortTTL: shortTTL, extendedTTL: extendedTTL, now: time.Now}
}

// Claims describes JWT payload.
type Claims struct {
	PrincipalID string `json:"pid"`
	RoleID      int64  `json:"rid"`
	IsAdmin     bool   `json:"adm,omitempty"`
	Remember    bool   `json:"rem,omitempty"`
	jwt.RegisteredClaims
}

// Credential is the verified content of a token. IsAdmin is informational for
// clients; authorization always reads the role's permission set.
type Credential struct {
	PrincipalID string
	RoleID      int64
	IsAdmin     bool
	IssuedAt    time.Time
	ExpiresAt   time.Time
}

// Issue signs a token for the principal. remember selects the extended lifetime.
func (tm *TokenManager) Issue(principalID string, roleID int64, isAdmin, remember bool) (string, time.Time, error) {
	ttl := tm.shortTTL
	if remember {
		ttl = tm.extendedTTL
	}
	issuedAt := tm.now()
	expiresAt := issuedAt.Add(ttl)
	claims := &Claims{
		PrincipalID: principalID,
		RoleID:      roleID,
		IsAdmin:     isAdmin,
		Remember:    remember,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   principalID,
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(issuedAt),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString(tm.secret)
	if err != nil {
		return "", time.Time{}, err
	}
	return tokenString, expiresAt, nil
}

// Verify validates the signature and expiry and returns the credential.
func (tm *TokenManager) Verify(tokenStr string) (*Credential, error) {
	parsed, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		return tm.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(tm.now),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrCredentialExpired
		}
		return nil, fmt.Errorf("%w: %v", ErrCredentialInvalid, err)
	}

	claims, ok := parsed.Claims.(*Claims)
	if !ok || !parsed.Valid || claims.PrincipalID == "" {
		return nil, ErrCredentialInvalid
	}

	cred := &Credential{
		PrincipalID: claims.PrincipalID,
		RoleID:      claims.RoleID,
		IsAdmin:     claims.IsAdmin,
		ExpiresAt:   claims.ExpiresAt.Time,
	}
	if claims.IssuedAt != nil {
		cred.IssuedAt = claims.IssuedAt.Time
	}
	return cred, nil
}
