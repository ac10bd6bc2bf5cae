package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/shoplight/shoplight/internal/apperr"
)

// Purpose distinguishes the two kinds of bearer tokens the issuer mints.
type Purpose string

const (
	PurposeSession       Purpose = "session"
	PurposePasswordReset Purpose = "password_reset"
)

// Claims carries the account identity plus the token purpose. Identity
// is the only business claim; everything else must be re-resolved from
// the store when the token is redeemed.
type Claims struct {
	jwt.RegisteredClaims
	Purpose Purpose `json:"purpose"`
}

// TokenIssuer signs and verifies self-contained bearer tokens under a
// process-wide signing key.
type TokenIssuer struct {
	secret     []byte
	sessionTTL time.Duration
	resetTTL   time.Duration
}

// NewTokenIssuer builds an issuer with the two TTL presets.
func NewTokenIssuer(secret []byte, sessionTTL, resetTTL time.Duration) *TokenIssuer {
	return &TokenIssuer{secret: secret, sessionTTL: sessionTTL, resetTTL: resetTTL}
}

// IssueSession mints a long-lived session token for the identity.
func (i *TokenIssuer) IssueSession(identity string) (string, error) {
	return i.issue(identity, PurposeSession, i.sessionTTL)
}

// IssuePasswordReset mints a short-lived reset token for the identity.
func (i *TokenIssuer) IssuePasswordReset(identity string) (string, error) {
	return i.issue(identity, PurposePasswordReset, i.resetTTL)
}

func (i *TokenIssuer) issue(identity string, purpose Purpose, ttl time.Duration) (string, error) {
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   identity,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
		Purpose: purpose,
	})
	return token.SignedString(i.secret)
}

// Verify checks the signature before trusting any claim, then the
// expiry, and returns the parsed claims. Failures map to the
// TokenExpired / TokenMalformed tags.
func (i *TokenIssuer) Verify(tokenString string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return i.secret, nil
	})
	switch {
	case errors.Is(err, jwt.ErrTokenExpired):
		return nil, apperr.New(apperr.CodeTokenExpired, "token has expired")
	case err != nil:
		return nil, apperr.New(apperr.CodeTokenMalformed, "invalid token")
	case !token.Valid:
		return nil, apperr.New(apperr.CodeTokenMalformed, "invalid token")
	}
	return claims, nil
}
