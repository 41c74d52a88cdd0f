package service

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/spoonhq/accounts-api/internal/core/domain"
)

// SessionClaims is the decoded payload of a session token.
type SessionClaims struct {
	PrincipalID  string
	DisplayName  string
	HashSnapshot string
}

// ResetClaims is the decoded payload of a reset token.
type ResetClaims struct {
	PrincipalID string
	Email       string
}

// TokenIssuer signs and verifies both token families. Session tokens are
// signed with the server-wide secret; reset tokens with a per-account secret
// derived from the current password hash, so any hash write invalidates every
// outstanding reset token without bookkeeping.
type TokenIssuer struct {
	secret     string
	sessionTTL time.Duration
	resetTTL   time.Duration
}

func NewTokenIssuer(secret string, sessionTTL, resetTTL time.Duration) *TokenIssuer {
	if sessionTTL <= 0 {
		sessionTTL = 7 * 24 * time.Hour
	}
	if resetTTL <= 0 {
		resetTTL = 5 * time.Minute
	}
	return &TokenIssuer{secret: secret, sessionTTL: sessionTTL, resetTTL: resetTTL}
}

// deriveSecret builds the per-account reset-signing key from the server
// secret and the account's current password hash.
func deriveSecret(serverSecret, currentHash string) []byte {
	return []byte(serverSecret + currentHash)
}

// IssueSession signs a bearer token embedding the principal identity and a
// snapshot of the current password hash.
func (t *TokenIssuer) IssueSession(account *domain.Account) (string, error) {
	claims := jwt.MapClaims{
		"id":   account.ID,
		"name": account.UserName,
		"pwd":  account.PasswordHash,
		"exp":  time.Now().Add(t.sessionTTL).Unix(),
	}
	tkn := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return tkn.SignedString([]byte(t.secret))
}

// ParseSession decodes and verifies a session token. Expired or malformed
// tokens return domain.ErrUnauthorized.
func (t *TokenIssuer) ParseSession(token string) (*SessionClaims, error) {
	claims, err := parseHS256(token, []byte(t.secret))
	if err != nil {
		return nil, domain.ErrUnauthorized
	}
	id, _ := claims["id"].(string)
	if id == "" {
		return nil, domain.ErrUnauthorized
	}
	name, _ := claims["name"].(string)
	pwd, _ := claims["pwd"].(string)
	return &SessionClaims{PrincipalID: id, DisplayName: name, HashSnapshot: pwd}, nil
}

// IssueReset signs a short-lived token over the account's derived secret.
func (t *TokenIssuer) IssueReset(account *domain.Account) (string, error) {
	claims := jwt.MapClaims{
		"id":    account.ID,
		"email": account.Email,
		"exp":   time.Now().Add(t.resetTTL).Unix(),
	}
	tkn := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return tkn.SignedString(deriveSecret(t.secret, account.PasswordHash))
}

// VerifyReset checks a reset token against the secret derived from
// currentHash. Expiry and hash mismatch (a prior password write) fail the
// same way: domain.ErrResetForbidden.
func (t *TokenIssuer) VerifyReset(token, currentHash string) (*ResetClaims, error) {
	claims, err := parseHS256(token, deriveSecret(t.secret, currentHash))
	if err != nil {
		return nil, domain.ErrResetForbidden
	}
	id, _ := claims["id"].(string)
	if id == "" {
		return nil, domain.ErrResetForbidden
	}
	email, _ := claims["email"].(string)
	return &ResetClaims{PrincipalID: id, Email: email}, nil
}

func parseHS256(token string, key []byte) (jwt.MapClaims, error) {
	claims := jwt.MapClaims{}
	tkn, err := jwt.ParseWithClaims(token, claims, func(tkn *jwt.Token) (interface{}, error) {
		if tkn.Method.Alg() != jwt.SigningMethodHS256.Alg() {
			return nil, jwt.ErrTokenSignatureInvalid
		}
		return key, nil
	})
	if err != nil {
		return nil, fmt.Errorf("parse token: %w", err)
	}
	if !tkn.Valid {
		return nil, jwt.ErrTokenSignatureInvalid
	}
	return claims, nil
}
