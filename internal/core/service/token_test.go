package service

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/spoonhq/accounts-api/internal/core/domain"
)

func testAccount() *domain.Account {
	return &domain.Account{
		ID:           "acc-1",
		Kind:         domain.KindUser,
		UserName:     "alice",
		Email:        "alice@example.com",
		PasswordHash: "$2a$04$somestoredhashvalue",
	}
}

func TestTokenIssuer_SessionRoundTrip(t *testing.T) {
	issuer := NewTokenIssuer("server-secret", time.Hour, time.Minute)
	account := testAccount()

	token, err := issuer.IssueSession(account)
	if err != nil {
		t.Fatalf("IssueSession: %v", err)
	}

	claims, err := issuer.ParseSession(token)
	if err != nil {
		t.Fatalf("ParseSession: %v", err)
	}
	if claims.PrincipalID != account.ID {
		t.Fatalf("expected principal %s, got %s", account.ID, claims.PrincipalID)
	}
	if claims.DisplayName != account.UserName {
		t.Fatalf("expected name %s, got %s", account.UserName, claims.DisplayName)
	}
	if claims.HashSnapshot != account.PasswordHash {
		t.Fatalf("hash snapshot not embedded")
	}
}

func TestTokenIssuer_SessionSignedWithServerSecret(t *testing.T) {
	issuer := NewTokenIssuer("server-secret", time.Hour, time.Minute)
	token, err := issuer.IssueSession(testAccount())
	if err != nil {
		t.Fatalf("IssueSession: %v", err)
	}

	claims := jwt.MapClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(tkn *jwt.Token) (interface{}, error) {
		return []byte("server-secret"), nil
	})
	if err != nil || !parsed.Valid {
		t.Fatalf("token not decodable with server secret: %v", err)
	}
}

func TestTokenIssuer_ParseSession_WrongSecret(t *testing.T) {
	issuer := NewTokenIssuer("server-secret", time.Hour, time.Minute)
	token, _ := issuer.IssueSession(testAccount())

	other := NewTokenIssuer("different-secret", time.Hour, time.Minute)
	if _, err := other.ParseSession(token); err != domain.ErrUnauthorized {
		t.Fatalf("expected ErrUnauthorized, got %v", err)
	}
}

func TestTokenIssuer_ParseSession_Expired(t *testing.T) {
	issuer := NewTokenIssuer("server-secret", -time.Minute, time.Minute)
	token, err := issuer.IssueSession(testAccount())
	if err != nil {
		t.Fatalf("IssueSession: %v", err)
	}
	if _, err := issuer.ParseSession(token); err != domain.ErrUnauthorized {
		t.Fatalf("expected ErrUnauthorized for expired token, got %v", err)
	}
}

func TestTokenIssuer_ResetRoundTrip(t *testing.T) {
	issuer := NewTokenIssuer("server-secret", time.Hour, time.Minute)
	account := testAccount()

	token, err := issuer.IssueReset(account)
	if err != nil {
		t.Fatalf("IssueReset: %v", err)
	}

	claims, err := issuer.VerifyReset(token, account.PasswordHash)
	if err != nil {
		t.Fatalf("VerifyReset: %v", err)
	}
	if claims.PrincipalID != account.ID || claims.Email != account.Email {
		t.Fatalf("unexpected claims: %+v", claims)
	}
}

func TestTokenIssuer_ResetInvalidAfterHashChange(t *testing.T) {
	issuer := NewTokenIssuer("server-secret", time.Hour, time.Minute)
	account := testAccount()

	token, err := issuer.IssueReset(account)
	if err != nil {
		t.Fatalf("IssueReset: %v", err)
	}

	// Any password write changes the derived secret and orphans the token.
	if _, err := issuer.VerifyReset(token, "$2a$04$adifferenthashentirely"); err != domain.ErrResetForbidden {
		t.Fatalf("expected ErrResetForbidden after hash change, got %v", err)
	}
}

func TestTokenIssuer_ResetExpired(t *testing.T) {
	issuer := NewTokenIssuer("server-secret", time.Hour, -time.Minute)
	account := testAccount()

	token, err := issuer.IssueReset(account)
	if err != nil {
		t.Fatalf("IssueReset: %v", err)
	}
	if _, err := issuer.VerifyReset(token, account.PasswordHash); err != domain.ErrResetForbidden {
		t.Fatalf("expected ErrResetForbidden for expired token, got %v", err)
	}
}

func TestTokenIssuer_ResetNotValidAsSession(t *testing.T) {
	issuer := NewTokenIssuer("server-secret", time.Hour, time.Minute)
	account := testAccount()

	token, _ := issuer.IssueReset(account)
	if _, err := issuer.ParseSession(token); err != domain.ErrUnauthorized {
		t.Fatalf("reset token must not parse as session token, got %v", err)
	}
}
