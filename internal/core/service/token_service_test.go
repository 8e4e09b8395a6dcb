package service

import (
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog"

	"github.com/blogforge/content-api/internal/core/domain"
)

const testSecret = "0123456789abcdef0123456789abcdef"

func newTestTokenService(t *testing.T) *TokenService {
	t.Helper()
	svc, err := NewTokenService(testSecret, 15*time.Minute, 24*time.Hour, zerolog.Nop())
	if err != nil {
		t.Fatalf("NewTokenService: %v", err)
	}
	return svc
}

func TestTokenService_RejectsShortSecret(t *testing.T) {
	if _, err := NewTokenService("too-short", time.Minute, time.Hour, zerolog.Nop()); err == nil {
		t.Fatalf("expected error for secret shorter than 256 bits")
	}
}

func TestTokenService_AccessTokenRoundTrip(t *testing.T) {
	svc := newTestTokenService(t)
	user := &domain.User{ID: "u1", Username: "alice", Role: domain.RoleAdmin}

	token, err := svc.IssueAccessToken(user)
	if err != nil {
		t.Fatalf("IssueAccessToken: %v", err)
	}

	claims, err := svc.Validate(token)
	if err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if claims.Subject != "alice" {
		t.Fatalf("expected subject alice, got %s", claims.Subject)
	}
	if claims.TokenType != tokenTypeAccess {
		t.Fatalf("expected access token, got %s", claims.TokenType)
	}
	if len(claims.Roles) != 1 || claims.Roles[0] != string(domain.RoleAdmin) {
		t.Fatalf("unexpected roles: %v", claims.Roles)
	}
	if claims.TokenID == "" {
		t.Fatalf("expected a token id")
	}
}

func TestTokenService_RefreshTokenHasNoRoles(t *testing.T) {
	svc := newTestTokenService(t)
	user := &domain.User{ID: "u1", Username: "alice", Role: domain.RoleAdmin}

	token, err := svc.IssueRefreshToken(user)
	if err != nil {
		t.Fatalf("IssueRefreshToken: %v", err)
	}

	claims, err := svc.Validate(token)
	if err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if claims.TokenType != tokenTypeRefresh {
		t.Fatalf("expected refresh token, got %s", claims.TokenType)
	}
	if len(claims.Roles) != 0 {
		t.Fatalf("refresh token must not carry roles, got %v", claims.Roles)
	}
}

func TestTokenService_ExpiredToken(t *testing.T) {
	svc := newTestTokenService(t)

	// expiry past the 30s clock skew window
	expired := jwt.NewWithClaims(jwt.SigningMethodHS256, &tokenClaims{
		Type: tokenTypeAccess,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "alice",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(-2 * time.Minute)),
		},
	})
	signed, err := expired.SignedString([]byte(testSecret))
	if err != nil {
		t.Fatalf("sign: %v", err)
	}

	if _, err := svc.Validate(signed); !errors.Is(err, domain.ErrTokenExpired) {
		t.Fatalf("expected ErrTokenExpired, got %v", err)
	}
}

func TestTokenService_ExpiryWithinSkewAccepted(t *testing.T) {
	svc := newTestTokenService(t)

	// expired 10s ago, within the 30s leeway
	fresh := jwt.NewWithClaims(jwt.SigningMethodHS256, &tokenClaims{
		Type: tokenTypeAccess,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "alice",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(-10 * time.Second)),
		},
	})
	signed, err := fresh.SignedString([]byte(testSecret))
	if err != nil {
		t.Fatalf("sign: %v", err)
	}

	if _, err := svc.Validate(signed); err != nil {
		t.Fatalf("token within clock skew should validate, got %v", err)
	}
}

func TestTokenService_TamperedSignature(t *testing.T) {
	svc := newTestTokenService(t)
	token, err := svc.IssueAccessToken(&domain.User{Username: "alice", Role: domain.RoleUser})
	if err != nil {
		t.Fatalf("IssueAccessToken: %v", err)
	}

	if _, err := svc.Validate(token + "x"); !errors.Is(err, domain.ErrTokenInvalid) {
		t.Fatalf("expected ErrTokenInvalid, got %v", err)
	}
}

func TestTokenService_RejectsUnexpectedAlgorithm(t *testing.T) {
	svc := newTestTokenService(t)

	other := jwt.NewWithClaims(jwt.SigningMethodHS512, jwt.RegisteredClaims{
		Subject:   "alice",
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	})
	signed, err := other.SignedString([]byte(testSecret))
	if err != nil {
		t.Fatalf("sign: %v", err)
	}

	if _, err := svc.Validate(signed); !errors.Is(err, domain.ErrTokenInvalid) {
		t.Fatalf("expected ErrTokenInvalid for HS512 token, got %v", err)
	}
}

func TestTokenService_Garbage(t *testing.T) {
	svc := newTestTokenService(t)
	if _, err := svc.Validate("not-a-token"); !errors.Is(err, domain.ErrTokenInvalid) {
		t.Fatalf("expected ErrTokenInvalid, got %v", err)
	}
}

func TestTokenService_ValidateForUser(t *testing.T) {
	svc := newTestTokenService(t)
	token, err := svc.IssueAccessToken(&domain.User{Username: "alice", Role: domain.RoleUser})
	if err != nil {
		t.Fatalf("IssueAccessToken: %v", err)
	}

	if !svc.ValidateForUser(token, "alice") {
		t.Fatalf("token should validate for its own subject")
	}
	if svc.ValidateForUser(token, "bob") {
		t.Fatalf("token must not validate for a different subject")
	}
	if svc.ValidateForUser("garbage", "alice") {
		t.Fatalf("garbage token must not validate")
	}
}
