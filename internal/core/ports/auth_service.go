package ports

import (
	"context"

	"github.com/blogforge/content-api/internal/core/domain"
)

// TokenPair bundles the short-lived access token with the long-lived
// refresh token returned at login and register.
type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

// TokenClaims is the parsed, validated payload of a credential.
type TokenClaims struct {
	Subject   string
	Roles     []string
	TokenID   string
	TokenType string
}

// TokenService issues and validates signed, time-bound credentials.
// All operations are pure functions of the input and the signing key.
type TokenService interface {
	IssueAccessToken(user *domain.User) (string, error)
	IssueRefreshToken(user *domain.User) (string, error)
	// Validate verifies signature and expiry. Failures are typed:
	// domain.ErrTokenExpired or domain.ErrTokenInvalid.
	Validate(token string) (*TokenClaims, error)
	// ValidateForUser validates the token and checks it was issued
	// for the given subject.
	ValidateForUser(token, username string) bool
}

// AuthService implements registration, login, and token refresh.
type AuthService interface {
	Register(ctx context.Context, username, email, password string) (*domain.User, *TokenPair, error)
	Login(ctx context.Context, username, password string) (*domain.User, *TokenPair, error)
	Refresh(ctx context.Context, refreshToken string) (*TokenPair, error)
}
