package service

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/blogforge/content-api/internal/core/domain"
	"github.com/blogforge/content-api/internal/core/ports"
)

// minSecretLen is the minimum signing key length for HS256 (256 bits).
const minSecretLen = 32

// clockSkew tolerates minor clock differences between the server that issued
// a token and the one validating it.
const clockSkew = 30 * time.Second

const (
	tokenTypeAccess  = "access"
	tokenTypeRefresh = "refresh"
)

// tokenClaims is the JWT payload. Access tokens carry the user's roles;
// refresh tokens carry only the registered claims.
type tokenClaims struct {
	Roles []string `json:"roles,omitempty"`
	Type  string   `json:"type"`
	jwt.RegisteredClaims
}

// TokenService issues and validates HS256-signed credentials. It holds no
// per-request state; every operation is a pure function of the input and the
// signing key.
type TokenService struct {
	secret     []byte
	accessTTL  time.Duration
	refreshTTL time.Duration
	log        zerolog.Logger
	parser     *jwt.Parser
}

// NewTokenService builds a TokenService. It refuses secrets shorter than 256
// bits; callers treat that as a fatal startup error.
func NewTokenService(secret string, accessTTL, refreshTTL time.Duration, log zerolog.Logger) (*TokenService, error) {
	if len(secret) < minSecretLen {
		return nil, fmt.Errorf("jwt secret must be at least %d bytes for HS256", minSecretLen)
	}
	if accessTTL <= 0 {
		accessTTL = 15 * time.Minute
	}
	if refreshTTL <= 0 {
		refreshTTL = 7 * 24 * time.Hour
	}
	return &TokenService{
		secret:     []byte(secret),
		accessTTL:  accessTTL,
		refreshTTL: refreshTTL,
		log:        log,
		parser: jwt.NewParser(
			jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
			jwt.WithLeeway(clockSkew),
		),
	}, nil
}

// IssueAccessToken signs a short-lived token carrying the user's roles.
func (s *TokenService) IssueAccessToken(user *domain.User) (string, error) {
	return s.sign(user.Username, []string{string(user.Role)}, tokenTypeAccess, s.accessTTL)
}

// IssueRefreshToken signs a long-lived token with no role claims.
func (s *TokenService) IssueRefreshToken(user *domain.User) (string, error) {
	return s.sign(user.Username, nil, tokenTypeRefresh, s.refreshTTL)
}

func (s *TokenService) sign(subject string, roles []string, tokenType string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := &tokenClaims{
		Roles: roles,
		Type:  tokenType,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// Validate verifies the token's signature and expiry and returns its parsed
// claims. Failures are typed: domain.ErrTokenExpired when the token is
// structurally sound but past its expiry, domain.ErrTokenInvalid otherwise.
func (s *TokenService) Validate(tokenString string) (*ports.TokenClaims, error) {
	claims := &tokenClaims{}
	token, err := s.parser.ParseWithClaims(tokenString, claims, func(*jwt.Token) (any, error) {
		return s.secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, domain.ErrTokenExpired
		}
		s.log.Warn().Err(err).Msg("token validation failed")
		return nil, domain.ErrTokenInvalid
	}
	if !token.Valid {
		return nil, domain.ErrTokenInvalid
	}

	return &ports.TokenClaims{
		Subject:   claims.Subject,
		Roles:     claims.Roles,
		TokenID:   claims.ID,
		TokenType: claims.Type,
	}, nil
}

// ValidateForUser reports whether the token is valid and was issued for the
// given subject.
func (s *TokenService) ValidateForUser(tokenString, username string) bool {
	claims, err := s.Validate(tokenString)
	if err != nil {
		return false
	}
	return claims.Subject == username
}
