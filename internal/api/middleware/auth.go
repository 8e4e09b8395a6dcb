package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/blogforge/content-api/internal/core/domain"
	"github.com/blogforge/content-api/internal/core/ports"
)

const bearerPrefix = "Bearer "

// publicPrefixes are skipped by the auth gate entirely: credentials on these
// paths are neither validated nor required.
var publicPrefixes = []string{"/auth/", "/health", "/metrics"}

// Auth is the authentication gate. It inspects the Authorization header and,
// when a valid token is present, resolves the subject and installs the
// Identity for the rest of the request:
//
//   - no header: continue unauthenticated (authorization may still reject)
//   - expired token: reject immediately with 401
//   - malformed or badly signed token: log and continue unauthenticated
//   - valid token: resolve the user and install the identity, unless one
//     is already installed for this request
func Auth(tokens ports.TokenService, users ports.UserService, log zerolog.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if isPublic(c.Request().URL.Path) {
				return next(c)
			}

			authHeader := c.Request().Header.Get("Authorization")
			if !strings.HasPrefix(authHeader, bearerPrefix) {
				return next(c)
			}
			token := authHeader[len(bearerPrefix):]

			claims, err := tokens.Validate(token)
			if err != nil {
				if errors.Is(err, domain.ErrTokenExpired) {
					return echo.NewHTTPError(http.StatusUnauthorized, "token has expired")
				}
				log.Warn().Err(err).Msg("rejecting unusable token, continuing unauthenticated")
				return next(c)
			}

			if _, ok := IdentityFrom(c); ok {
				return next(c)
			}

			user, err := users.FindByUsername(c.Request().Context(), claims.Subject)
			if err != nil || user == nil {
				log.Warn().Err(err).Str("subject", claims.Subject).Msg("token subject could not be resolved")
				return next(c)
			}

			SetIdentity(c, &Identity{User: user, Token: token})
			return next(c)
		}
	}
}

func isPublic(path string) bool {
	for _, p := range publicPrefixes {
		if strings.HasPrefix(path, p) {
			return true
		}
	}
	return false
}
