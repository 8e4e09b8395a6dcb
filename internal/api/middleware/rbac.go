package middleware

import (
	"github.com/labstack/echo/v4"

	"github.com/blogforge/content-api/internal/core/domain"
)

// RequireAuth rejects the request unless an identity is installed.
func RequireAuth() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if _, ok := IdentityFrom(c); !ok {
				return domain.ErrUnauthenticated
			}
			return next(c)
		}
	}
}

// RequireRole rejects the request unless the caller is authenticated and
// holds one of the given roles. The handler body never runs on denial.
func RequireRole(roles ...domain.Role) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			id, ok := IdentityFrom(c)
			if !ok {
				return domain.ErrUnauthenticated
			}
			if !id.User.HasRole(roles...) {
				return domain.ErrForbidden
			}
			return next(c)
		}
	}
}
