package middleware

import (
	"github.com/labstack/echo/v4"

	"github.com/blogforge/content-api/internal/core/domain"
)

// identityKey is the echo context key the auth middleware stores the
// resolved identity under.
const identityKey = "identity"

// Identity is the resolved caller attached to one in-flight request. It is
// created by the Auth middleware, read by authorization checks and handlers,
// and discarded with the request; it is never shared across requests.
type Identity struct {
	User  *domain.User
	Token string
}

// IdentityFrom returns the identity installed for this request, if any.
func IdentityFrom(c echo.Context) (*Identity, bool) {
	id, ok := c.Get(identityKey).(*Identity)
	return id, ok && id != nil
}

// SetIdentity installs the identity for the current request. Used by the
// Auth middleware and by tests that need an authenticated context.
func SetIdentity(c echo.Context, id *Identity) {
	c.Set(identityKey, id)
}
