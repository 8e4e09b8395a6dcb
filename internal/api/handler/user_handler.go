package handler

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/blogforge/content-api/internal/api/middleware"
	"github.com/blogforge/content-api/internal/core/domain"
	"github.com/blogforge/content-api/internal/core/ports"
)

const (
	defaultSearchLimit = 20
	maxSearchLimit     = 100
)

type UserHandler struct {
	users ports.UserService
}

func NewUserHandler(users ports.UserService) *UserHandler {
	return &UserHandler{users: users}
}

type updateUserRequest struct {
	Name  *string `json:"name"  validate:"omitempty,min=3,max=50"`
	Email *string `json:"email" validate:"omitempty,email"`
}

// List returns every user. Degraded backends yield an empty list rather
// than an error.
func (h *UserHandler) List(c echo.Context) error {
	users, err := h.users.FindAll(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, users)
}

// Get returns a single user by id.
func (h *UserHandler) Get(c echo.Context) error {
	user, err := h.users.FindByID(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	if user == nil {
		return domain.ErrUserNotFound
	}
	return c.JSON(http.StatusOK, user)
}

// GetWithPosts returns a user together with their posts.
func (h *UserHandler) GetWithPosts(c echo.Context) error {
	uwp, err := h.users.FindByIDWithPosts(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	if uwp == nil {
		return domain.ErrUserNotFound
	}
	return c.JSON(http.StatusOK, uwp)
}

// GetByUsername returns a single user by username.
func (h *UserHandler) GetByUsername(c echo.Context) error {
	user, err := h.users.FindByUsername(c.Request().Context(), c.Param("username"))
	if err != nil {
		return err
	}
	if user == nil {
		return domain.ErrUserNotFound
	}
	return c.JSON(http.StatusOK, user)
}

// ListByRole returns every user holding the given role.
func (h *UserHandler) ListByRole(c echo.Context) error {
	role := domain.Role(c.Param("role"))
	if !role.Valid() {
		return domain.NewValidationError(domain.FieldError{
			Field: "role", Message: "role must be one of USER, ADMIN, MODERATOR",
		})
	}
	users, err := h.users.FindByRole(c.Request().Context(), role)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, users)
}

// Search matches users by username or email, case-insensitively.
func (h *UserHandler) Search(c echo.Context) error {
	term := c.QueryParam("q")
	limit, offset := pagination(c)
	users, err := h.users.Search(c.Request().Context(), term, limit, offset)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, users)
}

// Me returns the authenticated caller's own account.
func (h *UserHandler) Me(c echo.Context) error {
	id, ok := middleware.IdentityFrom(c)
	if !ok {
		return domain.ErrUnauthenticated
	}
	return c.JSON(http.StatusOK, id.User)
}

// Update applies a partial update. Callers may only update their own account
// unless they are an admin.
func (h *UserHandler) Update(c echo.Context) error {
	id, ok := middleware.IdentityFrom(c)
	if !ok {
		return domain.ErrUnauthenticated
	}
	targetID := c.Param("id")
	if id.User.ID != targetID && !id.User.HasRole(domain.RoleAdmin) {
		return domain.ErrForbidden
	}

	var req updateUserRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	user, err := h.users.Update(c.Request().Context(), targetID, ports.UserUpdateInput{
		Name:  req.Name,
		Email: req.Email,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, user)
}

// Delete removes a user and all of their posts. Admin only.
func (h *UserHandler) Delete(c echo.Context) error {
	if err := h.users.Delete(c.Request().Context(), c.Param("id")); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

func pagination(c echo.Context) (limit, offset int64) {
	limit = defaultSearchLimit
	if raw := c.QueryParam("limit"); raw != "" {
		if n, err := strconv.ParseInt(raw, 10, 64); err == nil && n > 0 {
			limit = min(n, maxSearchLimit)
		}
	}
	if raw := c.QueryParam("offset"); raw != "" {
		if n, err := strconv.ParseInt(raw, 10, 64); err == nil && n >= 0 {
			offset = n
		}
	}
	return limit, offset
}
