package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/blogforge/content-api/internal/api/middleware"
	"github.com/blogforge/content-api/internal/core/domain"
	"github.com/blogforge/content-api/internal/core/ports"
)

type PostHandler struct {
	posts ports.PostService
}

func NewPostHandler(posts ports.PostService) *PostHandler {
	return &PostHandler{posts: posts}
}

type createPostRequest struct {
	Title   string `json:"title"   validate:"required,min=3,max=200"`
	Content string `json:"content" validate:"required,min=10,max=5000"`
}

type updatePostRequest struct {
	Title   *string `json:"title"   validate:"omitempty,min=3,max=200"`
	Content *string `json:"content" validate:"omitempty,min=10,max=5000"`
}

// List returns every post, newest first.
func (h *PostHandler) List(c echo.Context) error {
	posts, err := h.posts.FindAll(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, posts)
}

// Get returns a single post by id.
func (h *PostHandler) Get(c echo.Context) error {
	post, err := h.posts.FindByID(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	if post == nil {
		return domain.ErrPostNotFound
	}
	return c.JSON(http.StatusOK, post)
}

// ListByUser returns every post authored by the given user, newest first.
// Mounted under /users/:id/posts.
func (h *PostHandler) ListByUser(c echo.Context) error {
	posts, err := h.posts.FindByUserID(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, posts)
}

// Search matches posts by title or content, case-insensitively.
func (h *PostHandler) Search(c echo.Context) error {
	term := c.QueryParam("q")
	limit, offset := pagination(c)
	posts, err := h.posts.Search(c.Request().Context(), term, limit, offset)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, posts)
}

// CountByUser returns the number of posts a user has authored. Mounted under
// /users/:id/posts/count.
func (h *PostHandler) CountByUser(c echo.Context) error {
	n, err := h.posts.CountByUser(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string]int64{"count": n})
}

// Create publishes a new post owned by the authenticated caller.
func (h *PostHandler) Create(c echo.Context) error {
	id, ok := middleware.IdentityFrom(c)
	if !ok {
		return domain.ErrUnauthenticated
	}

	var req createPostRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	post, err := h.posts.Create(c.Request().Context(), ports.CreatePostInput{
		Title:   req.Title,
		Content: req.Content,
		UserID:  id.User.ID,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, post)
}

// Update edits a post's title or content. Only the author, an admin, or a
// moderator may edit; ownership never changes.
func (h *PostHandler) Update(c echo.Context) error {
	post, err := h.authorize(c)
	if err != nil {
		return err
	}

	var req updatePostRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	updated, err := h.posts.Update(c.Request().Context(), post.ID, ports.PostUpdateInput{
		Title:   req.Title,
		Content: req.Content,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, updated)
}

// Delete removes a post. Only the author, an admin, or a moderator may delete.
func (h *PostHandler) Delete(c echo.Context) error {
	post, err := h.authorize(c)
	if err != nil {
		return err
	}
	if err := h.posts.Delete(c.Request().Context(), post.ID); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

// authorize loads the target post and checks the caller may modify it.
func (h *PostHandler) authorize(c echo.Context) (*domain.Post, error) {
	id, ok := middleware.IdentityFrom(c)
	if !ok {
		return nil, domain.ErrUnauthenticated
	}

	post, err := h.posts.FindByID(c.Request().Context(), c.Param("id"))
	if err != nil {
		return nil, err
	}
	if post == nil {
		return nil, domain.ErrPostNotFound
	}

	if post.UserID != id.User.ID && !id.User.HasRole(domain.RoleAdmin, domain.RoleModerator) {
		return nil, domain.ErrForbidden
	}
	return post, nil
}
