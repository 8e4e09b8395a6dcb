package ports

import (
	"context"

	"github.com/blogforge/content-api/internal/core/domain"
)

// CreatePostInput carries the caller-supplied fields for a new post.
type CreatePostInput struct {
	Title   string
	Content string
	UserID  string
}

// PostUpdateInput is a partial update: nil fields are left untouched.
// The owning user of a post never changes.
type PostUpdateInput struct {
	Title   *string
	Content *string
}

// PostService exposes post operations with caching and fault tolerance
// layered over the repository.
type PostService interface {
	FindByID(ctx context.Context, id string) (*domain.Post, error)
	FindAll(ctx context.Context) ([]domain.Post, error)
	FindByUserID(ctx context.Context, userID string) ([]domain.Post, error)
	Search(ctx context.Context, term string, limit, offset int64) ([]domain.Post, error)
	CountByUser(ctx context.Context, userID string) (int64, error)
	Create(ctx context.Context, in CreatePostInput) (*domain.Post, error)
	Update(ctx context.Context, id string, in PostUpdateInput) (*domain.Post, error)
	Delete(ctx context.Context, id string) error
}
