package ports

import (
	"context"

	"github.com/blogforge/content-api/internal/core/domain"
)

// PostRepository defines the persistence contract for posts.
type PostRepository interface {
	FindByID(ctx context.Context, id string) (*domain.Post, error)
	// FindAll returns every post, newest first.
	FindAll(ctx context.Context) ([]domain.Post, error)
	FindByUserID(ctx context.Context, userID string) ([]domain.Post, error)
	// Search matches the term case-insensitively against title and content.
	Search(ctx context.Context, term string, limit, offset int64) ([]domain.Post, error)
	Create(ctx context.Context, post *domain.Post) (*domain.Post, error)
	Update(ctx context.Context, post *domain.Post) (*domain.Post, error)
	Delete(ctx context.Context, id string) error
	// DeleteByUserID removes every post owned by the given user.
	DeleteByUserID(ctx context.Context, userID string) error
	CountByUser(ctx context.Context, userID string) (int64, error)
}
