package ports

import (
	"context"

	"github.com/blogforge/content-api/internal/core/domain"
)

// UserRepository defines the persistence contract for users.
type UserRepository interface {
	FindByID(ctx context.Context, id string) (*domain.User, error)
	// FindByIDWithPosts fetches the user and their posts in one operation.
	// Callers that need both must use this instead of FindByID plus a
	// separate post lookup.
	FindByIDWithPosts(ctx context.Context, id string) (*domain.UserWithPosts, error)
	FindByUsername(ctx context.Context, username string) (*domain.User, error)
	FindByEmail(ctx context.Context, email string) (*domain.User, error)
	FindByRole(ctx context.Context, role domain.Role) ([]domain.User, error)
	FindAll(ctx context.Context) ([]domain.User, error)
	// Search matches the term case-insensitively against username and email.
	Search(ctx context.Context, term string, limit, offset int64) ([]domain.User, error)
	ExistsByUsername(ctx context.Context, username string) (bool, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	Create(ctx context.Context, user *domain.User) (*domain.User, error)
	Update(ctx context.Context, user *domain.User) (*domain.User, error)
	Delete(ctx context.Context, id string) error
	Count(ctx context.Context) (int64, error)
}
