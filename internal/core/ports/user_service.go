package ports

import (
	"context"

	"github.com/blogforge/content-api/internal/core/domain"
)

// CreateUserInput carries the caller-supplied fields for account creation.
// Password is the plaintext credential; it is hashed before persistence.
type CreateUserInput struct {
	Username string
	Email    string
	Password string
	Role     domain.Role
}

// UserUpdateInput is a partial update: nil fields are left untouched.
type UserUpdateInput struct {
	Name  *string
	Email *string
}

// UserService exposes user operations with caching and fault tolerance
// layered over the repository. Reads return (nil, nil) or an empty slice
// when the backend is unavailable; writes propagate failures.
type UserService interface {
	FindByID(ctx context.Context, id string) (*domain.User, error)
	FindByIDWithPosts(ctx context.Context, id string) (*domain.UserWithPosts, error)
	FindByUsername(ctx context.Context, username string) (*domain.User, error)
	FindByEmail(ctx context.Context, email string) (*domain.User, error)
	FindByRole(ctx context.Context, role domain.Role) ([]domain.User, error)
	FindAll(ctx context.Context) ([]domain.User, error)
	Search(ctx context.Context, term string, limit, offset int64) ([]domain.User, error)
	ExistsByUsername(ctx context.Context, username string) (bool, error)
	Create(ctx context.Context, in CreateUserInput) (*domain.User, error)
	Update(ctx context.Context, id string, in UserUpdateInput) (*domain.User, error)
	Delete(ctx context.Context, id string) error
}
