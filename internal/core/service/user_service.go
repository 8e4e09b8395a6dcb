package service

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/blogforge/content-api/internal/api/metrics"
	"github.com/blogforge/content-api/internal/cache"
	"github.com/blogforge/content-api/internal/core/domain"
	"github.com/blogforge/content-api/internal/core/ports"
	"github.com/blogforge/content-api/internal/resilience"
)

// UserService layers cache-aside reads and resilience (retry + circuit
// breaker) over the user repository. Reads that ultimately fail serve a safe
// empty fallback; writes propagate failures since they cannot be skipped.
type UserService struct {
	repo  ports.UserRepository
	posts ports.PostRepository
	cache cache.Cache
	exec  *resilience.Executor
	log   zerolog.Logger
}

func NewUserService(repo ports.UserRepository, posts ports.PostRepository, c cache.Cache, exec *resilience.Executor, log zerolog.Logger) *UserService {
	return &UserService{repo: repo, posts: posts, cache: c, exec: exec, log: log}
}

// FindByID returns the user, or (nil, nil) when the backend is unavailable.
func (s *UserService) FindByID(ctx context.Context, id string) (*domain.User, error) {
	var cached domain.User
	if s.cache.Get(ctx, cache.RegionUsers, "id:"+id, &cached) {
		return &cached, nil
	}

	user, err := resilience.Execute(ctx, s.exec, "users.FindByID", func(ctx context.Context) (*domain.User, error) {
		return s.repo.FindByID(ctx, id)
	})
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, err
		}
		return nil, s.fallback("users.FindByID", err)
	}

	s.cache.Set(ctx, cache.RegionUsers, "id:"+id, user)
	return user, nil
}

// FindByIDWithPosts fetches the user and their posts in one repository
// operation. Not cached: the combined view is invalidated by both user and
// post writes, and callers of this variant want a fresh join.
func (s *UserService) FindByIDWithPosts(ctx context.Context, id string) (*domain.UserWithPosts, error) {
	uwp, err := resilience.Execute(ctx, s.exec, "users.FindByIDWithPosts", func(ctx context.Context) (*domain.UserWithPosts, error) {
		return s.repo.FindByIDWithPosts(ctx, id)
	})
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, err
		}
		return nil, s.fallback("users.FindByIDWithPosts", err)
	}
	return uwp, nil
}

func (s *UserService) FindByUsername(ctx context.Context, username string) (*domain.User, error) {
	var cached domain.User
	if s.cache.Get(ctx, cache.RegionUsers, "username:"+username, &cached) {
		return &cached, nil
	}

	user, err := resilience.Execute(ctx, s.exec, "users.FindByUsername", func(ctx context.Context) (*domain.User, error) {
		return s.repo.FindByUsername(ctx, username)
	})
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, err
		}
		return nil, s.fallback("users.FindByUsername", err)
	}

	s.cache.Set(ctx, cache.RegionUsers, "username:"+username, user)
	return user, nil
}

func (s *UserService) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	var cached domain.User
	if s.cache.Get(ctx, cache.RegionUsers, "email:"+email, &cached) {
		return &cached, nil
	}

	user, err := resilience.Execute(ctx, s.exec, "users.FindByEmail", func(ctx context.Context) (*domain.User, error) {
		return s.repo.FindByEmail(ctx, email)
	})
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, err
		}
		return nil, s.fallback("users.FindByEmail", err)
	}

	s.cache.Set(ctx, cache.RegionUsers, "email:"+email, user)
	return user, nil
}

// FindByRole is a dynamic listing and is not cached.
func (s *UserService) FindByRole(ctx context.Context, role domain.Role) ([]domain.User, error) {
	users, err := resilience.Execute(ctx, s.exec, "users.FindByRole", func(ctx context.Context) ([]domain.User, error) {
		return s.repo.FindByRole(ctx, role)
	})
	if err != nil {
		return []domain.User{}, s.fallback("users.FindByRole", err)
	}
	return users, nil
}

// FindAll returns every user, served from the "users:all" region when warm.
// On backend failure the fallback is an empty list, not an error.
func (s *UserService) FindAll(ctx context.Context) ([]domain.User, error) {
	var cached []domain.User
	if s.cache.Get(ctx, cache.RegionUsersAll, "all", &cached) {
		return cached, nil
	}

	users, err := resilience.Execute(ctx, s.exec, "users.FindAll", func(ctx context.Context) ([]domain.User, error) {
		return s.repo.FindAll(ctx)
	})
	if err != nil {
		return []domain.User{}, s.fallback("users.FindAll", err)
	}

	s.cache.Set(ctx, cache.RegionUsersAll, "all", users)
	return users, nil
}

// Search is dynamic and not cached.
func (s *UserService) Search(ctx context.Context, term string, limit, offset int64) ([]domain.User, error) {
	users, err := resilience.Execute(ctx, s.exec, "users.Search", func(ctx context.Context) ([]domain.User, error) {
		return s.repo.Search(ctx, term, limit, offset)
	})
	if err != nil {
		return []domain.User{}, s.fallback("users.Search", err)
	}
	return users, nil
}

func (s *UserService) ExistsByUsername(ctx context.Context, username string) (bool, error) {
	return s.repo.ExistsByUsername(ctx, username)
}

// Create registers a new account. Uniqueness of username and email is
// checked against current persisted state; the password is hashed before it
// ever reaches the repository.
func (s *UserService) Create(ctx context.Context, in ports.CreateUserInput) (*domain.User, error) {
	if err := domain.ValidateNewUser(in.Username, in.Email, in.Password); err != nil {
		return nil, err
	}
	role := in.Role
	if role == "" {
		role = domain.RoleUser
	}
	if !role.Valid() {
		return nil, domain.NewValidationError(domain.FieldError{Field: "role", Message: "unknown role"})
	}

	if taken, err := s.repo.ExistsByUsername(ctx, in.Username); err != nil {
		return nil, err
	} else if taken {
		return nil, domain.ErrUsernameTaken
	}
	if taken, err := s.repo.ExistsByEmail(ctx, in.Email); err != nil {
		return nil, err
	} else if taken {
		return nil, domain.ErrEmailTaken
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	created, err := resilience.Execute(ctx, s.exec, "users.Create", func(ctx context.Context) (*domain.User, error) {
		return s.repo.Create(ctx, &domain.User{
			Username:     in.Username,
			Email:        in.Email,
			PasswordHash: string(hash),
			Role:         role,
			CreatedAt:    now,
			UpdatedAt:    now,
		})
	})
	if err != nil {
		return nil, unavailable(err)
	}

	s.cache.InvalidateRegion(ctx, cache.RegionUsers)
	s.cache.InvalidateRegion(ctx, cache.RegionUsersAll)
	s.log.Info().Str("user_id", created.ID).Str("username", created.Username).Msg("user created")
	return created, nil
}

// Update applies a partial update: only non-nil fields change. Uniqueness is
// re-checked against current persisted state, and setting a field to its
// existing value is a valid no-op. On success every cache entry that could
// hold a stale view is evicted: the id key, the old and new username/email
// keys, and the whole "users:all" region.
func (s *UserService) Update(ctx context.Context, id string, in ports.UserUpdateInput) (*domain.User, error) {
	user, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	oldUsername, oldEmail := user.Username, user.Email

	if in.Name != nil && *in.Name != user.Username {
		if n := len(*in.Name); n < 3 || n > 50 {
			return nil, domain.NewValidationError(domain.FieldError{Field: "username", Message: "username must be between 3 and 50 characters"})
		}
		if taken, err := s.repo.ExistsByUsername(ctx, *in.Name); err != nil {
			return nil, err
		} else if taken {
			return nil, domain.ErrUsernameTaken
		}
		user.Username = *in.Name
	}
	if in.Email != nil && *in.Email != user.Email {
		if *in.Email == "" {
			return nil, domain.NewValidationError(domain.FieldError{Field: "email", Message: "email cannot be blank"})
		}
		if taken, err := s.repo.ExistsByEmail(ctx, *in.Email); err != nil {
			return nil, err
		} else if taken {
			return nil, domain.ErrEmailTaken
		}
		user.Email = *in.Email
	}

	user.UpdatedAt = time.Now().UTC()
	updated, err := resilience.Execute(ctx, s.exec, "users.Update", func(ctx context.Context) (*domain.User, error) {
		return s.repo.Update(ctx, user)
	})
	if err != nil {
		return nil, unavailable(err)
	}

	s.cache.Delete(ctx, cache.RegionUsers,
		"id:"+id,
		"username:"+oldUsername, "username:"+updated.Username,
		"email:"+oldEmail, "email:"+updated.Email,
	)
	s.cache.InvalidateRegion(ctx, cache.RegionUsersAll)
	s.log.Info().Str("user_id", id).Msg("user updated")
	return updated, nil
}

// Delete removes the user and, by cascade, every post they own. All user and
// post cache regions that could reference them are invalidated.
func (s *UserService) Delete(ctx context.Context, id string) error {
	if _, err := s.repo.FindByID(ctx, id); err != nil {
		return err
	}

	_, err := resilience.Execute(ctx, s.exec, "users.Delete", func(ctx context.Context) (struct{}, error) {
		if err := s.posts.DeleteByUserID(ctx, id); err != nil {
			return struct{}{}, err
		}
		return struct{}{}, s.repo.Delete(ctx, id)
	})
	if err != nil {
		return unavailable(err)
	}

	s.cache.InvalidateRegion(ctx, cache.RegionUsers)
	s.cache.InvalidateRegion(ctx, cache.RegionUsersAll)
	s.cache.InvalidateRegion(ctx, cache.RegionPosts)
	s.cache.InvalidateRegion(ctx, cache.RegionPostsAll)
	s.cache.InvalidateRegion(ctx, cache.RegionPostsUser)
	s.log.Info().Str("user_id", id).Msg("user deleted with owned posts")
	return nil
}

// fallback logs the failure and absorbs it. The caller substitutes a safe
// empty result, so reads degrade instead of erroring.
func (s *UserService) fallback(op string, err error) error {
	metrics.FallbacksTotal.WithLabelValues(op).Inc()
	s.log.Warn().Err(err).Str("operation", op).Msg("serving fallback result")
	return nil
}
