package service

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"

	"github.com/blogforge/content-api/internal/api/metrics"
	"github.com/blogforge/content-api/internal/cache"
	"github.com/blogforge/content-api/internal/core/domain"
	"github.com/blogforge/content-api/internal/core/ports"
	"github.com/blogforge/content-api/internal/resilience"
)

// PostService layers cache-aside reads and resilience over the post
// repository. Cache regions: "posts" (id keys), "posts:all" (the full
// newest-first listing), "posts:user" (per-author listings).
type PostService struct {
	repo  ports.PostRepository
	users ports.UserRepository
	cache cache.Cache
	exec  *resilience.Executor
	log   zerolog.Logger
}

func NewPostService(repo ports.PostRepository, users ports.UserRepository, c cache.Cache, exec *resilience.Executor, log zerolog.Logger) *PostService {
	return &PostService{repo: repo, users: users, cache: c, exec: exec, log: log}
}

// FindByID returns the post, or (nil, nil) when the backend is unavailable.
func (s *PostService) FindByID(ctx context.Context, id string) (*domain.Post, error) {
	var cached domain.Post
	if s.cache.Get(ctx, cache.RegionPosts, "id:"+id, &cached) {
		return &cached, nil
	}

	post, err := resilience.Execute(ctx, s.exec, "posts.FindByID", func(ctx context.Context) (*domain.Post, error) {
		return s.repo.FindByID(ctx, id)
	})
	if err != nil {
		if errors.Is(err, domain.ErrPostNotFound) {
			return nil, err
		}
		return nil, s.fallback("posts.FindByID", err)
	}

	s.cache.Set(ctx, cache.RegionPosts, "id:"+id, post)
	return post, nil
}

// FindAll returns every post newest first, cached under "posts:all".
func (s *PostService) FindAll(ctx context.Context) ([]domain.Post, error) {
	var cached []domain.Post
	if s.cache.Get(ctx, cache.RegionPostsAll, "all", &cached) {
		return cached, nil
	}

	posts, err := resilience.Execute(ctx, s.exec, "posts.FindAll", func(ctx context.Context) ([]domain.Post, error) {
		return s.repo.FindAll(ctx)
	})
	if err != nil {
		return []domain.Post{}, s.fallback("posts.FindAll", err)
	}

	s.cache.Set(ctx, cache.RegionPostsAll, "all", posts)
	return posts, nil
}

// FindByUserID returns the author's posts, cached per user id.
func (s *PostService) FindByUserID(ctx context.Context, userID string) ([]domain.Post, error) {
	var cached []domain.Post
	if s.cache.Get(ctx, cache.RegionPostsUser, userID, &cached) {
		return cached, nil
	}

	posts, err := resilience.Execute(ctx, s.exec, "posts.FindByUserID", func(ctx context.Context) ([]domain.Post, error) {
		return s.repo.FindByUserID(ctx, userID)
	})
	if err != nil {
		return []domain.Post{}, s.fallback("posts.FindByUserID", err)
	}

	s.cache.Set(ctx, cache.RegionPostsUser, userID, posts)
	return posts, nil
}

// Search is dynamic and not cached. It delegates to the real repository
// search rather than returning a canned placeholder.
func (s *PostService) Search(ctx context.Context, term string, limit, offset int64) ([]domain.Post, error) {
	posts, err := resilience.Execute(ctx, s.exec, "posts.Search", func(ctx context.Context) ([]domain.Post, error) {
		return s.repo.Search(ctx, term, limit, offset)
	})
	if err != nil {
		return []domain.Post{}, s.fallback("posts.Search", err)
	}
	return posts, nil
}

// CountByUser counts without fetching; not cached.
func (s *PostService) CountByUser(ctx context.Context, userID string) (int64, error) {
	n, err := resilience.Execute(ctx, s.exec, "posts.CountByUser", func(ctx context.Context) (int64, error) {
		return s.repo.CountByUser(ctx, userID)
	})
	if err != nil {
		return 0, s.fallback("posts.CountByUser", err)
	}
	return n, nil
}

// Create stores a new post for an existing author and evicts the aggregate
// listing and the author's own listing.
func (s *PostService) Create(ctx context.Context, in ports.CreatePostInput) (*domain.Post, error) {
	if err := domain.ValidatePostContent(in.Title, in.Content); err != nil {
		return nil, err
	}
	if in.UserID == "" {
		return nil, domain.NewValidationError(domain.FieldError{Field: "user_id", Message: "post must be associated with a user"})
	}
	if _, err := s.users.FindByID(ctx, in.UserID); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	created, err := resilience.Execute(ctx, s.exec, "posts.Create", func(ctx context.Context) (*domain.Post, error) {
		return s.repo.Create(ctx, &domain.Post{
			Title:     in.Title,
			Content:   in.Content,
			UserID:    in.UserID,
			CreatedAt: now,
			UpdatedAt: now,
		})
	})
	if err != nil {
		return nil, unavailable(err)
	}

	s.cache.InvalidateRegion(ctx, cache.RegionPostsAll)
	s.cache.Delete(ctx, cache.RegionPostsUser, in.UserID)
	s.log.Info().Str("post_id", created.ID).Str("user_id", in.UserID).Msg("post created")
	return created, nil
}

// Update applies a partial update of title and content. Eviction is coarse
// for the per-user region: concurrent writers make targeted keys unsafe.
func (s *PostService) Update(ctx context.Context, id string, in ports.PostUpdateInput) (*domain.Post, error) {
	post, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	title, content := post.Title, post.Content
	if in.Title != nil {
		title = *in.Title
	}
	if in.Content != nil {
		content = *in.Content
	}
	if err := domain.ValidatePostContent(title, content); err != nil {
		return nil, err
	}
	post.Title = title
	post.Content = content
	post.UpdatedAt = time.Now().UTC()

	updated, err := resilience.Execute(ctx, s.exec, "posts.Update", func(ctx context.Context) (*domain.Post, error) {
		return s.repo.Update(ctx, post)
	})
	if err != nil {
		return nil, unavailable(err)
	}

	s.evictPost(ctx, id)
	s.log.Info().Str("post_id", id).Msg("post updated")
	return updated, nil
}

// Delete removes the post and evicts every region that could reference it.
func (s *PostService) Delete(ctx context.Context, id string) error {
	if _, err := s.repo.FindByID(ctx, id); err != nil {
		return err
	}
	_, err := resilience.Execute(ctx, s.exec, "posts.Delete", func(ctx context.Context) (struct{}, error) {
		return struct{}{}, s.repo.Delete(ctx, id)
	})
	if err != nil {
		return unavailable(err)
	}

	s.evictPost(ctx, id)
	s.log.Info().Str("post_id", id).Msg("post deleted")
	return nil
}

func (s *PostService) evictPost(ctx context.Context, id string) {
	s.cache.Delete(ctx, cache.RegionPosts, "id:"+id)
	s.cache.InvalidateRegion(ctx, cache.RegionPostsAll)
	s.cache.InvalidateRegion(ctx, cache.RegionPostsUser)
}

func (s *PostService) fallback(op string, err error) error {
	metrics.FallbacksTotal.WithLabelValues(op).Inc()
	s.log.Warn().Err(err).Str("operation", op).Msg("serving fallback result")
	return nil
}
