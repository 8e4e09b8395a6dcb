package service

import (
	"context"
	"encoding/json"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/blogforge/content-api/internal/core/domain"
	"github.com/blogforge/content-api/internal/resilience"
)

// newTestExecutor builds an executor whose breaker never trips during a
// normal test run: the window needs more requests than any test makes.
func newTestExecutor() *resilience.Executor {
	breaker := resilience.NewBreaker("test", resilience.BreakerConfig{
		FailureRatio: 0.5,
		MinRequests:  1000,
		Interval:     time.Minute,
		Timeout:      time.Second,
		MaxRequests:  1,
	}, zerolog.Nop())
	return resilience.NewExecutor(breaker, 1, time.Millisecond, zerolog.Nop())
}

// memCache is an in-process Cache for tests. Entries are addressed by
// "region|key"; region invalidation drops every key under the region.
type memCache struct {
	entries map[string][]byte
}

func newMemCache() *memCache {
	return &memCache{entries: make(map[string][]byte)}
}

func (m *memCache) Get(_ context.Context, region, key string, dest any) bool {
	b, ok := m.entries[region+"|"+key]
	if !ok {
		return false
	}
	return json.Unmarshal(b, dest) == nil
}

func (m *memCache) Set(_ context.Context, region, key string, value any) {
	b, err := json.Marshal(value)
	if err != nil {
		return
	}
	m.entries[region+"|"+key] = b
}

func (m *memCache) Delete(_ context.Context, region string, keys ...string) {
	for _, key := range keys {
		delete(m.entries, region+"|"+key)
	}
}

func (m *memCache) InvalidateRegion(_ context.Context, region string) {
	for k := range m.entries {
		if strings.HasPrefix(k, region+"|") {
			delete(m.entries, k)
		}
	}
}

func (m *memCache) has(region, key string) bool {
	_, ok := m.entries[region+"|"+key]
	return ok
}

// stubUserRepo is an in-memory UserRepository. Setting err makes every
// subsequent call fail with that error, simulating a broken backend;
// errCreate fails only Create, letting the uniqueness reads succeed first.
type stubUserRepo struct {
	users     map[string]*domain.User
	nextID    int
	err       error
	errCreate error
	calls     int
}

func newStubUserRepo() *stubUserRepo {
	return &stubUserRepo{users: make(map[string]*domain.User)}
}

func (r *stubUserRepo) add(u *domain.User) *domain.User {
	r.nextID++
	clone := *u
	if clone.ID == "" {
		clone.ID = "u" + strconv.Itoa(r.nextID)
	}
	r.users[clone.ID] = &clone
	out := clone
	return &out
}

func (r *stubUserRepo) FindByID(_ context.Context, id string) (*domain.User, error) {
	r.calls++
	if r.err != nil {
		return nil, r.err
	}
	u, ok := r.users[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	clone := *u
	return &clone, nil
}

func (r *stubUserRepo) FindByIDWithPosts(ctx context.Context, id string) (*domain.UserWithPosts, error) {
	u, err := r.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return &domain.UserWithPosts{User: *u, Posts: []domain.Post{}}, nil
}

func (r *stubUserRepo) FindByUsername(_ context.Context, username string) (*domain.User, error) {
	r.calls++
	if r.err != nil {
		return nil, r.err
	}
	for _, u := range r.users {
		if u.Username == username {
			clone := *u
			return &clone, nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func (r *stubUserRepo) FindByEmail(_ context.Context, email string) (*domain.User, error) {
	r.calls++
	if r.err != nil {
		return nil, r.err
	}
	for _, u := range r.users {
		if u.Email == email {
			clone := *u
			return &clone, nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func (r *stubUserRepo) FindByRole(_ context.Context, role domain.Role) ([]domain.User, error) {
	r.calls++
	if r.err != nil {
		return nil, r.err
	}
	out := []domain.User{}
	for _, u := range r.users {
		if u.Role == role {
			out = append(out, *u)
		}
	}
	return out, nil
}

func (r *stubUserRepo) FindAll(_ context.Context) ([]domain.User, error) {
	r.calls++
	if r.err != nil {
		return nil, r.err
	}
	out := []domain.User{}
	for _, u := range r.users {
		out = append(out, *u)
	}
	return out, nil
}

func (r *stubUserRepo) Search(_ context.Context, term string, _, _ int64) ([]domain.User, error) {
	r.calls++
	if r.err != nil {
		return nil, r.err
	}
	out := []domain.User{}
	for _, u := range r.users {
		if strings.Contains(strings.ToLower(u.Username), strings.ToLower(term)) ||
			strings.Contains(strings.ToLower(u.Email), strings.ToLower(term)) {
			out = append(out, *u)
		}
	}
	return out, nil
}

func (r *stubUserRepo) ExistsByUsername(_ context.Context, username string) (bool, error) {
	if r.err != nil {
		return false, r.err
	}
	for _, u := range r.users {
		if u.Username == username {
			return true, nil
		}
	}
	return false, nil
}

func (r *stubUserRepo) ExistsByEmail(_ context.Context, email string) (bool, error) {
	if r.err != nil {
		return false, r.err
	}
	for _, u := range r.users {
		if u.Email == email {
			return true, nil
		}
	}
	return false, nil
}

func (r *stubUserRepo) Create(_ context.Context, user *domain.User) (*domain.User, error) {
	if r.err != nil {
		return nil, r.err
	}
	if r.errCreate != nil {
		return nil, r.errCreate
	}
	return r.add(user), nil
}

func (r *stubUserRepo) Update(_ context.Context, user *domain.User) (*domain.User, error) {
	if r.err != nil {
		return nil, r.err
	}
	if _, ok := r.users[user.ID]; !ok {
		return nil, domain.ErrUserNotFound
	}
	clone := *user
	r.users[user.ID] = &clone
	out := clone
	return &out, nil
}

func (r *stubUserRepo) Delete(_ context.Context, id string) error {
	if r.err != nil {
		return r.err
	}
	if _, ok := r.users[id]; !ok {
		return domain.ErrUserNotFound
	}
	delete(r.users, id)
	return nil
}

func (r *stubUserRepo) Count(_ context.Context) (int64, error) {
	if r.err != nil {
		return 0, r.err
	}
	return int64(len(r.users)), nil
}

// stubPostRepo is an in-memory PostRepository with the same failure switch.
type stubPostRepo struct {
	posts  map[string]*domain.Post
	nextID int
	err    error
	calls  int
}

func newStubPostRepo() *stubPostRepo {
	return &stubPostRepo{posts: make(map[string]*domain.Post)}
}

func (r *stubPostRepo) add(p *domain.Post) *domain.Post {
	r.nextID++
	clone := *p
	if clone.ID == "" {
		clone.ID = "p" + strconv.Itoa(r.nextID)
	}
	r.posts[clone.ID] = &clone
	out := clone
	return &out
}

func (r *stubPostRepo) FindByID(_ context.Context, id string) (*domain.Post, error) {
	r.calls++
	if r.err != nil {
		return nil, r.err
	}
	p, ok := r.posts[id]
	if !ok {
		return nil, domain.ErrPostNotFound
	}
	clone := *p
	return &clone, nil
}

func (r *stubPostRepo) FindAll(_ context.Context) ([]domain.Post, error) {
	r.calls++
	if r.err != nil {
		return nil, r.err
	}
	out := []domain.Post{}
	for _, p := range r.posts {
		out = append(out, *p)
	}
	return out, nil
}

func (r *stubPostRepo) FindByUserID(_ context.Context, userID string) ([]domain.Post, error) {
	r.calls++
	if r.err != nil {
		return nil, r.err
	}
	out := []domain.Post{}
	for _, p := range r.posts {
		if p.UserID == userID {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (r *stubPostRepo) Search(_ context.Context, term string, _, _ int64) ([]domain.Post, error) {
	r.calls++
	if r.err != nil {
		return nil, r.err
	}
	out := []domain.Post{}
	for _, p := range r.posts {
		if strings.Contains(strings.ToLower(p.Title), strings.ToLower(term)) ||
			strings.Contains(strings.ToLower(p.Content), strings.ToLower(term)) {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (r *stubPostRepo) Create(_ context.Context, post *domain.Post) (*domain.Post, error) {
	if r.err != nil {
		return nil, r.err
	}
	return r.add(post), nil
}

func (r *stubPostRepo) Update(_ context.Context, post *domain.Post) (*domain.Post, error) {
	if r.err != nil {
		return nil, r.err
	}
	if _, ok := r.posts[post.ID]; !ok {
		return nil, domain.ErrPostNotFound
	}
	clone := *post
	r.posts[post.ID] = &clone
	out := clone
	return &out, nil
}

func (r *stubPostRepo) Delete(_ context.Context, id string) error {
	if r.err != nil {
		return r.err
	}
	if _, ok := r.posts[id]; !ok {
		return domain.ErrPostNotFound
	}
	delete(r.posts, id)
	return nil
}

func (r *stubPostRepo) DeleteByUserID(_ context.Context, userID string) error {
	if r.err != nil {
		return r.err
	}
	for id, p := range r.posts {
		if p.UserID == userID {
			delete(r.posts, id)
		}
	}
	return nil
}

func (r *stubPostRepo) CountByUser(_ context.Context, userID string) (int64, error) {
	if r.err != nil {
		return 0, r.err
	}
	var n int64
	for _, p := range r.posts {
		if p.UserID == userID {
			n++
		}
	}
	return n, nil
}
