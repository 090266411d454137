package persistence

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/dfryer1193/blogeditor/blog/domain"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

const (
	defaultCacheTTL       = 5 * time.Minute
	defaultCacheKeyPrefix = "blogeditor:"
)

// CacheConfig controls the Redis read cache
type CacheConfig struct {
	TTL       time.Duration
	KeyPrefix string
}

// DefaultCacheConfig returns the cache settings used when none are given
func DefaultCacheConfig() *CacheConfig {
	return &CacheConfig{
		TTL:       defaultCacheTTL,
		KeyPrefix: defaultCacheKeyPrefix,
	}
}

var _ domain.PostRepository = (*CachedPostRepository)(nil)

// CachedPostRepository wraps a PostRepository with a Redis read-through cache.
// Every write drops the list entry and the entry of the written post.
// Redis failures are logged and reads fall back to the wrapped repository.
type CachedPostRepository struct {
	repo   domain.PostRepository
	redis  *redis.Client
	config *CacheConfig
}

// NewCachedPostRepository creates a caching decorator around repo
func NewCachedPostRepository(repo domain.PostRepository, client *redis.Client, config *CacheConfig) *CachedPostRepository {
	if config == nil {
		config = DefaultCacheConfig()
	}
	if config.TTL <= 0 {
		config.TTL = defaultCacheTTL
	}

	return &CachedPostRepository{
		repo:   repo,
		redis:  client,
		config: config,
	}
}

func (r *CachedPostRepository) keyList() string {
	return r.config.KeyPrefix + "posts:all"
}

func (r *CachedPostRepository) keyPost(id string) string {
	return r.config.KeyPrefix + "post:" + id
}

// ListPosts serves the full list from cache when present
func (r *CachedPostRepository) ListPosts(ctx context.Context) ([]*domain.Post, error) {
	var posts []*domain.Post
	if r.load(ctx, r.keyList(), &posts) {
		return posts, nil
	}

	posts, err := r.repo.ListPosts(ctx)
	if err != nil {
		return nil, err
	}

	r.store(ctx, r.keyList(), posts)
	return posts, nil
}

// GetPost serves a single post from cache when present
func (r *CachedPostRepository) GetPost(ctx context.Context, id string) (*domain.Post, error) {
	var post domain.Post
	if id != "" && r.load(ctx, r.keyPost(id), &post) {
		return &post, nil
	}

	p, err := r.repo.GetPost(ctx, id)
	if err != nil {
		return nil, err
	}

	r.store(ctx, r.keyPost(id), p)
	return p, nil
}

// UpsertPost writes through to the wrapped repository and invalidates
func (r *CachedPostRepository) UpsertPost(ctx context.Context, p *domain.Post) error {
	if err := r.repo.UpsertPost(ctx, p); err != nil {
		return err
	}

	r.invalidate(ctx, p.ID)
	return nil
}

// DeletePost deletes through the wrapped repository and invalidates
func (r *CachedPostRepository) DeletePost(ctx context.Context, id string) error {
	if err := r.repo.DeletePost(ctx, id); err != nil {
		return err
	}

	r.invalidate(ctx, id)
	return nil
}

func (r *CachedPostRepository) load(ctx context.Context, key string, dest any) bool {
	cached, err := r.redis.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return false
	}
	if err != nil {
		log.Warn().Err(err).Str("key", key).Msg("Cache read failed")
		return false
	}

	if err := json.Unmarshal(cached, dest); err != nil {
		log.Warn().Err(err).Str("key", key).Msg("Discarding undecodable cache entry")
		return false
	}
	return true
}

func (r *CachedPostRepository) store(ctx context.Context, key string, value any) {
	data, err := json.Marshal(value)
	if err != nil {
		log.Warn().Err(err).Str("key", key).Msg("Failed to encode cache entry")
		return
	}

	if err := r.redis.Set(ctx, key, data, r.config.TTL).Err(); err != nil {
		log.Warn().Err(err).Str("key", key).Msg("Cache write failed")
	}
}

func (r *CachedPostRepository) invalidate(ctx context.Context, id string) {
	keys := []string{r.keyList()}
	if id != "" {
		keys = append(keys, r.keyPost(id))
	}

	if err := r.redis.Del(ctx, keys...).Err(); err != nil {
		log.Warn().Err(err).Strs("keys", keys).Msg("Cache invalidation failed")
	}
}
