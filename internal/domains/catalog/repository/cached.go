package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"library-backend/internal/domains/catalog/model"
	"library-backend/internal/infrastructure/cache"
	"library-backend/pkg/logger"
)

// cachedRepository decorates a catalog repository with a Redis cache for
// GetByID. Titles are immutable-ish metadata, so entries expire on TTL and
// need no invalidation. Availability data is never cached here.
type cachedRepository struct {
	inner RepositoryInterface
	redis *cache.RedisClient
	ttl   time.Duration
}

// NewCached wraps inner with a Redis title-metadata cache.
func NewCached(inner RepositoryInterface, redis *cache.RedisClient, ttl time.Duration) RepositoryInterface {
	return &cachedRepository{inner: inner, redis: redis, ttl: ttl}
}

func titleCacheKey(id uuid.UUID) string {
	return fmt.Sprintf("catalog:title:%s", id)
}

// Create implements RepositoryInterface.Create
func (r *cachedRepository) Create(ctx context.Context, title *model.Title) error {
	return r.inner.Create(ctx, title)
}

// GetByID implements RepositoryInterface.GetByID
func (r *cachedRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Title, error) {
	var cached model.Title
	err := r.redis.GetJSON(ctx, titleCacheKey(id), &cached)
	if err == nil {
		return &cached, nil
	}
	if !errors.Is(err, cache.ErrCacheMiss) {
		// Cache trouble is not fatal, fall through to the source of truth.
		logger.Error("title cache read failed", err)
	}

	title, err := r.inner.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := r.redis.SetJSON(ctx, titleCacheKey(id), title, r.ttl); err != nil {
		logger.Error("title cache write failed", err)
	}

	return title, nil
}

// List implements RepositoryInterface.List
func (r *cachedRepository) List(ctx context.Context) ([]model.Title, error) {
	return r.inner.List(ctx)
}
