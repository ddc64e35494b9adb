// Package cache provides a redis read-through cache for category
// configuration. Categories are managed by an external configuration store
// and read once per ticket creation, so a short TTL is safe: a stale name
// only affects the snapshot of tickets created inside the window.
package cache

import (
	"context"
	"errors"
	"time"

	jsoniter "github.com/json-iterator/go"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/spec-kit/servicedesk/internal/domain"
	"github.com/spec-kit/servicedesk/internal/repository"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

const categoryKeyPrefix = "servicedesk:category:"

// CategoryCache wraps a CategoryRepository with redis caching. It degrades to
// pass-through when redis is unavailable.
type CategoryCache struct {
	inner  repository.CategoryRepository
	client *redis.Client
	ttl    time.Duration
	logger *zap.Logger
}

// NewCategoryCache builds the cache. A nil client disables caching.
func NewCategoryCache(inner repository.CategoryRepository, client *redis.Client, ttl time.Duration, logger *zap.Logger) *CategoryCache {
	return &CategoryCache{inner: inner, client: client, ttl: ttl, logger: logger}
}

// GetByID returns the category from redis when present, falling back to the
// underlying repository and populating the cache.
func (c *CategoryCache) GetByID(ctx context.Context, id string) (*domain.Category, error) {
	if c.client == nil {
		return c.inner.GetByID(ctx, id)
	}

	key := categoryKeyPrefix + id
	raw, err := c.client.Get(ctx, key).Bytes()
	if err == nil {
		var category domain.Category
		if err := json.Unmarshal(raw, &category); err == nil {
			return &category, nil
		}
		c.logger.Warn("discarding undecodable cached category", zap.String("key", key))
	} else if !errors.Is(err, redis.Nil) {
		c.logger.Warn("category cache read failed", zap.Error(err))
	}

	category, err := c.inner.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if encoded, err := json.Marshal(category); err == nil {
		if err := c.client.Set(ctx, key, encoded, c.ttl).Err(); err != nil {
			c.logger.Warn("category cache write failed", zap.Error(err))
		}
	}
	return category, nil
}

// List always hits the underlying repository; listings are rare and must see
// newly added categories promptly.
func (c *CategoryCache) List(ctx context.Context) ([]domain.Category, error) {
	return c.inner.List(ctx)
}
