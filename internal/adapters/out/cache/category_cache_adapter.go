package cache

import (
	"context"
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/carewell-hms/allocation-service/internal/config"
	"github.com/carewell-hms/allocation-service/internal/core/ports/out"
)

// CategoryCacheAdapter is an in-process LRU over diagnostic-test category
// lookups. Categories change rarely; the catalog publishes invalidation
// events consumed by the RabbitMQ listener when they do.
type CategoryCacheAdapter struct {
	cache  *lru.Cache[string, string]
	mu     sync.RWMutex
	logger out.LoggerPort
}

func NewCategoryCacheAdapter(cfg *config.Config, logger out.LoggerPort) (*CategoryCacheAdapter, error) {
	cache, err := lru.New[string, string](cfg.Cache.CategorySize)
	if err != nil {
		logger.Error("cache.init.failed", out.LogFields{
			"error": err.Error(),
			"size":  cfg.Cache.CategorySize,
		})
		return nil, err
	}

	return &CategoryCacheAdapter{
		cache:  cache,
		logger: logger.WithModule("CategoryCacheAdapter"),
	}, nil
}

func (c *CategoryCacheAdapter) GetTestCategory(ctx context.Context, testID string) (string, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	category, exists := c.cache.Get(testID)
	if !exists {
		c.logger.Debug("cache.category.miss", out.LogFields{
			"testId": testID,
		})
		return "", false
	}

	c.logger.Debug("cache.category.hit", out.LogFields{
		"testId":   testID,
		"category": category,
	})
	return category, true
}

func (c *CategoryCacheAdapter) StoreTestCategory(ctx context.Context, testID, category string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.cache.Add(testID, category)
}

func (c *CategoryCacheAdapter) InvalidateTestCategory(ctx context.Context, testID string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.cache.Remove(testID)
	c.logger.Debug("cache.category.invalidated", out.LogFields{
		"testId": testID,
	})
}
