package catalog

import (
	"context"
	"sync"

	"github.com/asaskevich/EventBus"
	"github.com/stockapp/stockpos/internal/domain"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

// CategoryCache keeps the category list in memory between dialogs. It is
// invalidated explicitly through TopicCategoryChanged rather than expiring on
// a timer; concurrent cold loads are collapsed into one query.
type CategoryCache struct {
	repo CategoryRepository

	mu     sync.RWMutex
	items  []domain.Category
	loaded bool

	sf singleflight.Group
}

func NewCategoryCache(repo CategoryRepository, bus EventBus.Bus) *CategoryCache {
	c := &CategoryCache{repo: repo}
	if bus != nil {
		if err := bus.Subscribe(TopicCategoryChanged, c.Invalidate); err != nil {
			zap.L().Warn("category cache subscribe failed", zap.Error(err))
		}
	}
	return c
}

// All returns the cached category list, loading it on first use.
func (c *CategoryCache) All(ctx context.Context) ([]domain.Category, error) {
	c.mu.RLock()
	if c.loaded {
		items := c.items
		c.mu.RUnlock()
		return items, nil
	}
	c.mu.RUnlock()

	v, err, _ := c.sf.Do("load", func() (interface{}, error) {
		rows, err := c.repo.List(ctx)
		if err != nil {
			return nil, err
		}
		c.mu.Lock()
		c.items = rows
		c.loaded = true
		c.mu.Unlock()
		return rows, nil
	})
	if err != nil {
		return nil, err
	}
	return v.([]domain.Category), nil
}

// Invalidate drops the cached list; the next All reloads from the store.
func (c *CategoryCache) Invalidate() {
	c.mu.Lock()
	c.items = nil
	c.loaded = false
	c.mu.Unlock()
}
