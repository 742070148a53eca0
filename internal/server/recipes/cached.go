package recipes

import (
	"context"
	"encoding/json"
	"time"

	"github.com/dmitrijs2005/mealmate/internal/logging"
)

// CachedLookup serves repeated queries from a Cache. Cache failures are
// logged and fall through to the upstream Lookup. Not-found results are
// not cached.
type CachedLookup struct {
	next   Lookup
	cache  Cache
	ttl    time.Duration
	logger logging.Logger
}

func NewCachedLookup(next Lookup, cache Cache, ttl time.Duration, logger logging.Logger) *CachedLookup {
	return &CachedLookup{next: next, cache: cache, ttl: ttl, logger: logger}
}

func (c *CachedLookup) Categories(ctx context.Context) ([]Category, error) {
	return cached(ctx, c, "categories", func() ([]Category, error) {
		return c.next.Categories(ctx)
	})
}

func (c *CachedLookup) MealsByCategory(ctx context.Context, category string) ([]MealSummary, error) {
	return cached(ctx, c, "category:"+category, func() ([]MealSummary, error) {
		return c.next.MealsByCategory(ctx, category)
	})
}

func (c *CachedLookup) Search(ctx context.Context, query string) ([]Meal, error) {
	return cached(ctx, c, "search:"+query, func() ([]Meal, error) {
		return c.next.Search(ctx, query)
	})
}

func (c *CachedLookup) MealByID(ctx context.Context, id string) (*Meal, error) {
	return cached(ctx, c, "meal:"+id, func() (*Meal, error) {
		return c.next.MealByID(ctx, id)
	})
}

func cached[T any](ctx context.Context, c *CachedLookup, key string, load func() (T, error)) (T, error) {
	if b, ok, err := c.cache.Get(ctx, key); err != nil {
		c.logger.Warn(ctx, "recipe cache get failed", "key", key, "error", err)
	} else if ok {
		var v T
		if err := json.Unmarshal(b, &v); err == nil {
			return v, nil
		}
		c.logger.Warn(ctx, "recipe cache entry unreadable", "key", key)
	}

	v, err := load()
	if err != nil {
		return v, err
	}

	if b, err := json.Marshal(v); err == nil {
		if err := c.cache.Set(ctx, key, b, c.ttl); err != nil {
			c.logger.Warn(ctx, "recipe cache set failed", "key", key, "error", err)
		}
	}
	return v, nil
}
