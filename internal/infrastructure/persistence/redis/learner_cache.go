package redis

import (
	"context"
	"errors"
	"time"

	"github.com/wordwise-app/wordwise-progress/internal/domain/learner"
)

// LearnerCache implements learner.Cache over the generic Redis Cache.
type LearnerCache struct {
	cache *Cache
}

// NewLearnerCache creates a new LearnerCache.
func NewLearnerCache(cache *Cache) *LearnerCache {
	return &LearnerCache{cache: cache}
}

// Get retrieves a learner from the cache. A miss returns (nil, nil) so
// callers can fall through to the repository without error branching.
func (c *LearnerCache) Get(ctx context.Context, learnerID string) (*learner.Learner, error) {
	var l learner.Learner
	if err := c.cache.Get(ctx, LearnerKey(learnerID), &l); err != nil {
		if errors.Is(err, ErrCacheMiss) {
			return nil, nil
		}
		return nil, err
	}
	return &l, nil
}

// Set stores a learner in the cache.
func (c *LearnerCache) Set(ctx context.Context, l *learner.Learner, ttl time.Duration) error {
	if l == nil {
		return nil
	}
	if ttl <= 0 {
		ttl = TTLLearnerCache
	}
	return c.cache.Set(ctx, LearnerKey(l.ID), l, ttl)
}

// Invalidate removes the learner's cache entries.
func (c *LearnerCache) Invalidate(ctx context.Context, learnerID string) error {
	return c.cache.Delete(ctx,
		LearnerKey(learnerID),
		PrefixSnapshot+learnerID,
		PrefixLesson+learnerID,
	)
}
