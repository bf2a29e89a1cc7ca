// Package cache provides the in-process score cache.
package cache

import (
	"time"

	"github.com/patrickmn/go-cache"

	"github.com/turtacn/tips/internal/domain/models"
	"github.com/turtacn/tips/internal/domain/service"
)

var _ service.ScoreCache = (*ScoreCache)(nil)

// ScoreCache memoizes score results in memory. Keys come from
// ArtifactMetadata.CacheKey, so a reload never serves results of the previous model.
// Entries hold no customer identity and are never persisted.
type ScoreCache struct {
	l1  *cache.Cache
	ttl time.Duration
}

// NewScoreCache creates a cache with the given entry TTL and purge interval.
func NewScoreCache(ttl, cleanupInterval time.Duration) *ScoreCache {
	return &ScoreCache{
		l1:  cache.New(ttl, cleanupInterval),
		ttl: ttl,
	}
}

func (c *ScoreCache) Get(key string) (models.ScoreResult, bool) {
	item, found := c.l1.Get(key)
	if !found {
		return models.ScoreResult{}, false
	}
	r, ok := item.(models.ScoreResult)
	return r, ok
}

func (c *ScoreCache) Set(key string, result models.ScoreResult) {
	c.l1.Set(key, result, c.ttl)
}

// Flush drops every entry, e.g. after an artifact reload.
func (c *ScoreCache) Flush() {
	c.l1.Flush()
}

// Len is the number of entries, including expired ones not yet purged.
func (c *ScoreCache) Len() int {
	return c.l1.ItemCount()
}
