package routing

import (
	"crypto/sha256"
	"encoding/hex"
	"log/slog"
	"sync"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
)

// RouterCache provides LRU caching for routing decisions keyed by the
// normalized message.
type RouterCache struct {
	cache          *expirable.LRU[string, Decision]
	capacity       int
	hitCount       int64
	missCount      int64
	lastStatsReset time.Time
	statsMu        sync.Mutex
}

// CacheConfig contains configuration for RouterCache.
type CacheConfig struct {
	Capacity int           // Maximum number of entries (default: 500)
	TTL      time.Duration // Entry lifetime (default: 5min)
}

// NewRouterCache creates a new router cache with specified configuration.
func NewRouterCache(cfg CacheConfig) *RouterCache {
	if cfg.Capacity <= 0 {
		cfg.Capacity = 500
	}
	if cfg.TTL <= 0 {
		cfg.TTL = 5 * time.Minute
	}

	return &RouterCache{
		cache:          expirable.NewLRU[string, Decision](cfg.Capacity, nil, cfg.TTL),
		capacity:       cfg.Capacity,
		lastStatsReset: time.Now(),
	}
}

// Get retrieves a cached routing decision.
func (c *RouterCache) Get(normalized string) (Decision, bool) {
	d, found := c.cache.Get(c.hashKey(normalized))
	c.statsMu.Lock()
	if found {
		c.hitCount++
	} else {
		c.missCount++
	}
	c.statsMu.Unlock()

	if found {
		slog.Debug("router cache hit", "input", truncate(normalized, 50), "route", d.Route)
	}
	return d, found
}

// Set stores a routing decision.
func (c *RouterCache) Set(normalized string, d Decision) {
	c.cache.Add(c.hashKey(normalized), d)
}

// Invalidate removes a specific entry from the cache.
func (c *RouterCache) Invalidate(normalized string) {
	c.cache.Remove(c.hashKey(normalized))
}

// Clear removes all entries from the cache and resets statistics.
func (c *RouterCache) Clear() {
	c.cache.Purge()
	c.statsMu.Lock()
	c.hitCount = 0
	c.missCount = 0
	c.lastStatsReset = time.Now()
	c.statsMu.Unlock()
}

// Stats returns cache statistics.
type Stats struct {
	Hits      int64   `json:"hits"`
	Misses    int64   `json:"misses"`
	HitRate   float64 `json:"hit_rate"`
	Size      int     `json:"size"`
	Capacity  int     `json:"capacity"`
	UptimeSec int64   `json:"uptime_sec"`
}

// GetStats returns current cache statistics.
func (c *RouterCache) GetStats() Stats {
	c.statsMu.Lock()
	defer c.statsMu.Unlock()

	total := c.hitCount + c.missCount
	hitRate := 0.0
	if total > 0 {
		hitRate = float64(c.hitCount) / float64(total)
	}

	return Stats{
		Hits:      c.hitCount,
		Misses:    c.missCount,
		HitRate:   hitRate,
		Size:      c.cache.Len(),
		Capacity:  c.capacity,
		UptimeSec: int64(time.Since(c.lastStatsReset).Seconds()),
	}
}

// hashKey creates a stable hash key for input.
func (c *RouterCache) hashKey(input string) string {
	hash := sha256.Sum256([]byte(input))
	return "route:" + hex.EncodeToString(hash[:8])
}
