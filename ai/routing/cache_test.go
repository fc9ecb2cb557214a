package routing

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestRouterCache_BasicOperations(t *testing.T) {
	cache := NewRouterCache(CacheConfig{Capacity: 10, TTL: time.Minute})

	cache.Set("test input", Decision{Route: RouteFAQ, Rule: "faq", Confidence: 0.9})
	d, found := cache.Get("test input")
	if !found {
		t.Fatal("expected cache hit, got miss")
	}
	if d.Route != RouteFAQ {
		t.Errorf("expected RouteFAQ, got %s", d.Route)
	}

	_, found = cache.Get("nonexistent")
	if found {
		t.Error("expected cache miss, got hit")
	}

	cache.Invalidate("test input")
	_, found = cache.Get("test input")
	assert.False(t, found)
}

func TestRouterCache_TTL(t *testing.T) {
	cache := NewRouterCache(CacheConfig{Capacity: 10, TTL: 50 * time.Millisecond})

	cache.Set("test1", Decision{Route: RouteGreeting})
	time.Sleep(120 * time.Millisecond)
	_, found := cache.Get("test1")
	if found {
		t.Error("expected cache miss after TTL expiration, got hit")
	}
}

func TestRouterCache_Stats(t *testing.T) {
	cache := NewRouterCache(CacheConfig{})

	stats := cache.GetStats()
	assert.Zero(t, stats.Hits)
	assert.Zero(t, stats.Misses)
	assert.Equal(t, 500, stats.Capacity)

	cache.Set("a", Decision{Route: RouteFAQ})
	cache.Get("a")
	cache.Get("a")
	cache.Get("b")

	stats = cache.GetStats()
	assert.Equal(t, int64(2), stats.Hits)
	assert.Equal(t, int64(1), stats.Misses)
	assert.InDelta(t, 2.0/3.0, stats.HitRate, 0.001)
	assert.Equal(t, 1, stats.Size)

	cache.Clear()
	stats = cache.GetStats()
	assert.Zero(t, stats.Hits)
	assert.Zero(t, stats.Size)
}

func TestRouterCache_Eviction(t *testing.T) {
	cache := NewRouterCache(CacheConfig{Capacity: 2, TTL: time.Minute})
	cache.Set("a", Decision{Route: RouteFAQ})
	cache.Set("b", Decision{Route: RouteStory})
	cache.Set("c", Decision{Route: RouteGreeting})

	_, found := cache.Get("a")
	assert.False(t, found, "oldest entry should be evicted")
	assert.Equal(t, 2, cache.GetStats().Size)
}
