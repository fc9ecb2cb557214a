package store

import (
	"context"
	"sync"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
)

// Store provides database access to all raw objects.
type Store struct {
	driver Driver

	// profileCache holds clones; callers never see cached pointers.
	profileCache *expirable.LRU[string, *UserProfile]
	creditMu     sync.Mutex
}

// Config contains cache settings for Store.
type Config struct {
	ProfileCacheSize int
	ProfileCacheTTL  time.Duration
}

// DefaultConfig returns the default cache settings.
func DefaultConfig() Config {
	return Config{
		ProfileCacheSize: 1000,
		ProfileCacheTTL:  10 * time.Minute,
	}
}

// New creates a new instance of Store.
func New(driver Driver, cfg Config) *Store {
	if cfg.ProfileCacheSize <= 0 {
		cfg.ProfileCacheSize = DefaultConfig().ProfileCacheSize
	}
	if cfg.ProfileCacheTTL <= 0 {
		cfg.ProfileCacheTTL = DefaultConfig().ProfileCacheTTL
	}
	return &Store{
		driver:       driver,
		profileCache: expirable.NewLRU[string, *UserProfile](cfg.ProfileCacheSize, nil, cfg.ProfileCacheTTL),
	}
}

// Migrate prepares the underlying schema.
func (s *Store) Migrate(ctx context.Context) error {
	return s.driver.Migrate(ctx)
}

func (s *Store) Close() error {
	s.profileCache.Purge()
	return s.driver.Close()
}
