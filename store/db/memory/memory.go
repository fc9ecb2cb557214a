// Package memory is a process-local store driver. All data is lost on restart.
package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/hrygo/plotbuddy/store"
)

type DB struct {
	mu        sync.RWMutex
	profiles  map[string]*store.UserProfile
	histories map[string]*store.InteractionHistory
	stories   map[string][]*store.Story
}

// NewDB creates an empty in-memory driver.
func NewDB() store.Driver {
	return &DB{
		profiles:  make(map[string]*store.UserProfile),
		histories: make(map[string]*store.InteractionHistory),
		stories:   make(map[string][]*store.Story),
	}
}

func (d *DB) Close() error {
	return nil
}

func (d *DB) Migrate(context.Context) error {
	return nil
}

func (d *DB) GetUserProfile(_ context.Context, userID string) (*store.UserProfile, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	p, ok := d.profiles[userID]
	if !ok {
		return nil, store.ErrNotFound
	}
	return p.Clone(), nil
}

func (d *DB) UpsertUserProfile(_ context.Context, upsert *store.UserProfile) (*store.UserProfile, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.profiles[upsert.UserID] = upsert.Clone()
	return upsert.Clone(), nil
}

func (d *DB) GetInteractionHistory(_ context.Context, userID string) (*store.InteractionHistory, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	h, ok := d.histories[userID]
	if !ok {
		return nil, store.ErrNotFound
	}
	copied := *h
	return &copied, nil
}

func (d *DB) UpsertInteractionHistory(_ context.Context, upsert *store.InteractionHistory) (*store.InteractionHistory, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	stored := *upsert
	d.histories[upsert.UserID] = &stored
	result := stored
	return &result, nil
}

func (d *DB) CreateStory(_ context.Context, create *store.Story) (*store.Story, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	stored := *create
	d.stories[create.UserID] = append(d.stories[create.UserID], &stored)
	result := stored
	return &result, nil
}

func (d *DB) ListStories(_ context.Context, find *store.FindStory) ([]*store.Story, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	all := d.stories[find.UserID]
	list := make([]*store.Story, 0, len(all))
	for i := len(all) - 1; i >= 0; i-- {
		copied := *all[i]
		list = append(list, &copied)
	}
	// Insertion order breaks ties between stories created in the same second.
	sort.SliceStable(list, func(i, j int) bool {
		return list[i].CreatedTs > list[j].CreatedTs
	})
	if find.Limit > 0 && len(list) > find.Limit {
		list = list[:find.Limit]
	}
	return list, nil
}
