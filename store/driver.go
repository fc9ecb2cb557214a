package store

import (
	"context"
	"errors"
)

// ErrNotFound is returned by drivers when a record does not exist.
var ErrNotFound = errors.New("store: not found")

// Driver is an interface for store driver.
// It contains all methods that store database driver should implement.
type Driver interface {
	Close() error

	// Migrate creates the schema if it does not exist yet.
	Migrate(ctx context.Context) error

	// UserProfile model related methods. GetUserProfile returns ErrNotFound
	// for unknown users.
	GetUserProfile(ctx context.Context, userID string) (*UserProfile, error)
	UpsertUserProfile(ctx context.Context, upsert *UserProfile) (*UserProfile, error)

	// InteractionHistory model related methods. GetInteractionHistory returns
	// ErrNotFound for users with no recorded history.
	GetInteractionHistory(ctx context.Context, userID string) (*InteractionHistory, error)
	UpsertInteractionHistory(ctx context.Context, upsert *InteractionHistory) (*InteractionHistory, error)

	// Story model related methods.
	CreateStory(ctx context.Context, create *Story) (*Story, error)
	ListStories(ctx context.Context, find *FindStory) ([]*Story, error)
}
