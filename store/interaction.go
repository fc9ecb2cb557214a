package store

import (
	"context"
	"time"

	"github.com/pkg/errors"
)

// InteractionHistory remembers the last coaching exchange and story choices
// for a user.
type InteractionHistory struct {
	UserID       string
	LastApproach string
	LastAdvice   string

	// Story choices from the most recent story interaction. They fill in
	// options a later story request leaves out.
	StoryGenre  string
	StoryMood   string
	StoryLength string

	UpdatedTs int64
}

// GetInteractionHistory returns the user's history; users with none get an
// empty record.
func (s *Store) GetInteractionHistory(ctx context.Context, userID string) (*InteractionHistory, error) {
	history, err := s.driver.GetInteractionHistory(ctx, userID)
	if errors.Is(err, ErrNotFound) {
		return &InteractionHistory{UserID: userID}, nil
	}
	if err != nil {
		return nil, errors.Wrapf(err, "failed to get interaction history for user %s", userID)
	}
	return history, nil
}

func (s *Store) UpsertInteractionHistory(ctx context.Context, upsert *InteractionHistory) (*InteractionHistory, error) {
	if upsert.UserID == "" {
		return nil, errors.New("user id required")
	}
	copied := *upsert
	copied.UpdatedTs = time.Now().Unix()
	history, err := s.driver.UpsertInteractionHistory(ctx, &copied)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to upsert interaction history for user %s", upsert.UserID)
	}
	return history, nil
}
