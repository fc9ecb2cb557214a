package store

import (
	"context"
	"time"

	"github.com/pkg/errors"
)

// Subscription tiers.
const (
	SubscriptionFreeTrial = "Free Trial"
	SubscriptionMonthly   = "Monthly"
	SubscriptionQuarterly = "Quarterly"
	SubscriptionAnnual    = "Annual"
)

// ErrNoCredits is returned when a user has no stories remaining.
var ErrNoCredits = errors.New("no stories remaining")

// UserProfile is the simulated account record shown to a user.
type UserProfile struct {
	UserID           string
	Subscription     string
	StoriesRemaining int32
	FavoriteGenres   []string
	CreatedStories   int32
	MemberSince      string
	UpdatedTs        int64
}

// DefaultUserProfile returns the profile served to users that have none.
// Every call returns a fresh value.
func DefaultUserProfile(userID string) *UserProfile {
	return &UserProfile{
		UserID:           userID,
		Subscription:     SubscriptionFreeTrial,
		StoriesRemaining: 2,
		FavoriteGenres:   []string{"Mystery", "Sci-Fi"},
		CreatedStories:   3,
		MemberSince:      "2024",
	}
}

// Clone returns a deep copy of p.
func (p *UserProfile) Clone() *UserProfile {
	if p == nil {
		return nil
	}
	c := *p
	c.FavoriteGenres = append([]string(nil), p.FavoriteGenres...)
	return &c
}

// GetUserProfile returns the user's profile, or the default profile when the
// user has none.
func (s *Store) GetUserProfile(ctx context.Context, userID string) (*UserProfile, error) {
	if cached, ok := s.profileCache.Get(userID); ok {
		return cached.Clone(), nil
	}

	profile, err := s.driver.GetUserProfile(ctx, userID)
	if errors.Is(err, ErrNotFound) {
		return DefaultUserProfile(userID), nil
	}
	if err != nil {
		return nil, errors.Wrapf(err, "failed to get profile for user %s", userID)
	}

	s.profileCache.Add(userID, profile.Clone())
	return profile, nil
}

// UpsertUserProfile stores a profile and refreshes the cache.
func (s *Store) UpsertUserProfile(ctx context.Context, upsert *UserProfile) (*UserProfile, error) {
	if upsert.UserID == "" {
		return nil, errors.New("user id required")
	}
	upsert = upsert.Clone()
	upsert.UpdatedTs = time.Now().Unix()

	profile, err := s.driver.UpsertUserProfile(ctx, upsert)
	if err != nil {
		s.profileCache.Remove(upsert.UserID)
		return nil, errors.Wrapf(err, "failed to upsert profile for user %s", upsert.UserID)
	}
	s.profileCache.Add(profile.UserID, profile.Clone())
	return profile, nil
}

// ConsumeStoryCredit spends one story credit and counts a created story.
// Returns ErrNoCredits when the user has none left.
func (s *Store) ConsumeStoryCredit(ctx context.Context, userID string) (*UserProfile, error) {
	s.creditMu.Lock()
	defer s.creditMu.Unlock()

	profile, err := s.GetUserProfile(ctx, userID)
	if err != nil {
		return nil, err
	}
	if profile.StoriesRemaining <= 0 {
		return profile, ErrNoCredits
	}
	profile.StoriesRemaining--
	profile.CreatedStories++
	return s.UpsertUserProfile(ctx, profile)
}
