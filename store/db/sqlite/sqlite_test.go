package sqlite

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hrygo/plotbuddy/internal/profile"
	"github.com/hrygo/plotbuddy/store"
)

func newTestDriver(t *testing.T) store.Driver {
	t.Helper()
	driver, err := NewDB(&profile.Profile{DSN: filepath.Join(t.TempDir(), "test.db")})
	require.NoError(t, err)
	require.NoError(t, driver.Migrate(context.Background()))
	t.Cleanup(func() { _ = driver.Close() })
	return driver
}

func TestNewDB_RequiresDSN(t *testing.T) {
	_, err := NewDB(&profile.Profile{})
	assert.Error(t, err)
}

func TestUserProfile(t *testing.T) {
	ctx := context.Background()
	d := newTestDriver(t)

	_, err := d.GetUserProfile(ctx, "alice")
	assert.True(t, errors.Is(err, store.ErrNotFound))

	saved, err := d.UpsertUserProfile(ctx, &store.UserProfile{
		UserID:           "alice",
		Subscription:     store.SubscriptionMonthly,
		StoriesRemaining: 5,
		FavoriteGenres:   []string{"Fantasy", "Romance"},
		MemberSince:      "2025",
		UpdatedTs:        42,
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"Fantasy", "Romance"}, saved.FavoriteGenres)

	saved.StoriesRemaining = 4
	saved.FavoriteGenres = nil
	_, err = d.UpsertUserProfile(ctx, saved)
	require.NoError(t, err)

	got, err := d.GetUserProfile(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, int32(4), got.StoriesRemaining)
	assert.Empty(t, got.FavoriteGenres)
	assert.Equal(t, store.SubscriptionMonthly, got.Subscription)
}

func TestInteractionHistory(t *testing.T) {
	ctx := context.Background()
	d := newTestDriver(t)

	_, err := d.GetInteractionHistory(ctx, "bob")
	assert.True(t, errors.Is(err, store.ErrNotFound))

	h, err := d.UpsertInteractionHistory(ctx, &store.InteractionHistory{
		UserID:       "bob",
		LastApproach: "character-first",
		LastAdvice:   "Start with a want.",
		StoryGenre:   "Mystery",
	})
	require.NoError(t, err)
	assert.Equal(t, "character-first", h.LastApproach)

	_, err = d.UpsertInteractionHistory(ctx, &store.InteractionHistory{UserID: "bob", LastApproach: "what-if"})
	require.NoError(t, err)

	got, err := d.GetInteractionHistory(ctx, "bob")
	require.NoError(t, err)
	assert.Equal(t, "what-if", got.LastApproach)
	assert.Empty(t, got.StoryGenre)
}

func TestStories(t *testing.T) {
	ctx := context.Background()
	d := newTestDriver(t)

	for i, id := range []string{"a", "b", "c"} {
		_, err := d.CreateStory(ctx, &store.Story{
			ID:        id,
			UserID:    "carol",
			Genre:     "Fantasy",
			Mood:      "epic",
			Length:    "short",
			Text:      "once upon a time",
			Source:    store.StorySourceLLM,
			CreatedTs: int64(10 + i/2),
		})
		require.NoError(t, err)
	}

	list, err := d.ListStories(ctx, &store.FindStory{UserID: "carol"})
	require.NoError(t, err)
	require.Len(t, list, 3)
	assert.Equal(t, []string{"c", "b", "a"}, []string{list[0].ID, list[1].ID, list[2].ID})

	list, err = d.ListStories(ctx, &store.FindStory{UserID: "carol", Limit: 1})
	require.NoError(t, err)
	require.Len(t, list, 1)

	_, err = d.CreateStory(ctx, &store.Story{ID: "a", UserID: "carol"})
	assert.Error(t, err, "duplicate id must fail")
}
