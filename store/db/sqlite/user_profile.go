package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"

	"github.com/pkg/errors"

	"github.com/hrygo/plotbuddy/store"
)

func (d *DB) GetUserProfile(ctx context.Context, userID string) (*store.UserProfile, error) {
	var (
		p      store.UserProfile
		genres string
	)
	err := d.db.QueryRowContext(ctx, `
		SELECT user_id, subscription, stories_remaining, favorite_genres, created_stories, member_since, updated_ts
		FROM user_profile
		WHERE user_id = ?`, userID,
	).Scan(&p.UserID, &p.Subscription, &p.StoriesRemaining, &genres, &p.CreatedStories, &p.MemberSince, &p.UpdatedTs)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, errors.Wrap(err, "failed to get user profile")
	}
	if err := json.Unmarshal([]byte(genres), &p.FavoriteGenres); err != nil {
		return nil, errors.Wrap(err, "failed to decode favorite genres")
	}
	return &p, nil
}

func (d *DB) UpsertUserProfile(ctx context.Context, upsert *store.UserProfile) (*store.UserProfile, error) {
	genres := upsert.FavoriteGenres
	if genres == nil {
		genres = []string{}
	}
	genresJSON, err := json.Marshal(genres)
	if err != nil {
		return nil, errors.Wrap(err, "failed to encode favorite genres")
	}

	_, err = d.db.ExecContext(ctx, `
		INSERT INTO user_profile (user_id, subscription, stories_remaining, favorite_genres, created_stories, member_since, updated_ts)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (user_id) DO UPDATE SET
			subscription = excluded.subscription,
			stories_remaining = excluded.stories_remaining,
			favorite_genres = excluded.favorite_genres,
			created_stories = excluded.created_stories,
			member_since = excluded.member_since,
			updated_ts = excluded.updated_ts`,
		upsert.UserID,
		upsert.Subscription,
		upsert.StoriesRemaining,
		string(genresJSON),
		upsert.CreatedStories,
		upsert.MemberSince,
		upsert.UpdatedTs,
	)
	if err != nil {
		return nil, errors.Wrap(err, "failed to upsert user profile")
	}
	return d.GetUserProfile(ctx, upsert.UserID)
}
