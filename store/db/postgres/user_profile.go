package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"

	"github.com/hrygo/plotbuddy/store"
)

func (d *DB) GetUserProfile(ctx context.Context, userID string) (*store.UserProfile, error) {
	var p store.UserProfile
	err := d.db.QueryRowContext(ctx, `
		SELECT user_id, subscription, stories_remaining, favorite_genres, created_stories, member_since, updated_ts
		FROM user_profile
		WHERE user_id = $1`, userID,
	).Scan(&p.UserID, &p.Subscription, &p.StoriesRemaining, pq.Array(&p.FavoriteGenres), &p.CreatedStories, &p.MemberSince, &p.UpdatedTs)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user profile: %w", err)
	}
	return &p, nil
}

func (d *DB) UpsertUserProfile(ctx context.Context, upsert *store.UserProfile) (*store.UserProfile, error) {
	genres := upsert.FavoriteGenres
	if genres == nil {
		genres = []string{}
	}

	var p store.UserProfile
	err := d.db.QueryRowContext(ctx, `
		INSERT INTO user_profile (user_id, subscription, stories_remaining, favorite_genres, created_stories, member_since, updated_ts)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (user_id) DO UPDATE SET
			subscription = EXCLUDED.subscription,
			stories_remaining = EXCLUDED.stories_remaining,
			favorite_genres = EXCLUDED.favorite_genres,
			created_stories = EXCLUDED.created_stories,
			member_since = EXCLUDED.member_since,
			updated_ts = EXCLUDED.updated_ts
		RETURNING user_id, subscription, stories_remaining, favorite_genres, created_stories, member_since, updated_ts`,
		upsert.UserID,
		upsert.Subscription,
		upsert.StoriesRemaining,
		pq.Array(genres),
		upsert.CreatedStories,
		upsert.MemberSince,
		upsert.UpdatedTs,
	).Scan(&p.UserID, &p.Subscription, &p.StoriesRemaining, pq.Array(&p.FavoriteGenres), &p.CreatedStories, &p.MemberSince, &p.UpdatedTs)
	if err != nil {
		return nil, fmt.Errorf("failed to upsert user profile: %w", err)
	}
	return &p, nil
}
