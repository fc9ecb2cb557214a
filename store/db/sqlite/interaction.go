package sqlite

import (
	"context"
	"database/sql"

	"github.com/pkg/errors"

	"github.com/hrygo/plotbuddy/store"
)

func (d *DB) GetInteractionHistory(ctx context.Context, userID string) (*store.InteractionHistory, error) {
	var h store.InteractionHistory
	err := d.db.QueryRowContext(ctx, `
		SELECT user_id, last_approach, last_advice, story_genre, story_mood, story_length, updated_ts
		FROM interaction_history
		WHERE user_id = ?`, userID,
	).Scan(&h.UserID, &h.LastApproach, &h.LastAdvice, &h.StoryGenre, &h.StoryMood, &h.StoryLength, &h.UpdatedTs)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, errors.Wrap(err, "failed to get interaction history")
	}
	return &h, nil
}

func (d *DB) UpsertInteractionHistory(ctx context.Context, upsert *store.InteractionHistory) (*store.InteractionHistory, error) {
	var h store.InteractionHistory
	err := d.db.QueryRowContext(ctx, `
		INSERT INTO interaction_history (user_id, last_approach, last_advice, story_genre, story_mood, story_length, updated_ts)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (user_id) DO UPDATE SET
			last_approach = excluded.last_approach,
			last_advice = excluded.last_advice,
			story_genre = excluded.story_genre,
			story_mood = excluded.story_mood,
			story_length = excluded.story_length,
			updated_ts = excluded.updated_ts
		RETURNING user_id, last_approach, last_advice, story_genre, story_mood, story_length, updated_ts`,
		upsert.UserID,
		upsert.LastApproach,
		upsert.LastAdvice,
		upsert.StoryGenre,
		upsert.StoryMood,
		upsert.StoryLength,
		upsert.UpdatedTs,
	).Scan(&h.UserID, &h.LastApproach, &h.LastAdvice, &h.StoryGenre, &h.StoryMood, &h.StoryLength, &h.UpdatedTs)
	if err != nil {
		return nil, errors.Wrap(err, "failed to upsert interaction history")
	}
	return &h, nil
}
