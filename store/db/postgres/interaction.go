package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/hrygo/plotbuddy/store"
)

func (d *DB) GetInteractionHistory(ctx context.Context, userID string) (*store.InteractionHistory, error) {
	var h store.InteractionHistory
	err := d.db.QueryRowContext(ctx, `
		SELECT user_id, last_approach, last_advice, story_genre, story_mood, story_length, updated_ts
		FROM interaction_history
		WHERE user_id = $1`, userID,
	).Scan(&h.UserID, &h.LastApproach, &h.LastAdvice, &h.StoryGenre, &h.StoryMood, &h.StoryLength, &h.UpdatedTs)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get interaction history: %w", err)
	}
	return &h, nil
}

func (d *DB) UpsertInteractionHistory(ctx context.Context, upsert *store.InteractionHistory) (*store.InteractionHistory, error) {
	var h store.InteractionHistory
	err := d.db.QueryRowContext(ctx, `
		INSERT INTO interaction_history (user_id, last_approach, last_advice, story_genre, story_mood, story_length, updated_ts)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (user_id) DO UPDATE SET
			last_approach = EXCLUDED.last_approach,
			last_advice = EXCLUDED.last_advice,
			story_genre = EXCLUDED.story_genre,
			story_mood = EXCLUDED.story_mood,
			story_length = EXCLUDED.story_length,
			updated_ts = EXCLUDED.updated_ts
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
		return nil, fmt.Errorf("failed to upsert interaction history: %w", err)
	}
	return &h, nil
}
