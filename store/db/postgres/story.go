package postgres

import (
	"context"
	"fmt"

	"github.com/hrygo/plotbuddy/store"
)

func (d *DB) CreateStory(ctx context.Context, create *store.Story) (*store.Story, error) {
	_, err := d.db.ExecContext(ctx, `
		INSERT INTO story (id, user_id, genre, mood, length, text, source, created_ts)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		create.ID,
		create.UserID,
		create.Genre,
		create.Mood,
		create.Length,
		create.Text,
		create.Source,
		create.CreatedTs,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create story: %w", err)
	}
	story := *create
	return &story, nil
}

func (d *DB) ListStories(ctx context.Context, find *store.FindStory) ([]*store.Story, error) {
	query := `
		SELECT id, user_id, genre, mood, length, text, source, created_ts
		FROM story
		WHERE user_id = $1
		ORDER BY created_ts DESC, seq DESC`
	args := []any{find.UserID}
	if find.Limit > 0 {
		query += " LIMIT $2"
		args = append(args, find.Limit)
	}

	rows, err := d.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list stories: %w", err)
	}
	defer rows.Close()

	list := []*store.Story{}
	for rows.Next() {
		var s store.Story
		if err := rows.Scan(&s.ID, &s.UserID, &s.Genre, &s.Mood, &s.Length, &s.Text, &s.Source, &s.CreatedTs); err != nil {
			return nil, fmt.Errorf("failed to scan story: %w", err)
		}
		list = append(list, &s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate stories: %w", err)
	}
	return list, nil
}
