package sqlite

import (
	"context"

	"github.com/pkg/errors"

	"github.com/hrygo/plotbuddy/store"
)

func (d *DB) CreateStory(ctx context.Context, create *store.Story) (*store.Story, error) {
	_, err := d.db.ExecContext(ctx, `
		INSERT INTO story (id, user_id, genre, mood, length, text, source, created_ts)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
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
		return nil, errors.Wrap(err, "failed to create story")
	}
	story := *create
	return &story, nil
}

func (d *DB) ListStories(ctx context.Context, find *store.FindStory) ([]*store.Story, error) {
	query := `
		SELECT id, user_id, genre, mood, length, text, source, created_ts
		FROM story
		WHERE user_id = ?
		ORDER BY created_ts DESC, rowid DESC`
	args := []any{find.UserID}
	if find.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, find.Limit)
	}

	rows, err := d.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list stories")
	}
	defer rows.Close()

	list := []*store.Story{}
	for rows.Next() {
		var s store.Story
		if err := rows.Scan(&s.ID, &s.UserID, &s.Genre, &s.Mood, &s.Length, &s.Text, &s.Source, &s.CreatedTs); err != nil {
			return nil, errors.Wrap(err, "failed to scan story")
		}
		list = append(list, &s)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "failed to iterate stories")
	}
	return list, nil
}
