package postgres

import (
	"context"
	"database/sql"

	// Import the PostgreSQL driver.
	_ "github.com/lib/pq"
	"github.com/pkg/errors"

	"github.com/hrygo/plotbuddy/internal/profile"
	"github.com/hrygo/plotbuddy/store"
)

type DB struct {
	db      *sql.DB
	profile *profile.Profile
}

// NewDB opens a PostgreSQL connection pool for profile.DSN.
func NewDB(profile *profile.Profile) (store.Driver, error) {
	if profile == nil || profile.DSN == "" {
		return nil, errors.New("dsn required")
	}

	db, err := sql.Open("postgres", profile.DSN)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to open db with dsn: %s", profile.DSN)
	}
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)

	return &DB{db: db, profile: profile}, nil
}

func (d *DB) Close() error {
	return d.db.Close()
}

var schema = []string{
	`CREATE TABLE IF NOT EXISTS user_profile (
		user_id TEXT NOT NULL PRIMARY KEY,
		subscription TEXT NOT NULL,
		stories_remaining INTEGER NOT NULL DEFAULT 0,
		favorite_genres TEXT[] NOT NULL DEFAULT '{}',
		created_stories INTEGER NOT NULL DEFAULT 0,
		member_since TEXT NOT NULL DEFAULT '',
		updated_ts BIGINT NOT NULL DEFAULT 0
	)`,
	`CREATE TABLE IF NOT EXISTS interaction_history (
		user_id TEXT NOT NULL PRIMARY KEY,
		last_approach TEXT NOT NULL DEFAULT '',
		last_advice TEXT NOT NULL DEFAULT '',
		story_genre TEXT NOT NULL DEFAULT '',
		story_mood TEXT NOT NULL DEFAULT '',
		story_length TEXT NOT NULL DEFAULT '',
		updated_ts BIGINT NOT NULL DEFAULT 0
	)`,
	`CREATE TABLE IF NOT EXISTS story (
		seq BIGSERIAL,
		id TEXT NOT NULL PRIMARY KEY,
		user_id TEXT NOT NULL,
		genre TEXT NOT NULL,
		mood TEXT NOT NULL,
		length TEXT NOT NULL,
		text TEXT NOT NULL,
		source TEXT NOT NULL,
		created_ts BIGINT NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_story_user_created ON story (user_id, created_ts DESC)`,
}

func (d *DB) Migrate(ctx context.Context) error {
	for _, stmt := range schema {
		if _, err := d.db.ExecContext(ctx, stmt); err != nil {
			return errors.Wrap(err, "failed to migrate postgres schema")
		}
	}
	return nil
}
