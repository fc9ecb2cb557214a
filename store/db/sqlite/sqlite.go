package sqlite

import (
	"context"
	"database/sql"
	"strings"

	"github.com/pkg/errors"

	// Import the SQLite driver.
	_ "modernc.org/sqlite"

	"github.com/hrygo/plotbuddy/internal/profile"
	"github.com/hrygo/plotbuddy/store"
)

type DB struct {
	db      *sql.DB
	profile *profile.Profile
}

// NewDB opens the SQLite database named by profile.DSN.
func NewDB(profile *profile.Profile) (store.Driver, error) {
	if profile.DSN == "" {
		return nil, errors.New("dsn required")
	}

	// When using the `modernc.org/sqlite` driver, each pragma must be prefixed with `_pragma=`.
	// - No foreign key constraints: the schema has none.
	// - Journal mode set to WAL: it prevents reader/writer locking issues.
	separator := "?"
	if strings.Contains(profile.DSN, "?") {
		separator = "&"
	}
	dsn := profile.DSN + separator + "_pragma=foreign_keys(0)&_pragma=busy_timeout(10000)&_pragma=journal_mode(WAL)"
	sqliteDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to open db with dsn: %s", profile.DSN)
	}

	// Single connection: SQLite serializes writers anyway.
	sqliteDB.SetMaxOpenConns(1)
	sqliteDB.SetMaxIdleConns(1)
	sqliteDB.SetConnMaxLifetime(0)
	sqliteDB.SetConnMaxIdleTime(0)

	return &DB{db: sqliteDB, profile: profile}, nil
}

func (d *DB) Close() error {
	return d.db.Close()
}

var schema = []string{
	`CREATE TABLE IF NOT EXISTS user_profile (
		user_id TEXT NOT NULL PRIMARY KEY,
		subscription TEXT NOT NULL,
		stories_remaining INTEGER NOT NULL DEFAULT 0,
		favorite_genres TEXT NOT NULL DEFAULT '[]',
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
			return errors.Wrap(err, "failed to migrate sqlite schema")
		}
	}
	return nil
}
