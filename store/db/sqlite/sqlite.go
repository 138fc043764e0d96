// Package sqlite implements the store driver on SQLite. It is the default
// for development and small single-process deployments; use PostgreSQL when
// the routing engine runs against a shared database.
package sqlite

import (
	"context"
	"database/sql"
	"time"

	"github.com/pkg/errors"
	// Import the pure-Go SQLite driver.
	_ "modernc.org/sqlite"

	"github.com/hrygo/shopsense/internal/profile"
	"github.com/hrygo/shopsense/store"
)

type DB struct {
	db      *sql.DB
	profile *profile.Profile
}

// NewDB opens the SQLite database referenced by the profile DSN.
func NewDB(profile *profile.Profile) (store.Driver, error) {
	if profile == nil {
		return nil, errors.New("profile is nil")
	}

	// WAL keeps readers (dashboard snapshots) from blocking the engine's writes.
	db, err := sql.Open("sqlite", profile.DSN+"?_pragma=busy_timeout(10000)&_pragma=journal_mode(WAL)")
	if err != nil {
		return nil, errors.Wrapf(err, "failed to open database: %s", profile.DSN)
	}

	// A single writer avoids SQLITE_BUSY under concurrent scheduler runs.
	db.SetMaxOpenConns(1)
	db.SetConnMaxLifetime(2 * time.Hour)

	return &DB{db: db, profile: profile}, nil
}

func (d *DB) GetDB() *sql.DB {
	return d.db
}

func (d *DB) Close() error {
	return d.db.Close()
}

func (d *DB) IsInitialized(ctx context.Context) (bool, error) {
	var exists bool
	err := d.db.QueryRowContext(ctx,
		"SELECT EXISTS (SELECT 1 FROM sqlite_master WHERE type = 'table' AND name = 'conversation')",
	).Scan(&exists)
	if err != nil {
		return false, errors.Wrap(err, "failed to check if database is initialized")
	}
	return exists, nil
}

const schema = `
CREATE TABLE IF NOT EXISTS conversation (
	id TEXT PRIMARY KEY,
	status TEXT NOT NULL,
	assigned_staff_id TEXT NOT NULL DEFAULT '',
	handoff_reason TEXT NOT NULL DEFAULT '',
	created_ts BIGINT NOT NULL,
	last_message_ts BIGINT NOT NULL,
	enqueued_ts BIGINT,
	closed_ts BIGINT,
	wait_time_seconds BIGINT
);

CREATE TABLE IF NOT EXISTS handoff_entry (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	conversation_id TEXT NOT NULL,
	priority INTEGER NOT NULL DEFAULT 0,
	enqueued_ts BIGINT NOT NULL,
	assigned_staff_id TEXT NOT NULL DEFAULT '',
	assigned_ts BIGINT,
	resolved_ts BIGINT,
	wait_time_seconds BIGINT NOT NULL DEFAULT 0
);

CREATE UNIQUE INDEX IF NOT EXISTS idx_handoff_entry_live
	ON handoff_entry (conversation_id) WHERE resolved_ts IS NULL;

CREATE TABLE IF NOT EXISTS staff_presence (
	staff_id TEXT PRIMARY KEY,
	online INTEGER NOT NULL DEFAULT 0,
	status TEXT NOT NULL DEFAULT 'OFFLINE',
	workload INTEGER NOT NULL DEFAULT 0,
	max_workload INTEGER NOT NULL DEFAULT 1,
	last_seen_ts BIGINT NOT NULL,
	last_activity_ts BIGINT NOT NULL
);

CREATE TABLE IF NOT EXISTS routing_decision (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	conversation_id TEXT NOT NULL,
	intent TEXT NOT NULL,
	raw_intent TEXT NOT NULL DEFAULT '',
	confidence REAL NOT NULL DEFAULT 0,
	handoff INTEGER NOT NULL DEFAULT 0,
	handoff_reason TEXT NOT NULL DEFAULT 'NONE',
	latency_ms BIGINT NOT NULL DEFAULT 0,
	created_ts BIGINT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_routing_decision_conversation
	ON routing_decision (conversation_id);
`

func (d *DB) Migrate(ctx context.Context) error {
	if _, err := d.db.ExecContext(ctx, schema); err != nil {
		return errors.Wrap(err, "failed to apply schema")
	}
	return nil
}
