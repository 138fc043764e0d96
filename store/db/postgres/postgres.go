// Package postgres implements the store driver on PostgreSQL, the reference
// backend for deployments where the routing engine shares a database with
// the rest of the shop backend.
package postgres

import (
	"context"
	"database/sql"
	"time"

	// Import the PostgreSQL driver.
	_ "github.com/lib/pq"
	"github.com/pkg/errors"

	"github.com/hrygo/shopsense/internal/profile"
	"github.com/hrygo/shopsense/store"
)

type DB struct {
	db      *sql.DB
	profile *profile.Profile
}

// NewDB opens the PostgreSQL database referenced by the profile DSN.
func NewDB(profile *profile.Profile) (store.Driver, error) {
	if profile == nil {
		return nil, errors.New("profile is nil")
	}

	db, err := sql.Open("postgres", profile.DSN)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to open database: %s", profile.DSN)
	}

	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(2)
	db.SetConnMaxLifetime(2 * time.Hour)
	db.SetConnMaxIdleTime(15 * time.Minute)

	if err := db.Ping(); err != nil {
		return nil, errors.Wrap(err, "failed to ping database")
	}

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
		"SELECT EXISTS (SELECT 1 FROM information_schema.tables WHERE table_catalog = current_database() AND table_name = 'conversation' AND table_type = 'BASE TABLE')",
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
	id BIGSERIAL PRIMARY KEY,
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
	online BOOLEAN NOT NULL DEFAULT FALSE,
	status TEXT NOT NULL DEFAULT 'OFFLINE',
	workload INTEGER NOT NULL DEFAULT 0,
	max_workload INTEGER NOT NULL DEFAULT 1,
	last_seen_ts BIGINT NOT NULL,
	last_activity_ts BIGINT NOT NULL
);

CREATE TABLE IF NOT EXISTS routing_decision (
	id BIGSERIAL PRIMARY KEY,
	conversation_id TEXT NOT NULL,
	intent TEXT NOT NULL,
	raw_intent TEXT NOT NULL DEFAULT '',
	confidence DOUBLE PRECISION NOT NULL DEFAULT 0,
	handoff BOOLEAN NOT NULL DEFAULT FALSE,
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
