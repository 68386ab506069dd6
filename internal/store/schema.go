package store

import (
	"context"
	"database/sql"
	"fmt"
)

// tables lists the DDL for every table the client keeps. Statements are
// idempotent so migrate can run on every Open.
var tables = []string{
	`CREATE TABLE IF NOT EXISTS counters (
		key   TEXT PRIMARY KEY,
		value INTEGER NOT NULL DEFAULT 0
	)`,
	`CREATE TABLE IF NOT EXISTS profile (
		key   TEXT PRIMARY KEY,
		value TEXT NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS request_events (
		id            INTEGER PRIMARY KEY AUTOINCREMENT,
		sequence      INTEGER NOT NULL UNIQUE,
		timestamp     INTEGER NOT NULL,
		source        TEXT NOT NULL,
		purpose       TEXT NOT NULL,
		model         TEXT NOT NULL DEFAULT '',
		attempt       INTEGER NOT NULL DEFAULT 0,
		status        INTEGER NOT NULL DEFAULT 0,
		latency_ms    INTEGER NOT NULL DEFAULT 0,
		success       INTEGER NOT NULL DEFAULT 0,
		error_message TEXT NOT NULL DEFAULT '',
		input_tokens  INTEGER NOT NULL DEFAULT 0,
		output_tokens INTEGER NOT NULL DEFAULT 0
	)`,
	`CREATE INDEX IF NOT EXISTS request_events_purpose ON request_events (purpose)`,
	`CREATE TABLE IF NOT EXISTS sessions (
		id                TEXT PRIMARY KEY,
		topic_key         TEXT NOT NULL,
		subject           TEXT NOT NULL,
		day               TEXT NOT NULL,
		started_at        INTEGER NOT NULL,
		finished_at       INTEGER NOT NULL,
		retries           INTEGER NOT NULL DEFAULT 0,
		correct           INTEGER NOT NULL DEFAULT 0,
		solution_revealed INTEGER NOT NULL DEFAULT 0
	)`,
	`CREATE INDEX IF NOT EXISTS sessions_day ON sessions (day)`,
}

func migrate(ctx context.Context, db *sql.DB) error {
	for _, ddl := range tables {
		if _, err := db.ExecContext(ctx, ddl); err != nil {
			return fmt.Errorf("create table: %w", err)
		}
	}
	return nil
}
