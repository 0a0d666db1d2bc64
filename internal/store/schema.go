package store

import (
	"context"
	"database/sql"
	"fmt"
)

// tables holds the DDL for every table. Statements are idempotent and run
// on each Open.
var tables = []string{
	`CREATE TABLE IF NOT EXISTS profile (
		id INTEGER PRIMARY KEY CHECK (id = 1),
		subject TEXT NOT NULL,
		updated_at INTEGER NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS streak (
		id INTEGER PRIMARY KEY CHECK (id = 1),
		current INTEGER NOT NULL DEFAULT 0,
		last_activity TEXT NOT NULL DEFAULT ''
	)`,
	`CREATE TABLE IF NOT EXISTS attempts (
		id TEXT PRIMARY KEY,
		sequence INTEGER NOT NULL,
		question_id TEXT NOT NULL,
		question_text TEXT NOT NULL,
		solution TEXT NOT NULL,
		correct INTEGER NOT NULL,
		subject TEXT NOT NULL,
		created_at INTEGER NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS attempts_created_at ON attempts (created_at)`,
	`CREATE TABLE IF NOT EXISTS attempt_messages (
		id TEXT PRIMARY KEY,
		attempt_id TEXT NOT NULL REFERENCES attempts (id) ON DELETE CASCADE,
		sequence INTEGER NOT NULL,
		role TEXT NOT NULL,
		text TEXT NOT NULL,
		created_at INTEGER NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS attempt_messages_attempt ON attempt_messages (attempt_id, sequence)`,
	`CREATE TABLE IF NOT EXISTS daily_questions (
		subject TEXT NOT NULL,
		day TEXT NOT NULL,
		position INTEGER NOT NULL,
		id TEXT NOT NULL,
		text TEXT NOT NULL,
		PRIMARY KEY (subject, day, position)
	)`,
	`CREATE TABLE IF NOT EXISTS llm_events (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		sequence INTEGER NOT NULL,
		timestamp INTEGER NOT NULL,
		provider TEXT NOT NULL,
		model TEXT NOT NULL,
		purpose TEXT NOT NULL,
		input_tokens INTEGER NOT NULL,
		output_tokens INTEGER NOT NULL,
		latency_ms INTEGER NOT NULL,
		success INTEGER NOT NULL,
		error_message TEXT NOT NULL DEFAULT '',
		request_body TEXT NOT NULL DEFAULT '',
		response_body TEXT NOT NULL DEFAULT ''
	)`,
}

// migrate creates missing tables. Plain DDL is used because the ent query
// builder does not cover schema creation without generated code.
func migrate(ctx context.Context, db *sql.DB) error {
	for _, stmt := range tables {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("exec %q: %w", firstLine(stmt), err)
		}
	}
	return nil
}

func firstLine(s string) string {
	for i, r := range s {
		if r == '\n' {
			return s[:i]
		}
	}
	return s
}
