// Package store persists conversations, agent memory, research bundles,
// and the watchlist in SQLite.
package store

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/rs/zerolog"
)

const schema = `
CREATE TABLE IF NOT EXISTS conversations (
	id TEXT PRIMARY KEY,
	title TEXT NOT NULL DEFAULT '',
	created_at TEXT NOT NULL,
	updated_at TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS messages (
	id TEXT PRIMARY KEY,
	conversation_id TEXT NOT NULL REFERENCES conversations(id) ON DELETE CASCADE,
	role TEXT NOT NULL,
	content TEXT NOT NULL,
	created_at TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS memory_items (
	id TEXT PRIMARY KEY,
	content TEXT NOT NULL,
	tags TEXT NOT NULL DEFAULT '[]',
	conversation_id TEXT,
	created_at TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS research_bundles (
	id TEXT PRIMARY KEY,
	ticker TEXT NOT NULL,
	horizon_days INTEGER NOT NULL,
	payload TEXT NOT NULL,
	created_at TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS watchlist_items (
	symbol TEXT PRIMARY KEY,
	note TEXT,
	created_at TEXT NOT NULL,
	updated_at TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_messages_conversation ON messages(conversation_id);
CREATE INDEX IF NOT EXISTS idx_memory_conversation ON memory_items(conversation_id);
CREATE INDEX IF NOT EXISTS idx_memory_created ON memory_items(created_at);
CREATE INDEX IF NOT EXISTS idx_research_ticker ON research_bundles(ticker);
`

// Store wraps the assistant's SQLite persistence.
type Store struct {
	db  *sql.DB
	log zerolog.Logger
}

// New initializes the schema on db.
func New(db *sql.DB, log zerolog.Logger) (*Store, error) {
	if _, err := db.Exec(schema); err != nil {
		return nil, fmt.Errorf("init store schema: %w", err)
	}
	return &Store{db: db, log: log.With().Str("component", "store").Logger()}, nil
}

func parseTime(s string) time.Time {
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}
	}
	return t
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}
