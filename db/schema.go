// ABOUTME: Database schema definitions for the session store
// ABOUTME: Holds persisted session cookies and the last authenticated user
package db

import (
	"database/sql"
)

const schema = `
CREATE TABLE IF NOT EXISTS cookies (
	host TEXT NOT NULL,
	path TEXT NOT NULL,
	name TEXT NOT NULL,
	scheme TEXT NOT NULL DEFAULT 'https',
	value TEXT NOT NULL,
	domain TEXT,
	expires_at DATETIME,
	secure INTEGER NOT NULL DEFAULT 0,
	http_only INTEGER NOT NULL DEFAULT 0,
	updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
	PRIMARY KEY (host, path, name)
);

CREATE INDEX IF NOT EXISTS idx_cookies_host ON cookies(host);
CREATE INDEX IF NOT EXISTS idx_cookies_expires_at ON cookies(expires_at);

CREATE TABLE IF NOT EXISTS session_user (
	base_url TEXT PRIMARY KEY,
	user_id TEXT NOT NULL,
	name TEXT NOT NULL,
	email TEXT,
	role TEXT,
	updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);
`

func InitSchema(db *sql.DB) error {
	_, err := db.Exec(schema)
	return err
}
