package db

import (
	"database/sql"
	"fmt"
)

// schema is the full database schema.
const schema = `
CREATE TABLE IF NOT EXISTS users (
    id            INTEGER PRIMARY KEY,
    username      TEXT NOT NULL,
    password_hash TEXT NOT NULL,
    role          TEXT NOT NULL DEFAULT 'user' CHECK (role IN ('admin', 'manager', 'user')),
    created_at    DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
    deleted_at    DATETIME
);

CREATE UNIQUE INDEX IF NOT EXISTS idx_users_username_active
    ON users(username) WHERE deleted_at IS NULL;

CREATE TABLE IF NOT EXISTS items (
    id               INTEGER PRIMARY KEY,
    name             TEXT NOT NULL,
    model            TEXT,
    serial_number    TEXT NOT NULL UNIQUE,
    project_category TEXT,
    description      TEXT,
    quantity         INTEGER NOT NULL DEFAULT 0 CHECK (quantity >= 0),
    supplier         TEXT,
    storage_location TEXT NOT NULL
        CHECK (storage_location IN ('Stores', 'Office', 'Container', 'Data Office', 'Field Work')),
    status           TEXT NOT NULL DEFAULT 'active' CHECK (status IN ('active', 'inactive', 'damaged')),
    image            BLOB,
    image_mime       TEXT,
    notes            TEXT,
    created_at       DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
    updated_at       DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS movements (
    id            INTEGER PRIMARY KEY,
    item_id       INTEGER NOT NULL REFERENCES items(id),
    movement_type TEXT NOT NULL CHECK (movement_type IN ('in', 'out', 'transferred')),
    quantity      INTEGER NOT NULL CHECK (quantity > 0),
    from_location TEXT,
    to_location   TEXT,
    from_project  TEXT,
    to_project    TEXT,
    status        TEXT NOT NULL DEFAULT 'active' CHECK (status IN ('active', 'inactive', 'damaged')),
    moved_at      DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
    notes         TEXT
);

CREATE INDEX IF NOT EXISTS idx_movements_item ON movements(item_id);

CREATE TABLE IF NOT EXISTS settings (
    key   TEXT PRIMARY KEY,
    value TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS revoked_tokens (
    jti        TEXT PRIMARY KEY,
    expires_at DATETIME NOT NULL
);
`

// EnsureSchema creates all tables and indexes if they don't already exist.
func EnsureSchema(db *sql.DB) error {
	_, err := db.Exec(schema)
	if err != nil {
		return fmt.Errorf("creating schema: %w", err)
	}
	return nil
}
