package store

import (
	"context"
	"crypto/rand"
	"database/sql"
	"encoding/hex"
	"fmt"
)

const jwtSecretKey = "jwt_secret"

// getSetting reads a settings value, returning "" when the key is absent.
func getSetting(ctx context.Context, db *sql.DB, key string) (string, error) {
	var value string
	err := db.QueryRowContext(ctx,
		`SELECT value FROM settings WHERE key = ?`, key,
	).Scan(&value)
	if err == sql.ErrNoRows {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("reading setting %q: %w", key, err)
	}
	return value, nil
}

// GetJWTSecret returns the persisted token-signing secret, generating and
// storing one on first call. The insert is OR IGNORE followed by a read back,
// so concurrent first calls all end up with the same secret.
func GetJWTSecret(ctx context.Context, db *sql.DB) (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generating signing secret: %w", err)
	}

	_, err := db.ExecContext(ctx,
		`INSERT OR IGNORE INTO settings (key, value) VALUES (?, ?)`,
		jwtSecretKey, hex.EncodeToString(buf),
	)
	if err != nil {
		return "", fmt.Errorf("storing signing secret: %w", err)
	}

	secret, err := getSetting(ctx, db, jwtSecretKey)
	if err != nil {
		return "", err
	}
	if secret == "" {
		return "", fmt.Errorf("signing secret missing after insert")
	}
	return secret, nil
}
