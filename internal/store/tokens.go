package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// RevokeToken puts a token's JTI on the revocation list until it expires.
// Revoking an already revoked token is a no-op.
func RevokeToken(ctx context.Context, db *sql.DB, jti string, expiresAt time.Time) error {
	_, err := db.ExecContext(ctx,
		`INSERT OR IGNORE INTO revoked_tokens (jti, expires_at) VALUES (?, ?)`,
		jti, expiresAt,
	)
	if err != nil {
		return fmt.Errorf("revoking token: %w", err)
	}

	purgeExpiredTokens(ctx, db)
	return nil
}

// IsTokenRevoked reports whether a token's JTI is on the revocation list.
func IsTokenRevoked(ctx context.Context, db *sql.DB, jti string) (bool, error) {
	var found int
	err := db.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM revoked_tokens WHERE jti = ?)`, jti,
	).Scan(&found)
	if err != nil {
		return false, fmt.Errorf("checking token revocation: %w", err)
	}
	return found == 1, nil
}

// purgeExpiredTokens drops revocations whose tokens have expired anyway.
// Best effort; a failed purge only delays cleanup until the next revoke.
func purgeExpiredTokens(ctx context.Context, db *sql.DB) {
	_, _ = db.ExecContext(ctx,
		`DELETE FROM revoked_tokens WHERE expires_at < ?`, time.Now(),
	)
}
