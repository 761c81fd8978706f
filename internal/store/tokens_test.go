package store

import (
	"context"
	"testing"
	"time"

	"invtrack/internal/db"
)

func TestRevokeAndCheckToken(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	revoked, err := IsTokenRevoked(ctx, database, "jti-1")
	if err != nil {
		t.Fatalf("IsTokenRevoked: %v", err)
	}
	if revoked {
		t.Error("expected token not revoked")
	}

	expiresAt := time.Now().Add(time.Hour)
	if err := RevokeToken(ctx, database, "jti-1", expiresAt); err != nil {
		t.Fatalf("RevokeToken: %v", err)
	}

	revoked, err = IsTokenRevoked(ctx, database, "jti-1")
	if err != nil {
		t.Fatalf("IsTokenRevoked: %v", err)
	}
	if !revoked {
		t.Error("expected token revoked")
	}

	// Revoking again is a no-op, not an error.
	if err := RevokeToken(ctx, database, "jti-1", expiresAt); err != nil {
		t.Errorf("expected idempotent revoke, got %v", err)
	}

	revoked, _ = IsTokenRevoked(ctx, database, "jti-other")
	if revoked {
		t.Error("expected unrelated token not revoked")
	}
}
