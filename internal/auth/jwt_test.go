package auth

import (
	"testing"

	"invtrack/internal/model"
)

func testUser() *model.User {
	return &model.User{ID: 42, Username: "alice", Role: model.RoleManager}
}

func TestGenerateAndValidateToken(t *testing.T) {
	secret := "test-secret"

	token, err := GenerateToken(secret, testUser())
	if err != nil {
		t.Fatalf("GenerateToken: %v", err)
	}
	if token == "" {
		t.Fatal("expected a token")
	}

	claims, err := ValidateToken(secret, token)
	if err != nil {
		t.Fatalf("ValidateToken: %v", err)
	}
	if claims.UserID != 42 {
		t.Errorf("expected user id 42, got %d", claims.UserID)
	}
	if claims.Username != "alice" {
		t.Errorf("expected username alice, got %q", claims.Username)
	}
	if claims.Role != model.RoleManager {
		t.Errorf("expected role manager, got %q", claims.Role)
	}
	if claims.ID == "" {
		t.Error("expected a JTI")
	}
}

func TestValidateTokenWrongSecret(t *testing.T) {
	token, err := GenerateToken("right-secret", testUser())
	if err != nil {
		t.Fatalf("GenerateToken: %v", err)
	}

	if _, err := ValidateToken("wrong-secret", token); err == nil {
		t.Error("expected validation to fail with wrong secret")
	}
}

func TestValidateTokenGarbage(t *testing.T) {
	if _, err := ValidateToken("secret", "not-a-token"); err == nil {
		t.Error("expected validation to fail for garbage input")
	}
}

func TestTokensHaveUniqueJTIs(t *testing.T) {
	first, err := GenerateToken("secret", testUser())
	if err != nil {
		t.Fatalf("GenerateToken: %v", err)
	}
	second, err := GenerateToken("secret", testUser())
	if err != nil {
		t.Fatalf("GenerateToken: %v", err)
	}

	c1, err := ValidateToken("secret", first)
	if err != nil {
		t.Fatalf("ValidateToken: %v", err)
	}
	c2, err := ValidateToken("secret", second)
	if err != nil {
		t.Fatalf("ValidateToken: %v", err)
	}
	if c1.ID == c2.ID {
		t.Error("expected distinct JTIs for separate tokens")
	}
}
