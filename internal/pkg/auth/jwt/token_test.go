package jwt

import (
	"testing"
	"time"
)

func TestGenerateAndParseToken(t *testing.T) {
	payload := &Payload{
		ID:       "3f2c9a7e-1bfb-4a95-9d8a-6f35210a5f10",
		Username: "alice",
	}

	tokenString, err := GenerateToken(payload, "test-secret", UserIdentityExpiration)
	if err != nil {
		t.Fatalf("GenerateToken failed: %v", err)
	}

	parsed, err := ParseToken(tokenString, "test-secret")
	if err != nil {
		t.Fatalf("ParseToken failed: %v", err)
	}

	if parsed.ID != payload.ID {
		t.Errorf("parsed.ID = %q, want %q", parsed.ID, payload.ID)
	}
	if parsed.Username != payload.Username {
		t.Errorf("parsed.Username = %q, want %q", parsed.Username, payload.Username)
	}
	if parsed.Issuer != TokenIssuer {
		t.Errorf("parsed.Issuer = %q, want %q", parsed.Issuer, TokenIssuer)
	}
}

func TestParseTokenRejectsWrongSecret(t *testing.T) {
	tokenString, err := GenerateToken(&Payload{ID: "x"}, "secret-a", UserIdentityExpiration)
	if err != nil {
		t.Fatalf("GenerateToken failed: %v", err)
	}

	if _, err := ParseToken(tokenString, "secret-b"); err == nil {
		t.Fatal("ParseToken accepted a token signed with a different secret")
	}
}

func TestParseTokenRejectsExpired(t *testing.T) {
	tokenString, err := GenerateToken(&Payload{ID: "x"}, "test-secret", -time.Minute)
	if err != nil {
		t.Fatalf("GenerateToken failed: %v", err)
	}

	if _, err := ParseToken(tokenString, "test-secret"); err == nil {
		t.Fatal("ParseToken accepted an expired token")
	}
}

func TestParseTokenRejectsGarbage(t *testing.T) {
	if _, err := ParseToken("not.a.token", "test-secret"); err == nil {
		t.Fatal("ParseToken accepted a malformed token")
	}
}
