package auth

import (
	"testing"

	"github.com/example/autodrive/internal/config"
)

func TestTokenRoundTrip(t *testing.T) {
	cfg := &config.JWTConfig{Secret: "test-secret"}

	token, err := GenerateToken(cfg, 42, "zhang")
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	claims, err := ParseToken(cfg, token)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if claims.UserID != 42 || claims.Username != "zhang" {
		t.Fatalf("claims mismatch: %+v", claims)
	}
}

func TestParseTokenWrongSecret(t *testing.T) {
	token, err := GenerateToken(&config.JWTConfig{Secret: "a"}, 1, "u")
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if _, err := ParseToken(&config.JWTConfig{Secret: "b"}, token); err == nil {
		t.Fatal("token signed with another secret must not parse")
	}
}

func TestParseTokenGarbage(t *testing.T) {
	if _, err := ParseToken(&config.JWTConfig{Secret: "a"}, "not-a-token"); err == nil {
		t.Fatal("garbage must not parse")
	}
}
