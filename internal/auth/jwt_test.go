package auth

import (
	"encoding/base64"
	"strings"
	"testing"
	"time"

	"github.com/miska-voutilainen/wsk-assignments-week3/internal/models"
)

const testSecret = "test-secret"

func testUser() models.User {
	return models.User{
		ID:           42,
		Name:         "Alice Example",
		Username:     "alice",
		Email:        "alice@example.com",
		Role:         models.RoleUser,
		PasswordHash: "$2a$10$should-never-leave-the-server",
	}
}

func TestGenerateAndVerifyToken(t *testing.T) {
	svc := NewService(testSecret)

	token, err := svc.GenerateToken(testUser())
	if err != nil {
		t.Fatalf("GenerateToken: %v", err)
	}

	p, err := svc.VerifyToken(token)
	if err != nil {
		t.Fatalf("VerifyToken: %v", err)
	}
	if p.UserID != 42 || p.Username != "alice" || p.Role != models.RoleUser {
		t.Fatalf("principal mismatch: %+v", p)
	}
	if p.Email != "alice@example.com" || p.Name != "Alice Example" {
		t.Fatalf("principal mismatch: %+v", p)
	}
}

func TestTokenClaimsExcludePassword(t *testing.T) {
	svc := NewService(testSecret)

	token, err := svc.GenerateToken(testUser())
	if err != nil {
		t.Fatalf("GenerateToken: %v", err)
	}

	parts := strings.Split(token, ".")
	if len(parts) != 3 {
		t.Fatalf("unexpected token shape: %d segments", len(parts))
	}
	payload, err := base64.RawURLEncoding.DecodeString(parts[1])
	if err != nil {
		t.Fatalf("decode payload: %v", err)
	}
	if strings.Contains(strings.ToLower(string(payload)), "password") {
		t.Fatalf("token payload leaks password material: %s", payload)
	}
}

func TestVerifyToken_WrongSecret(t *testing.T) {
	token, err := NewService(testSecret).GenerateToken(testUser())
	if err != nil {
		t.Fatalf("GenerateToken: %v", err)
	}
	if _, err := NewService("other-secret").VerifyToken(token); err == nil {
		t.Fatal("expected error for wrong secret")
	}
}

func TestVerifyToken_Tampered(t *testing.T) {
	svc := NewService(testSecret)
	token, err := svc.GenerateToken(testUser())
	if err != nil {
		t.Fatalf("GenerateToken: %v", err)
	}

	// Flip a character in the signature segment.
	tampered := token[:len(token)-2] + "xx"
	if tampered == token {
		tampered = token[:len(token)-2] + "yy"
	}
	if _, err := svc.VerifyToken(tampered); err == nil {
		t.Fatal("expected error for tampered token")
	}
}

func TestVerifyToken_Expired(t *testing.T) {
	svc := &Service{secret: []byte(testSecret), ttl: -time.Hour}
	token, err := svc.GenerateToken(testUser())
	if err != nil {
		t.Fatalf("GenerateToken: %v", err)
	}
	if _, err := svc.VerifyToken(token); err == nil {
		t.Fatal("expected error for expired token")
	}
}

func TestVerifyToken_Malformed(t *testing.T) {
	svc := NewService(testSecret)
	for _, tok := range []string{"", "not-a-token", "a.b.c"} {
		if _, err := svc.VerifyToken(tok); err == nil {
			t.Fatalf("expected error for malformed token %q", tok)
		}
	}
}
