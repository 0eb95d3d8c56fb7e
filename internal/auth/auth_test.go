package auth

import (
	"testing"
	"time"

	"github.com/shopcore/storefront/internal/domain/user"
)

func TestSignAndVerify(t *testing.T) {
	issuer := NewTokenIssuer([]byte("test-secret"), time.Hour)

	token, err := issuer.Sign(user.User{ID: 42, Email: "a@x.com"})
	if err != nil {
		t.Fatalf("sign: %v", err)
	}

	claims, err := issuer.Verify(token)
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if claims.UserID != 42 || claims.Email != "a@x.com" {
		t.Fatalf("unexpected claims %+v", claims)
	}
}

func TestVerifyRejectsWrongSecret(t *testing.T) {
	token, err := NewTokenIssuer([]byte("secret-a"), time.Hour).Sign(user.User{ID: 1})
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	if _, err := NewTokenIssuer([]byte("secret-b"), time.Hour).Verify(token); err == nil {
		t.Fatal("expected signature error")
	}
}

func TestVerifyRejectsExpired(t *testing.T) {
	issuer := NewTokenIssuer([]byte("test-secret"), -time.Minute)
	token, err := issuer.Sign(user.User{ID: 1})
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	if _, err := issuer.Verify(token); err == nil {
		t.Fatal("expected expiry error")
	}
}

func TestZeroTTLUsesDefault(t *testing.T) {
	issuer := NewTokenIssuer([]byte("test-secret"), 0)
	token, err := issuer.Sign(user.User{ID: 1})
	if err != nil {
		t.Fatalf("sign: %v", err)
	}

	claims, err := issuer.Verify(token)
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	remaining := time.Until(claims.ExpiresAt.Time)
	if remaining < 23*time.Hour || remaining > DefaultTokenTTL {
		t.Fatalf("expected default ttl, got %s remaining", remaining)
	}
}

func TestVerifyRejectsGarbage(t *testing.T) {
	issuer := NewTokenIssuer([]byte("test-secret"), time.Hour)
	if _, err := issuer.Verify("not-a-token"); err == nil {
		t.Fatal("expected parse error")
	}
}

func TestPasswordHashing(t *testing.T) {
	hash, err := HashPassword("12345678", 4) // low cost to keep the test fast
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	if hash == "12345678" {
		t.Fatal("hash must not equal plaintext")
	}
	if !CheckPassword(hash, "12345678") {
		t.Fatal("expected matching password")
	}
	if CheckPassword(hash, "wrong-password") {
		t.Fatal("expected mismatch")
	}
}
