package auth_test

import (
	"testing"

	"backend/internal/auth"
)

func TestHashAndVerifyPassword(t *testing.T) {
	hash, err := auth.HashPassword("Sup3rSecret")
	if err != nil {
		t.Fatalf("HashPassword: %v", err)
	}
	if hash == "Sup3rSecret" {
		t.Fatalf("hash must not equal plaintext")
	}
	if !auth.VerifyPassword(hash, "Sup3rSecret") {
		t.Fatalf("expected password to verify")
	}
	if auth.VerifyPassword(hash, "WrongPass1") {
		t.Fatalf("expected wrong password to fail")
	}
}

func TestVerifyPassword_InvalidHash(t *testing.T) {
	if auth.VerifyPassword("not-a-bcrypt-hash", "whatever") {
		t.Fatalf("expected invalid hash to fail verification")
	}
}
