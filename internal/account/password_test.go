package account

import (
	"bytes"
	"testing"
)

func TestValidatePassword(t *testing.T) {
	tests := []struct {
		name     string
		password string
		ok       bool
	}{
		{"valid", "Abcdef1!", true},
		{"valid long", "Sup3r$ecretPassword", true},
		{"too short", "Ab1!", false},
		{"no uppercase", "abcdef1!", false},
		{"no lowercase", "ABCDEF1!", false},
		{"no digit", "Abcdefg!", false},
		{"no special", "Abcdefg1", false},
		{"empty", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidatePassword(tt.password)
			if tt.ok && err != nil {
				t.Errorf("expected valid, got %v", err)
			}
			if !tt.ok && err == nil {
				t.Error("expected ErrWeakPassword")
			}
		})
	}
}

func TestHashPassword(t *testing.T) {
	salt, hash, err := HashPassword("Abcdef1!")
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	if len(salt) != saltLen || len(hash) != keyLen {
		t.Fatalf("unexpected artifact sizes: salt=%d hash=%d", len(salt), len(hash))
	}

	a := &Account{Salt: salt, Hash: hash}
	if !verifyPassword(a, "Abcdef1!") {
		t.Error("correct password rejected")
	}
	if verifyPassword(a, "Abcdef1?") {
		t.Error("wrong password accepted")
	}

	// A second hash of the same password uses a fresh salt.
	salt2, hash2, err := HashPassword("Abcdef1!")
	if err != nil {
		t.Fatalf("second hash: %v", err)
	}
	if bytes.Equal(salt, salt2) {
		t.Error("salt reused")
	}
	if bytes.Equal(hash, hash2) {
		t.Error("identical hashes for different salts")
	}
}
