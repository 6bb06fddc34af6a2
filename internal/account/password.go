package account

import (
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"fmt"
	"strings"
	"unicode"

	"golang.org/x/crypto/pbkdf2"
)

const (
	saltLen    = 16
	keyLen     = 32
	iterations = 4096

	specialChars = "!@#$%^&*()_+-=[]{}|;':\",.<>?/"
)

// ValidatePassword enforces the registration password policy: at least 8
// characters with one uppercase letter, one lowercase letter, one digit and
// one special character.
func ValidatePassword(pw string) error {
	if len(pw) < 8 {
		return ErrWeakPassword
	}
	var upper, lower, digit, special bool
	for _, r := range pw {
		switch {
		case unicode.IsUpper(r):
			upper = true
		case unicode.IsLower(r):
			lower = true
		case unicode.IsDigit(r):
			digit = true
		case strings.ContainsRune(specialChars, r):
			special = true
		}
	}
	if !upper || !lower || !digit || !special {
		return ErrWeakPassword
	}
	return nil
}

// HashPassword derives a fresh salt and PBKDF2 hash for storage.
func HashPassword(pw string) (salt, hash []byte, err error) {
	salt = make([]byte, saltLen)
	if _, err := rand.Read(salt); err != nil {
		return nil, nil, fmt.Errorf("generate salt: %w", err)
	}
	return salt, hashWith(pw, salt), nil
}

func hashWith(pw string, salt []byte) []byte {
	return pbkdf2.Key([]byte(pw), salt, iterations, keyLen, sha256.New)
}

func verifyPassword(a *Account, pw string) bool {
	return subtle.ConstantTimeCompare(a.Hash, hashWith(pw, a.Salt)) == 1
}
