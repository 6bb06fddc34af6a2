package account

import (
	"context"
	"errors"
)

type Role string

const (
	RolePatient   Role = "patient"
	RoleCaregiver Role = "caregiver"
)

func ParseRole(s string) (Role, bool) {
	switch Role(s) {
	case RolePatient:
		return RolePatient, true
	case RoleCaregiver:
		return RoleCaregiver, true
	}
	return "", false
}

var (
	ErrDuplicateUsername = errors.New("username taken")
	// ErrInvalidCredentials covers both a wrong password and an unknown
	// username, so a caller cannot probe which usernames exist.
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrWeakPassword       = errors.New("password does not meet the policy")
)

// Account is a registered identity. Usernames are unique and case-sensitive;
// credentials never change through this interface.
type Account struct {
	Username string
	Salt     []byte
	Hash     []byte
	Role     Role
}

// Store holds registered accounts and their password artifacts.
type Store interface {
	Exists(ctx context.Context, username string) (bool, error)
	Verify(ctx context.Context, username, password string) (*Account, error)
	Create(ctx context.Context, a Account) error
}
