package booking

import (
	"context"
	"errors"
	"testing"

	"github.com/vaxsched/vaccine-scheduler/internal/account"
)

func TestSessionStateMachine(t *testing.T) {
	e := newTestEngine(t)
	ctx := context.Background()
	register(t, e, "alice", account.RoleCaregiver)
	register(t, e, "bob", account.RolePatient)

	var sess Session
	if sess.Authenticated() {
		t.Fatal("zero session should be logged out")
	}

	// Logout from LoggedOut fails.
	if err := e.Logout(&sess); !errors.Is(err, ErrNotAuthenticated) {
		t.Errorf("expected ErrNotAuthenticated, got %v", err)
	}

	if err := e.Login(ctx, &sess, account.RolePatient, "bob", testPassword); err != nil {
		t.Fatalf("login: %v", err)
	}
	if !sess.Authenticated() || sess.Username() != "bob" || sess.Role() != account.RolePatient {
		t.Fatalf("unexpected session state: %+v", sess)
	}

	// A second login from either logged-in state fails.
	if err := e.Login(ctx, &sess, account.RoleCaregiver, "alice", testPassword); !errors.Is(err, ErrAlreadyAuthenticated) {
		t.Errorf("expected ErrAlreadyAuthenticated, got %v", err)
	}

	if err := e.Logout(&sess); err != nil {
		t.Fatalf("logout: %v", err)
	}
	if sess.Authenticated() {
		t.Fatal("session should be logged out")
	}

	// After logout a fresh login works again.
	if err := e.Login(ctx, &sess, account.RoleCaregiver, "alice", testPassword); err != nil {
		t.Fatalf("relogin: %v", err)
	}
}

func TestLoginFailures(t *testing.T) {
	e := newTestEngine(t)
	ctx := context.Background()
	register(t, e, "alice", account.RoleCaregiver)

	tests := []struct {
		name     string
		role     account.Role
		username string
		password string
	}{
		{"wrong password", account.RoleCaregiver, "alice", "Wrong!pass1"},
		{"unknown user", account.RoleCaregiver, "nobody", testPassword},
		{"wrong role", account.RolePatient, "alice", testPassword},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var sess Session
			err := e.Login(ctx, &sess, tt.role, tt.username, tt.password)
			// All three must be indistinguishable to the caller.
			if !errors.Is(err, account.ErrInvalidCredentials) {
				t.Errorf("expected ErrInvalidCredentials, got %v", err)
			}
			if sess.Authenticated() {
				t.Error("session must stay logged out after failed login")
			}
		})
	}
}

func TestRegisterValidation(t *testing.T) {
	e := newTestEngine(t)
	ctx := context.Background()

	if err := e.Register(ctx, "alice", testPassword, account.RolePatient); err != nil {
		t.Fatalf("register: %v", err)
	}
	if err := e.Register(ctx, "alice", testPassword, account.RoleCaregiver); !errors.Is(err, account.ErrDuplicateUsername) {
		t.Errorf("expected ErrDuplicateUsername, got %v", err)
	}
	if err := e.Register(ctx, "", testPassword, account.RolePatient); !errors.Is(err, ErrInvalidInput) {
		t.Errorf("expected ErrInvalidInput for empty username, got %v", err)
	}
	if err := e.Register(ctx, "bob", "weak", account.RolePatient); !errors.Is(err, account.ErrWeakPassword) {
		t.Errorf("expected ErrWeakPassword, got %v", err)
	}
}
