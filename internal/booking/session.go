package booking

import (
	"github.com/vaxsched/vaccine-scheduler/internal/account"
)

// Session tracks at most one authenticated identity. The zero value is the
// logged-out state. Sessions are never persisted; the console holds one for
// its lifetime, the HTTP layer builds one per authenticated request.
type Session struct {
	username string
	role     account.Role
	active   bool
}

// AuthenticatedSession returns a session already in the logged-in state.
// Used by callers that authenticate out of band (e.g. a bearer token).
func AuthenticatedSession(username string, role account.Role) Session {
	return Session{username: username, role: role, active: true}
}

func (s *Session) Authenticated() bool { return s.active }

func (s *Session) Username() string { return s.username }

func (s *Session) Role() account.Role { return s.role }

// LoginAs moves the session to the logged-in state for the account.
func (s *Session) LoginAs(a *account.Account) error {
	if s.active {
		return ErrAlreadyAuthenticated
	}
	s.username = a.Username
	s.role = a.Role
	s.active = true
	return nil
}

// Logout returns the session to the logged-out state.
func (s *Session) Logout() error {
	if !s.active {
		return ErrNotAuthenticated
	}
	*s = Session{}
	return nil
}

func (s *Session) require(role account.Role) error {
	if !s.active {
		return ErrNotAuthenticated
	}
	if s.role != role {
		return ErrWrongRole
	}
	return nil
}

func (s *Session) requireAny() error {
	if !s.active {
		return ErrNotAuthenticated
	}
	return nil
}
