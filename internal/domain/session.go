package domain

import (
	"strings"

	"github.com/google/uuid"
)

// Role is an account's authorization level.
type Role string

// Account roles.
const (
	RoleUser    Role = "USER"
	RoleTeacher Role = "TEACHER"
	RoleAdmin   Role = "ADMIN"
)

// Valid reports whether r is a known role.
func (r Role) Valid() bool {
	switch r {
	case RoleUser, RoleTeacher, RoleAdmin:
		return true
	default:
		return false
	}
}

// Session is the caller's authentication state for one request.
// It is either Anonymous or Authenticated and is resolved once at the
// HTTP boundary.
type Session interface {
	isSession()
}

// Anonymous is a caller without valid credentials.
type Anonymous struct{}

// Authenticated is a caller holding a valid account token.
type Authenticated struct {
	UserID uuid.UUID
	Role   Role
}

func (Anonymous) isSession()     {}
func (Authenticated) isSession() {}

// AsAuthenticated returns the authenticated variant of s, if any.
func AsAuthenticated(s Session) (Authenticated, bool) {
	a, ok := s.(Authenticated)
	if !ok || a.UserID == uuid.Nil {
		return Authenticated{}, false
	}
	return a, true
}

// Owner identifies whom a progress record or activity session belongs to:
// an account when UserID is set, otherwise an anonymous client session.
type Owner struct {
	UserID    *uuid.UUID
	SessionID string
}

// UserOwner returns an account owner. sessionID is kept for bookkeeping.
func UserOwner(userID uuid.UUID, sessionID string) Owner {
	id := userID
	return Owner{UserID: &id, SessionID: sessionID}
}

// SessionOwner returns an anonymous owner keyed by a client session id.
func SessionOwner(sessionID string) Owner {
	return Owner{SessionID: sessionID}
}

// ResolveOwner picks the owner for a request: the account when the caller
// is authenticated, otherwise the supplied client session id, which is then
// required.
func ResolveOwner(s Session, sessionID string) (Owner, error) {
	if a, ok := AsAuthenticated(s); ok {
		return UserOwner(a.UserID, sessionID), nil
	}
	if strings.TrimSpace(sessionID) == "" {
		return Owner{}, NewValidationError("sessionId", "is required for anonymous callers", nil)
	}
	return SessionOwner(sessionID), nil
}

// IsUser reports whether the owner is an account.
func (o Owner) IsUser() bool {
	return o.UserID != nil && *o.UserID != uuid.Nil
}

// Key returns the storage key for the owner. Account and session keys never collide.
func (o Owner) Key() string {
	if o.IsUser() {
		return "user:" + o.UserID.String()
	}
	return "session:" + o.SessionID
}
