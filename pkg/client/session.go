package client

import (
	"sync"

	"github.com/golang-jwt/jwt/v5"
)

// SessionUser is the identity decoded from the access token for display
// purposes. The server remains the authority; nothing here is verified.
type SessionUser struct {
	UserID   string
	Username string
	Email    string
	Roles    []string
}

// Session holds the current access token. It is safe for concurrent use:
// the transport reads it on every request while a refresh may be
// replacing it.
type Session struct {
	mu    sync.RWMutex
	token string
	user  *SessionUser
}

// NewSession returns an empty, unauthenticated session.
func NewSession() *Session {
	return &Session{}
}

// Token returns the current access token, or "" when logged out.
func (s *Session) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token
}

// SetToken installs a new access token and re-decodes the display
// identity from its claims.
func (s *Session) SetToken(token string) {
	user := decodeUser(token)
	s.mu.Lock()
	s.token = token
	s.user = user
	s.mu.Unlock()
}

// Clear drops the session state.
func (s *Session) Clear() {
	s.mu.Lock()
	s.token = ""
	s.user = nil
	s.mu.Unlock()
}

// Authenticated reports whether a token is present.
func (s *Session) Authenticated() bool {
	return s.Token() != ""
}

// User returns the decoded identity, or nil when logged out.
func (s *Session) User() *SessionUser {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.user
}

// decodeUser extracts display claims from a JWT without verifying the
// signature. The client has no key material; trust stays server-side.
func decodeUser(token string) *SessionUser {
	if token == "" {
		return nil
	}
	parsed, _, err := jwt.NewParser().ParseUnverified(token, jwt.MapClaims{})
	if err != nil {
		return nil
	}
	claims, ok := parsed.Claims.(jwt.MapClaims)
	if !ok {
		return nil
	}

	user := &SessionUser{}
	if sub, err := claims.GetSubject(); err == nil {
		user.UserID = sub
	}
	if v, ok := claims["username"].(string); ok {
		user.Username = v
	}
	if v, ok := claims["email"].(string); ok {
		user.Email = v
	}
	if raw, ok := claims["roles"].([]any); ok {
		for _, r := range raw {
			if role, ok := r.(string); ok {
				user.Roles = append(user.Roles, role)
			}
		}
	}
	return user
}
