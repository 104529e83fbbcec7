package domain

import "time"

// Role is the authorization level of a user account.
type Role string

const (
	RoleCustomer Role = "CUSTOMER"
	RoleStaff    Role = "STAFF"
	RoleAdmin    Role = "ADMIN"
)

// ParseRole normalizes a role string, falling back to CUSTOMER.
func ParseRole(s string) Role {
	switch Role(s) {
	case RoleAdmin, RoleStaff, RoleCustomer:
		return Role(s)
	default:
		return RoleCustomer
	}
}

// UserStatus is the lifecycle state of an account.
type UserStatus string

const (
	StatusActive    UserStatus = "ACTIVE"
	StatusSuspended UserStatus = "SUSPENDED"
	StatusDeleted   UserStatus = "DELETED"
)

// User represents an account in the system, created either through
// credentials registration or an OAuth provider callback.
type User struct {
	ID           string     `json:"id"          db:"id"`
	Username     string     `json:"username"    db:"username"`
	Email        string     `json:"email"       db:"email"`
	Name         string     `json:"name"        db:"name"`
	AvatarURL    string     `json:"avatar_url"  db:"avatar_url"`
	Provider     string     `json:"provider"    db:"provider"` // "credentials" or an OAuth provider name
	ProviderID   string     `json:"provider_id" db:"provider_id"`
	Role         Role       `json:"role"        db:"role"`
	Status       UserStatus `json:"status"      db:"status"`
	PasswordHash string     `json:"-"           db:"password_hash"` // never serialized to JSON
	CreatedAt    time.Time  `json:"created_at"  db:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"  db:"updated_at"`
}

// TokenPair holds the OAuth2 tokens returned after code exchange.
type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token,omitempty"`
	IDToken      string `json:"id_token,omitempty"`
	ExpiresIn    int    `json:"expires_in"`
	TokenType    string `json:"token_type"`
}

// UserContext is the authenticated user context injected into request handlers.
type UserContext struct {
	UserID   string `json:"user_id"`
	Username string `json:"username"`
	Email    string `json:"email"`
	Role     Role   `json:"role"`
}

// IsAdmin reports whether the context belongs to an administrator.
func (uc *UserContext) IsAdmin() bool {
	return uc != nil && uc.Role == RoleAdmin
}

// UserUpdate carries a partial admin update. Nil fields are left untouched.
type UserUpdate struct {
	Name   *string     `json:"name,omitempty"`
	Email  *string     `json:"email,omitempty"`
	Role   *Role       `json:"role,omitempty"`
	Status *UserStatus `json:"status,omitempty"`
}
