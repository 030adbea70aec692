package entity

import (
	"slices"
	"time"
)

// User is the aggregate root for user domain
// Passwords are stored as bcrypt hashes in Password field.
// Tokens holds the active session tokens in issuance order.
type User struct {
	ID        string
	Name      string
	Email     string
	Password  string
	Age       int
	Tokens    []string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// HasToken reports whether token is one of the user's active sessions.
func HasToken(u *User, token string) bool {
	if u == nil || token == "" {
		return false
	}
	return slices.Contains(u.Tokens, token)
}

// UserPatch carries the profile fields to change; nil means unchanged.
// Password, when set, is already hashed.
type UserPatch struct {
	Name     *string
	Email    *string
	Password *string
	Age      *int
}

// Empty reports whether the patch changes nothing.
func (p UserPatch) Empty() bool {
	return p.Name == nil && p.Email == nil && p.Password == nil && p.Age == nil
}
