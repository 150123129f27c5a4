package models

import "time"

// DefaultRole is assigned to users registered without an explicit role.
const DefaultRole = "User"

type User struct {
	ID           int64     `json:"id"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Role         string    `json:"role"`
	CreatedAt    time.Time `json:"created_at"`
}

// Sanitized returns a copy safe to hand to callers: same identity fields,
// empty password hash.
func (u User) Sanitized() User {
	u.PasswordHash = ""
	return u
}
