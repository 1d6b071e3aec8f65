package domain

import "time"

// Built-in roles. Role is an open string so demos can invent others, but
// these two are what the walkthroughs exercise.
const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// User is a registered account. The ID is a monotonic counter assigned by
// the store at registration; username is the immutable lookup key.
type User struct {
	ID               int64
	Username         string
	PasswordVerifier string // bcrypt encoded, never the plaintext
	Role             string
	CreatedAt        time.Time
}
