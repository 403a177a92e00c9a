package auth

import "time"

// User represents a registered account. HashedPassword never leaves this
// package boundary: it is excluded from JSON and cleared before responses.
type User struct {
	ID             int       `json:"id"`
	Username       string    `json:"username"`
	HashedPassword string    `json:"-"`
	CreatedAt      time.Time `json:"created_at"`
}
