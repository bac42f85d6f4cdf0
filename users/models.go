// Package users is the credential store: it owns the User model and the
// Postgres queries that create and resolve user records. Both the auth
// service (register/login) and the authentication middleware (subject
// resolution) go through this package.
package users

import "time"

// User represents a user in the system.
// The `json:"-"` tag on HashedPassword keeps the credential hash out of every
// serialized response.
type User struct {
	ID             int       `json:"id"`
	Username       string    `json:"username"`
	Email          string    `json:"email"`
	HashedPassword string    `json:"-"`
	CreatedAt      time.Time `json:"created_at"`
}
