package auth

import (
	"context"
	"time"
)

// CurrentUser is the resolved identity attached to the request context by the
// authentication middleware. It carries only non-sensitive fields; the
// credential hash never leaves the users package.
type CurrentUser struct {
	ID        int       `json:"id"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"created_at"`
}

// contextKey is a private type for context keys, preventing collisions with
// keys defined in other packages.
type contextKey string

const userContextKey contextKey = "auth_user"

// NewContextWithUser returns a child context carrying the resolved identity.
func NewContextWithUser(ctx context.Context, user *CurrentUser) context.Context {
	return context.WithValue(ctx, userContextKey, user)
}

// UserFromContext extracts the authenticated identity from the context. The
// second return value is false when the request did not pass the
// authentication middleware.
func UserFromContext(ctx context.Context) (*CurrentUser, bool) {
	user, ok := ctx.Value(userContextKey).(*CurrentUser)
	return user, ok
}
