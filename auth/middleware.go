package auth

import (
	"context"
	"log"
	"net/http"
	"strings"

	"github.com/user/smartodo-go/apperror"
	"github.com/user/smartodo-go/users"
)

// UserResolver resolves a token's subject to a stored user record. It is the
// middleware's view of the credential store; *users.Store satisfies it.
type UserResolver interface {
	GetByID(ctx context.Context, id int) (*users.User, error)
}

// Middleware authenticates every request it wraps: it extracts the Bearer
// token from the Authorization header, verifies it, resolves the subject
// against the credential store, and attaches the resolved identity to the
// request context. Requests failing any step never reach the next handler.
//
// Because tokens are stateless and never revoked, the store lookup is the only
// thing that invalidates tokens of since-deleted users.
func Middleware(tokens *TokenManager, resolver UserResolver) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				WriteError(w, r, apperror.NewAuthError("Authorization header is missing", nil))
				return
			}

			// The header must be in the form "Bearer {token}".
			parts := strings.Split(authHeader, " ")
			if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
				WriteError(w, r, apperror.NewAuthError("Authorization header format must be Bearer {token}", nil))
				return
			}

			userID, err := tokens.Verify(parts[1])
			if err != nil {
				WriteError(w, r, err)
				return
			}

			user, err := resolver.GetByID(r.Context(), userID)
			if err != nil {
				if apperror.IsNotFound(err) {
					// Token verified but the subject no longer exists.
					WriteError(w, r, apperror.NewAuthError("Invalid token. User not found", nil))
					return
				}
				// A store outage is a server fault, not an auth failure.
				log.Printf("auth middleware: failed to resolve user %d: %v", userID, err)
				WriteError(w, r, apperror.NewInternalError("Server error during authentication", err))
				return
			}

			current := &CurrentUser{
				ID:        user.ID,
				Username:  user.Username,
				Email:     user.Email,
				CreatedAt: user.CreatedAt,
			}
			next.ServeHTTP(w, r.WithContext(NewContextWithUser(r.Context(), current)))
		})
	}
}
