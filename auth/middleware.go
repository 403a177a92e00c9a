package auth

import (
	"context"
	"net/http"
	"strings"

	"github.com/michaelk046/ComicManager/apperror"
)

type contextKey string

// userContextKey stores the authenticated user's public identity in the
// request context.
const userContextKey contextKey = "auth_user"

// UserLoader loads a user's public identity by id. *Service satisfies it.
type UserLoader interface {
	GetUserByID(ctx context.Context, id int) (*User, error)
}

// Middleware authenticates every request passing through it: it extracts the
// bearer token, verifies it, and loads the corresponding user into the
// request context. Any failure rejects the request with a 401 before the
// handler runs. This is the single chokepoint that makes item operations
// identity-scoped.
func Middleware(tokens *TokenService, users UserLoader) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				WriteError(w, apperror.NewAuthError(credentialsMessage, nil))
				return
			}

			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
				WriteError(w, apperror.NewAuthError(credentialsMessage, nil))
				return
			}

			userID, err := tokens.Verify(parts[1])
			if err != nil {
				WriteError(w, err)
				return
			}

			user, err := users.GetUserByID(r.Context(), userID)
			if err != nil {
				// A token for a vanished user is as unauthenticated as a bad
				// signature.
				WriteError(w, apperror.NewAuthError(credentialsMessage, err))
				return
			}

			ctx := context.WithValue(r.Context(), userContextKey, user)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// UserFromContext returns the authenticated user stored by Middleware.
func UserFromContext(ctx context.Context) (*User, bool) {
	user, ok := ctx.Value(userContextKey).(*User)
	return user, ok
}
