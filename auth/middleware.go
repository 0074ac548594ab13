package auth

import (
	"context"
	"net/http"
	"strings"

	"campus-link/domain"
)

// UserResolver turns an authenticated subject into a directory identity.
type UserResolver interface {
	GetUser(id string) (domain.User, error)
}

type contextKey string

const userKey contextKey = "user"

// Middleware validates the bearer token on every request and injects the
// resolved directory identity into the request context. Requests with a
// missing, invalid, or expired credential are rejected before any handler
// runs.
func Middleware(secret []byte, resolver UserResolver) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user, ok := Authenticate(secret, resolver, BearerToken(r))
			if !ok {
				http.Error(w, "unauthorized", http.StatusUnauthorized)
				return
			}
			next.ServeHTTP(w, r.WithContext(WithUser(r.Context(), user)))
		})
	}
}

// BearerToken extracts the credential from the Authorization header, falling
// back to the "token" query parameter for clients that cannot set headers
// during a WebSocket handshake.
func BearerToken(r *http.Request) string {
	if header := r.Header.Get("Authorization"); header != "" {
		return strings.TrimPrefix(header, "Bearer ")
	}
	return r.URL.Query().Get("token")
}

// Authenticate resolves a raw credential to a directory identity. Shared by
// the HTTP middleware and the WebSocket gateway so both reject the same way:
// missing credential, bad signature, expiry, and unknown subject all fail closed.
func Authenticate(secret []byte, resolver UserResolver, token string) (domain.User, bool) {
	if token == "" {
		return domain.User{}, false
	}
	claims, err := ValidateToken(secret, token)
	if err != nil {
		return domain.User{}, false
	}
	user, err := resolver.GetUser(claims.UserID)
	if err != nil {
		return domain.User{}, false
	}
	return user, true
}

// WithUser attaches the caller identity to a context.
func WithUser(ctx context.Context, user domain.User) context.Context {
	return context.WithValue(ctx, userKey, user)
}

// UserFromContext retrieves the caller identity injected by Middleware.
func UserFromContext(ctx context.Context) (domain.User, bool) {
	user, ok := ctx.Value(userKey).(domain.User)
	return user, ok
}
