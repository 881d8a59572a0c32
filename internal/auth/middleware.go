package auth

import (
	"context"
	"errors"
	"net/http"
	"strings"
)

var errMissingToken = errors.New("auth: missing bearer token")

// contextKey is an unexported type for this package's context keys.
// A package-private key type means no other package can read or shadow the
// userID we store in the request context.
type contextKey string

const userIDKey contextKey = "userID"

// RequireAuth enforces authentication on protected routes.
//
// It reads the JWT from the "Authorization: Bearer <token>" header,
// validates it, and stores the userID in the request context. A missing or
// invalid token ends the request with 401 and a JSON body matching the API's
// error envelope.
func RequireAuth(tokens *TokenService) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			userID, err := extractUserID(r, tokens)
			if err != nil {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusUnauthorized)
				_, _ = w.Write([]byte(`{"message":"valid authentication required","error":"unauthorized"}`))
				return
			}

			ctx := context.WithValue(r.Context(), userIDKey, userID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// UserIDFromContext retrieves the authenticated user's ID from the request
// context. Returns ("", false) on an anonymous request.
func UserIDFromContext(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(userIDKey).(string)
	return id, ok && id != ""
}

// WithUserID returns a context carrying the given user ID. Test helper —
// lets handler tests simulate an authenticated request without going
// through the middleware.
func WithUserID(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, userIDKey, userID)
}

// extractUserID pulls the bearer token from the Authorization header and
// validates it. The scheme comparison is case-insensitive per RFC 7235.
func extractUserID(r *http.Request, tokens *TokenService) (string, error) {
	header := r.Header.Get("Authorization")
	scheme, token, found := strings.Cut(header, " ")
	if !found || !strings.EqualFold(scheme, "Bearer") || token == "" {
		return "", errMissingToken
	}

	return tokens.Validate(strings.TrimSpace(token))
}
