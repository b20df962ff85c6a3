package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/wolfman30/leadflow/internal/auth"
	"github.com/wolfman30/leadflow/internal/tenancy"
)

type contextKey string

const claimsKey contextKey = "userClaims"

// Authenticator verifies a session token; *auth.Service satisfies it.
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (*auth.Claims, error)
}

// RequireUser rejects requests without a valid, unrevoked session token and
// scopes the request context to the token's user.
func RequireUser(authn Authenticator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := auth.TokenFromRequest(r)
			if token == "" {
				writeMessage(w, http.StatusUnauthorized, "Access denied. No token provided.")
				return
			}
			claims, err := authn.Authenticate(r.Context(), token)
			if err != nil {
				if errors.Is(err, auth.ErrInvalidToken) || errors.Is(err, auth.ErrTokenRevoked) {
					writeMessage(w, http.StatusUnauthorized, "Invalid token")
					return
				}
				writeMessage(w, http.StatusInternalServerError, "Server error")
				return
			}
			ctx := tenancy.WithUserID(r.Context(), claims.UserID())
			ctx = context.WithValue(ctx, claimsKey, claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// ClaimsFromContext returns the session claims if present.
func ClaimsFromContext(ctx context.Context) (*auth.Claims, bool) {
	claims, ok := ctx.Value(claimsKey).(*auth.Claims)
	return claims, ok
}

func writeMessage(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"message": message})
}
