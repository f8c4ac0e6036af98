package server

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/dkazlou/flint/internal/auth"
)

type ctxKey int

const userIDKey ctxKey = iota

// RequireAuth resolves the bearer token into the acting user id and stores it
// in the request context. Requests without a valid token get 401.
func RequireAuth(mgr *auth.JWTManager) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, err := auth.ExtractTokenFromHeader(r)
			if err != nil {
				unauthorized(w)
				return
			}
			userID, err := mgr.Verify(token)
			if err != nil {
				unauthorized(w)
				return
			}
			ctx := context.WithValue(r.Context(), userIDKey, userID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// UserID returns the acting user id resolved by RequireAuth.
func UserID(ctx context.Context) (uint64, bool) {
	id, ok := ctx.Value(userIDKey).(uint64)
	return id, ok
}

// RespondJSON writes v as a JSON response with the given status code.
func RespondJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func unauthorized(w http.ResponseWriter) {
	RespondJSON(w, http.StatusUnauthorized, map[string]string{"error": "unauthorized"})
}
