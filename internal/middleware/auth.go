package middleware

import (
	"context"
	"database/sql"
	"encoding/json"
	"log"
	"net/http"
	"strings"

	"github.com/Vovadm/exammath.ru/internal/auth"
)

// Context keys for values set by the middleware chain.
const (
	UserIDKey   = "user_id"
	UserRoleKey = "user_role"
)

// Auth validates the Bearer token and stores the user id in the
// request context. Requests without a valid token get 401.
func Auth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		if !strings.HasPrefix(header, "Bearer ") {
			writeError(w, http.StatusUnauthorized, "missing or invalid authorization header")
			return
		}

		userID, err := auth.ParseToken(strings.TrimPrefix(header, "Bearer "))
		if err != nil {
			writeError(w, http.StatusUnauthorized, "invalid or expired token")
			return
		}

		ctx := context.WithValue(r.Context(), UserIDKey, userID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequireRole loads the authenticated user's role and rejects the
// request with 403 unless it is one of the allowed roles. Must run
// after Auth. The role is also stored in the context for handlers
// that branch on it.
func RequireRole(db *sql.DB, roles ...string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			userID, ok := r.Context().Value(UserIDKey).(int64)
			if !ok {
				writeError(w, http.StatusUnauthorized, "not authenticated")
				return
			}

			var role string
			err := db.QueryRowContext(r.Context(),
				`SELECT role FROM users WHERE id = $1`, userID).Scan(&role)
			if err != nil {
				log.Printf("[middleware] load role for user %d: %v", userID, err)
				writeError(w, http.StatusUnauthorized, "user not found")
				return
			}

			allowed := false
			for _, want := range roles {
				if role == want {
					allowed = true
					break
				}
			}
			if !allowed {
				writeError(w, http.StatusForbidden, "insufficient permissions")
				return
			}

			ctx := context.WithValue(r.Context(), UserRoleKey, role)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": msg})
}
