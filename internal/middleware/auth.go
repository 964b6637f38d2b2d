package middleware

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/mkowalczyk/divvy/internal/auth"
)

// Auth validates the Authorization bearer token and stores the user ID in
// the request context. Paths under any of skipPrefixes pass through
// unauthenticated (login, health, metrics).
func Auth(tokens *auth.TokenManager, skipPrefixes []string, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		for _, prefix := range skipPrefixes {
			if strings.HasPrefix(r.URL.Path, prefix) {
				next.ServeHTTP(w, r)
				return
			}
		}

		header := r.Header.Get("Authorization")
		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || token == "" {
			unauthorized(w, auth.ErrMissingToken.Error())
			return
		}

		claims, err := tokens.Validate(token)
		if err != nil {
			unauthorized(w, auth.ErrInvalidToken.Error())
			return
		}

		next.ServeHTTP(w, r.WithContext(WithUserID(r.Context(), claims.UserID)))
	})
}

func unauthorized(w http.ResponseWriter, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	json.NewEncoder(w).Encode(map[string]string{"error": msg})
}
