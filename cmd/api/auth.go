package main

import (
	"crypto/subtle"
	"net/http"
	"os"
	"strings"
)

// requireAPIKey gates a handler behind the bearer token in API_SECRET_KEY.
func requireAPIKey(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		secret := os.Getenv("API_SECRET_KEY")
		if secret == "" {
			// An unset key is a deployment mistake, not a caller mistake.
			// 401 here would send the operator hunting through client code.
			http.Error(w, "API_SECRET_KEY is not configured", http.StatusInternalServerError)
			return
		}

		// Constant-time comparison: response latency stays flat no matter
		// how much of the token prefix happens to match.
		if subtle.ConstantTimeCompare([]byte(bearerToken(r)), []byte(secret)) != 1 {
			http.Error(w, `{"error": "invalid or missing API key"}`, http.StatusUnauthorized)
			return
		}

		next(w, r)
	}
}

func bearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	return strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))
}
