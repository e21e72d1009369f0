package middleware

import (
	"net/http"
	"strings"
)

// Auth enforces a shared bearer token on /v1/ routes. EventSource clients
// cannot set headers, so stream routes also accept the token as a query
// parameter.
func Auth(requiredToken string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !strings.HasPrefix(r.URL.Path, "/v1/") {
				next.ServeHTTP(w, r)
				return
			}

			if requiredToken == "" {
				next.ServeHTTP(w, r)
				return
			}

			if token := bearerToken(r); token != "" && token == requiredToken {
				next.ServeHTTP(w, r)
				return
			}

			if strings.HasSuffix(r.URL.Path, "/stream") {
				if token := r.URL.Query().Get("token"); token != "" && token == requiredToken {
					next.ServeHTTP(w, r)
					return
				}
			}

			writeUnauthorized(w, r)
		})
	}
}

func bearerToken(r *http.Request) string {
	const prefix = "Bearer "
	authorization := r.Header.Get("Authorization")
	if !strings.HasPrefix(authorization, prefix) {
		return ""
	}
	return strings.TrimSpace(strings.TrimPrefix(authorization, prefix))
}

func writeUnauthorized(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	_, _ = w.Write([]byte(`{"error":{"code":"unauthorized","message":"authentication required"},"request_id":"` + GetRequestID(r.Context()) + `"}`))
}
