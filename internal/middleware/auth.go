package middleware

import (
	"net/http"
	"strings"
)

// Header and query parameter names the API key is read from.
const (
	APIKeyHeader = "X-Api-Key"
	// APIKeyQueryParam is a fallback for manual testing with a browser or
	// curl. Query strings end up in proxy and access logs, so production
	// callers must use the header.
	APIKeyQueryParam = "api_key"
)

// APIKey gates a route behind the shared API key. Policy is fail closed:
// when no key is configured the service refuses everyone with a server
// error instead of silently opening up. The AUTH_DISABLED override skips
// the check entirely.
func (m *Middleware) APIKey(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if m.cfg.Auth.Disabled {
			next.ServeHTTP(w, r)
			return
		}

		if m.cfg.Auth.APIKey == "" {
			writeJSONError(w, http.StatusInternalServerError,
				`{"error":"Server misconfigured","detail":"EMAIL_API_KEY not loaded"}`)
			return
		}

		candidate := extractAPIKey(r)
		if candidate == "" || candidate != m.cfg.Auth.APIKey {
			writeJSONError(w, http.StatusUnauthorized, `{"error":"Unauthorized"}`)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// extractAPIKey pulls the caller credential from the request, checking the
// dedicated header first, then a bearer Authorization header, then the
// query parameter fallback.
func extractAPIKey(r *http.Request) string {
	if key := r.Header.Get(APIKeyHeader); key != "" {
		return strings.TrimSpace(key)
	}

	if authHeader := r.Header.Get("Authorization"); authHeader != "" {
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) == 2 && strings.EqualFold(parts[0], "bearer") {
			return strings.TrimSpace(parts[1])
		}
	}

	return strings.TrimSpace(r.URL.Query().Get(APIKeyQueryParam))
}
