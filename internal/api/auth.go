package api

import (
	"crypto/subtle"
	"net/http"
	"strings"
)

// AuthEnabled reports whether requests must carry the API token.
func (s *Server) AuthEnabled() bool {
	return s.cfg != nil && s.cfg.Server.APIToken != ""
}

// IsAuthenticated checks the request's bearer token.
func (s *Server) IsAuthenticated(r *http.Request) bool {
	if !s.AuthEnabled() {
		return true
	}

	header := r.Header.Get("Authorization")
	token, ok := strings.CutPrefix(header, "Bearer ")
	if !ok {
		return false
	}
	token = strings.TrimSpace(token)
	if token == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(token), []byte(s.cfg.Server.APIToken)) == 1
}

// authMiddleware rejects unauthenticated API requests. Preflight requests
// are answered by the CORS handler before reaching it.
func (s *Server) authMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !s.IsAuthenticated(r) {
			w.Header().Set("WWW-Authenticate", `Bearer realm="stampwatch"`)
			writeError(w, http.StatusUnauthorized, "authentication required")
			return
		}
		next.ServeHTTP(w, r)
	})
}
