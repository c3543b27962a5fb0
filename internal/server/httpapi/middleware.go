package httpapi

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/regisync/regisync/internal/server/auth"
	"github.com/regisync/regisync/internal/server/errorlog"
)

type ctxKey string

const adminClaimsKey ctxKey = "adminClaims"

// requireAdmin verifies the bearer token and stores the admin claims in the
// request context. Rejected attempts are recorded in the error log, the way
// the rest of the dashboard diagnostics are.
func (s *Server) requireAdmin(next http.HandlerFunc) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {

		header := r.Header.Get("Authorization")
		if header == "" || !strings.HasPrefix(header, "Bearer ") {
			s.recorder.Record(r.Context(), errorlog.LevelWarning,
				"unauthorized access attempt: missing or invalid Authorization header", "")
			s.writeError(w, http.StatusUnauthorized, "authorization required")
			return
		}

		token := strings.TrimPrefix(header, "Bearer ")
		claims, err := auth.GetClaimsFromToken(token, []byte(s.config.SecretKey))
		if err != nil {
			s.recorder.Record(r.Context(), errorlog.LevelWarning,
				"unauthorized access attempt: invalid token", "")
			s.writeError(w, http.StatusUnauthorized, "invalid credentials")
			return
		}

		ctx := context.WithValue(r.Context(), adminClaimsKey, claims)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func (s *Server) writeError(w http.ResponseWriter, status int, message string) {
	s.writeJSON(w, status, map[string]string{"message": message})
}

func decodeBody(r *http.Request, v any) error {
	defer func() { _ = r.Body.Close() }()
	return json.NewDecoder(r.Body).Decode(v)
}
