package middleware

import (
	"log/slog"
	"net/http"

	"golang.org/x/crypto/bcrypt"

	"kinship/pkg/requestcontext"
)

// RequireOperatorToken guards operator-only routes (taxonomy administration,
// step resets). The config stores a bcrypt hash of the token, never the token
// itself. An empty hash disables the routes entirely.
func RequireOperatorToken(tokenHash string, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := r.Header.Get("X-Operator-Token")
			if tokenHash == "" || token == "" {
				writeForbidden(w)
				return
			}
			if err := bcrypt.CompareHashAndPassword([]byte(tokenHash), []byte(token)); err != nil {
				logger.WarnContext(r.Context(), "operator token rejected",
					"request_id", requestcontext.RequestID(r.Context()),
				)
				writeForbidden(w)
				return
			}
			ctx := requestcontext.WithOperator(r.Context())
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func writeForbidden(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusForbidden)
	_, _ = w.Write([]byte(`{"success":false,"error":"forbidden","error_description":"Operator token required"}`))
}
