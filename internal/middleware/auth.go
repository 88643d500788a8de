package middleware

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"chatrelay/internal/auth"
	"chatrelay/internal/domain"
	"chatrelay/internal/httputil"
)

// AdminAuth rejects requests without a valid admin bearer token.
// The admin's subject is stored on the request context.
func AdminAuth(verifier auth.JWTVerifier, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			token, ok := strings.CutPrefix(header, "Bearer ")
			if !ok || strings.TrimSpace(token) == "" {
				httputil.RespondError(w, http.StatusUnauthorized, "missing bearer token")
				return
			}

			claims, err := verifier.VerifyToken(strings.TrimSpace(token))
			if err != nil {
				if errors.Is(err, domain.ErrForbidden) {
					httputil.RespondError(w, http.StatusForbidden, "admin role required")
					return
				}
				httputil.RespondError(w, http.StatusUnauthorized, "invalid token")
				return
			}

			logger.Debug("admin request", "admin_id", claims.GetAdminID(), "path", r.URL.Path)
			next.ServeHTTP(w, httputil.WithAdminID(r, claims.GetAdminID()))
		})
	}
}
