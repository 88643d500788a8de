package middleware

import (
	"log/slog"
	"net/http"
	"runtime/debug"

	"chatrelay/internal/httputil"
)

// Recovery middleware recovers from panics and returns a 500 error.
// The body keeps the {"error": ...} shape the chat widget expects.
func Recovery(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if err := recover(); err != nil {
					logger.Error("panic recovered",
						"error", err,
						"path", r.URL.Path,
						"method", r.Method,
						"request_id", w.Header().Get(RequestIDHeader),
						"stack", string(debug.Stack()),
					)

					httputil.RespondJSON(w, http.StatusInternalServerError, httputil.ErrorBody{Error: "internal server error"})
				}
			}()

			next.ServeHTTP(w, r)
		})
	}
}
