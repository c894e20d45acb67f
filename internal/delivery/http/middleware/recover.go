package middleware

import (
	"log/slog"
	"net/http"
	"runtime/debug"

	h "clubsite/internal/delivery/http/helpers"
)

// Recover turns a handler panic into a logged 500 response.
func Recover(logger *slog.Logger, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if p := recover(); p != nil {
				if p == http.ErrAbortHandler {
					panic(p)
				}
				logger.ErrorContext(r.Context(), "panic serving request",
					"path", r.URL.Path, "method", r.Method, "panic", p, "stack", string(debug.Stack()))
				h.WriteJSONError(w, http.StatusInternalServerError, h.ErrCodeInternalError, "internal server error")
			}
		}()
		next.ServeHTTP(w, r)
	})
}
