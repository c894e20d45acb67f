package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	h "clubsite/internal/delivery/http/helpers"
	"clubsite/internal/domain"
)

type contextKey string

const sessionKey contextKey = "session"

// WithSession returns a context carrying session.
func WithSession(ctx context.Context, session domain.SessionContext) context.Context {
	return context.WithValue(ctx, sessionKey, session)
}

// SessionFromContext returns the request's session. Requests that passed no
// auth middleware are anonymous.
func SessionFromContext(ctx context.Context) domain.SessionContext {
	session, _ := ctx.Value(sessionKey).(domain.SessionContext)
	return session
}

func bearerToken(r *http.Request) (string, string) {
	auth := r.Header.Get("Authorization")
	if auth == "" {
		return "", "missing authorization header"
	}
	const prefix = "Bearer "
	if len(auth) < len(prefix) || !strings.EqualFold(auth[:len(prefix)], prefix) {
		return "", "invalid authorization format"
	}
	token := strings.TrimSpace(auth[len(prefix):])
	if token == "" {
		return "", "missing token"
	}
	return token, ""
}

// RequireAuth returns a wrapper that validates the Bearer token and attaches
// the session to the request context. If the token is missing or invalid it
// responds with 401 before the body is read and does not call next.
func RequireAuth(verifier domain.TokenVerifier, logger *slog.Logger) func(http.HandlerFunc) http.HandlerFunc {
	return func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			token, problem := bearerToken(r)
			if problem != "" {
				h.WriteJSONError(w, http.StatusUnauthorized, h.ErrCodeUnauthorized, problem)
				return
			}
			actor, err := verifier.Verify(token)
			if err != nil {
				logger.DebugContext(r.Context(), "token rejected", "path", r.URL.Path, "err", err)
				h.WriteJSONError(w, http.StatusUnauthorized, h.ErrCodeUnauthorized, "invalid or expired token")
				return
			}
			next(w, r.WithContext(WithSession(r.Context(), domain.SessionContext{Actor: actor})))
		}
	}
}

// OptionalAuth attaches the session when a valid Bearer token is present and
// otherwise continues anonymously.
func OptionalAuth(verifier domain.TokenVerifier, logger *slog.Logger) func(http.HandlerFunc) http.HandlerFunc {
	return func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			token, problem := bearerToken(r)
			if problem == "" {
				if actor, err := verifier.Verify(token); err == nil {
					r = r.WithContext(WithSession(r.Context(), domain.SessionContext{Actor: actor}))
				} else {
					logger.DebugContext(r.Context(), "ignoring invalid token", "path", r.URL.Path, "err", err)
				}
			}
			next(w, r)
		}
	}
}
