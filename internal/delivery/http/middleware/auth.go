package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	h "eventsignup/internal/delivery/http/helpers"
	"eventsignup/internal/domain"
)

// SessionCookieName is the cookie that carries the opaque session token.
const SessionCookieName = "session_id"

type contextKey string

const userIDKey contextKey = "userID"

// SetUserID returns a context with the user ID set. Used by auth middleware.
func SetUserID(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, userIDKey, userID)
}

// UserIDFromContext returns the authenticated user ID from the context, if present.
func UserIDFromContext(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(userIDKey).(string)
	return id, ok
}

// RequireAuth returns a wrapper that resolves the session cookie and sets the
// user ID in the request context. Without a valid, unexpired session it
// responds with 401 JSON for API clients and redirects browsers to /login.
func RequireAuth(sessions domain.SessionRepository, logger *slog.Logger) func(http.HandlerFunc) http.HandlerFunc {
	return func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			cookie, err := r.Cookie(SessionCookieName)
			if err != nil || cookie.Value == "" {
				reject(w, r)
				return
			}
			session, err := sessions.GetByToken(r.Context(), cookie.Value)
			if err != nil {
				reject(w, r)
				return
			}
			if session.Expired(time.Now()) {
				// Clean up lazily; a TTL job is not worth it at this scale.
				if derr := sessions.Delete(r.Context(), session.Token); derr != nil {
					logger.WarnContext(r.Context(), "expired session cleanup failed", "err", derr)
				}
				reject(w, r)
				return
			}
			r = r.WithContext(SetUserID(r.Context(), session.UserID))
			next(w, r)
		}
	}
}

func reject(w http.ResponseWriter, r *http.Request) {
	if h.WantsJSON(r) {
		h.WriteJSONError(w, http.StatusUnauthorized, h.ErrCodeUnauthorized, "Nicht authentifiziert")
		return
	}
	http.Redirect(w, r, "/login", http.StatusFound)
}
