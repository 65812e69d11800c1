package session

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"pergola/internal/logging"
)

type contextKey struct{}

// FromContext returns the verified session attached by Middleware.
func FromContext(ctx context.Context) (*Session, bool) {
	sess, ok := ctx.Value(contextKey{}).(*Session)
	return sess, ok
}

// withSession attaches a verified session to the context.
func withSession(ctx context.Context, sess *Session) context.Context {
	return context.WithValue(ctx, contextKey{}, sess)
}

// Middleware authenticates every request. It verifies the session token,
// enforces the inactivity timeout against the last-activity cookie, refreshes
// the stamp on success, and attaches the session to the request context.
// Failures clear both cookies and answer 401.
func (m *Manager) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := ""
		if cookie, err := r.Cookie(CookieName); err == nil {
			token = cookie.Value
		}

		sess, err := m.Verify(token)
		if err != nil {
			m.reject(w, err)
			return
		}

		now := m.now().UTC()
		if last, ok := lastActivity(r); ok && now.Sub(last) > m.inactivity {
			m.reject(w, ErrSessionExpired)
			return
		}
		m.touch(w, now)

		ctx := withSession(r.Context(), sess)
		ctx = logging.WithUserID(ctx, sess.UserID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (m *Manager) reject(w http.ResponseWriter, err error) {
	ClearCookies(w)
	message := "unauthorized"
	switch {
	case errors.Is(err, ErrSessionExpired):
		message = "session expired"
	case errors.Is(err, ErrNoSession):
		message = "authentication required"
	case errors.Is(err, ErrSessionInvalid):
		message = "invalid session"
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": message})
}
