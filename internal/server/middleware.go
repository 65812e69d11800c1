package server

import (
	"crypto/subtle"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"

	"pergola/internal/logging"
	"pergola/internal/session"
	"pergola/internal/store"
)

// statusRecorder captures the response code for logging and metrics.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

// instrument wraps the route tree with request IDs, access logging, and
// Prometheus counters.
func (s *Server) instrument(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := uuid.NewString()
		ctx := logging.WithRequestID(r.Context(), requestID)
		recorder := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		started := time.Now()

		next.ServeHTTP(recorder, r.WithContext(ctx))

		elapsed := time.Since(started)
		s.metrics.requests.WithLabelValues(r.Method, strconv.Itoa(recorder.status)).Inc()
		s.metrics.requestDuration.WithLabelValues(r.Method).Observe(elapsed.Seconds())
		s.logger.Debug("request handled",
			logging.String(logging.FieldRequestID, requestID),
			logging.String("method", r.Method),
			logging.String("path", r.URL.Path),
			logging.Int("status", recorder.status),
			logging.Duration("elapsed", elapsed))
	})
}

// hasServiceToken reports whether the request carries the configured service
// token. An unset token disables service-token access entirely.
func (s *Server) hasServiceToken(r *http.Request) bool {
	if s.serviceToken == "" {
		return false
	}
	presented := r.Header.Get("X-Service-Token")
	if presented == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(presented), []byte(s.serviceToken)) == 1
}

// authenticate guards the main API surface. A valid service token passes
// without a session so operator tooling can talk to the daemon directly.
func (s *Server) authenticate(next http.Handler) http.Handler {
	sessionGuard := s.sessions.Middleware(next)
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.hasServiceToken(r) {
			next.ServeHTTP(w, r)
			return
		}
		sessionGuard.ServeHTTP(w, r)
	})
}

// requireAdmin guards admin routes. The service token grants access without a
// session; otherwise an admin-role session is required.
func (s *Server) requireAdmin(next http.Handler) http.Handler {
	sessionGuard := s.sessions.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sess, ok := session.FromContext(r.Context())
		if !ok || sess.Role != store.RoleAdmin {
			s.writeError(w, http.StatusForbidden, "admin role required")
			return
		}
		next.ServeHTTP(w, r)
	}))

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.hasServiceToken(r) {
			next.ServeHTTP(w, r)
			return
		}
		sessionGuard.ServeHTTP(w, r)
	})
}
