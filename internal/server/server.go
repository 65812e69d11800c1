package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"pergola/internal/api"
	"pergola/internal/config"
	"pergola/internal/logging"
	"pergola/internal/session"
)

// Server is the HTTP front of the CRM daemon.
type Server struct {
	bind     string
	logger   *slog.Logger
	svc      *api.Service
	sessions *session.Manager
	metrics  *metrics

	serviceToken string

	listener net.Listener
	server   *http.Server
}

// New wires routes and middleware around the service layer.
func New(cfg *config.Config, svc *api.Service, sessions *session.Manager, logger *slog.Logger) *Server {
	if logger == nil {
		logger = logging.NewNop()
	}
	srv := &Server{
		bind:         strings.TrimSpace(cfg.Paths.APIBind),
		logger:       logger.With(logging.String(logging.FieldComponent, "server")),
		svc:          svc,
		sessions:     sessions,
		metrics:      newMetrics(),
		serviceToken: cfg.Admin.ServiceToken,
	}

	srv.server = &http.Server{
		Handler:           srv.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	return srv
}

// Handler builds the full route tree. Exposed for httptest servers.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	// Public surface.
	mux.HandleFunc("/api/health", s.handleHealth)
	mux.HandleFunc("/api/login", s.handleLogin)
	mux.HandleFunc("/api/logout", s.handleLogout)
	mux.HandleFunc("/api/invites/accept", s.handleAcceptInvite)
	mux.Handle("/metrics", promhttp.HandlerFor(s.metrics.registry, promhttp.HandlerOpts{}))

	// Session-guarded surface.
	authed := http.NewServeMux()
	authed.HandleFunc("/api/me", s.handleMe)
	authed.HandleFunc("/api/pipelines", s.handlePipelines)
	authed.HandleFunc("/api/opportunities", s.handleOpportunities)
	authed.HandleFunc("/api/opportunities/", s.handleOpportunityItem)
	authed.HandleFunc("/api/deliveries", s.handleDeliveries)
	authed.HandleFunc("/api/deliveries/", s.handleDeliveryItem)
	authed.HandleFunc("/api/activities", s.handleActivities)
	authed.HandleFunc("/api/activities/", s.handleActivityItem)
	authed.HandleFunc("/api/proposals/", s.handleProposalItem)
	authed.HandleFunc("/api/reports/forecast", s.handleForecast)
	authed.HandleFunc("/api/payments", s.handlePayments)
	for _, prefix := range []string{
		"/api/me", "/api/pipelines",
		"/api/opportunities", "/api/opportunities/",
		"/api/deliveries", "/api/deliveries/",
		"/api/activities", "/api/activities/",
		"/api/proposals/",
		"/api/reports/forecast", "/api/payments",
	} {
		mux.Handle(prefix, s.authenticate(authed))
	}

	// Admin surface: service token or an admin session.
	admin := http.NewServeMux()
	admin.HandleFunc("/api/admin/users", s.handleAdminUsers)
	admin.HandleFunc("/api/admin/users/", s.handleAdminUserItem)
	mux.Handle("/api/admin/", s.requireAdmin(admin))

	return s.instrument(mux)
}

// Start begins serving until ctx is cancelled.
func (s *Server) Start(ctx context.Context) error {
	if s.bind == "" {
		return errors.New("api bind address required")
	}
	listener, err := net.Listen("tcp", s.bind)
	if err != nil {
		return fmt.Errorf("api listen: %w", err)
	}
	s.listener = listener

	go func() {
		if err := s.server.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("api server error", logging.Error(err))
		}
	}()

	go func() {
		<-ctx.Done()
		s.Stop()
	}()

	s.logger.Info("api server listening", logging.String("address", listener.Addr().String()))
	return nil
}

// Stop drains in-flight requests and closes the listener.
func (s *Server) Stop() {
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = s.server.Shutdown(shutdownCtx)
	if s.listener != nil {
		_ = s.listener.Close()
		s.listener = nil
	}
}

// Addr reports the bound address once Start has succeeded.
func (s *Server) Addr() string {
	if s.listener == nil {
		return s.bind
	}
	return s.listener.Addr().String()
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
