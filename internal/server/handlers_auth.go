package server

import (
	"net/http"

	"pergola/internal/api"
	"pergola/internal/logging"
	"pergola/internal/session"
)

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	var req api.LoginRequest
	if !s.decodeJSON(w, r, &req) {
		return
	}

	user, err := s.svc.Auth().Login(r.Context(), req.Email, req.Password)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	token, err := s.sessions.Issue(user)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	s.sessions.SetCookies(w, token)
	s.logger.Info("user logged in", logging.String(logging.FieldUserID, user.ID))
	s.writeJSON(w, http.StatusOK, api.FromUser(user))
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	session.ClearCookies(w)
	s.writeJSON(w, http.StatusNoContent, nil)
}

func (s *Server) handleAcceptInvite(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	var req api.AcceptInviteRequest
	if !s.decodeJSON(w, r, &req) {
		return
	}
	user, err := s.svc.AcceptInvite(r.Context(), req)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	s.writeJSON(w, http.StatusCreated, user)
}

func (s *Server) handleMe(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	sess, ok := session.FromContext(r.Context())
	if !ok {
		s.writeError(w, http.StatusUnauthorized, "authentication required")
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]string{
		"id":    sess.UserID,
		"email": sess.Email,
		"role":  sess.Role,
	})
}
