package server

import (
	"net/http"
	"strings"

	"pergola/internal/api"
)

func (s *Server) handleAdminUsers(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		users, err := s.svc.ListUsers(r.Context())
		if err != nil {
			s.writeServiceError(w, err)
			return
		}
		s.writeJSON(w, http.StatusOK, map[string]any{"users": users})
	case http.MethodPost:
		var req api.InviteRequest
		if !s.decodeJSON(w, r, &req) {
			return
		}
		token, err := s.svc.InviteUser(r.Context(), req)
		if err != nil {
			s.writeServiceError(w, err)
			return
		}
		s.writeJSON(w, http.StatusCreated, map[string]string{"inviteToken": token})
	default:
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

// handleAdminUserItem routes /api/admin/users/{id}[/role].
func (s *Server) handleAdminUserItem(w http.ResponseWriter, r *http.Request) {
	rest := strings.TrimPrefix(r.URL.Path, "/api/admin/users/")
	id, action, _ := strings.Cut(rest, "/")
	if id == "" {
		s.writeError(w, http.StatusNotFound, "user id required")
		return
	}

	switch action {
	case "":
		if r.Method != http.MethodDelete {
			s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
			return
		}
		if err := s.svc.DeleteUser(r.Context(), id); err != nil {
			s.writeServiceError(w, err)
			return
		}
		s.writeJSON(w, http.StatusNoContent, nil)
	case "role":
		if r.Method != http.MethodPut {
			s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
			return
		}
		var req struct {
			Role string `json:"role"`
		}
		if !s.decodeJSON(w, r, &req) {
			return
		}
		user, err := s.svc.SetUserRole(r.Context(), id, req.Role)
		if err != nil {
			s.writeServiceError(w, err)
			return
		}
		s.writeJSON(w, http.StatusOK, user)
	default:
		s.writeError(w, http.StatusNotFound, "unknown resource")
	}
}
