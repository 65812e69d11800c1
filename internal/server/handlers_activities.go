package server

import (
	"net/http"
	"strings"

	"pergola/internal/api"
	"pergola/internal/session"
	"pergola/internal/store"
)

func (s *Server) handleActivities(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		filter := store.ActivityFilter{
			OpportunityID:         r.URL.Query().Get("opportunityId"),
			DeliveryOpportunityID: r.URL.Query().Get("deliveryOpportunityId"),
			Pending:               r.URL.Query().Get("pending") == "true",
		}
		activities, err := s.svc.ListActivities(r.Context(), filter)
		if err != nil {
			s.writeServiceError(w, err)
			return
		}
		s.writeJSON(w, http.StatusOK, map[string]any{"activities": activities})
	case http.MethodPost:
		var req api.CreateActivityRequest
		if !s.decodeJSON(w, r, &req) {
			return
		}
		var createdBy string
		if sess, ok := session.FromContext(r.Context()); ok {
			createdBy = sess.UserID
		}
		activity, err := s.svc.CreateActivity(r.Context(), req, createdBy)
		if err != nil {
			s.writeServiceError(w, err)
			return
		}
		s.writeJSON(w, http.StatusCreated, activity)
	default:
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

// handleActivityItem routes /api/activities/{id}/complete.
func (s *Server) handleActivityItem(w http.ResponseWriter, r *http.Request) {
	rest := strings.TrimPrefix(r.URL.Path, "/api/activities/")
	id, action, _ := strings.Cut(rest, "/")
	if id == "" {
		s.writeError(w, http.StatusNotFound, "activity id required")
		return
	}
	if action != "complete" {
		s.writeError(w, http.StatusNotFound, "unknown resource")
		return
	}
	if r.Method != http.MethodPost {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	activity, err := s.svc.CompleteActivity(r.Context(), id)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, activity)
}
