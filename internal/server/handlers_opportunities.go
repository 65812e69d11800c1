package server

import (
	"net/http"
	"strings"

	"pergola/internal/api"
	"pergola/internal/session"
	"pergola/internal/store"
)

func (s *Server) handlePipelines(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	pipelines, err := s.svc.ListPipelines(r.Context())
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]any{"pipelines": pipelines})
}

func (s *Server) handleOpportunities(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		opps, err := s.svc.ListOpportunities(r.Context())
		if err != nil {
			s.writeServiceError(w, err)
			return
		}
		s.writeJSON(w, http.StatusOK, map[string]any{"opportunities": opps})
	case http.MethodPost:
		var req api.CreateOpportunityRequest
		if !s.decodeJSON(w, r, &req) {
			return
		}
		if req.OwnerID == "" {
			if sess, ok := session.FromContext(r.Context()); ok {
				req.OwnerID = sess.UserID
			}
		}
		opp, err := s.svc.CreateOpportunity(r.Context(), req)
		if err != nil {
			s.writeServiceError(w, err)
			return
		}
		s.writeJSON(w, http.StatusCreated, opp)
	default:
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

// handleOpportunityItem routes /api/opportunities/{id}[/move|/history|/proposals].
func (s *Server) handleOpportunityItem(w http.ResponseWriter, r *http.Request) {
	rest := strings.TrimPrefix(r.URL.Path, "/api/opportunities/")
	id, action, _ := strings.Cut(rest, "/")
	if id == "" {
		s.writeError(w, http.StatusNotFound, "opportunity id required")
		return
	}

	switch action {
	case "":
		s.handleOpportunity(w, r, id)
	case "move":
		s.handleOpportunityMove(w, r, id)
	case "history":
		s.handleOpportunityHistory(w, r, id)
	case "proposals":
		s.handleOpportunityProposals(w, r, id)
	default:
		s.writeError(w, http.StatusNotFound, "unknown resource")
	}
}

func (s *Server) handleOpportunity(w http.ResponseWriter, r *http.Request, id string) {
	switch r.Method {
	case http.MethodGet:
		opp, err := s.svc.GetOpportunity(r.Context(), id)
		if err != nil {
			s.writeServiceError(w, err)
			return
		}
		s.writeJSON(w, http.StatusOK, opp)
	case http.MethodPatch, http.MethodPut:
		var req api.UpdateOpportunityRequest
		if !s.decodeJSON(w, r, &req) {
			return
		}
		opp, err := s.svc.UpdateOpportunity(r.Context(), id, req)
		if err != nil {
			s.writeServiceError(w, err)
			return
		}
		s.writeJSON(w, http.StatusOK, opp)
	case http.MethodDelete:
		if !s.hasServiceToken(r) {
			sess, ok := session.FromContext(r.Context())
			if !ok || sess.Role != store.RoleAdmin {
				s.writeError(w, http.StatusForbidden, "admin role required")
				return
			}
		}
		if err := s.svc.DeleteOpportunity(r.Context(), id); err != nil {
			s.writeServiceError(w, err)
			return
		}
		s.writeJSON(w, http.StatusNoContent, nil)
	default:
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

func (s *Server) handleOpportunityMove(w http.ResponseWriter, r *http.Request, id string) {
	if r.Method != http.MethodPost {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	var req api.MoveRequest
	if !s.decodeJSON(w, r, &req) {
		return
	}
	result, err := s.svc.MoveOpportunity(r.Context(), id, req)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	s.recordTransition(result)
	s.writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleOpportunityHistory(w http.ResponseWriter, r *http.Request, id string) {
	if r.Method != http.MethodGet {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	history, err := s.svc.ListStageHistory(r.Context(), id)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]any{"history": history})
}

// recordTransition feeds workflow counters from a successful move.
func (s *Server) recordTransition(result *api.MoveResult) {
	pipeline := store.PipelineCommercial
	if result.Delivery != nil {
		pipeline = store.PipelineDelivery
	}
	s.metrics.stageTransitions.WithLabelValues(pipeline, result.Stage.Slug).Inc()
	if result.DeliveryCreated {
		s.metrics.derivedRecords.WithLabelValues("delivery_opportunity").Inc()
	}
	if result.PaymentCreated {
		s.metrics.derivedRecords.WithLabelValues("payment_instruction").Inc()
	}
}
