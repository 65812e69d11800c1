package server

import (
	"net/http"
	"strings"

	"pergola/internal/api"
	"pergola/internal/store"
)

func (s *Server) handleDeliveries(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	deliveries, err := s.svc.ListDeliveries(r.Context())
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]any{"deliveries": deliveries})
}

// handleDeliveryItem routes /api/deliveries/{id}[/move|/billing].
func (s *Server) handleDeliveryItem(w http.ResponseWriter, r *http.Request) {
	rest := strings.TrimPrefix(r.URL.Path, "/api/deliveries/")
	id, action, _ := strings.Cut(rest, "/")
	if id == "" {
		s.writeError(w, http.StatusNotFound, "delivery id required")
		return
	}

	switch action {
	case "":
		if r.Method != http.MethodGet {
			s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
			return
		}
		delivery, err := s.svc.GetDelivery(r.Context(), id)
		if err != nil {
			s.writeServiceError(w, err)
			return
		}
		s.writeJSON(w, http.StatusOK, delivery)
	case "move":
		if r.Method != http.MethodPost {
			s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
			return
		}
		var req api.MoveRequest
		if !s.decodeJSON(w, r, &req) {
			return
		}
		req.Pipeline = store.PipelineDelivery
		result, err := s.svc.MoveOpportunity(r.Context(), id, req)
		if err != nil {
			s.writeServiceError(w, err)
			return
		}
		s.recordTransition(result)
		s.writeJSON(w, http.StatusOK, result)
	case "billing":
		if r.Method != http.MethodPut {
			s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
			return
		}
		var req struct {
			Status string `json:"status"`
		}
		if !s.decodeJSON(w, r, &req) {
			return
		}
		delivery, err := s.svc.SetBillingStatus(r.Context(), id, req.Status)
		if err != nil {
			s.writeServiceError(w, err)
			return
		}
		s.writeJSON(w, http.StatusOK, delivery)
	default:
		s.writeError(w, http.StatusNotFound, "unknown resource")
	}
}

func (s *Server) handleForecast(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	report, err := s.svc.Forecast(r.Context())
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, report)
}

func (s *Server) handlePayments(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	payments, err := s.svc.ListPayments(r.Context())
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]any{"payments": payments})
}
