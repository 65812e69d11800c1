package server

import (
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"pergola/internal/logging"
)

// Proposal documents are capped at 20 MiB.
const maxProposalBytes = 20 << 20

// handleOpportunityProposals serves /api/opportunities/{id}/proposals.
func (s *Server) handleOpportunityProposals(w http.ResponseWriter, r *http.Request, opportunityID string) {
	switch r.Method {
	case http.MethodGet:
		proposals, err := s.svc.ListProposals(r.Context(), opportunityID)
		if err != nil {
			s.writeServiceError(w, err)
			return
		}
		s.writeJSON(w, http.StatusOK, map[string]any{"proposals": proposals})
	case http.MethodPost:
		r.Body = http.MaxBytesReader(w, r.Body, maxProposalBytes)
		if err := r.ParseMultipartForm(maxProposalBytes); err != nil {
			s.writeError(w, http.StatusBadRequest, "invalid multipart payload")
			return
		}
		file, header, err := r.FormFile("document")
		if err != nil {
			s.writeError(w, http.StatusBadRequest, "document file required")
			return
		}
		defer file.Close()

		var totalAmount float64
		if raw := r.FormValue("totalAmount"); raw != "" {
			totalAmount, err = strconv.ParseFloat(raw, 64)
			if err != nil {
				s.writeError(w, http.StatusBadRequest, "invalid totalAmount")
				return
			}
		}
		contentType := header.Header.Get("Content-Type")
		if contentType == "" {
			contentType = "application/octet-stream"
		}
		proposal, err := s.svc.UploadProposal(r.Context(), opportunityID, header.Filename, contentType, file, totalAmount)
		if err != nil {
			s.writeServiceError(w, err)
			return
		}
		s.writeJSON(w, http.StatusCreated, proposal)
	default:
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

// handleProposalItem routes /api/proposals/{id}/document and /api/proposals/{id}/send.
func (s *Server) handleProposalItem(w http.ResponseWriter, r *http.Request) {
	rest := strings.TrimPrefix(r.URL.Path, "/api/proposals/")
	id, action, _ := strings.Cut(rest, "/")
	if id == "" {
		s.writeError(w, http.StatusNotFound, "proposal id required")
		return
	}

	switch action {
	case "document":
		if r.Method != http.MethodGet {
			s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
			return
		}
		body, contentType, fileName, err := s.svc.OpenProposalDocument(r.Context(), id)
		if err != nil {
			s.writeServiceError(w, err)
			return
		}
		defer body.Close()
		w.Header().Set("Content-Type", contentType)
		w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", fileName))
		if _, err := io.Copy(w, body); err != nil {
			s.logger.Warn("proposal download interrupted",
				logging.String("proposal_id", id),
				logging.Error(err))
		}
	case "send":
		if r.Method != http.MethodPost {
			s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
			return
		}
		proposal, err := s.svc.SendProposal(r.Context(), id)
		if err != nil {
			s.writeServiceError(w, err)
			return
		}
		s.writeJSON(w, http.StatusOK, proposal)
	default:
		s.writeError(w, http.StatusNotFound, "unknown resource")
	}
}
