package api

import (
	"context"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/google/uuid"

	"pergola/internal/store"
)

// UploadProposal stores the document and records the next proposal version.
func (s *Service) UploadProposal(ctx context.Context, opportunityID, fileName, contentType string, body io.Reader, totalAmount float64) (*Proposal, error) {
	if strings.TrimSpace(fileName) == "" {
		return nil, fmt.Errorf("%w: file name is required", ErrValidation)
	}
	if totalAmount < 0 {
		return nil, fmt.Errorf("%w: total amount cannot be negative", ErrValidation)
	}
	if _, err := s.store.GetOpportunity(ctx, opportunityID); err != nil {
		return nil, err
	}

	fileName = path.Base(fileName)
	key := path.Join("proposals", opportunityID, uuid.NewString()+path.Ext(fileName))
	if err := s.blobs.Put(ctx, key, body, contentType); err != nil {
		return nil, fmt.Errorf("store proposal document: %w", err)
	}

	proposal, err := s.store.CreateProposal(ctx, &store.Proposal{
		OpportunityID: opportunityID,
		TotalAmount:   totalAmount,
		FileKey:       key,
		FileName:      fileName,
	})
	if err != nil {
		// The orphaned blob is removed so failed inserts do not leak files.
		_ = s.blobs.Delete(ctx, key)
		return nil, err
	}
	dto := FromProposal(proposal)
	return &dto, nil
}

// ListProposals returns a deal's proposals, newest version first.
func (s *Service) ListProposals(ctx context.Context, opportunityID string) ([]Proposal, error) {
	if _, err := s.store.GetOpportunity(ctx, opportunityID); err != nil {
		return nil, err
	}
	proposals, err := s.store.ListProposals(ctx, opportunityID)
	if err != nil {
		return nil, err
	}
	out := make([]Proposal, 0, len(proposals))
	for _, proposal := range proposals {
		out = append(out, FromProposal(proposal))
	}
	return out, nil
}

// SendProposal marks a proposal sent and stamps the owning deal.
func (s *Service) SendProposal(ctx context.Context, id string) (*Proposal, error) {
	if err := s.store.MarkProposalSent(ctx, id); err != nil {
		return nil, err
	}
	proposal, err := s.store.GetProposal(ctx, id)
	if err != nil {
		return nil, err
	}
	dto := FromProposal(proposal)
	return &dto, nil
}

// OpenProposalDocument streams a proposal's stored file. The caller closes
// the reader.
func (s *Service) OpenProposalDocument(ctx context.Context, id string) (io.ReadCloser, string, string, error) {
	proposal, err := s.store.GetProposal(ctx, id)
	if err != nil {
		return nil, "", "", err
	}
	if proposal.FileKey == "" {
		return nil, "", "", fmt.Errorf("proposal %s has no document: %w", id, store.ErrNotFound)
	}
	body, contentType, err := s.blobs.Get(ctx, proposal.FileKey)
	if err != nil {
		return nil, "", "", err
	}
	return body, contentType, proposal.FileName, nil
}
