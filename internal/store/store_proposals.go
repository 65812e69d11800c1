package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

const proposalColumns = `id, opportunity_id, version, total_amount, status,
    file_key, file_name, sent_at, created_at`

// CreateProposal inserts the next version of an opportunity's proposal.
// Versions are assigned sequentially per opportunity.
func (s *Store) CreateProposal(ctx context.Context, proposal *Proposal) (*Proposal, error) {
	if proposal == nil {
		return nil, errors.New("proposal required")
	}
	if proposal.OpportunityID == "" {
		return nil, errors.New("opportunity id required")
	}
	if _, err := s.GetOpportunity(ctx, proposal.OpportunityID); err != nil {
		return nil, err
	}

	id := proposal.ID
	if id == "" {
		id = uuid.NewString()
	}
	status := proposal.Status
	if status == "" {
		status = "draft"
	}

	_, err := s.execWithRetry(ctx,
		`INSERT INTO proposals (
            id, opportunity_id, version, total_amount, status, file_key, file_name, sent_at, created_at
        ) VALUES (?, ?,
            COALESCE((SELECT MAX(version) FROM proposals WHERE opportunity_id = ?), 0) + 1,
            ?, ?, ?, ?, ?, ?)`,
		id,
		proposal.OpportunityID,
		proposal.OpportunityID,
		proposal.TotalAmount,
		status,
		nullableString(proposal.FileKey),
		nullableString(proposal.FileName),
		formatTimePtr(proposal.SentAt),
		formatTime(time.Now()),
	)
	if err != nil {
		return nil, fmt.Errorf("insert proposal: %w", err)
	}
	return s.GetProposal(ctx, id)
}

// GetProposal fetches one proposal by id.
func (s *Store) GetProposal(ctx context.Context, id string) (*Proposal, error) {
	ctx = ensureContext(ctx)
	row := s.db.QueryRowContext(ctx,
		`SELECT `+proposalColumns+` FROM proposals WHERE id = ?`, id)
	proposal, err := scanProposal(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("proposal %s: %w", id, ErrNotFound)
		}
		return nil, err
	}
	return proposal, nil
}

// ListProposals returns an opportunity's proposals, newest version first.
func (s *Store) ListProposals(ctx context.Context, opportunityID string) ([]*Proposal, error) {
	ctx = ensureContext(ctx)
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+proposalColumns+` FROM proposals
         WHERE opportunity_id = ? ORDER BY version DESC`, opportunityID)
	if err != nil {
		return nil, fmt.Errorf("list proposals: %w", err)
	}
	defer rows.Close()

	var proposals []*Proposal
	for rows.Next() {
		proposal, err := scanProposal(rows)
		if err != nil {
			return nil, err
		}
		proposals = append(proposals, proposal)
	}
	return proposals, rows.Err()
}

// MarkProposalSent stamps a proposal as sent and mirrors the timestamp onto
// the owning opportunity's proposal_sent_at.
func (s *Store) MarkProposalSent(ctx context.Context, id string) error {
	proposal, err := s.GetProposal(ctx, id)
	if err != nil {
		return err
	}
	now := formatTime(time.Now())
	if err := s.execWithoutResultRetry(ctx,
		`UPDATE proposals SET status = 'sent', sent_at = ? WHERE id = ?`, now, id); err != nil {
		return fmt.Errorf("mark proposal sent: %w", err)
	}
	if err := s.execWithoutResultRetry(ctx,
		`UPDATE opportunities SET proposal_sent_at = ?, updated_at = ? WHERE id = ?`,
		now, now, proposal.OpportunityID); err != nil {
		return fmt.Errorf("stamp opportunity proposal_sent_at: %w", err)
	}
	return nil
}

func scanProposal(scanner interface{ Scan(dest ...any) error }) (*Proposal, error) {
	var (
		proposal   Proposal
		fileKey    sql.NullString
		fileName   sql.NullString
		sentRaw    sql.NullString
		createdRaw sql.NullString
	)
	if err := scanner.Scan(
		&proposal.ID,
		&proposal.OpportunityID,
		&proposal.Version,
		&proposal.TotalAmount,
		&proposal.Status,
		&fileKey,
		&fileName,
		&sentRaw,
		&createdRaw,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scan proposal: %w", err)
	}
	proposal.FileKey = stringOr(fileKey)
	proposal.FileName = stringOr(fileName)
	proposal.SentAt = parseTimePtr(sentRaw)
	proposal.CreatedAt = parseTime(createdRaw)
	return &proposal, nil
}
