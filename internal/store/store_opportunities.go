package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

const opportunityColumns = `id, title, description, amount_estimated, amount_offered, amount_final,
    stage_id, pipeline_id, owner_id, origin_opportunity_id, briefing, measurement_data,
    priority, source, created_at, updated_at, closed_at, proposal_sent_at`

// CreateOpportunity inserts a new commercial opportunity and returns the stored row.
func (s *Store) CreateOpportunity(ctx context.Context, opp *Opportunity) (*Opportunity, error) {
	if opp == nil {
		return nil, errors.New("opportunity required")
	}
	if strings.TrimSpace(opp.Title) == "" {
		return nil, errors.New("opportunity title required")
	}
	priority := opp.Priority
	if priority == "" {
		priority = PriorityMedium
	}
	if !ValidPriority(priority) {
		return nil, fmt.Errorf("invalid priority %q", priority)
	}

	id := opp.ID
	if id == "" {
		id = uuid.NewString()
	}
	now := formatTime(time.Now())

	_, err := s.execWithRetry(ctx,
		`INSERT INTO opportunities (
            id, title, description, amount_estimated, amount_offered, amount_final,
            stage_id, pipeline_id, owner_id, origin_opportunity_id, briefing, measurement_data,
            priority, source, created_at, updated_at, closed_at, proposal_sent_at
        ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		id,
		strings.TrimSpace(opp.Title),
		nullableString(opp.Description),
		opp.AmountEstimated,
		opp.AmountOffered,
		opp.AmountFinal,
		opp.StageID,
		opp.PipelineID,
		nullableString(opp.OwnerID),
		nullableString(opp.OriginOpportunityID),
		nullableString(opp.Briefing),
		nullableString(opp.MeasurementData),
		priority,
		nullableString(opp.Source),
		now,
		now,
		formatTimePtr(opp.ClosedAt),
		formatTimePtr(opp.ProposalSentAt),
	)
	if err != nil {
		return nil, fmt.Errorf("insert opportunity: %w", err)
	}

	return s.GetOpportunity(ctx, id)
}

// GetOpportunity fetches one commercial opportunity by id.
func (s *Store) GetOpportunity(ctx context.Context, id string) (*Opportunity, error) {
	ctx = ensureContext(ctx)
	row := s.db.QueryRowContext(ctx,
		`SELECT `+opportunityColumns+` FROM opportunities WHERE id = ?`, id)
	opp, err := scanOpportunity(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("opportunity %s: %w", id, ErrNotFound)
		}
		return nil, err
	}
	return opp, nil
}

// ListOpportunities returns the commercial opportunities in a pipeline.
func (s *Store) ListOpportunities(ctx context.Context, pipelineID string) ([]*Opportunity, error) {
	ctx = ensureContext(ctx)
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+opportunityColumns+` FROM opportunities
         WHERE pipeline_id = ? ORDER BY created_at DESC`, pipelineID)
	if err != nil {
		return nil, fmt.Errorf("list opportunities: %w", err)
	}
	defer rows.Close()

	var opps []*Opportunity
	for rows.Next() {
		opp, err := scanOpportunity(rows)
		if err != nil {
			return nil, err
		}
		opps = append(opps, opp)
	}
	return opps, rows.Err()
}

// UpdateOpportunity persists field edits to an existing opportunity. Stage
// moves go through SetOpportunityStage so history and side effects are not
// bypassed.
func (s *Store) UpdateOpportunity(ctx context.Context, opp *Opportunity) error {
	if opp == nil || opp.ID == "" {
		return errors.New("opportunity id required")
	}
	if opp.Priority != "" && !ValidPriority(opp.Priority) {
		return fmt.Errorf("invalid priority %q", opp.Priority)
	}

	res, err := s.execWithRetry(ctx,
		`UPDATE opportunities SET
            title = ?, description = ?, amount_estimated = ?, amount_offered = ?, amount_final = ?,
            owner_id = ?, briefing = ?, measurement_data = ?, priority = ?, source = ?,
            closed_at = ?, proposal_sent_at = ?, updated_at = ?
         WHERE id = ?`,
		strings.TrimSpace(opp.Title),
		nullableString(opp.Description),
		opp.AmountEstimated,
		opp.AmountOffered,
		opp.AmountFinal,
		nullableString(opp.OwnerID),
		nullableString(opp.Briefing),
		nullableString(opp.MeasurementData),
		opp.Priority,
		nullableString(opp.Source),
		formatTimePtr(opp.ClosedAt),
		formatTimePtr(opp.ProposalSentAt),
		formatTime(time.Now()),
		opp.ID,
	)
	if err != nil {
		return fmt.Errorf("update opportunity: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update opportunity rows: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("opportunity %s: %w", opp.ID, ErrNotFound)
	}
	return nil
}

// SetOpportunityStage moves a commercial opportunity to the given stage.
func (s *Store) SetOpportunityStage(ctx context.Context, id, stageID string) error {
	res, err := s.execWithRetry(ctx,
		`UPDATE opportunities SET stage_id = ?, updated_at = ? WHERE id = ?`,
		stageID, formatTime(time.Now()), id)
	if err != nil {
		return fmt.Errorf("set opportunity stage: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("set opportunity stage rows: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("opportunity %s: %w", id, ErrNotFound)
	}
	return nil
}

// MarkOpportunityClosed stamps closed_at when a deal reaches a terminal stage.
func (s *Store) MarkOpportunityClosed(ctx context.Context, id string, closedAt time.Time) error {
	res, err := s.execWithRetry(ctx,
		`UPDATE opportunities SET closed_at = ?, updated_at = ? WHERE id = ?`,
		formatTime(closedAt), formatTime(time.Now()), id)
	if err != nil {
		return fmt.Errorf("mark opportunity closed: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("mark opportunity closed rows: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("opportunity %s: %w", id, ErrNotFound)
	}
	return nil
}

// DeleteOpportunity removes an opportunity. Related delivery opportunities,
// history, activities, and proposals cascade at the schema level.
func (s *Store) DeleteOpportunity(ctx context.Context, id string) error {
	res, err := s.execWithRetry(ctx, `DELETE FROM opportunities WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete opportunity: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete opportunity rows: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("opportunity %s: %w", id, ErrNotFound)
	}
	return nil
}

func scanOpportunity(scanner interface{ Scan(dest ...any) error }) (*Opportunity, error) {
	var (
		opp            Opportunity
		description    sql.NullString
		ownerID        sql.NullString
		originID       sql.NullString
		briefing       sql.NullString
		measurement    sql.NullString
		source         sql.NullString
		createdRaw     sql.NullString
		updatedRaw     sql.NullString
		closedRaw      sql.NullString
		proposalSentAt sql.NullString
	)
	if err := scanner.Scan(
		&opp.ID,
		&opp.Title,
		&description,
		&opp.AmountEstimated,
		&opp.AmountOffered,
		&opp.AmountFinal,
		&opp.StageID,
		&opp.PipelineID,
		&ownerID,
		&originID,
		&briefing,
		&measurement,
		&opp.Priority,
		&source,
		&createdRaw,
		&updatedRaw,
		&closedRaw,
		&proposalSentAt,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scan opportunity: %w", err)
	}
	opp.Description = stringOr(description)
	opp.OwnerID = stringOr(ownerID)
	opp.OriginOpportunityID = stringOr(originID)
	opp.Briefing = stringOr(briefing)
	opp.MeasurementData = stringOr(measurement)
	opp.Source = stringOr(source)
	opp.CreatedAt = parseTime(createdRaw)
	opp.UpdatedAt = parseTime(updatedRaw)
	opp.ClosedAt = parseTimePtr(closedRaw)
	opp.ProposalSentAt = parseTimePtr(proposalSentAt)
	return &opp, nil
}
