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

const deliveryColumns = `id, commercial_opportunity_id, title, owner_id, amount_final,
    expected_install_at, stage_id, pipeline_id, billing_status, created_at, updated_at`

// CreateDeliveryOpportunity inserts the fulfillment record for a won deal.
// The unique index on commercial_opportunity_id makes the call idempotent:
// when a record already exists for the same commercial opportunity, the
// existing row is returned and no duplicate is created.
func (s *Store) CreateDeliveryOpportunity(ctx context.Context, delivery *DeliveryOpportunity) (*DeliveryOpportunity, bool, error) {
	if delivery == nil {
		return nil, false, errors.New("delivery opportunity required")
	}
	if delivery.CommercialOpportunityID == "" {
		return nil, false, errors.New("commercial opportunity id required")
	}

	id := delivery.ID
	if id == "" {
		id = uuid.NewString()
	}
	billing := delivery.BillingStatus
	if billing == "" {
		billing = BillingPending
	}
	now := formatTime(time.Now())

	res, err := s.execWithRetry(ctx,
		`INSERT INTO delivery_opportunities (
            id, commercial_opportunity_id, title, owner_id, amount_final,
            expected_install_at, stage_id, pipeline_id, billing_status, created_at, updated_at
        ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
        ON CONFLICT (commercial_opportunity_id) DO NOTHING`,
		id,
		delivery.CommercialOpportunityID,
		strings.TrimSpace(delivery.Title),
		nullableString(delivery.OwnerID),
		delivery.AmountFinal,
		formatTimePtr(delivery.ExpectedInstallAt),
		delivery.StageID,
		delivery.PipelineID,
		billing,
		now,
		now,
	)
	if err != nil {
		return nil, false, fmt.Errorf("insert delivery opportunity: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return nil, false, fmt.Errorf("insert delivery opportunity rows: %w", err)
	}

	stored, err := s.GetDeliveryByCommercialID(ctx, delivery.CommercialOpportunityID)
	if err != nil {
		return nil, false, err
	}
	return stored, affected > 0, nil
}

// GetDeliveryOpportunity fetches one delivery opportunity by id.
func (s *Store) GetDeliveryOpportunity(ctx context.Context, id string) (*DeliveryOpportunity, error) {
	ctx = ensureContext(ctx)
	row := s.db.QueryRowContext(ctx,
		`SELECT `+deliveryColumns+` FROM delivery_opportunities WHERE id = ?`, id)
	delivery, err := scanDelivery(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("delivery opportunity %s: %w", id, ErrNotFound)
		}
		return nil, err
	}
	return delivery, nil
}

// GetDeliveryByCommercialID fetches the delivery opportunity derived from a
// commercial opportunity, if one exists.
func (s *Store) GetDeliveryByCommercialID(ctx context.Context, commercialID string) (*DeliveryOpportunity, error) {
	ctx = ensureContext(ctx)
	row := s.db.QueryRowContext(ctx,
		`SELECT `+deliveryColumns+` FROM delivery_opportunities WHERE commercial_opportunity_id = ?`,
		commercialID)
	delivery, err := scanDelivery(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("delivery for opportunity %s: %w", commercialID, ErrNotFound)
		}
		return nil, err
	}
	return delivery, nil
}

// ListDeliveryOpportunities returns the delivery opportunities in a pipeline.
func (s *Store) ListDeliveryOpportunities(ctx context.Context, pipelineID string) ([]*DeliveryOpportunity, error) {
	ctx = ensureContext(ctx)
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+deliveryColumns+` FROM delivery_opportunities
         WHERE pipeline_id = ? ORDER BY created_at DESC`, pipelineID)
	if err != nil {
		return nil, fmt.Errorf("list delivery opportunities: %w", err)
	}
	defer rows.Close()

	var deliveries []*DeliveryOpportunity
	for rows.Next() {
		delivery, err := scanDelivery(rows)
		if err != nil {
			return nil, err
		}
		deliveries = append(deliveries, delivery)
	}
	return deliveries, rows.Err()
}

// SetDeliveryStage moves a delivery opportunity to the given stage.
func (s *Store) SetDeliveryStage(ctx context.Context, id, stageID string) error {
	res, err := s.execWithRetry(ctx,
		`UPDATE delivery_opportunities SET stage_id = ?, updated_at = ? WHERE id = ?`,
		stageID, formatTime(time.Now()), id)
	if err != nil {
		return fmt.Errorf("set delivery stage: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("set delivery stage rows: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("delivery opportunity %s: %w", id, ErrNotFound)
	}
	return nil
}

// SetBillingStatus updates a delivery opportunity's billing state.
func (s *Store) SetBillingStatus(ctx context.Context, id, status string) error {
	switch status {
	case BillingPending, BillingInvoiced, BillingPaid:
	default:
		return fmt.Errorf("invalid billing status %q", status)
	}
	res, err := s.execWithRetry(ctx,
		`UPDATE delivery_opportunities SET billing_status = ?, updated_at = ? WHERE id = ?`,
		status, formatTime(time.Now()), id)
	if err != nil {
		return fmt.Errorf("set billing status: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("set billing status rows: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("delivery opportunity %s: %w", id, ErrNotFound)
	}
	return nil
}

func scanDelivery(scanner interface{ Scan(dest ...any) error }) (*DeliveryOpportunity, error) {
	var (
		delivery   DeliveryOpportunity
		ownerID    sql.NullString
		installRaw sql.NullString
		createdRaw sql.NullString
		updatedRaw sql.NullString
	)
	if err := scanner.Scan(
		&delivery.ID,
		&delivery.CommercialOpportunityID,
		&delivery.Title,
		&ownerID,
		&delivery.AmountFinal,
		&installRaw,
		&delivery.StageID,
		&delivery.PipelineID,
		&delivery.BillingStatus,
		&createdRaw,
		&updatedRaw,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scan delivery opportunity: %w", err)
	}
	delivery.OwnerID = stringOr(ownerID)
	delivery.ExpectedInstallAt = parseTimePtr(installRaw)
	delivery.CreatedAt = parseTime(createdRaw)
	delivery.UpdatedAt = parseTime(updatedRaw)
	return &delivery, nil
}
