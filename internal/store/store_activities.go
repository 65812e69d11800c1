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

const activityColumns = `id, opportunity_id, delivery_opportunity_id, title, description,
    type, due_at, done_at, created_by, created_at`

// CreateActivity inserts a task attached to an opportunity or a delivery
// opportunity. Exactly one of the two parents must be set.
func (s *Store) CreateActivity(ctx context.Context, activity *Activity) (*Activity, error) {
	if activity == nil {
		return nil, errors.New("activity required")
	}
	if strings.TrimSpace(activity.Title) == "" {
		return nil, errors.New("activity title required")
	}
	hasOpp := activity.OpportunityID != ""
	hasDelivery := activity.DeliveryOpportunityID != ""
	if hasOpp == hasDelivery {
		return nil, errors.New("activity requires exactly one parent")
	}
	if activity.DueAt.IsZero() {
		return nil, errors.New("activity due date required")
	}

	id := activity.ID
	if id == "" {
		id = uuid.NewString()
	}
	activityType := activity.Type
	if activityType == "" {
		activityType = "task"
	}

	_, err := s.execWithRetry(ctx,
		`INSERT INTO activities (
            id, opportunity_id, delivery_opportunity_id, title, description,
            type, due_at, done_at, created_by, created_at
        ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		id,
		nullableString(activity.OpportunityID),
		nullableString(activity.DeliveryOpportunityID),
		strings.TrimSpace(activity.Title),
		nullableString(activity.Description),
		activityType,
		formatTime(activity.DueAt),
		formatTimePtr(activity.DoneAt),
		nullableString(activity.CreatedBy),
		formatTime(time.Now()),
	)
	if err != nil {
		return nil, fmt.Errorf("insert activity: %w", err)
	}
	return s.GetActivity(ctx, id)
}

// GetActivity fetches one activity by id.
func (s *Store) GetActivity(ctx context.Context, id string) (*Activity, error) {
	ctx = ensureContext(ctx)
	row := s.db.QueryRowContext(ctx,
		`SELECT `+activityColumns+` FROM activities WHERE id = ?`, id)
	activity, err := scanActivity(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("activity %s: %w", id, ErrNotFound)
		}
		return nil, err
	}
	return activity, nil
}

// ActivityFilter selects which activities to list. Zero values match all.
type ActivityFilter struct {
	OpportunityID         string
	DeliveryOpportunityID string
	// Pending limits results to activities without a done_at timestamp.
	Pending bool
}

// ListActivities returns activities matching the filter, due date ascending.
func (s *Store) ListActivities(ctx context.Context, filter ActivityFilter) ([]*Activity, error) {
	ctx = ensureContext(ctx)

	query := `SELECT ` + activityColumns + ` FROM activities`
	var (
		clauses []string
		args    []any
	)
	if filter.OpportunityID != "" {
		clauses = append(clauses, "opportunity_id = ?")
		args = append(args, filter.OpportunityID)
	}
	if filter.DeliveryOpportunityID != "" {
		clauses = append(clauses, "delivery_opportunity_id = ?")
		args = append(args, filter.DeliveryOpportunityID)
	}
	if filter.Pending {
		clauses = append(clauses, "done_at IS NULL")
	}
	if len(clauses) > 0 {
		query += " WHERE " + strings.Join(clauses, " AND ")
	}
	query += " ORDER BY due_at"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list activities: %w", err)
	}
	defer rows.Close()

	var activities []*Activity
	for rows.Next() {
		activity, err := scanActivity(rows)
		if err != nil {
			return nil, err
		}
		activities = append(activities, activity)
	}
	return activities, rows.Err()
}

// CompleteActivity stamps an activity as done. Completing an already-done
// activity leaves the original timestamp in place.
func (s *Store) CompleteActivity(ctx context.Context, id string) error {
	res, err := s.execWithRetry(ctx,
		`UPDATE activities SET done_at = ? WHERE id = ? AND done_at IS NULL`,
		formatTime(time.Now()), id)
	if err != nil {
		return fmt.Errorf("complete activity: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("complete activity rows: %w", err)
	}
	if affected == 0 {
		// Either missing or already done; distinguish for the caller.
		if _, getErr := s.GetActivity(ctx, id); getErr != nil {
			return getErr
		}
	}
	return nil
}

func scanActivity(scanner interface{ Scan(dest ...any) error }) (*Activity, error) {
	var (
		activity    Activity
		oppID       sql.NullString
		deliveryID  sql.NullString
		description sql.NullString
		dueRaw      sql.NullString
		doneRaw     sql.NullString
		createdBy   sql.NullString
		createdRaw  sql.NullString
	)
	if err := scanner.Scan(
		&activity.ID,
		&oppID,
		&deliveryID,
		&activity.Title,
		&description,
		&activity.Type,
		&dueRaw,
		&doneRaw,
		&createdBy,
		&createdRaw,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scan activity: %w", err)
	}
	activity.OpportunityID = stringOr(oppID)
	activity.DeliveryOpportunityID = stringOr(deliveryID)
	activity.Description = stringOr(description)
	activity.CreatedBy = stringOr(createdBy)
	activity.DueAt = parseTime(dueRaw)
	activity.DoneAt = parseTimePtr(doneRaw)
	activity.CreatedAt = parseTime(createdRaw)
	return &activity, nil
}
