package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// AppendStageHistory records a commercial opportunity entering a stage and
// closes the previous open history entry.
func (s *Store) AppendStageHistory(ctx context.Context, opportunityID, stageID string) error {
	now := formatTime(time.Now())

	if err := s.execWithoutResultRetry(ctx,
		`UPDATE opportunity_stage_history SET exited_at = ?
         WHERE opportunity_id = ? AND exited_at IS NULL`,
		now, opportunityID,
	); err != nil {
		return fmt.Errorf("close stage history: %w", err)
	}

	if err := s.execWithoutResultRetry(ctx,
		`INSERT INTO opportunity_stage_history (id, opportunity_id, stage_id, entered_at)
         VALUES (?, ?, ?, ?)`,
		uuid.NewString(), opportunityID, stageID, now,
	); err != nil {
		return fmt.Errorf("insert stage history: %w", err)
	}
	return nil
}

// ListStageHistory returns an opportunity's stage transitions, oldest first.
func (s *Store) ListStageHistory(ctx context.Context, opportunityID string) ([]*StageHistoryEntry, error) {
	ctx = ensureContext(ctx)
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, opportunity_id, stage_id, entered_at, exited_at
         FROM opportunity_stage_history
         WHERE opportunity_id = ? ORDER BY entered_at`, opportunityID)
	if err != nil {
		return nil, fmt.Errorf("list stage history: %w", err)
	}
	defer rows.Close()

	var entries []*StageHistoryEntry
	for rows.Next() {
		var (
			entry   StageHistoryEntry
			entered sql.NullString
			exited  sql.NullString
		)
		if err := rows.Scan(&entry.ID, &entry.OpportunityID, &entry.StageID, &entered, &exited); err != nil {
			return nil, fmt.Errorf("scan stage history: %w", err)
		}
		entry.EnteredAt = parseTime(entered)
		entry.ExitedAt = parseTimePtr(exited)
		entries = append(entries, &entry)
	}
	return entries, rows.Err()
}
