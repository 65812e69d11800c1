package store

import (
	"context"
	"database/sql"
	"fmt"
)

// ForecastLine is one aggregated report row: a label and its weighted value.
type ForecastLine struct {
	Name  string
	Value float64
}

// ReportSummary aggregates the commercial pipeline for the reports view.
// Each opportunity contributes its best-known amount (final, else offered,
// else estimated) weighted by the stage's win probability.
type ReportSummary struct {
	ByStage       []ForecastLine
	ByOwner       []ForecastLine
	TotalForecast float64
	ActiveDeals   int
}

const forecastValueExpr = `
    (CASE
        WHEN o.amount_final > 0 THEN o.amount_final
        WHEN o.amount_offered > 0 THEN o.amount_offered
        ELSE o.amount_estimated
    END) * (s.probability / 100.0)`

// ForecastReport computes the commercial forecast aggregates.
func (s *Store) ForecastReport(ctx context.Context) (*ReportSummary, error) {
	ctx = ensureContext(ctx)
	summary := &ReportSummary{}

	byStage, err := s.forecastLines(ctx,
		`SELECT s.name, SUM(`+forecastValueExpr+`)
         FROM opportunities o
         JOIN stages s ON s.id = o.stage_id
         GROUP BY s.id ORDER BY s.position`)
	if err != nil {
		return nil, fmt.Errorf("forecast by stage: %w", err)
	}
	summary.ByStage = byStage

	byOwner, err := s.forecastLines(ctx,
		`SELECT COALESCE(u.full_name, u.email, 'Unknown'), SUM(`+forecastValueExpr+`)
         FROM opportunities o
         JOIN stages s ON s.id = o.stage_id
         LEFT JOIN users u ON u.id = o.owner_id
         GROUP BY o.owner_id ORDER BY 2 DESC`)
	if err != nil {
		return nil, fmt.Errorf("forecast by owner: %w", err)
	}
	summary.ByOwner = byOwner

	for _, line := range byStage {
		summary.TotalForecast += line.Value
	}

	row := s.db.QueryRowContext(ctx,
		`SELECT COUNT(1)
         FROM opportunities o
         JOIN stages s ON s.id = o.stage_id
         WHERE s.slug NOT IN (?, ?)`,
		StageClosedWon, StageClosedLost)
	if err := row.Scan(&summary.ActiveDeals); err != nil {
		return nil, fmt.Errorf("count active deals: %w", err)
	}

	return summary, nil
}

func (s *Store) forecastLines(ctx context.Context, query string) ([]ForecastLine, error) {
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var lines []ForecastLine
	for rows.Next() {
		var (
			line  ForecastLine
			value sql.NullFloat64
		)
		if err := rows.Scan(&line.Name, &value); err != nil {
			return nil, err
		}
		line.Value = value.Float64
		lines = append(lines, line)
	}
	return lines, rows.Err()
}
