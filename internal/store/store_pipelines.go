package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// seedStage describes one default stage of a seeded pipeline.
type seedStage struct {
	name        string
	slug        string
	probability int
}

var defaultPipelines = []struct {
	name   string
	slug   string
	stages []seedStage
}{
	{
		name: "Commercial",
		slug: PipelineCommercial,
		stages: []seedStage{
			{"New", "new", 10},
			{"Briefing", "briefing", 25},
			{"Proposal Sent", "proposal_sent", 50},
			{"Negotiation", "negotiation", 75},
			{"Closed Won", StageClosedWon, 100},
			{"Closed Lost", StageClosedLost, 0},
		},
	},
	{
		name: "Delivery",
		slug: PipelineDelivery,
		stages: []seedStage{
			{"Measurement Scheduling", StageMeasurementScheduling, 100},
			{"Measurement Done", "measurement_done", 100},
			{"Installation Scheduled", "installation_scheduled", 100},
			{"Installation Done", "installation_done", 100},
			{"Completed", StageCompleted, 100},
		},
	},
}

func (s *Store) seedPipelines(ctx context.Context) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin seed tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	now := formatTime(time.Now())
	for _, pipeline := range defaultPipelines {
		pipelineID := uuid.NewString()
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO pipelines (id, name, slug, created_at) VALUES (?, ?, ?, ?)`,
			pipelineID, pipeline.name, pipeline.slug, now,
		); err != nil {
			return fmt.Errorf("seed pipeline %s: %w", pipeline.slug, err)
		}
		for position, stage := range pipeline.stages {
			if _, err := tx.ExecContext(ctx,
				`INSERT INTO stages (id, pipeline_id, name, slug, position, probability, created_at)
                 VALUES (?, ?, ?, ?, ?, ?, ?)`,
				uuid.NewString(), pipelineID, stage.name, stage.slug, position+1, stage.probability, now,
			); err != nil {
				return fmt.Errorf("seed stage %s/%s: %w", pipeline.slug, stage.slug, err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit seed: %w", err)
	}
	return nil
}

// GetPipelineBySlug resolves a pipeline by its slug.
func (s *Store) GetPipelineBySlug(ctx context.Context, slug string) (*Pipeline, error) {
	ctx = ensureContext(ctx)
	row := s.db.QueryRowContext(ctx,
		`SELECT id, name, slug, created_at FROM pipelines WHERE slug = ?`, slug)

	var (
		pipeline Pipeline
		created  sql.NullString
	)
	if err := row.Scan(&pipeline.ID, &pipeline.Name, &pipeline.Slug, &created); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("pipeline %q: %w", slug, ErrNotFound)
		}
		return nil, fmt.Errorf("get pipeline: %w", err)
	}
	pipeline.CreatedAt = parseTime(created)
	return &pipeline, nil
}

// ListPipelines returns every pipeline ordered by name.
func (s *Store) ListPipelines(ctx context.Context) ([]*Pipeline, error) {
	ctx = ensureContext(ctx)
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, name, slug, created_at FROM pipelines ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("list pipelines: %w", err)
	}
	defer rows.Close()

	var pipelines []*Pipeline
	for rows.Next() {
		var (
			pipeline Pipeline
			created  sql.NullString
		)
		if err := rows.Scan(&pipeline.ID, &pipeline.Name, &pipeline.Slug, &created); err != nil {
			return nil, fmt.Errorf("scan pipeline: %w", err)
		}
		pipeline.CreatedAt = parseTime(created)
		pipelines = append(pipelines, &pipeline)
	}
	return pipelines, rows.Err()
}

// GetStage resolves a stage by id.
func (s *Store) GetStage(ctx context.Context, id string) (*Stage, error) {
	ctx = ensureContext(ctx)
	row := s.db.QueryRowContext(ctx,
		`SELECT id, pipeline_id, name, slug, position, probability, created_at
         FROM stages WHERE id = ?`, id)
	return scanStage(row)
}

// GetStageBySlug resolves a stage by pipeline id and slug.
func (s *Store) GetStageBySlug(ctx context.Context, pipelineID, slug string) (*Stage, error) {
	ctx = ensureContext(ctx)
	row := s.db.QueryRowContext(ctx,
		`SELECT id, pipeline_id, name, slug, position, probability, created_at
         FROM stages WHERE pipeline_id = ? AND slug = ?`, pipelineID, slug)
	return scanStage(row)
}

// ListStages returns a pipeline's stages ordered by position.
func (s *Store) ListStages(ctx context.Context, pipelineID string) ([]*Stage, error) {
	ctx = ensureContext(ctx)
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, pipeline_id, name, slug, position, probability, created_at
         FROM stages WHERE pipeline_id = ? ORDER BY position`, pipelineID)
	if err != nil {
		return nil, fmt.Errorf("list stages: %w", err)
	}
	defer rows.Close()

	var stages []*Stage
	for rows.Next() {
		stage, err := scanStage(rows)
		if err != nil {
			return nil, err
		}
		stages = append(stages, stage)
	}
	return stages, rows.Err()
}

func scanStage(scanner interface{ Scan(dest ...any) error }) (*Stage, error) {
	var (
		stage   Stage
		created sql.NullString
	)
	if err := scanner.Scan(
		&stage.ID,
		&stage.PipelineID,
		&stage.Name,
		&stage.Slug,
		&stage.Position,
		&stage.Probability,
		&created,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("stage: %w", ErrNotFound)
		}
		return nil, fmt.Errorf("scan stage: %w", err)
	}
	stage.CreatedAt = parseTime(created)
	return &stage, nil
}
